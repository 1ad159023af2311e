package result

import "strconv"

// Code is a four-digit EPP result code. The first digit is the band.
type Code uint16

const (
	Success                     Code = 1000
	SuccessPending              Code = 1001
	SuccessNoMessages           Code = 1300
	SuccessAckToDequeue         Code = 1301
	SuccessEndingSession        Code = 1500
	UnknownCommand              Code = 2000
	CommandSyntaxError          Code = 2001
	CommandUseError             Code = 2002
	RequiredParameterMissing    Code = 2003
	ParameterValueRangeError    Code = 2004
	ParameterValueSyntaxError   Code = 2005
	UnimplementedVersion        Code = 2100
	UnimplementedCommand        Code = 2101
	UnimplementedOption         Code = 2102
	UnimplementedExtension      Code = 2103
	BillingFailure              Code = 2104
	NotEligibleForRenewal       Code = 2105
	NotEligibleForTransfer      Code = 2106
	AuthenticationError         Code = 2200
	AuthorizationError          Code = 2201
	InvalidAuthInfo             Code = 2202
	ObjectPendingTransfer       Code = 2300
	ObjectNotPendingTransfer    Code = 2301
	ObjectExists                Code = 2302
	ObjectDoesNotExist          Code = 2303
	StatusProhibitsOperation    Code = 2304
	AssociationProhibitsOp      Code = 2305
	ParameterValuePolicyError   Code = 2306
	UnimplementedObjectService  Code = 2307
	DataManagementPolicy        Code = 2308
	CommandFailed               Code = 2400
	CommandFailedClosing        Code = 2500
	AuthenticationErrorClosing  Code = 2501
	SessionLimitExceededClosing Code = 2502
)

var names = map[Code]string{
	Success:                     "Command completed successfully",
	SuccessPending:              "Command completed successfully; action pending",
	SuccessNoMessages:           "Command completed successfully; no messages",
	SuccessAckToDequeue:         "Command completed successfully; ack to dequeue",
	SuccessEndingSession:        "Command completed successfully; ending session",
	UnknownCommand:              "Unknown command",
	CommandSyntaxError:          "Command syntax error",
	CommandUseError:             "Command use error",
	RequiredParameterMissing:    "Required parameter missing",
	ParameterValueRangeError:    "Parameter value range error",
	ParameterValueSyntaxError:   "Parameter value syntax error",
	UnimplementedVersion:        "Unimplemented protocol version",
	UnimplementedCommand:        "Unimplemented command",
	UnimplementedOption:         "Unimplemented option",
	UnimplementedExtension:      "Unimplemented extension",
	BillingFailure:              "Billing failure",
	NotEligibleForRenewal:       "Object is not eligible for renewal",
	NotEligibleForTransfer:      "Object is not eligible for transfer",
	AuthenticationError:         "Authentication error",
	AuthorizationError:          "Authorization error",
	InvalidAuthInfo:             "Invalid authorization information",
	ObjectPendingTransfer:       "Object pending transfer",
	ObjectNotPendingTransfer:    "Object not pending transfer",
	ObjectExists:                "Object exists",
	ObjectDoesNotExist:          "Object does not exist",
	StatusProhibitsOperation:    "Object status prohibits operation",
	AssociationProhibitsOp:      "Object association prohibits operation",
	ParameterValuePolicyError:   "Parameter value policy error",
	UnimplementedObjectService:  "Unimplemented object service",
	DataManagementPolicy:        "Data management policy violation",
	CommandFailed:               "Command failed",
	CommandFailedClosing:        "Command failed; server closing connection",
	AuthenticationErrorClosing:  "Authentication error; server closing connection",
	SessionLimitExceededClosing: "Session limit exceeded; server closing connection",
}

// Valid reports whether c is a well-formed four-digit code in the success or
// error band. Codes outside the RFC 5730 list are still valid.
func (c Code) Valid() bool { return c >= 1000 && c <= 2999 }

// Band returns the leading digit: 1 for success, 2 for error.
func (c Code) Band() int { return int(c) / 1000 }

func (c Code) IsSuccess() bool { return c.Band() == 1 }

func (c Code) IsError() bool { return c.Band() == 2 }

// IsQueueNotice reports the poll-queue codes 1300 and 1301.
func (c Code) IsQueueNotice() bool {
	return c == SuccessNoMessages || c == SuccessAckToDequeue
}

// ClosesSession reports the 25xx codes after which the server drops the connection.
func (c Code) ClosesSession() bool { return c >= 2500 && c <= 2599 }

// IsPersistent reports errors that will recur for the same command on the same
// session: syntax and unimplemented-feature errors plus the closing codes.
func (c Code) IsPersistent() bool {
	switch c {
	case UnknownCommand, CommandSyntaxError, RequiredParameterMissing,
		ParameterValueRangeError, ParameterValueSyntaxError,
		UnimplementedVersion, UnimplementedCommand, UnimplementedOption, UnimplementedExtension:
		return true
	}
	return c.ClosesSession()
}

// Known reports whether c is one of the RFC 5730 codes.
func (c Code) Known() bool {
	_, ok := names[c]
	return ok
}

// Text returns the RFC 5730 message for c, or "" when unknown.
func (c Code) Text() string { return names[c] }

func (c Code) String() string {
	if name, ok := names[c]; ok {
		return strconv.Itoa(int(c)) + " " + name
	}
	return strconv.Itoa(int(c))
}
