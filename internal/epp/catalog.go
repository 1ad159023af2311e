package epp

import (
	"encoding/xml"
	"fmt"
)

// Operation names one entry of the closed command catalog.
type Operation string

const (
	OpHello           Operation = "hello"
	OpLogin           Operation = "login"
	OpLogout          Operation = "logout"
	OpPollRequest     Operation = "poll:req"
	OpPollAck         Operation = "poll:ack"
	OpDomainCheck     Operation = "domain:check"
	OpDomainInfo      Operation = "domain:info"
	OpDomainCreate    Operation = "domain:create"
	OpDomainDelete    Operation = "domain:delete"
	OpDomainUpdate    Operation = "domain:update"
	OpDomainRenew     Operation = "domain:renew"
	OpDomainTransfer  Operation = "domain:transfer"
	OpHostCheck       Operation = "host:check"
	OpHostInfo        Operation = "host:info"
	OpHostCreate      Operation = "host:create"
	OpHostDelete      Operation = "host:delete"
	OpHostUpdate      Operation = "host:update"
	OpContactCheck    Operation = "contact:check"
	OpContactInfo     Operation = "contact:info"
	OpContactCreate   Operation = "contact:create"
	OpContactDelete   Operation = "contact:delete"
	OpContactUpdate   Operation = "contact:update"
	OpContactTransfer Operation = "contact:transfer"
)

// Object is the object class an operation acts on.
type Object string

const (
	ObjectNone    Object = ""
	ObjectDomain  Object = "domain"
	ObjectHost    Object = "host"
	ObjectContact Object = "contact"
)

// OperationSpec describes how an operation appears on the wire.
type OperationSpec struct {
	Op        Operation
	Verb      string
	Object    Object
	Namespace string
	// Authenticated operations are refused locally before login.
	Authenticated bool
}

// Command is a request carried inside <command>. The set of implementations
// is closed; every one is listed in the catalog.
type Command interface {
	Operation() Operation
	command()
}

// TransferOp selects the transfer sub-operation.
type TransferOp string

const (
	TransferRequest TransferOp = "request"
	TransferQuery   TransferOp = "query"
	TransferApprove TransferOp = "approve"
	TransferReject  TransferOp = "reject"
	TransferCancel  TransferOp = "cancel"
)

func (op TransferOp) Valid() bool {
	switch op {
	case TransferRequest, TransferQuery, TransferApprove, TransferReject, TransferCancel:
		return true
	}
	return false
}

// transferCommand is implemented by commands whose verb carries an op attribute.
type transferCommand interface {
	transferOp() TransferOp
}

type commandDecoder func(d *xml.Decoder, verb xml.StartElement, inner *xml.StartElement) (Command, error)

type catalogEntry struct {
	OperationSpec
	decode commandDecoder
}

var catalog = []catalogEntry{
	{OperationSpec: OperationSpec{Op: OpHello}},
	{OperationSpec: OperationSpec{Op: OpLogin, Verb: "login"}, decode: decodeVerb[Login]},
	{OperationSpec: OperationSpec{Op: OpLogout, Verb: "logout"}, decode: decodeLogout},
	{OperationSpec: OperationSpec{Op: OpPollRequest, Verb: "poll", Authenticated: true}, decode: decodePoll},
	{OperationSpec: OperationSpec{Op: OpPollAck, Verb: "poll", Authenticated: true}, decode: decodePoll},

	objectEntry(OpDomainCheck, "check", ObjectDomain, NSDomain, decodeObject[DomainCheck]),
	objectEntry(OpDomainInfo, "info", ObjectDomain, NSDomain, decodeObject[DomainInfo]),
	objectEntry(OpDomainCreate, "create", ObjectDomain, NSDomain, decodeObject[DomainCreate]),
	objectEntry(OpDomainDelete, "delete", ObjectDomain, NSDomain, decodeObject[DomainDelete]),
	objectEntry(OpDomainUpdate, "update", ObjectDomain, NSDomain, decodeObject[DomainUpdate]),
	objectEntry(OpDomainRenew, "renew", ObjectDomain, NSDomain, decodeObject[DomainRenew]),
	objectEntry(OpDomainTransfer, "transfer", ObjectDomain, NSDomain, decodeDomainTransfer),

	objectEntry(OpHostCheck, "check", ObjectHost, NSHost, decodeObject[HostCheck]),
	objectEntry(OpHostInfo, "info", ObjectHost, NSHost, decodeObject[HostInfo]),
	objectEntry(OpHostCreate, "create", ObjectHost, NSHost, decodeObject[HostCreate]),
	objectEntry(OpHostDelete, "delete", ObjectHost, NSHost, decodeObject[HostDelete]),
	objectEntry(OpHostUpdate, "update", ObjectHost, NSHost, decodeObject[HostUpdate]),

	objectEntry(OpContactCheck, "check", ObjectContact, NSContact, decodeObject[ContactCheck]),
	objectEntry(OpContactInfo, "info", ObjectContact, NSContact, decodeObject[ContactInfo]),
	objectEntry(OpContactCreate, "create", ObjectContact, NSContact, decodeObject[ContactCreate]),
	objectEntry(OpContactDelete, "delete", ObjectContact, NSContact, decodeObject[ContactDelete]),
	objectEntry(OpContactUpdate, "update", ObjectContact, NSContact, decodeObject[ContactUpdate]),
	objectEntry(OpContactTransfer, "transfer", ObjectContact, NSContact, decodeContactTransfer),
}

func objectEntry(op Operation, verb string, obj Object, ns string, dec commandDecoder) catalogEntry {
	return catalogEntry{
		OperationSpec: OperationSpec{Op: op, Verb: verb, Object: obj, Namespace: ns, Authenticated: true},
		decode:        dec,
	}
}

// Operations lists every catalog operation in declaration order.
func Operations() []Operation {
	out := make([]Operation, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e.Op)
	}
	return out
}

// Lookup returns the wire description of op.
func Lookup(op Operation) (OperationSpec, bool) {
	for _, e := range catalog {
		if e.Op == op {
			return e.OperationSpec, true
		}
	}
	return OperationSpec{}, false
}

// ObjectURIs returns the core object namespaces this client implements.
func ObjectURIs() []string {
	return []string{NSDomain, NSHost, NSContact}
}

func lookupObjectVerb(verb, ns string) (catalogEntry, bool) {
	for _, e := range catalog {
		if e.Verb == verb && e.Namespace == ns && e.Object != ObjectNone {
			return e, true
		}
	}
	return catalogEntry{}, false
}

func lookupSessionVerb(verb string) (catalogEntry, bool) {
	for _, e := range catalog {
		if e.Verb == verb && e.Object == ObjectNone {
			return e, true
		}
	}
	return catalogEntry{}, false
}

func decodeVerb[T Command](d *xml.Decoder, verb xml.StartElement, _ *xml.StartElement) (Command, error) {
	var v T
	if err := d.DecodeElement(&v, &verb); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeObject[T Command](d *xml.Decoder, _ xml.StartElement, inner *xml.StartElement) (Command, error) {
	var v T
	if err := d.DecodeElement(&v, inner); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeLogout(d *xml.Decoder, _ xml.StartElement, _ *xml.StartElement) (Command, error) {
	if err := d.Skip(); err != nil {
		return nil, err
	}
	return Logout{}, nil
}

func decodePoll(d *xml.Decoder, verb xml.StartElement, _ *xml.StartElement) (Command, error) {
	if err := d.Skip(); err != nil {
		return nil, err
	}
	switch op := attr(verb, "op"); op {
	case "req":
		return PollRequest{}, nil
	case "ack":
		id := attr(verb, "msgID")
		if id == "" {
			return nil, fmt.Errorf("epp: poll ack without msgID")
		}
		return PollAck{MessageID: id}, nil
	default:
		return nil, fmt.Errorf("epp: unknown poll op %q", op)
	}
}

func decodeDomainTransfer(d *xml.Decoder, verb xml.StartElement, inner *xml.StartElement) (Command, error) {
	var v DomainTransfer
	if err := d.DecodeElement(&v, inner); err != nil {
		return nil, err
	}
	v.Op = TransferOp(attr(verb, "op"))
	return v, nil
}

func decodeContactTransfer(d *xml.Decoder, verb xml.StartElement, inner *xml.StartElement) (Command, error) {
	var v ContactTransfer
	if err := d.DecodeElement(&v, inner); err != nil {
		return nil, err
	}
	v.Op = TransferOp(attr(verb, "op"))
	return v, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
