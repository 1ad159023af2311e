package session

import (
	"errors"
	"fmt"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/protocol/result"
)

var (
	ErrClosed         = errors.New("session: closed")
	ErrSessionBusy    = errors.New("session: command already in flight")
	ErrHandshake      = errors.New("session: handshake failed")
	ErrCorrelation    = errors.New("session: clTRID mismatch")
	ErrTimeout        = errors.New("session: response timeout")
	ErrConnectionLost = errors.New("session: connection lost")
	ErrInvalidConfig  = errors.New("session: invalid config")
)

// StateError reports an operation refused locally; nothing was written.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("session: %s not allowed in state %s", e.Op, e.State)
}

// Is lets errors.Is(err, ErrClosed) match refusals on a closed session.
func (e *StateError) Is(target error) bool {
	return target == ErrClosed && e.State == StateClosed
}

// ProtocolError carries a response whose first result code is an error.
type ProtocolError struct {
	Op       epp.Operation
	Code     result.Code
	Results  []result.Result
	Response *epp.Response
}

func (e *ProtocolError) Error() string {
	msg := ""
	if len(e.Results) > 0 {
		msg = e.Results[0].Message.Text
	}
	if msg == "" {
		return fmt.Sprintf("session: %s failed: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("session: %s failed: %d %s", e.Op, uint16(e.Code), msg)
}
