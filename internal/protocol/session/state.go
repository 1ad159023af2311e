package session

import "time"

type State int

const (
	StateDisconnected State = iota
	StateGreeted
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateGreeted:
		return "greeted"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Open reports whether the session can still exchange frames.
func (s State) Open() bool {
	return s == StateGreeted || s == StateAuthenticated
}

// Recorder receives session activity. Code zero means no response arrived.
type Recorder interface {
	Command(registry, op string, code int, duration time.Duration)
	Transition(registry, from, to string)
	Frame(direction string, n int)
}

type nopRecorder struct{}

func (nopRecorder) Command(string, string, int, time.Duration) {}
func (nopRecorder) Transition(string, string, string)          {}
func (nopRecorder) Frame(string, int)                          {}
