package session

import (
	"sort"
	"sync"
	"time"

	"github.com/danmuck/eppctl/internal/epp"
)

// PendingCommand is a command written to the wire whose response has not
// been matched. Entries left behind by a failed exchange are unresolved: the
// server may or may not have applied them.
type PendingCommand struct {
	ClTRID    string
	Op        epp.Operation
	SentAt    time.Time
	Deadline  time.Time
	FailedAt  time.Time
	LastError string
}

// Abandoned reports whether the exchange for the command failed.
func (p PendingCommand) Abandoned() bool { return !p.FailedAt.IsZero() }

// PendingLedger tracks commands between write and matched response. An entry
// resolved by a response is forgotten; one whose exchange failed stays for
// reconciliation.
type PendingLedger struct {
	mu    sync.Mutex
	items map[string]PendingCommand
}

func NewPendingLedger() *PendingLedger {
	return &PendingLedger{items: make(map[string]PendingCommand)}
}

// Begin records op as written under clTRID.
func (l *PendingLedger) Begin(clTRID string, op epp.Operation, sentAt, deadline time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[clTRID] = PendingCommand{ClTRID: clTRID, Op: op, SentAt: sentAt, Deadline: deadline}
}

// Resolve forgets clTRID once its response has been matched.
func (l *PendingLedger) Resolve(clTRID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, clTRID)
}

// Abandon marks clTRID as failed with err. It reports false when clTRID was
// never begun or already resolved.
func (l *PendingLedger) Abandon(clTRID string, at time.Time, err error) (PendingCommand, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[clTRID]
	if !ok {
		return PendingCommand{}, false
	}
	item.FailedAt = at
	if err != nil {
		item.LastError = err.Error()
	}
	l.items[clTRID] = item
	return item, true
}

// List returns the unresolved commands oldest first.
func (l *PendingLedger) List() []PendingCommand {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PendingCommand, 0, len(l.items))
	for _, item := range l.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.Before(out[j].SentAt)
		}
		return out[i].ClTRID < out[j].ClTRID
	})
	return out
}
