package session

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// TRIDSource hands out client transaction ids. Ids are never reused.
type TRIDSource interface {
	Next() string
}

// CounterTRIDs yields <prefix>-<sessionStartUnix>-<n>.
type CounterTRIDs struct {
	prefix string
	start  int64
	n      atomic.Uint64
}

func NewCounterTRIDs(prefix string, start time.Time) *CounterTRIDs {
	return &CounterTRIDs{prefix: prefix, start: start.Unix()}
}

func (c *CounterTRIDs) Next() string {
	return fmt.Sprintf("%s-%d-%d", c.prefix, c.start, c.n.Add(1))
}

// UUIDTRIDs yields <prefix>-<uuid>.
type UUIDTRIDs struct {
	prefix string
}

func NewUUIDTRIDs(prefix string) UUIDTRIDs {
	return UUIDTRIDs{prefix: prefix}
}

func (u UUIDTRIDs) Next() string {
	if u.prefix == "" {
		return uuid.NewString()
	}
	return u.prefix + "-" + uuid.NewString()
}

func newTRIDSource(cfg Config) TRIDSource {
	if cfg.TRIDStrategy == TRIDUUID {
		return NewUUIDTRIDs(cfg.TRIDPrefix)
	}
	return NewCounterTRIDs(cfg.TRIDPrefix, cfg.Clock.Now())
}
