package session

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

func (s *Session) startKeepalive() {
	if s.cfg.IdleTimeout <= 0 {
		return
	}
	// The timer is armed before returning so clock advances that follow
	// Connect are observed.
	timer := s.cfg.Clock.Timer(s.cfg.IdleTimeout)
	go s.keepalive(timer)
}

// keepalive sends <hello> once the session has been silent for IdleTimeout.
func (s *Session) keepalive(timer *clock.Timer) {
	idle := s.cfg.IdleTimeout
	defer timer.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-timer.C:
		}
		wait := idle - s.idleFor()
		if wait <= 0 {
			s.keepaliveOnce()
			wait = idle
		}
		timer.Reset(wait)
	}
}

func (s *Session) idleFor() time.Duration {
	s.mu.Lock()
	last := s.lastActive
	s.mu.Unlock()
	return s.cfg.Clock.Since(last)
}

func (s *Session) keepaliveOnce() {
	// A command holding the slot is traffic of its own.
	if !s.slot.TryAcquire(1) {
		return
	}
	defer s.slot.Release(1)
	if !s.State().Open() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ResponseTimeout)
	defer cancel()
	if _, err := s.hello(ctx); err != nil {
		s.log.Warn().Err(err).Msg("session.Session keepalive")
		return
	}
	s.log.Debug().Msg("session.Session keepalive")
}
