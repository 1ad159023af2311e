package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/eppctl/internal/protocol/session"
)

// Connector dials, greets and logs in one session.
type Connector func(ctx context.Context) (Session, error)

// Supervisor keeps one authenticated session alive, reconnecting with
// backoff whenever the current one closes.
type Supervisor struct {
	connect Connector
	backoff session.BackoffConfig
	clock   clock.Clock
	rng     *rand.Rand

	mu      sync.RWMutex
	current Session
}

func NewSupervisor(connect Connector, backoff session.BackoffConfig, clk clock.Clock) *Supervisor {
	if clk == nil {
		clk = clock.New()
	}
	return &Supervisor{
		connect: connect,
		backoff: backoff,
		clock:   clk,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Current returns the live session, or nil while disconnected.
func (s *Supervisor) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Run blocks until ctx is done. The last session is logged out on exit.
func (s *Supervisor) Run(ctx context.Context) error {
	attempt := 0
	for {
		sess, err := s.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			attempt++
			log.Warn().Err(err).Int("attempt", attempt).Msg("gateway.Supervisor connect failed")
			if err := session.WaitBackoff(ctx, s.clock, s.backoff, attempt, s.rng); err != nil {
				return nil
			}
			continue
		}
		attempt = 0
		s.set(sess)
		log.Info().Str("state", sess.State().String()).Msg("gateway.Supervisor session up")

		select {
		case <-ctx.Done():
			s.set(nil)
			logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := sess.Logout(logoutCtx); err != nil {
				log.Debug().Err(err).Msg("gateway.Supervisor logout")
			}
			cancel()
			return nil
		case <-sess.Done():
			s.set(nil)
			log.Warn().Msg("gateway.Supervisor session closed; reconnecting")
		}
	}
}

func (s *Supervisor) set(sess Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}
