package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/protocol/frame"
)

// DefaultLang is sent at login when neither the caller nor the greeting
// narrows it.
const DefaultLang = "en"

// Credentials supplies login values. Empty Version, Lang and URI lists are
// filled from the stored greeting.
type Credentials struct {
	ClientID      string
	Password      string
	NewPassword   string
	Version       string
	Lang          string
	ObjectURIs    []string
	ExtensionURIs []string
}

// Session is one client connection to a registry. At most one command is on
// the wire at a time; concurrent callers queue or are rejected per
// Config.Busy.
type Session struct {
	id      string
	cfg     Config
	conn    net.Conn
	codec   *epp.Codec
	trids   TRIDSource
	limits  frame.Limits
	slot    *semaphore.Weighted
	limiter *rate.Limiter
	pending *PendingLedger
	log     zerolog.Logger

	mu         sync.Mutex
	state      State
	greeting   *epp.Greeting
	lastActive time.Time

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to cfg.Address, performs the TLS handshake when enabled and
// waits for the server greeting.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.WithDefaults()
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, fmt.Errorf("%w: address required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := dial(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("session: dial %s: %w", cfg.Address, err)
	}
	s := New(conn, cfg)
	if _, err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func dial(ctx context.Context, cfg Config) (net.Conn, error) {
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, err
	}
	if !cfg.TLS.Enabled {
		return rawConn, nil
	}

	tlsCfg, err := cfg.ClientTLSConfig(cfg.Address)
	if err != nil {
		_ = rawConn.Close()
		return nil, err
	}
	conn := tls.Client(rawConn, tlsCfg)
	handshakeCtx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer cancel()
	if err := conn.HandshakeContext(handshakeCtx); err != nil {
		_ = rawConn.Close()
		return nil, err
	}
	return conn, nil
}

// New wraps an established connection. The session starts Disconnected;
// call Connect to consume the greeting.
func New(conn net.Conn, cfg Config) *Session {
	cfg = cfg.WithDefaults()
	id := uuid.NewString()
	s := &Session{
		id:      id,
		cfg:     cfg,
		conn:    conn,
		codec:   epp.NewCodec(cfg.Registry),
		trids:   newTRIDSource(cfg),
		limits:  frame.Limits{MaxPayloadBytes: cfg.MaxFrameBytes},
		slot:    semaphore.NewWeighted(1),
		pending: NewPendingLedger(),
		log:     log.Logger.With().Str("session_id", id).Str("registry", cfg.Name).Logger(),
		state:   StateDisconnected,
		done:    make(chan struct{}),
	}
	if cfg.CommandRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.CommandRate), cfg.CommandBurst)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Greeting returns the latest greeting, or the zero value before Connect.
func (s *Session) Greeting() epp.Greeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.greeting == nil {
		return epp.Greeting{}
	}
	return *s.greeting
}

// Done is closed when the session reaches Closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Unresolved lists commands written without a matched response, including
// the one currently in flight.
func (s *Session) Unresolved() []PendingCommand { return s.pending.List() }

// Connect waits for the server greeting. Anything else closes the session
// with ErrHandshake.
func (s *Session) Connect(ctx context.Context) (epp.Greeting, error) {
	if err := s.acquire(ctx); err != nil {
		return epp.Greeting{}, err
	}
	defer s.slot.Release(1)
	if st := s.State(); st != StateDisconnected {
		return epp.Greeting{}, &StateError{Op: "connect", State: st}
	}

	stop := s.watch(ctx)
	raw, err := s.readFrame(ctx, s.cfg.HandshakeTimeout)
	stop()
	if err != nil {
		return epp.Greeting{}, s.fail(ctx, "connect", err)
	}
	g, err := s.expectGreeting(raw)
	if err != nil {
		return epp.Greeting{}, s.fail(ctx, "connect", err)
	}
	s.transition(StateGreeted)
	s.log.Info().Str("server", g.ServerID).Msg("session.Session greeted")
	s.startKeepalive()
	return g, nil
}

// Hello requests a fresh greeting. The state is unchanged.
func (s *Session) Hello(ctx context.Context) (epp.Greeting, error) {
	spec, _ := epp.Lookup(epp.OpHello)
	if err := s.guard(spec); err != nil {
		return epp.Greeting{}, err
	}
	if err := s.acquire(ctx); err != nil {
		return epp.Greeting{}, err
	}
	defer s.slot.Release(1)
	if err := s.guard(spec); err != nil {
		return epp.Greeting{}, err
	}
	return s.hello(ctx)
}

func (s *Session) hello(ctx context.Context) (epp.Greeting, error) {
	payload, err := s.codec.EncodeHello()
	if err != nil {
		return epp.Greeting{}, err
	}
	start := s.cfg.Clock.Now()
	raw, err := s.roundTrip(ctx, payload)
	s.cfg.Recorder.Command(s.cfg.Name, string(epp.OpHello), 0, s.cfg.Clock.Since(start))
	if err != nil {
		return epp.Greeting{}, s.fail(ctx, string(epp.OpHello), err)
	}
	g, err := s.expectGreeting(raw)
	if err != nil {
		return epp.Greeting{}, s.fail(ctx, string(epp.OpHello), err)
	}
	return g, nil
}

func (s *Session) expectGreeting(raw []byte) (epp.Greeting, error) {
	f, err := s.codec.DecodeFrame(raw)
	if err != nil {
		return epp.Greeting{}, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if f.Kind != epp.FrameGreeting {
		return epp.Greeting{}, fmt.Errorf("%w: expected greeting, got %s", ErrHandshake, f.Kind)
	}
	s.mu.Lock()
	s.greeting = f.Greeting
	s.lastActive = s.cfg.Clock.Now()
	s.mu.Unlock()
	return *f.Greeting, nil
}

// Login authenticates a Greeted session. A 2xxx reply leaves the session
// Greeted and returns a *ProtocolError.
func (s *Session) Login(ctx context.Context, creds Credentials) (*epp.Response, error) {
	return s.execute(ctx, s.loginCommand(creds), nil)
}

func (s *Session) loginCommand(creds Credentials) epp.Login {
	g := s.Greeting()
	version := creds.Version
	if version == "" {
		version = epp.Version
		if len(g.ServiceMenu.Versions) > 0 {
			version = g.ServiceMenu.Versions[0]
		}
	}
	lang := creds.Lang
	if lang == "" {
		lang = DefaultLang
	}
	objURIs := creds.ObjectURIs
	if len(objURIs) == 0 {
		objURIs = g.ServiceMenu.ObjectURIs
	}
	if len(objURIs) == 0 {
		objURIs = epp.ObjectURIs()
	}
	extURIs := creds.ExtensionURIs
	if len(extURIs) == 0 {
		extURIs = s.supportedExtensions(g)
	}

	cmd := epp.Login{
		ClientID:    creds.ClientID,
		Password:    creds.Password,
		NewPassword: creds.NewPassword,
		Options:     epp.LoginOptions{Version: version, Lang: lang},
		Services:    epp.LoginServices{ObjectURIs: objURIs},
	}
	if len(extURIs) > 0 {
		cmd.Services.Extension = &epp.ServiceExtension{URIs: extURIs}
	}
	return cmd
}

// supportedExtensions returns the greeting's extension URIs this session can
// decode, in greeting order.
func (s *Session) supportedExtensions(g epp.Greeting) []string {
	known := make(map[string]struct{})
	for _, uri := range s.cfg.Registry.ExtensionURIs() {
		known[uri] = struct{}{}
	}
	var out []string
	for _, uri := range g.ExtensionURIs() {
		if _, ok := known[uri]; ok {
			out = append(out, uri)
		}
	}
	return out
}

// Execute sends cmd and waits for its response. Object and poll commands
// require an Authenticated session; a refused command writes nothing. A 2xxx
// reply returns the response together with a *ProtocolError.
func (s *Session) Execute(ctx context.Context, cmd epp.Command, exts ...epp.Extension) (*epp.Response, error) {
	if cmd != nil && cmd.Operation() == epp.OpLogout {
		return s.logout(ctx)
	}
	return s.execute(ctx, cmd, exts)
}

// Logout ends the session. The transport is closed whatever the reply.
func (s *Session) Logout(ctx context.Context) error {
	_, err := s.logout(ctx)
	return err
}

func (s *Session) logout(ctx context.Context) (*epp.Response, error) {
	resp, err := s.execute(ctx, epp.Logout{}, nil)
	if errors.Is(err, ErrSessionBusy) {
		return nil, err
	}
	return resp, multierr.Combine(err, s.teardown())
}

// Close tears the session down without logging out.
func (s *Session) Close() error {
	return s.teardown()
}

func (s *Session) execute(ctx context.Context, cmd epp.Command, exts []epp.Extension) (*epp.Response, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: nil", epp.ErrUnknownCommand)
	}
	op := cmd.Operation()
	spec, ok := epp.Lookup(op)
	if !ok || spec.Verb == "" {
		return nil, fmt.Errorf("%w: %s", epp.ErrUnknownCommand, op)
	}
	if err := s.guard(spec); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.slot.Release(1)
	if err := s.guard(spec); err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	clTRID := s.trids.Next()
	payload, err := s.codec.EncodeCommand(cmd, exts, clTRID)
	if err != nil {
		return nil, err
	}

	start := s.cfg.Clock.Now()
	s.pending.Begin(clTRID, op, start, start.Add(s.cfg.ResponseTimeout))
	resp, err := s.exchange(ctx, payload, clTRID)
	elapsed := s.cfg.Clock.Since(start)
	if err != nil {
		s.pending.Abandon(clTRID, s.cfg.Clock.Now(), err)
		s.cfg.Recorder.Command(s.cfg.Name, string(op), 0, elapsed)
		return nil, s.fail(ctx, string(op), err)
	}
	s.pending.Resolve(clTRID)

	code := resp.Code()
	s.cfg.Recorder.Command(s.cfg.Name, string(op), int(code), elapsed)
	s.log.Debug().
		Str("op", string(op)).
		Str("cltrid", clTRID).
		Int("code", int(code)).
		Dur("elapsed", elapsed).
		Msg("session.Session command")

	if code.ClosesSession() {
		s.log.Warn().Int("code", int(code)).Msg("session.Session server closing")
		_ = s.teardown()
	}
	if code.IsError() {
		return resp, &ProtocolError{Op: op, Code: code, Results: resp.Results, Response: resp}
	}
	if op == epp.OpLogin {
		s.transition(StateAuthenticated)
	}
	return resp, nil
}

func (s *Session) exchange(ctx context.Context, payload []byte, clTRID string) (*epp.Response, error) {
	raw, err := s.roundTrip(ctx, payload)
	if err != nil {
		return nil, err
	}
	f, err := s.codec.DecodeFrame(raw)
	if err != nil {
		return nil, err
	}
	if f.Kind != epp.FrameResponse {
		return nil, fmt.Errorf("%w: expected response, got %s", ErrCorrelation, f.Kind)
	}
	if got := f.Response.TRID.ClTRID; got != clTRID {
		return nil, fmt.Errorf("%w: sent=%q received=%q", ErrCorrelation, clTRID, got)
	}
	s.mu.Lock()
	s.lastActive = s.cfg.Clock.Now()
	s.mu.Unlock()
	return f.Response, nil
}

// guard refuses op without touching the wire.
func (s *Session) guard(spec epp.OperationSpec) error {
	st := s.State()
	switch {
	case !st.Open():
	case spec.Op == epp.OpLogin && st != StateGreeted:
	case spec.Authenticated && st != StateAuthenticated:
	default:
		return nil
	}
	return &StateError{Op: string(spec.Op), State: st}
}

func (s *Session) acquire(ctx context.Context) error {
	if s.cfg.Busy == BusyReject {
		if !s.slot.TryAcquire(1) {
			return ErrSessionBusy
		}
		return nil
	}
	return s.slot.Acquire(ctx, 1)
}

func (s *Session) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	stop := s.watch(ctx)
	defer stop()
	if err := s.conn.SetWriteDeadline(deadline(ctx, s.cfg.WriteTimeout)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.traceFrame("out", payload)
	if err := frame.WriteFrame(s.conn, payload, s.limits); err != nil {
		return nil, err
	}
	s.cfg.Recorder.Frame("out", len(payload))
	return s.readFrame(ctx, s.cfg.ResponseTimeout)
}

func (s *Session) readFrame(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if err := s.conn.SetReadDeadline(deadline(ctx, timeout)); err != nil {
		return nil, err
	}
	// A cancel that fired before the deadline above was set would be lost.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := frame.ReadFrame(s.conn, s.limits)
	if err != nil {
		return nil, err
	}
	s.cfg.Recorder.Frame("in", len(raw))
	s.traceFrame("in", raw)
	return raw, nil
}

// watch unblocks pending I/O when ctx is done.
func (s *Session) watch(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Now())
	})
}

func (s *Session) traceFrame(direction string, payload []byte) {
	if e := s.log.Trace(); e.Enabled() {
		e.Str("direction", direction).Bytes("payload", epp.Redact(payload)).Msg("session.Session frame")
	}
}

// fail classifies a fatal exchange error and closes the session.
func (s *Session) fail(ctx context.Context, op string, err error) error {
	wrapped := classify(ctx, op, err)
	s.log.Warn().Str("op", op).Err(wrapped).Msg("session.Session failed")
	_ = s.teardown()
	return wrapped
}

func classify(ctx context.Context, op string, err error) error {
	var te *frame.TransportError
	switch {
	case errors.Is(err, ErrHandshake), errors.Is(err, ErrCorrelation):
		return fmt.Errorf("%w (op=%s)", err, op)
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("session: %s: %w", op, ctx.Err())
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: op=%s: %w", ErrTimeout, op, err)
	case errors.Is(err, frame.ErrTransportClosed),
		errors.Is(err, frame.ErrFrameTooLarge),
		errors.Is(err, frame.ErrInvalidLength),
		errors.As(err, &te):
		return fmt.Errorf("%w: op=%s: %w", ErrConnectionLost, op, err)
	default:
		return fmt.Errorf("session: %s: %w", op, err)
	}
}

func (s *Session) transition(to State) {
	s.mu.Lock()
	from := s.state
	if from == StateClosed || from == to {
		s.mu.Unlock()
		return
	}
	s.state = to
	s.mu.Unlock()
	s.cfg.Recorder.Transition(s.cfg.Name, from.String(), to.String())
	s.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("session.Session transition")
}

// teardown moves to Closed and closes the transport once. Later calls return nil.
func (s *Session) teardown() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		from := s.state
		s.state = StateClosed
		s.mu.Unlock()
		close(s.done)
		err = s.conn.Close()
		s.cfg.Recorder.Transition(s.cfg.Name, from.String(), StateClosed.String())
		s.log.Info().Str("from", from.String()).Msg("session.Session closed")
	})
	return err
}

// deadline is now+timeout capped by the ctx deadline. Zero means none.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	return d
}
