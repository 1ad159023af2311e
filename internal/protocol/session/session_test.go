package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/epp/ext"
	"github.com/danmuck/eppctl/internal/protocol/result"
	"github.com/danmuck/eppctl/internal/testutil/epptest"
	"github.com/danmuck/eppctl/internal/testutil/testlog"
)

type recordedTransition struct{ from, to string }

type fakeRecorder struct {
	mu          sync.Mutex
	commands    map[string]int
	transitions []recordedTransition
	framesOut   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{commands: make(map[string]int)}
}

func (r *fakeRecorder) Command(_ string, op string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[op]++
}

func (r *fakeRecorder) Transition(_ string, from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, recordedTransition{from, to})
}

func (r *fakeRecorder) Frame(direction string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if direction == "out" {
		r.framesOut++
	}
}

func (r *fakeRecorder) snapshot() []recordedTransition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedTransition(nil), r.transitions...)
}

func newPipeSession(t *testing.T, cfg Config) (*Session, *epptest.Peer) {
	t.Helper()
	reg := ext.NewRegistry()
	conn, peer := epptest.Pipe(reg)
	cfg.Registry = reg
	s := New(conn, cfg)
	t.Cleanup(func() {
		_ = s.Close()
		_ = peer.Close()
	})
	return s, peer
}

func greet(t *testing.T, s *Session, peer *epptest.Peer) {
	t.Helper()
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		return p.SendGreeting(epptest.DefaultGreeting())
	})
	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	script.Wait(t)
}

func login(t *testing.T, s *Session, peer *epptest.Peer) {
	t.Helper()
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.ExpectReply(epp.OpLogin, result.Success, nil)
		return err
	})
	if _, err := s.Login(context.Background(), Credentials{ClientID: "ClientX", Password: "foo-BAR2"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	script.Wait(t)
}

func TestSessionLifecycle(t *testing.T) {
	testlog.Start(t)
	rec := newFakeRecorder()
	s, peer := newPipeSession(t, Config{Name: "example", Recorder: rec})
	if s.State() != StateDisconnected {
		t.Fatalf("new session state=%s", s.State())
	}
	greet(t, s, peer)
	if s.State() != StateGreeted || s.Greeting().ServerID == "" {
		t.Fatalf("expected greeted with stored greeting, state=%s", s.State())
	}

	var loginCmd epp.Login
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		f, err := p.ExpectReply(epp.OpLogin, result.Success, nil)
		loginCmd, _ = f.Command.(epp.Login)
		return err
	})
	if _, err := s.Login(context.Background(), Credentials{ClientID: "ClientX", Password: "foo-BAR2"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	script.Wait(t)
	if s.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", s.State())
	}
	if loginCmd.Options.Version != epp.Version || loginCmd.Options.Lang != DefaultLang {
		t.Fatalf("unexpected login options: %+v", loginCmd.Options)
	}
	if len(loginCmd.Services.ObjectURIs) != 3 || loginCmd.Services.Extension == nil || len(loginCmd.Services.Extension.URIs) != 2 {
		t.Fatalf("login services not taken from greeting: %+v", loginCmd.Services)
	}

	var checkTRID string
	script = epptest.Start(peer, func(p *epptest.Peer) error {
		f, err := p.Expect(epp.OpDomainCheck)
		if err != nil {
			return err
		}
		checkTRID = f.ClTRID
		return p.Reply(f, result.Success, &epp.DomainCheckData{Results: []epp.CheckResult{
			{Name: epp.CheckName{Available: true, Value: "example.com"}},
			{Name: epp.CheckName{Available: false, Value: "example.net"}, Reason: "In use"},
		}})
	})
	resp, err := s.Execute(context.Background(), epp.DomainCheck{Names: []string{"example.com", "example.net"}})
	if err != nil {
		t.Fatalf("domain check: %v", err)
	}
	script.Wait(t)
	if resp.TRID.ClTRID != checkTRID || checkTRID == "" {
		t.Fatalf("clTRID not echoed: sent=%q got=%q", checkTRID, resp.TRID.ClTRID)
	}
	data, ok := resp.Data.(*epp.DomainCheckData)
	if !ok {
		t.Fatalf("unexpected resData %T", resp.Data)
	}
	if avail, found := data.Available("example.com"); !found || !avail {
		t.Fatalf("example.com should be available")
	}
	if out := resp.Outcome(); out.Kind != result.KindSuccess {
		t.Fatalf("unexpected outcome %s", out.Kind)
	}

	script = epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.ExpectReply(epp.OpLogout, result.SuccessEndingSession, nil)
		return err
	})
	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	script.Wait(t)
	if s.State() != StateClosed {
		t.Fatalf("expected closed after logout, got %s", s.State())
	}
	select {
	case <-s.Done():
	default:
		t.Fatalf("done channel not closed")
	}
	if len(s.Unresolved()) != 0 {
		t.Fatalf("unexpected unresolved commands: %+v", s.Unresolved())
	}

	want := []recordedTransition{
		{"disconnected", "greeted"},
		{"greeted", "authenticated"},
		{"authenticated", "closed"},
	}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("transitions=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestConnectRequiresGreeting(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		return p.SendResponse(epptest.Respond("", result.Success, nil))
	})
	_, err := s.Connect(context.Background())
	script.Wait(t)
	if !errors.Is(err, ErrHandshake) {
		t.Fatalf("expected ErrHandshake, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
}

func TestObjectCommandRefusedBeforeLoginWritesNothing(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)

	_, err := s.Execute(context.Background(), epp.DomainInfo{Name: epp.DomainInfoName{Name: "example.com"}})
	var se *StateError
	if !errors.As(err, &se) || se.State != StateGreeted || se.Op != string(epp.OpDomainInfo) {
		t.Fatalf("expected StateError in greeted, got %v", err)
	}
	if _, err := s.Execute(context.Background(), epp.PollRequest{}); !errors.As(err, &se) {
		t.Fatalf("poll before login: expected StateError, got %v", err)
	}

	// The next frame the peer sees must be the hello, not the refused commands.
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		if _, err := p.Expect(epp.OpHello); err != nil {
			return err
		}
		return p.SendGreeting(epptest.DefaultGreeting())
	})
	if _, err := s.Hello(context.Background()); err != nil {
		t.Fatalf("hello: %v", err)
	}
	script.Wait(t)
	if s.State() != StateGreeted {
		t.Fatalf("hello changed state to %s", s.State())
	}
}

func TestLoginRequiresGreetedState(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	if _, err := s.Login(context.Background(), Credentials{ClientID: "x"}); err == nil {
		t.Fatalf("login before greeting should fail")
	}
	greet(t, s, peer)
	login(t, s, peer)

	_, err := s.Login(context.Background(), Credentials{ClientID: "x"})
	var se *StateError
	if !errors.As(err, &se) || se.State != StateAuthenticated {
		t.Fatalf("second login: expected StateError, got %v", err)
	}
}

func TestLoginFailureStaysGreeted(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.ExpectReply(epp.OpLogin, result.AuthenticationError, nil)
		return err
	})
	resp, err := s.Login(context.Background(), Credentials{ClientID: "ClientX", Password: "wrong"})
	script.Wait(t)
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Code != result.AuthenticationError {
		t.Fatalf("expected ProtocolError 2200, got %v", err)
	}
	if resp == nil || pe.Response != resp {
		t.Fatalf("protocol error should carry the response")
	}
	if s.State() != StateGreeted {
		t.Fatalf("expected greeted after failed login, got %s", s.State())
	}
}

func TestCorrelationMismatchClosesSession(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		if _, err := p.Expect(epp.OpDomainCheck); err != nil {
			return err
		}
		return p.SendResponse(epptest.Respond("someone-else-1", result.Success, nil))
	})
	_, err := s.Execute(context.Background(), epp.DomainCheck{Names: []string{"example.com"}})
	script.Wait(t)
	if !errors.Is(err, ErrCorrelation) {
		t.Fatalf("expected ErrCorrelation, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
	unresolved := s.Unresolved()
	if len(unresolved) != 1 || unresolved[0].Op != epp.OpDomainCheck || unresolved[0].LastError == "" {
		t.Fatalf("expected one unresolved check, got %+v", unresolved)
	}
	if _, err := s.Execute(context.Background(), epp.DomainCheck{Names: []string{"x.com"}}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after teardown, got %v", err)
	}
}

func TestMissingClTRIDEchoIsMismatch(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		if _, err := p.Expect(epp.OpPollRequest); err != nil {
			return err
		}
		return p.SendResponse(epptest.Respond("", result.SuccessNoMessages, nil))
	})
	_, err := s.Execute(context.Background(), epp.PollRequest{})
	script.Wait(t)
	if !errors.Is(err, ErrCorrelation) {
		t.Fatalf("expected ErrCorrelation, got %v", err)
	}
}

func TestResponseTimeoutClosesSession(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{ResponseTimeout: 50 * time.Millisecond})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.Expect(epp.OpDomainCheck)
		return err
	})
	_, err := s.Execute(context.Background(), epp.DomainCheck{Names: []string{"slow.example"}})
	script.Wait(t)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
}

func TestContextCancelClosesSession(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	ctx, cancel := context.WithCancel(context.Background())
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.Expect(epp.OpDomainCheck)
		cancel()
		return err
	})
	_, err := s.Execute(ctx, epp.DomainCheck{Names: []string{"example.com"}})
	script.Wait(t)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
}

func TestTransportClosedIsConnectionLost(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		if _, err := p.Expect(epp.OpHostCheck); err != nil {
			return err
		}
		return p.Close()
	})
	_, err := s.Execute(context.Background(), epp.HostCheck{Names: []string{"ns1.example.com"}})
	script.Wait(t)
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
}

func TestErrorCodeReturnsProtocolErrorAndStaysOpen(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.ExpectReply(epp.OpDomainCreate, result.ObjectExists, nil)
		return err
	})
	resp, err := s.Execute(context.Background(), epp.DomainCreate{Name: "taken.example"})
	script.Wait(t)
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Code != result.ObjectExists {
		t.Fatalf("expected ProtocolError 2302, got %v", err)
	}
	if resp == nil || resp.Outcome().Kind != result.KindFailure {
		t.Fatalf("expected failure outcome, got %+v", resp)
	}
	if s.State() != StateAuthenticated {
		t.Fatalf("2302 must not close the session, state=%s", s.State())
	}
}

func TestClosingCodeTearsDownSession(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.ExpectReply(epp.OpPollRequest, result.SessionLimitExceededClosing, nil)
		return err
	})
	_, err := s.Execute(context.Background(), epp.PollRequest{})
	script.Wait(t)
	var pe *ProtocolError
	if !errors.As(err, &pe) || !pe.Code.ClosesSession() {
		t.Fatalf("expected closing ProtocolError, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
}

func TestPollPeekThenAck(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	q := &epptest.MessageQueue{}
	q.Push(epptest.Message{ID: "12345", QDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Text: "Transfer requested."})
	q.Push(epptest.Message{ID: "12346", QDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Text: "Pending action completed."})
	script := epptest.Start(peer, func(p *epptest.Peer) error { return q.Serve(p, 4) })

	ctx := context.Background()
	first, err := s.Execute(ctx, epp.PollRequest{})
	if err != nil {
		t.Fatalf("poll req: %v", err)
	}
	again, err := s.Execute(ctx, epp.PollRequest{})
	if err != nil {
		t.Fatalf("poll req again: %v", err)
	}
	if first.Code() != result.SuccessAckToDequeue || first.MsgQ == nil || first.MsgQ.ID != "12345" || first.MsgQ.Count != 2 {
		t.Fatalf("unexpected first poll: %+v", first.MsgQ)
	}
	if again.MsgQ == nil || again.MsgQ.ID != first.MsgQ.ID {
		t.Fatalf("poll req must peek, got %+v", again.MsgQ)
	}

	ack, err := s.Execute(ctx, epp.PollAck{MessageID: first.MsgQ.ID})
	if err != nil {
		t.Fatalf("poll ack: %v", err)
	}
	if ack.MsgQ == nil || ack.MsgQ.Count != 1 || ack.MsgQ.ID != "12346" {
		t.Fatalf("unexpected ack queue state: %+v", ack.MsgQ)
	}

	_, err = s.Execute(ctx, epp.PollAck{MessageID: "12345"})
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Code != result.ObjectDoesNotExist {
		t.Fatalf("second ack of same id: expected 2303, got %v", err)
	}
	script.Wait(t)
	if q.Len() != 1 {
		t.Fatalf("queue length=%d want=1", q.Len())
	}
}

func TestBusyRejectWhileInFlight(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{Busy: BusyReject})
	greet(t, s, peer)
	login(t, s, peer)

	inFlight := make(chan epp.ClientFrame, 1)
	release := make(chan struct{})
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		f, err := p.Expect(epp.OpDomainCheck)
		if err != nil {
			return err
		}
		inFlight <- f
		<-release
		return p.Reply(f, result.Success, nil)
	})

	done := make(chan error, 1)
	go func() {
		_, err := s.Execute(context.Background(), epp.DomainCheck{Names: []string{"a.example"}})
		done <- err
	}()
	<-inFlight
	if _, err := s.Execute(context.Background(), epp.DomainCheck{Names: []string{"b.example"}}); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("in-flight command: %v", err)
	}
	script.Wait(t)
}

func TestBusyQueueSerializesCommands(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	const n = 5
	seen := make(chan string, n)
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		for i := 0; i < n; i++ {
			f, err := p.Expect(epp.OpDomainCheck)
			if err != nil {
				return err
			}
			seen <- f.ClTRID
			if err := p.Reply(f, result.Success, nil); err != nil {
				return err
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Execute(context.Background(), epp.DomainCheck{Names: []string{"q.example"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("queued command: %v", err)
		}
	}
	script.Wait(t)
	close(seen)
	unique := make(map[string]bool)
	for id := range seen {
		unique[id] = true
	}
	if len(unique) != n {
		t.Fatalf("expected %d distinct clTRIDs, got %d", n, len(unique))
	}
}

func TestLogoutClosesEvenOnTransportFailure(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		if _, err := p.Expect(epp.OpLogout); err != nil {
			return err
		}
		return p.Close()
	})
	err := s.Logout(context.Background())
	script.Wait(t)
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}

func TestExecuteLogoutCommandClosesSession(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.ExpectReply(epp.OpLogout, result.SuccessEndingSession, nil)
		return err
	})
	resp, err := s.Execute(context.Background(), epp.Logout{})
	script.Wait(t)
	if err != nil {
		t.Fatalf("logout from greeted: %v", err)
	}
	if resp.Code() != result.SuccessEndingSession || s.State() != StateClosed {
		t.Fatalf("unexpected logout result code=%s state=%s", resp.Code(), s.State())
	}
}

func TestExecuteLogoutPointerClosesSession(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)
	login(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		_, err := p.ExpectReply(epp.OpLogout, result.SuccessEndingSession, nil)
		return err
	})
	resp, err := s.Execute(context.Background(), &epp.Logout{})
	script.Wait(t)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if resp.Code() != result.SuccessEndingSession || s.State() != StateClosed {
		t.Fatalf("unexpected logout result code=%s state=%s", resp.Code(), s.State())
	}
	select {
	case <-s.Done():
	default:
		t.Fatalf("done channel not closed")
	}
}

func TestLoginAnnouncesOnlyRegisteredExtensions(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	g := epptest.DefaultGreeting()
	g.ServiceMenu.Extension = &epp.ServiceExtension{URIs: []string{
		"urn:example:unknown-1.0",
		ext.NSSecDNS,
		"urn:ietf:params:xml:ns:launch-1.0",
		ext.NSFee,
	}}
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		return p.SendGreeting(g)
	})
	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	script.Wait(t)

	var loginCmd epp.Login
	script = epptest.Start(peer, func(p *epptest.Peer) error {
		f, err := p.ExpectReply(epp.OpLogin, result.Success, nil)
		loginCmd, _ = f.Command.(epp.Login)
		return err
	})
	if _, err := s.Login(context.Background(), Credentials{ClientID: "ClientX", Password: "foo-BAR2"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	script.Wait(t)
	if loginCmd.Services.Extension == nil {
		t.Fatalf("login carried no extensions")
	}
	got := loginCmd.Services.Extension.URIs
	if len(got) != 2 || got[0] != ext.NSSecDNS || got[1] != ext.NSFee {
		t.Fatalf("unexpected login extensions: %v", got)
	}
}

func TestKeepaliveSendsHelloWhenIdle(t *testing.T) {
	testlog.Start(t)
	mock := clock.NewMock()
	s, peer := newPipeSession(t, Config{Clock: mock, IdleTimeout: time.Minute})
	greet(t, s, peer)

	helloSeen := make(chan struct{})
	script := epptest.Start(peer, func(p *epptest.Peer) error {
		if _, err := p.Expect(epp.OpHello); err != nil {
			return err
		}
		close(helloSeen)
		g := epptest.DefaultGreeting()
		g.ServerID = "refreshed"
		return p.SendGreeting(g)
	})

	mock.Add(30 * time.Second)
	select {
	case <-helloSeen:
		t.Fatalf("hello sent before idle timeout")
	default:
	}
	mock.Add(30 * time.Second)
	script.Wait(t)

	deadline := time.Now().Add(2 * time.Second)
	for s.Greeting().ServerID != "refreshed" {
		if time.Now().After(deadline) {
			t.Fatalf("keepalive greeting not stored")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if s.State() != StateGreeted {
		t.Fatalf("keepalive changed state to %s", s.State())
	}
}

func TestHelloRejectsNonGreeting(t *testing.T) {
	testlog.Start(t)
	s, peer := newPipeSession(t, Config{})
	greet(t, s, peer)

	script := epptest.Start(peer, func(p *epptest.Peer) error {
		f, err := p.Expect(epp.OpHello)
		if err != nil {
			return err
		}
		return p.Reply(f, result.Success, nil)
	})
	_, err := s.Hello(context.Background())
	script.Wait(t)
	if !errors.Is(err, ErrHandshake) {
		t.Fatalf("expected ErrHandshake, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
}
