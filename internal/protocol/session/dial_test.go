package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/epp/ext"
	"github.com/danmuck/eppctl/internal/protocol/result"
	"github.com/danmuck/eppctl/internal/testutil/epptest"
	"github.com/danmuck/eppctl/internal/testutil/testlog"
	"github.com/danmuck/eppctl/internal/testutil/tlstest"
)

func scriptedRegistry(p *epptest.Peer) error {
	if err := p.SendGreeting(epptest.DefaultGreeting()); err != nil {
		return err
	}
	if _, err := p.ExpectReply(epp.OpLogin, result.Success, nil); err != nil {
		return err
	}
	f, err := p.Expect(epp.OpDomainInfo)
	if err != nil {
		return err
	}
	created := time.Date(2025, 4, 3, 22, 0, 0, 0, time.UTC)
	r := epptest.Respond(f.ClTRID, result.Success, &epp.DomainInfoData{
		Name:      "example.com",
		ROID:      "EXAMPLE1-REP",
		Statuses:  []epp.Status{{Value: epp.StatusOK}},
		ClientID:  "ClientX",
		CreatedAt: &created,
	})
	r.Extensions = []epp.Extension{&ext.RGPInfo{Statuses: []ext.RGPStatus{{Value: ext.RGPAddPeriod}}}}
	if err := p.SendResponse(r); err != nil {
		return err
	}
	_, err = p.ExpectReply(epp.OpLogout, result.SuccessEndingSession, nil)
	return err
}

func TestDialMutualTLSEndToEnd(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	ca := tlstest.NewAuthority(t, dir, "eppctl test ca")
	serverCert, serverKey := ca.IssueServerCert(t, dir, "epp.example.test")
	clientCert, clientKey := ca.IssueClientCert(t, dir, "ClientX")

	reg := ext.NewRegistry()
	addr, script := epptest.Listen(t, ca.ServerConfig(t, serverCert, serverKey, true), reg, scriptedRegistry)

	cfg := DefaultConfig()
	cfg.Name = "example"
	cfg.Address = addr
	cfg.Registry = reg
	cfg.SecurityMode = SecurityModeProduction
	cfg.TLS = TLSConfig{
		Enabled:    true,
		Trust:      TrustPinned,
		Mutual:     true,
		CAFile:     ca.CAFile(),
		CertFile:   clientCert,
		KeyFile:    clientKey,
		ServerName: "localhost",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Dial(ctx, cfg)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := s.Login(ctx, Credentials{ClientID: "ClientX", Password: "foo-BAR2"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	resp, err := s.Execute(ctx, epp.DomainInfo{Name: epp.DomainInfoName{Name: "example.com", Hosts: epp.HostsAll}})
	if err != nil {
		t.Fatalf("domain info: %v", err)
	}
	info, ok := resp.Data.(*epp.DomainInfoData)
	if !ok || info.ROID != "EXAMPLE1-REP" || info.CreatedAt == nil {
		t.Fatalf("unexpected info data: %#v", resp.Data)
	}
	e, ok := resp.Extension(ext.NSRGP)
	if !ok {
		t.Fatalf("rgp extension missing")
	}
	if rgp := e.(*ext.RGPInfo); len(rgp.Statuses) != 1 || rgp.Statuses[0].Value != ext.RGPAddPeriod {
		t.Fatalf("unexpected rgp info: %+v", rgp)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	script.Wait(t)
}

func TestDialPlainTCP(t *testing.T) {
	testlog.Start(t)
	reg := ext.NewRegistry()
	addr, script := epptest.Listen(t, nil, reg, func(p *epptest.Peer) error {
		return p.SendGreeting(epptest.DefaultGreeting())
	})
	cfg := Config{Address: addr, Registry: reg}
	cfg.TLS.Enabled = false
	s, err := Dial(context.Background(), cfg)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer s.Close()
	if s.State() != StateGreeted || s.ID() == "" {
		t.Fatalf("unexpected session after dial: state=%s id=%q", s.State(), s.ID())
	}
	script.Wait(t)
}

func TestDialRejectsUntrustedServer(t *testing.T) {
	testlog.Start(t)
	serverDir, otherDir := t.TempDir(), t.TempDir()
	serverCA := tlstest.NewAuthority(t, serverDir, "server ca")
	otherCA := tlstest.NewAuthority(t, otherDir, "other ca")
	serverCert, serverKey := serverCA.IssueServerCert(t, serverDir, "epp.example.test")

	addr, _ := epptest.Listen(t, serverCA.ServerConfig(t, serverCert, serverKey, false), nil, func(p *epptest.Peer) error {
		return p.SendGreeting(epptest.DefaultGreeting())
	})
	cfg := Config{Address: addr}
	cfg.TLS = TLSConfig{Enabled: true, Trust: TrustPinned, CAFile: otherCA.CAFile(), ServerName: "localhost"}
	if _, err := Dial(context.Background(), cfg); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestDialRequiresAddress(t *testing.T) {
	testlog.Start(t)
	if _, err := Dial(context.Background(), Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
