// Package epptest provides a scripted EPP server endpoint for tests.
package epptest

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/protocol/frame"
	"github.com/danmuck/eppctl/internal/protocol/result"
)

// ReadTimeout bounds every peer read so a stuck test fails instead of hanging.
const ReadTimeout = 5 * time.Second

var svTRIDs atomic.Uint64

// Peer is the server side of one connection. Methods return errors rather
// than failing the test because scripts run off the test goroutine.
type Peer struct {
	conn   net.Conn
	codec  *epp.Codec
	limits frame.Limits
}

func NewPeer(conn net.Conn, reg *epp.Registry) *Peer {
	return &Peer{
		conn:   conn,
		codec:  epp.NewCodec(reg),
		limits: frame.DefaultLimits(),
	}
}

// Pipe returns the client end of an in-memory connection and the peer
// holding the other end.
func Pipe(reg *epp.Registry) (net.Conn, *Peer) {
	client, server := net.Pipe()
	return client, NewPeer(server, reg)
}

func (p *Peer) Conn() net.Conn { return p.conn }

func (p *Peer) Close() error { return p.conn.Close() }

func (p *Peer) SendRaw(payload []byte) error {
	_ = p.conn.SetWriteDeadline(time.Now().Add(ReadTimeout))
	return frame.WriteFrame(p.conn, payload, p.limits)
}

func (p *Peer) SendGreeting(g epp.Greeting) error {
	payload, err := p.codec.EncodeGreeting(g)
	if err != nil {
		return err
	}
	return p.SendRaw(payload)
}

func (p *Peer) SendResponse(r *epp.Response) error {
	payload, err := p.codec.EncodeResponse(r)
	if err != nil {
		return err
	}
	return p.SendRaw(payload)
}

func (p *Peer) ReadClientFrame() (epp.ClientFrame, error) {
	_ = p.conn.SetReadDeadline(time.Now().Add(ReadTimeout))
	payload, err := frame.ReadFrame(p.conn, p.limits)
	if err != nil {
		return epp.ClientFrame{}, err
	}
	return p.codec.DecodeClientFrame(payload)
}

// Expect reads one frame and checks that it carries op. OpHello matches a
// hello document.
func (p *Peer) Expect(op epp.Operation) (epp.ClientFrame, error) {
	f, err := p.ReadClientFrame()
	if err != nil {
		return epp.ClientFrame{}, err
	}
	switch {
	case op == epp.OpHello && f.Kind == epp.FrameHello:
		return f, nil
	case f.Kind == epp.FrameCommand && f.Command.Operation() == op:
		return f, nil
	case f.Kind == epp.FrameCommand:
		return f, fmt.Errorf("epptest: expected %s, got %s", op, f.Command.Operation())
	default:
		return f, fmt.Errorf("epptest: expected %s, got %s", op, f.Kind)
	}
}

// Reply answers f with a single result echoing its clTRID.
func (p *Peer) Reply(f epp.ClientFrame, code result.Code, data any) error {
	return p.SendResponse(Respond(f.ClTRID, code, data))
}

// ExpectReply reads a frame carrying op and answers it with code.
func (p *Peer) ExpectReply(op epp.Operation, code result.Code, data any) (epp.ClientFrame, error) {
	f, err := p.Expect(op)
	if err != nil {
		return f, err
	}
	return f, p.Reply(f, code, data)
}

// Respond builds a one-result response with a fresh svTRID.
func Respond(clTRID string, code result.Code, data any) *epp.Response {
	return &epp.Response{
		Results: []result.Result{NewResult(code)},
		Data:    data,
		TRID: epp.TRID{
			ClTRID: clTRID,
			SvTRID: fmt.Sprintf("SRV-%d", svTRIDs.Add(1)),
		},
	}
}

// NewResult returns a result carrying the code's standard message.
func NewResult(code result.Code) result.Result {
	return result.Result{Code: code, Message: result.Message{Text: code.Text()}}
}

// DefaultGreeting advertises the core objects and the registered extensions.
func DefaultGreeting() epp.Greeting {
	return epp.Greeting{
		ServerID:   "Example EPP server epp.example.test",
		ServerDate: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ServiceMenu: epp.ServiceMenu{
			Versions:   []string{epp.Version},
			Languages:  []string{"en", "fr"},
			ObjectURIs: epp.ObjectURIs(),
			Extension: &epp.ServiceExtension{URIs: []string{
				"urn:ietf:params:xml:ns:secDNS-1.1",
				"urn:ietf:params:xml:ns:rgp-1.0",
			}},
		},
	}
}

// Script runs a peer routine off the test goroutine.
type Script struct {
	errc chan error
}

func Start(p *Peer, fn func(*Peer) error) *Script {
	s := &Script{errc: make(chan error, 1)}
	go func() {
		s.errc <- fn(p)
	}()
	return s
}

// Wait fails the test if the routine errored or did not finish in time.
func (s *Script) Wait(t testing.TB) {
	t.Helper()
	select {
	case err := <-s.errc:
		if err != nil {
			t.Fatalf("epp peer script: %v", err)
		}
	case <-time.After(2 * ReadTimeout):
		t.Fatalf("epp peer script did not finish")
	}
}

// Listen accepts one TCP connection on loopback, wrapped in TLS when tlsCfg
// is non-nil, and runs fn against it.
func Listen(t testing.TB, tlsCfg *tls.Config, reg *epp.Registry, fn func(*Peer) error) (string, *Script) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if tlsCfg != nil {
		ln = tls.NewListener(ln, tlsCfg)
	}
	t.Cleanup(func() { _ = ln.Close() })

	s := &Script{errc: make(chan error, 1)}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			s.errc <- err
			return
		}
		p := NewPeer(conn, reg)
		defer p.Close()
		s.errc <- fn(p)
	}()
	return ln.Addr().String(), s
}
