// Package gateway exposes one authenticated registry session over HTTP.
//
// Requests are serialized by the session itself; the gateway adds no queue.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/eppctl/internal/auth"
	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/observability"
	"github.com/danmuck/eppctl/internal/protocol/session"
)

const Version = "0.1.0"

var ErrNoSession = errors.New("gateway: no registry session")

// Session is the part of *session.Session the gateway drives.
type Session interface {
	State() session.State
	Greeting() epp.Greeting
	Execute(ctx context.Context, cmd epp.Command, exts ...epp.Extension) (*epp.Response, error)
	Done() <-chan struct{}
	Logout(ctx context.Context) error
	Unresolved() []session.PendingCommand
}

// SessionSource yields the live session, or nil while reconnecting.
type SessionSource interface {
	Current() Session
}

type Config struct {
	Name        string
	ListenAddr  string
	CorsOrigins []string
	// Token guards /v1 with a bearer token; empty leaves it open.
	Token          string
	RequestTimeout time.Duration
}

type Server struct {
	cfg      Config
	sessions SessionSource
	router   *gin.Engine
	appeared time.Time
}

func New(cfg Config, sessions SessionSource) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		router:   r,
		appeared: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("gateway.Server listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.cfg.Name,
			"version": Version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		state := session.StateDisconnected
		unresolved := 0
		if sess := s.sessions.Current(); sess != nil {
			state = sess.State()
			unresolved = len(sess.Unresolved())
		}
		status := http.StatusOK
		if state != session.StateAuthenticated {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":      status == http.StatusOK,
			"state":      state.String(),
			"unresolved": unresolved,
			"service":    s.cfg.Name,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	if s.cfg.Token != "" {
		v1.Use(auth.Middleware(auth.StaticToken{Token: s.cfg.Token}))
	}
	v1.GET("/greeting", s.handleGreeting)
	v1.POST("/domains/check", s.handleDomainCheck)
	v1.GET("/domains/:name", s.handleDomainInfo)
	v1.POST("/poll/req", s.handlePollRequest)
	v1.POST("/poll/ack/:id", s.handlePollAck)
}

type checkRequest struct {
	Names []string `json:"names" binding:"required,min=1,dive,required"`
}

func (s *Server) handleGreeting(c *gin.Context) {
	sess := s.sessions.Current()
	if sess == nil {
		writeError(c, ErrNoSession)
		return
	}
	g := sess.Greeting()
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"greeting": renderGreeting(g),
	})
}

func (s *Server) handleDomainCheck(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	resp, err := s.execute(c, epp.DomainCheck{Names: req.Names})
	if err != nil {
		writeError(c, err)
		return
	}
	writeResponse(c, resp, renderCheck(resp.Data))
}

func (s *Server) handleDomainInfo(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	hosts := c.DefaultQuery("hosts", epp.HostsAll)
	resp, err := s.execute(c, epp.DomainInfo{Name: epp.DomainInfoName{Name: name, Hosts: hosts}})
	if err != nil {
		writeError(c, err)
		return
	}
	writeResponse(c, resp, renderInfo(resp.Data))
}

func (s *Server) handlePollRequest(c *gin.Context) {
	resp, err := s.execute(c, epp.PollRequest{})
	if err != nil {
		writeError(c, err)
		return
	}
	writeResponse(c, resp, renderXML(resp.Data))
}

func (s *Server) handlePollAck(c *gin.Context) {
	resp, err := s.execute(c, epp.PollAck{MessageID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	writeResponse(c, resp, nil)
}

func (s *Server) execute(c *gin.Context, cmd epp.Command) (*epp.Response, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return nil, ErrNoSession
	}
	// A client hanging up must not cancel the exchange: the session would
	// tear down for every other caller.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.cfg.RequestTimeout)
	defer cancel()
	return sess.Execute(ctx, cmd)
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}
