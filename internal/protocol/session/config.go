package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/epp/ext"
	"github.com/danmuck/eppctl/internal/protocol/frame"
)

// BackoffConfig defines reconnect backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

type SecurityMode string

const (
	SecurityModeDevelopment SecurityMode = "development"
	SecurityModeProduction  SecurityMode = "production"
)

// Trust selects how the server certificate chain is verified.
type Trust string

const (
	TrustSystem Trust = "system"
	TrustPinned Trust = "pinned"
)

type TLSConfig struct {
	Enabled bool
	Trust   Trust
	// Mutual presents CertFile/KeyFile as the client certificate.
	Mutual             bool
	CAFile             string
	CertFile           string
	KeyFile            string
	ServerName         string
	MinVersion         string
	InsecureSkipVerify bool
}

// BusyPolicy decides what a caller sees while another command holds the wire.
type BusyPolicy string

const (
	BusyQueue  BusyPolicy = "queue"
	BusyReject BusyPolicy = "reject"
)

type TRIDStrategy string

const (
	TRIDCounter TRIDStrategy = "counter"
	TRIDUUID    TRIDStrategy = "uuid"
)

const maxTRIDPrefix = 16

// Config defines one registry session.
type Config struct {
	// Name labels the registry in logs and metrics.
	Name    string
	Address string

	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	ResponseTimeout  time.Duration
	WriteTimeout     time.Duration
	// IdleTimeout > 0 sends <hello> after that much silence.
	IdleTimeout   time.Duration
	MaxFrameBytes uint32

	Busy         BusyPolicy
	TRIDStrategy TRIDStrategy
	TRIDPrefix   string
	// CommandRate is commands per second; zero disables throttling.
	CommandRate  float64
	CommandBurst int

	SecurityMode SecurityMode
	TLS          TLSConfig
	Backoff      BackoffConfig

	Clock    clock.Clock
	Recorder Recorder
	Registry *epp.Registry
}

func DefaultConfig() Config {
	return Config{
		Name:             "default",
		ConnectTimeout:   10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		ResponseTimeout:  30 * time.Second,
		WriteTimeout:     15 * time.Second,
		MaxFrameBytes:    frame.DefaultLimits().MaxPayloadBytes,
		Busy:             BusyQueue,
		TRIDStrategy:     TRIDCounter,
		TRIDPrefix:       "eppctl",
		CommandBurst:     1,
		SecurityMode:     SecurityModeDevelopment,
		TLS: TLSConfig{
			Enabled:    true,
			Trust:      TrustSystem,
			MinVersion: "1.2",
		},
		Backoff: BackoffConfig{
			InitialDelay: 500 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     30 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills zero fields from DefaultConfig. Booleans are left alone.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if strings.TrimSpace(c.Name) == "" {
		c.Name = d.Name
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = d.ResponseTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxFrameBytes == 0 {
		c.MaxFrameBytes = d.MaxFrameBytes
	}
	if c.Busy == "" {
		c.Busy = d.Busy
	}
	if c.TRIDStrategy == "" {
		c.TRIDStrategy = d.TRIDStrategy
	}
	if c.TRIDPrefix == "" {
		c.TRIDPrefix = d.TRIDPrefix
	}
	if c.CommandBurst <= 0 {
		c.CommandBurst = d.CommandBurst
	}
	c.SecurityMode = NormalizeSecurityMode(c.SecurityMode)
	if c.TLS.Trust == "" {
		c.TLS.Trust = d.TLS.Trust
	}
	if c.TLS.MinVersion == "" {
		c.TLS.MinVersion = d.TLS.MinVersion
	}
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff = d.Backoff
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Recorder == nil {
		c.Recorder = nopRecorder{}
	}
	if c.Registry == nil {
		c.Registry = ext.NewRegistry()
	}
	return c
}

// Validate checks everything except the dial address.
func (c Config) Validate() error {
	switch c.Busy {
	case BusyQueue, BusyReject:
	default:
		return fmt.Errorf("%w: busy policy %q", ErrInvalidConfig, c.Busy)
	}
	switch c.TRIDStrategy {
	case TRIDCounter, TRIDUUID:
	default:
		return fmt.Errorf("%w: trid strategy %q", ErrInvalidConfig, c.TRIDStrategy)
	}
	if len(c.TRIDPrefix) > maxTRIDPrefix || strings.ContainsAny(c.TRIDPrefix, " \t\r\n") {
		return fmt.Errorf("%w: trid prefix %q", ErrInvalidConfig, c.TRIDPrefix)
	}
	if c.CommandRate < 0 {
		return fmt.Errorf("%w: command rate %v", ErrInvalidConfig, c.CommandRate)
	}
	return c.ValidateClientTransport()
}
