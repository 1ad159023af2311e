package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/eppctl/internal/protocol/session"
)

// File is the eppctl.toml layout. Durations are Go duration strings.
type File struct {
	Registry RegistryFile `toml:"registry"`
	Session  SessionFile  `toml:"session"`
	TLS      TLSFile      `toml:"tls"`
	Backoff  BackoffFile  `toml:"backoff"`
	Gateway  GatewayFile  `toml:"gateway"`
}

type RegistryFile struct {
	Name     string `toml:"name"`
	Address  string `toml:"address"`
	ClientID string `toml:"client_id"`
	// Password is read from PasswordEnv when set; an inline password wins.
	Password      string   `toml:"password,omitempty"`
	PasswordEnv   string   `toml:"password_env"`
	Lang          string   `toml:"lang"`
	ObjectURIs    []string `toml:"object_uris"`
	ExtensionURIs []string `toml:"extension_uris"`
}

type SessionFile struct {
	ConnectTimeout   string  `toml:"connect_timeout"`
	HandshakeTimeout string  `toml:"handshake_timeout"`
	ResponseTimeout  string  `toml:"response_timeout"`
	WriteTimeout     string  `toml:"write_timeout"`
	IdleTimeout      string  `toml:"idle_timeout"`
	MaxFrameBytes    uint32  `toml:"max_frame_bytes"`
	Busy             string  `toml:"busy"`
	TRIDStrategy     string  `toml:"trid_strategy"`
	TRIDPrefix       string  `toml:"trid_prefix"`
	CommandRate      float64 `toml:"command_rate"`
	CommandBurst     int     `toml:"command_burst"`
}

type TLSFile struct {
	SecurityMode       string `toml:"security_mode"`
	Enabled            bool   `toml:"enabled"`
	Trust              string `toml:"trust"`
	Mutual             bool   `toml:"mutual"`
	CAFile             string `toml:"ca_file"`
	CertFile           string `toml:"cert_file"`
	KeyFile            string `toml:"key_file"`
	ServerName         string `toml:"server_name"`
	MinVersion         string `toml:"min_version"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

type BackoffFile struct {
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxDelay     string  `toml:"max_delay"`
	Jitter       bool    `toml:"jitter"`
}

type GatewayFile struct {
	ListenAddr  string   `toml:"listen_addr"`
	CorsOrigins []string `toml:"cors_origins"`
	TokenEnv    string   `toml:"token_env"`
}

// Default mirrors session.DefaultConfig plus CLI and gateway defaults.
func Default() File {
	s := session.DefaultConfig()
	return File{
		Registry: RegistryFile{
			Name:        s.Name,
			Address:     "epp.example.test:700",
			ClientID:    "ClientX",
			PasswordEnv: "EPPCTL_PASSWORD",
			Lang:        session.DefaultLang,
		},
		Session: SessionFile{
			ConnectTimeout:   s.ConnectTimeout.String(),
			HandshakeTimeout: s.HandshakeTimeout.String(),
			ResponseTimeout:  s.ResponseTimeout.String(),
			WriteTimeout:     s.WriteTimeout.String(),
			IdleTimeout:      s.IdleTimeout.String(),
			MaxFrameBytes:    s.MaxFrameBytes,
			Busy:             string(s.Busy),
			TRIDStrategy:     string(s.TRIDStrategy),
			TRIDPrefix:       s.TRIDPrefix,
			CommandRate:      s.CommandRate,
			CommandBurst:     s.CommandBurst,
		},
		TLS: TLSFile{
			SecurityMode: string(s.SecurityMode),
			Enabled:      s.TLS.Enabled,
			Trust:        string(s.TLS.Trust),
			MinVersion:   s.TLS.MinVersion,
		},
		Backoff: BackoffFile{
			InitialDelay: s.Backoff.InitialDelay.String(),
			Multiplier:   s.Backoff.Multiplier,
			MaxDelay:     s.Backoff.MaxDelay.String(),
			Jitter:       s.Backoff.Jitter,
		},
		Gateway: GatewayFile{
			ListenAddr:  "127.0.0.1:8700",
			CorsOrigins: []string{"http://localhost:3000"},
			TokenEnv:    "EPPCTL_GATEWAY_TOKEN",
		},
	}
}

// Load reads path over Default. Only keys present in the file override;
// unknown keys are an error.
func Load(path string) (File, error) {
	cfg := Default()

	var raw File
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return File{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return File{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}

	str := func(dst *string, src string, key ...string) {
		if meta.IsDefined(key...) {
			*dst = strings.TrimSpace(src)
		}
	}
	flag := func(dst *bool, src bool, key ...string) {
		if meta.IsDefined(key...) {
			*dst = src
		}
	}
	list := func(dst *[]string, src []string, key ...string) {
		if meta.IsDefined(key...) {
			*dst = src
		}
	}

	str(&cfg.Registry.Name, raw.Registry.Name, "registry", "name")
	str(&cfg.Registry.Address, raw.Registry.Address, "registry", "address")
	str(&cfg.Registry.ClientID, raw.Registry.ClientID, "registry", "client_id")
	str(&cfg.Registry.Password, raw.Registry.Password, "registry", "password")
	str(&cfg.Registry.PasswordEnv, raw.Registry.PasswordEnv, "registry", "password_env")
	str(&cfg.Registry.Lang, raw.Registry.Lang, "registry", "lang")
	list(&cfg.Registry.ObjectURIs, raw.Registry.ObjectURIs, "registry", "object_uris")
	list(&cfg.Registry.ExtensionURIs, raw.Registry.ExtensionURIs, "registry", "extension_uris")

	str(&cfg.Session.ConnectTimeout, raw.Session.ConnectTimeout, "session", "connect_timeout")
	str(&cfg.Session.HandshakeTimeout, raw.Session.HandshakeTimeout, "session", "handshake_timeout")
	str(&cfg.Session.ResponseTimeout, raw.Session.ResponseTimeout, "session", "response_timeout")
	str(&cfg.Session.WriteTimeout, raw.Session.WriteTimeout, "session", "write_timeout")
	str(&cfg.Session.IdleTimeout, raw.Session.IdleTimeout, "session", "idle_timeout")
	if meta.IsDefined("session", "max_frame_bytes") {
		cfg.Session.MaxFrameBytes = raw.Session.MaxFrameBytes
	}
	str(&cfg.Session.Busy, raw.Session.Busy, "session", "busy")
	str(&cfg.Session.TRIDStrategy, raw.Session.TRIDStrategy, "session", "trid_strategy")
	str(&cfg.Session.TRIDPrefix, raw.Session.TRIDPrefix, "session", "trid_prefix")
	if meta.IsDefined("session", "command_rate") {
		cfg.Session.CommandRate = raw.Session.CommandRate
	}
	if meta.IsDefined("session", "command_burst") {
		cfg.Session.CommandBurst = raw.Session.CommandBurst
	}

	str(&cfg.TLS.SecurityMode, raw.TLS.SecurityMode, "tls", "security_mode")
	flag(&cfg.TLS.Enabled, raw.TLS.Enabled, "tls", "enabled")
	str(&cfg.TLS.Trust, raw.TLS.Trust, "tls", "trust")
	flag(&cfg.TLS.Mutual, raw.TLS.Mutual, "tls", "mutual")
	str(&cfg.TLS.CAFile, raw.TLS.CAFile, "tls", "ca_file")
	str(&cfg.TLS.CertFile, raw.TLS.CertFile, "tls", "cert_file")
	str(&cfg.TLS.KeyFile, raw.TLS.KeyFile, "tls", "key_file")
	str(&cfg.TLS.ServerName, raw.TLS.ServerName, "tls", "server_name")
	str(&cfg.TLS.MinVersion, raw.TLS.MinVersion, "tls", "min_version")
	flag(&cfg.TLS.InsecureSkipVerify, raw.TLS.InsecureSkipVerify, "tls", "insecure_skip_verify")

	str(&cfg.Backoff.InitialDelay, raw.Backoff.InitialDelay, "backoff", "initial_delay")
	if meta.IsDefined("backoff", "multiplier") {
		cfg.Backoff.Multiplier = raw.Backoff.Multiplier
	}
	str(&cfg.Backoff.MaxDelay, raw.Backoff.MaxDelay, "backoff", "max_delay")
	flag(&cfg.Backoff.Jitter, raw.Backoff.Jitter, "backoff", "jitter")

	str(&cfg.Gateway.ListenAddr, raw.Gateway.ListenAddr, "gateway", "listen_addr")
	list(&cfg.Gateway.CorsOrigins, raw.Gateway.CorsOrigins, "gateway", "cors_origins")
	str(&cfg.Gateway.TokenEnv, raw.Gateway.TokenEnv, "gateway", "token_env")

	if err := cfg.Validate(); err != nil {
		return File{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the file converts to a valid session config.
func (f File) Validate() error {
	if strings.TrimSpace(f.Registry.Address) == "" {
		return fmt.Errorf("registry.address is required")
	}
	if strings.TrimSpace(f.Registry.ClientID) == "" {
		return fmt.Errorf("registry.client_id is required")
	}
	cfg, err := f.SessionConfig()
	if err != nil {
		return err
	}
	return cfg.WithDefaults().Validate()
}

// SessionConfig converts the file into a session config.
func (f File) SessionConfig() (session.Config, error) {
	cfg := session.Config{
		Name:          f.Registry.Name,
		Address:       f.Registry.Address,
		MaxFrameBytes: f.Session.MaxFrameBytes,
		Busy:          session.BusyPolicy(f.Session.Busy),
		TRIDStrategy:  session.TRIDStrategy(f.Session.TRIDStrategy),
		TRIDPrefix:    f.Session.TRIDPrefix,
		CommandRate:   f.Session.CommandRate,
		CommandBurst:  f.Session.CommandBurst,
		SecurityMode:  session.SecurityMode(f.TLS.SecurityMode),
		TLS: session.TLSConfig{
			Enabled:            f.TLS.Enabled,
			Trust:              session.Trust(f.TLS.Trust),
			Mutual:             f.TLS.Mutual,
			CAFile:             f.TLS.CAFile,
			CertFile:           f.TLS.CertFile,
			KeyFile:            f.TLS.KeyFile,
			ServerName:         f.TLS.ServerName,
			MinVersion:         f.TLS.MinVersion,
			InsecureSkipVerify: f.TLS.InsecureSkipVerify,
		},
		Backoff: session.BackoffConfig{
			Multiplier: f.Backoff.Multiplier,
			Jitter:     f.Backoff.Jitter,
		},
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"session.connect_timeout", f.Session.ConnectTimeout, &cfg.ConnectTimeout},
		{"session.handshake_timeout", f.Session.HandshakeTimeout, &cfg.HandshakeTimeout},
		{"session.response_timeout", f.Session.ResponseTimeout, &cfg.ResponseTimeout},
		{"session.write_timeout", f.Session.WriteTimeout, &cfg.WriteTimeout},
		{"session.idle_timeout", f.Session.IdleTimeout, &cfg.IdleTimeout},
		{"backoff.initial_delay", f.Backoff.InitialDelay, &cfg.Backoff.InitialDelay},
		{"backoff.max_delay", f.Backoff.MaxDelay, &cfg.Backoff.MaxDelay},
	}
	for _, d := range durations {
		v, err := parseDuration(d.raw)
		if err != nil {
			return session.Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}
	return cfg, nil
}

// Credentials resolves the login values, reading the password from the
// environment when no inline password is set.
func (f File) Credentials() (session.Credentials, error) {
	password := f.Registry.Password
	if password == "" && f.Registry.PasswordEnv != "" {
		password = os.Getenv(f.Registry.PasswordEnv)
	}
	if password == "" {
		return session.Credentials{}, fmt.Errorf("registry password not set (password or $%s)", f.Registry.PasswordEnv)
	}
	return session.Credentials{
		ClientID:      f.Registry.ClientID,
		Password:      password,
		Lang:          f.Registry.Lang,
		ObjectURIs:    f.Registry.ObjectURIs,
		ExtensionURIs: f.Registry.ExtensionURIs,
	}, nil
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}
