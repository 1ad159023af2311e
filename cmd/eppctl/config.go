package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/eppctl/internal/config"
	"github.com/danmuck/eppctl/internal/gateway"
	"github.com/danmuck/eppctl/internal/observability"
	"github.com/danmuck/eppctl/internal/protocol/session"
)

type runtimeConfig struct {
	Session     session.Config
	Credentials session.Credentials
	Gateway     gateway.Config
}

func loadRuntimeConfig(path string) (runtimeConfig, error) {
	file, err := config.Load(path)
	if err != nil {
		return runtimeConfig{}, err
	}
	return buildRuntimeConfig(file)
}

func buildRuntimeConfig(file config.File) (runtimeConfig, error) {
	sessCfg, err := file.SessionConfig()
	if err != nil {
		return runtimeConfig{}, err
	}
	sessCfg.Recorder = observability.SessionMetrics{}

	creds, err := file.Credentials()
	if err != nil {
		return runtimeConfig{}, err
	}

	gw := gateway.Config{
		Name:        "eppctl-" + sessCfg.Name,
		ListenAddr:  strings.TrimSpace(file.Gateway.ListenAddr),
		CorsOrigins: file.Gateway.CorsOrigins,
	}
	if env := strings.TrimSpace(file.Gateway.TokenEnv); env != "" {
		gw.Token = strings.TrimSpace(os.Getenv(env))
	}
	if gw.ListenAddr == "" {
		return runtimeConfig{}, fmt.Errorf("gateway.listen_addr is required")
	}
	return runtimeConfig{Session: sessCfg, Credentials: creds, Gateway: gw}, nil
}
