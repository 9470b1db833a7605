package main

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solgateway/rpc-consensus/pkg/rpc"
	"github.com/solgateway/rpc-consensus/pkg/slog"
)

func main() {
	cfg, err := NewGatewayConfigFromCLI()
	if err != nil {
		panic(err)
	}

	if err := initLogging(cfg); err != nil {
		panic(err)
	}
	logger := slog.Get()

	keys := rpc.NewKeyStore()
	var override *rpc.OverrideProvider
	if cfg.OverridePattern != "" {
		override, err = rpc.CompileOverride(cfg.OverridePattern, cfg.OverrideReplace)
		if err != nil {
			logger.Fatalf("compile override-pattern: %v", err)
		}
	}
	registry := rpc.NewRegistry(keys, override)

	dispatcher := rpc.NewDispatcher(nil)
	gateway := rpc.NewGateway(registry, dispatcher, cfg.NumSubnetNodes, cfg.RpcMode())

	acl := rpc.NewACL(rpc.Principal(cfg.ControllerID), parsePrincipals(cfg.ManageApiKeyIDs))
	admin := rpc.NewAdminService(registry, keys, acl)

	srv := newGatewayServer(gateway, admin)

	mux := srv.routes()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Infof("solgateway listening on %s (mode=%s, subnet-nodes=%d)", cfg.ListenAddress, cfg.Mode, cfg.NumSubnetNodes)
	if err := http.ListenAndServe(cfg.ListenAddress, mux); err != nil {
		logger.Fatalf("http server failed: %v", err)
	}
}

func initLogging(cfg *GatewayConfig) error {
	filter := &slog.Filter{Mode: slog.ShowAll}
	switch strings.ToLower(cfg.LogFilterMode) {
	case "hide-all":
		filter.Mode = slog.HideAll
	case "show-pattern":
		filter.Mode = slog.ShowPattern
	case "hide-pattern":
		filter.Mode = slog.HidePattern
	}
	if filter.Mode == slog.ShowPattern || filter.Mode == slog.HidePattern {
		pattern, err := regexp.Compile(cfg.LogFilterPattern)
		if err != nil {
			return err
		}
		filter.Pattern = pattern
	}
	slog.Init(filter)
	return nil
}

func parsePrincipals(csv string) []rpc.Principal {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]rpc.Principal, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, rpc.Principal(p))
	}
	return out
}
