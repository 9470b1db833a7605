package main

import (
	"flag"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/solgateway/rpc-consensus/pkg/rpc"
)

// GatewayConfig mirrors spec.md §6's install arguments. Flags take
// precedence over the SOLGATEWAY_-prefixed environment variables they
// shadow, following the teacher's habit of a CLI-first config with env as
// the fallback for containerized deployment.
type GatewayConfig struct {
	ListenAddress     string `envconfig:"LISTEN_ADDRESS" default:":9202"`
	NumSubnetNodes    uint32 `envconfig:"NUM_SUBNET_NODES" default:"34"`
	Mode              string `envconfig:"MODE" default:"normal"` // normal|demo
	OverridePattern   string `envconfig:"OVERRIDE_PATTERN"`
	OverrideReplace   string `envconfig:"OVERRIDE_REPLACE"`
	LogFilterMode     string `envconfig:"LOG_FILTER_MODE" default:"show-all"` // show-all|hide-all|show-pattern|hide-pattern
	LogFilterPattern  string `envconfig:"LOG_FILTER_PATTERN"`
	ControllerID      string `envconfig:"CONTROLLER_ID"`
	ManageApiKeyIDs   string `envconfig:"MANAGE_API_KEYS"` // comma-separated principal list
}

func NewGatewayConfigFromCLI() (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := envconfig.Process("solgateway", &cfg); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	listenAddress := flag.String("listen-address", cfg.ListenAddress, "address to listen on")
	numSubnetNodes := flag.Uint("num-subnet-nodes", uint(cfg.NumSubnetNodes), "subnet node count used for cost estimation")
	mode := flag.String("mode", cfg.Mode, "normal or demo (skips cycle charging)")
	overridePattern := flag.String("override-pattern", cfg.OverridePattern, "regex applied to every resolved provider URL")
	overrideReplace := flag.String("override-replace", cfg.OverrideReplace, "replacement text for override-pattern")
	logFilterMode := flag.String("log-filter-mode", cfg.LogFilterMode, "show-all|hide-all|show-pattern|hide-pattern")
	logFilterPattern := flag.String("log-filter-pattern", cfg.LogFilterPattern, "regex used by show-pattern/hide-pattern")
	controllerID := flag.String("controller", cfg.ControllerID, "principal allowed to call updateApiKeys unconditionally")
	manageApiKeys := flag.String("manage-api-keys", cfg.ManageApiKeyIDs, "comma-separated additional principals allowed to call updateApiKeys")
	flag.Parse()

	cfg.ListenAddress = *listenAddress
	cfg.NumSubnetNodes = uint32(*numSubnetNodes)
	cfg.Mode = *mode
	cfg.OverridePattern = *overridePattern
	cfg.OverrideReplace = *overrideReplace
	cfg.LogFilterMode = *logFilterMode
	cfg.LogFilterPattern = *logFilterPattern
	cfg.ControllerID = *controllerID
	cfg.ManageApiKeyIDs = *manageApiKeys

	return &cfg, nil
}

func (c *GatewayConfig) RpcMode() rpc.Mode {
	if c.Mode == "demo" {
		return rpc.ModeDemo
	}
	return rpc.ModeNormal
}
