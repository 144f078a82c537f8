// Package mcp parses MCP command flags and serves the scheduler tools
// over stdio.
package mcp

import (
	"context"
	"flag"
	"time"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/mcp/service"
	entrypoint "github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/platform/cmd"
)

// Config holds MCP command configuration.
type Config struct {
	CallTimeout time.Duration `env:"SCHEDULER_MCP_CALL_TIMEOUT" envDefault:"30s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.DurationVar(&cfg.CallTimeout, "call-timeout", cfg.CallTimeout, "Per-tool-call planner timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{CallTimeout: cfg.CallTimeout})
	})
}
