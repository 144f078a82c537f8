// Package service assembles the MCP server: it registers the scheduler
// tools and serves them over stdio so agent clients can validate rosters,
// run planner queries, and check hand-built casts.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/mcp/domain"
)

const (
	serverName = "scheduler-mcp"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// defaultCallTimeout bounds a single planner-backed tool call when the
	// config leaves the timeout unset.
	defaultCallTimeout = 30 * time.Second
)

// Config holds MCP server configuration.
type Config struct {
	// CallTimeout caps each planner-backed tool call. Zero or negative
	// selects the default.
	CallTimeout time.Duration
}

// Server wraps an MCP server with the scheduler tools registered.
type Server struct {
	mcpServer *mcp.Server
}

// NewServer builds the MCP server and registers every tool.
func NewServer(cfg Config) *Server {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, domain.RosterValidateTool(), domain.RosterValidateHandler())
	mcp.AddTool(mcpServer, domain.CastFeasibleTool(), domain.CastFeasibleHandler(timeout))
	mcp.AddTool(mcpServer, domain.CastOptimizeTool(), domain.CastOptimizeHandler(timeout))
	mcp.AddTool(mcpServer, domain.AssignmentCheckTool(), domain.AssignmentCheckHandler())

	return &Server{mcpServer: mcpServer}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Context cancellation is the normal shutdown path, not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Run is the service entrypoint: it builds a server from the config and
// serves it on stdio until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	return NewServer(cfg).Serve(ctx)
}
