// Package mcp exposes the wrapping pass to editors and agents as MCP tools
// over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/observing-components/pkg/mcplog"
	"github.com/gnana997/observing-components/pkg/plugin"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server, answering tool calls with one plugin.
type Server struct {
	mcpServer *server.MCPServer
	plugin    *plugin.Plugin
	logger    *mcplog.Logger // nil disables call logging
}

// NewServer creates an MCP server backed by p. When logger is non-nil every
// tool call is recorded.
func NewServer(p *plugin.Plugin, logger *mcplog.Logger) *Server {
	s := &Server{plugin: p, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("observing-components", serverVersion, opts...)
	s.mcpServer.AddTools(
		server.ServerTool{Tool: wrapComponentsTool(), Handler: s.handleWrapComponents},
		server.ServerTool{Tool: checkExclusionTool(), Handler: s.handleCheckExclusion},
	)

	return s
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
