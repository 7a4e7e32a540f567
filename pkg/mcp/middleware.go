package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/observing-components/pkg/mcplog"
)

// loggingMiddleware records every tool call as one JSONL entry. Source code
// arguments are logged by length only.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)
			_ = s.logger.Write(callEntry(req, start, result, err))
			return result, err
		}
	}
}

func callEntry(req mcp.CallToolRequest, start time.Time, result *mcp.CallToolResult, err error) mcplog.LogEntry {
	size := mcplog.ResponseBytes(result)
	return mcplog.LogEntry{
		Ts:            start.UTC().Format(time.RFC3339),
		Tool:          req.Params.Name,
		Params:        mcplog.SanitizeParams(req.GetArguments()),
		DurationMs:    time.Since(start).Milliseconds(),
		ResponseBytes: size,
		TokensEst:     size / 4,
		Error:         callError(result, err),
	}
}

// callError returns the protocol error, or the message of a tool-level
// error result, or nil when the call succeeded.
func callError(result *mcp.CallToolResult, err error) *string {
	if err != nil {
		msg := err.Error()
		return &msg
	}
	if result == nil || !result.IsError {
		return nil
	}
	msg := "tool error"
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			msg = text.Text
			break
		}
	}
	return &msg
}
