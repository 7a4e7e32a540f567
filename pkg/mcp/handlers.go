package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/observing-components/pkg/exclude"
)

// wrapResult is the JSON answer of wrap_components.
type wrapResult struct {
	Code           string `json:"code"`
	Changed        bool   `json:"changed"`
	Excluded       bool   `json:"excluded"`
	Wrapped        int    `json:"wrapped"`
	ImportInserted bool   `json:"import_inserted"`
}

// exclusionResult is the JSON answer of check_exclusion.
type exclusionResult struct {
	Excluded bool             `json:"excluded"`
	Strategy exclude.Strategy `json:"strategy"`
	Pattern  string           `json:"pattern"`
}

func (s *Server) handleWrapComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, outcome, err := s.plugin.ProcessSource([]byte(code), filePath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(wrapResult{
		Code:           string(out),
		Changed:        outcome.Changed,
		Excluded:       outcome.Excluded,
		Wrapped:        outcome.Wrapped,
		ImportInserted: outcome.ImportInserted,
	})
}

func (s *Server) handleCheckExclusion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d := s.plugin.Decide(filePath)
	return jsonResult(exclusionResult{
		Excluded: d.Excluded,
		Strategy: d.Strategy,
		Pattern:  d.Pattern,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
