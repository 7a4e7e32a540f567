package mcp

import "github.com/mark3labs/mcp-go/mcp"

func wrapComponentsTool() mcp.Tool {
	return mcp.NewTool("wrap_components",
		mcp.WithDescription("Wrap the UI components of a JavaScript or TypeScript module in the configured "+
			"higher-order function and add its import. Returns the rewritten code and what changed."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Module source code"),
		),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path of the module. Its extension selects the grammar and it is checked against the exclude patterns"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func checkExclusionTool() mcp.Tool {
	return mcp.NewTool("check_exclusion",
		mcp.WithDescription("Report whether a file path is skipped by the wrapping pass and which rule decided it."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path, absolute or relative"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// RegisteredTools returns the names of the tools the server exposes.
func RegisteredTools() []string {
	return []string{
		wrapComponentsTool().Name,
		checkExclusionTool().Name,
	}
}
