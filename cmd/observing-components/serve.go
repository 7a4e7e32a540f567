package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/observing-components/pkg/mcp"
	"github.com/gnana997/observing-components/pkg/mcplog"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Serve the wrap_components and check_exclusion tools over the Model Context
Protocol on stdin/stdout. With --log-file every tool call is appended to a
rotated JSONL log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.newPlugin()
			if err != nil {
				return err
			}
			defer p.Close()

			callLog, err := mcplog.NewLogger(a.v.GetString(mcpLogFileKey))
			if err != nil {
				return err
			}
			defer callLog.Close()

			a.logger.Info("serving MCP on stdio", "log_file", a.v.GetString(mcpLogFileKey))
			return mcpserver.NewServer(p, callLog).ServeStdio()
		},
	}

	cmd.Flags().String(logFileFlagName, "", "append tool calls to this JSONL file")
	a.bindFlag(cmd.Flags().Lookup(logFileFlagName), mcpLogFileKey)
	return cmd
}
