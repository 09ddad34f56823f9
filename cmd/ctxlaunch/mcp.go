package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/ctxlaunch/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve registry lookups as MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout with two tools:

  resolve_server  {id}  launch command for a context server
  list_servers          every server the registry knows`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRegistry(cmd.Context())
		if err != nil {
			return err
		}
		logrus.WithField("servers", r.Len()).Debug("serving MCP on stdio")
		return mcpserver.ServeStdio(r, version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
