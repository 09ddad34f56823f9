package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/ctxlaunch/internal/probe"
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe <server-id>",
	Short: "Start a context server once and list its tools",
	Long: `Resolve a server, launch it over stdio, perform the MCP handshake,
list its tools and stop it again. Useful to check that a launch command
actually works on this machine.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 30*time.Second, "Give up after this long")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	r, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	id := args[0]
	spec, err := r.Resolve(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
	defer cancel()

	res, err := probe.Run(ctx, id, spec, version)
	if err != nil {
		return err
	}

	fmt.Printf("Server:   %s %s\n", res.ServerName, res.ServerVersion)
	fmt.Printf("Protocol: %s\n", res.Protocol)
	fmt.Printf("Tools:    %d\n", len(res.Tools))
	for _, t := range res.Tools {
		fmt.Printf("  - %s\n", t)
	}
	return nil
}
