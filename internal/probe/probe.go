// Package probe starts a resolved context server once, performs the MCP
// handshake, lists its tools and shuts it down again.
package probe

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

// Result is what a probe learned about a server.
type Result struct {
	ServerName    string   `json:"server_name"`
	ServerVersion string   `json:"server_version"`
	Protocol      string   `json:"protocol_version"`
	Tools         []string `json:"tools"`
}

// Environ merges spec.Env over the current process environment.
func Environ(spec launch.LaunchSpec) []string {
	env := os.Environ()
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+spec.Env[k])
	}
	return env
}

// Run launches spec over stdio, initializes the MCP session and lists tools.
// The process is always closed before Run returns.
func Run(ctx context.Context, id string, spec launch.LaunchSpec, clientVersion string) (*Result, error) {
	log := logrus.WithFields(logrus.Fields{"server": id, "command": spec.Executable})
	log.Debug("starting context server")

	c, err := client.NewStdioMCPClient(spec.Executable, Environ(spec), spec.Args...)
	if err != nil {
		return nil, fmt.Errorf("starting MCP server %s (%s): %w", id, spec.Executable, err)
	}
	defer c.Close()

	info, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    "ctxlaunch",
				Version: clientVersion,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initializing MCP server %s: %w", id, err)
	}

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools from %s: %w", id, err)
	}

	res := &Result{
		ServerName:    info.ServerInfo.Name,
		ServerVersion: info.ServerInfo.Version,
		Protocol:      info.ProtocolVersion,
		Tools:         make([]string, len(tools.Tools)),
	}
	for i, t := range tools.Tools {
		res.Tools[i] = t.Name
	}
	sort.Strings(res.Tools)

	log.WithField("tools", len(res.Tools)).Debug("probe complete")
	return res, nil
}
