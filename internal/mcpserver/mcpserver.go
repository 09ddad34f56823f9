// Package mcpserver exposes the launch registry as MCP tools, so an agent
// can ask which command starts a given context server.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/ctxlaunch/internal/extension"
	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

const (
	ToolResolve = "resolve_server"
	ToolList    = "list_servers"
)

// New builds an MCP server with the registry lookup tools.
func New(registry *launch.Registry, version string) *server.MCPServer {
	s := server.NewMCPServer("ctxlaunch", version)
	h := &handlers{registry: registry, ext: extension.NewContextServers(registry)}

	s.AddTool(mcp.Tool{
		Name:        ToolResolve,
		Description: "Return the command, arguments and environment used to launch a context server.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"id": map[string]any{
					"type":        "string",
					"description": "Context server identifier, e.g. notepadpp-mcp",
				},
			},
			Required: []string{"id"},
		},
	}, h.resolve)

	s.AddTool(mcp.Tool{
		Name:        ToolList,
		Description: "List the context servers this registry can launch.",
		InputSchema: mcp.ToolInputSchema{Type: "object"},
	}, h.list)

	return s
}

// ServeStdio runs the server on stdin/stdout until the input closes.
func ServeStdio(registry *launch.Registry, version string) error {
	return server.ServeStdio(New(registry, version))
}

type handlers struct {
	registry *launch.Registry
	ext      extension.Extension
}

func (h *handlers) resolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	id, ok := args["id"].(string)
	if !ok {
		return errorResult("error: 'id' argument must be a string"), nil
	}

	cmd, err := h.ext.ContextServerCommand(extension.ContextServerID(id), extension.Project{})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(cmd)
}

func (h *handlers) list(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.registry.Entries())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(data)}},
	}, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: msg}},
		IsError: true,
	}
}
