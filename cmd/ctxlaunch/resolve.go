package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/michaelbrown/ctxlaunch/internal/extension"
	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

var (
	resolveFormat   string
	resolveWorktree string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <server-id>",
	Short: "Print the launch command for a context server",
	Long: `Resolve a context-server identifier to its launch command.

Examples:
  ctxlaunch resolve notepadpp-mcp
  ctxlaunch resolve notepadpp-mcp --format text`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json", "Output format: json, yaml or text")
	resolveCmd.Flags().StringVar(&resolveWorktree, "worktree", "", "Project worktree root passed to the extension")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	r, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	ext := extension.NewContextServers(r)
	c, err := ext.ContextServerCommand(extension.ContextServerID(args[0]), extension.Project{WorktreeRoot: resolveWorktree})
	if err != nil {
		return err
	}

	out, err := formatCommand(c, resolveFormat)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}

func formatCommand(c *extension.Command, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(launch.LaunchSpec{Executable: c.Command, Args: c.Args, Env: c.Env})
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "text":
		return commandLine(c) + "\n", nil
	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}
}

// commandLine renders c as a single shell-style line, env first.
func commandLine(c *extension.Command) string {
	var parts []string
	for _, k := range sortedKeys(c.Env) {
		parts = append(parts, k+"="+shellQuote(c.Env[k]))
	}
	parts = append(parts, shellQuote(c.Command))
	for _, a := range c.Args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`|&;<>()*?[]{}~!#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
