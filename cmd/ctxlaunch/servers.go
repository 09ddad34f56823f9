package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
	"github.com/michaelbrown/ctxlaunch/internal/storage"
)

var (
	addEnvFlag         []string
	addDescriptionFlag string
	exportFormat       string
	exportOutput       string
)

var serversCmd = &cobra.Command{
	Use:     "servers",
	Aliases: []string{"server", "s"},
	Short:   "Manage known context servers",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every server the registry can resolve",
	RunE:  runServersList,
}

var serversAddCmd = &cobra.Command{
	Use:   "add <server-id> <command> [args...]",
	Short: "Add or replace a stored server",
	Long: `Store a context server so later lookups resolve it. Stored servers take
precedence over builtin and configured ones with the same identifier.

Examples:
  ctxlaunch servers add --env GITHUB_PERSONAL_ACCESS_TOKEN=ghp_xxx \
    github docker run -i --rm ghcr.io/github/github-mcp-server

Flags must come before the server id.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runServersAdd,
}

var serversRemoveCmd = &cobra.Command{
	Use:     "remove <server-id>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a stored server",
	Args:    cobra.ExactArgs(1),
	RunE:    runServersRemove,
}

var serversExportCmd = &cobra.Command{
	Use:   "export [server-id...]",
	Short: "Export launch commands as JSON or YAML",
	RunE:  runServersExport,
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd, serversAddCmd, serversRemoveCmd, serversExportCmd)

	serversAddCmd.Flags().StringArrayVar(&addEnvFlag, "env", nil, "Environment override KEY=VALUE (repeatable)")
	serversAddCmd.Flags().StringVar(&addDescriptionFlag, "description", "", "Short description")
	// Everything after the command belongs to the server.
	serversAddCmd.Flags().SetInterspersed(false)

	serversExportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or yaml")
	serversExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

func runServersList(cmd *cobra.Command, args []string) error {
	r, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %-60s %s\n", "ID", "COMMAND", "DESCRIPTION")
	fmt.Println(strings.Repeat("─", 100))

	for _, e := range r.Entries() {
		line := e.Executable
		if len(e.Args) > 0 {
			line += " " + strings.Join(e.Args, " ")
		}
		fmt.Printf("%-24s %-60s %s\n", e.ID, truncate(line, 58), e.Description)
	}
	return nil
}

func runServersAdd(cmd *cobra.Command, args []string) error {
	env, err := parseEnv(addEnvFlag)
	if err != nil {
		return err
	}

	rec := &storage.Record{
		ID:          args[0],
		Command:     args[1],
		Args:        args[2:],
		Env:         env,
		Description: addDescriptionFlag,
	}
	// Reject what the registry would reject before it reaches the database.
	if _, err := launch.NewRegistry(rec.Entry()); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.PutServer(cmd.Context(), rec); err != nil {
		return err
	}
	fmt.Printf("Stored server %s (%s)\n", rec.ID, rec.UUID[:8])
	return nil
}

func runServersRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteServer(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed server %s\n", args[0])
	return nil
}

func runServersExport(cmd *cobra.Command, args []string) error {
	r, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	var data []byte
	switch exportFormat {
	case "json":
		data, err = storage.ExportJSON(r, args...)
	case "yaml":
		data, err = storage.ExportYAML(r, args...)
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
	if err != nil {
		return err
	}

	if exportOutput != "" {
		return os.WriteFile(exportOutput, data, 0o644)
	}
	fmt.Print(string(data))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "..".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + ".."
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env %q: want KEY=VALUE", p)
		}
		env[k] = v
	}
	return env, nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
