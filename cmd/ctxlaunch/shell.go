package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/ctxlaunch/internal/extension"
	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Resolve server ids interactively",
	Long: `Start an interactive prompt. Type a server id to see its launch command.

Commands:
  /list   list known servers
  /json   switch output to JSON
  /yaml   switch output to YAML
  /text   switch output to a shell line
  /quit   exit`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	r, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	home, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mctxlaunch>\033[0m ",
		HistoryFile:     filepath.Join(home, ".ctxlaunch", "history"),
		AutoComplete:    completer(r),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	ext := extension.NewContextServers(r)
	format := "text"

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		quit, err := handleShellInput(ext, r, input, &format, rl.Stdout(), rl.Stderr())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handleShellInput acts on one prompt line. Only the line terminator is
// stripped: identifiers match exactly, so " notepadpp-mcp" is unknown.
func handleShellInput(ext extension.Extension, r *launch.Registry, input string, format *string, stdout, stderr io.Writer) (bool, error) {
	input = strings.TrimRight(input, "\r\n")
	if strings.TrimSpace(input) == "" {
		return false, nil
	}
	switch input {
	case "/quit", "/exit":
		return true, nil
	case "/list":
		for _, id := range r.IDs() {
			fmt.Fprintln(stdout, id)
		}
		return false, nil
	case "/json", "/text", "/yaml":
		*format = strings.TrimPrefix(input, "/")
		return false, nil
	}

	c, err := ext.ContextServerCommand(extension.ContextServerID(input), extension.Project{})
	if err != nil {
		fmt.Fprintf(stderr, "\033[31m%s\033[0m\n", err)
		return false, nil
	}
	out, err := formatCommand(c, *format)
	if err != nil {
		return false, err
	}
	fmt.Fprint(stdout, out)
	return false, nil
}

func completer(r *launch.Registry) readline.AutoCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("/list"),
		readline.PcItem("/json"),
		readline.PcItem("/yaml"),
		readline.PcItem("/text"),
		readline.PcItem("/quit"),
	}
	for _, id := range r.IDs() {
		items = append(items, readline.PcItem(id))
	}
	return readline.NewPrefixCompleter(items...)
}
