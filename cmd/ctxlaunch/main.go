package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/ctxlaunch/internal/config"
)

var version = "0.1.0"

var (
	configFlag   string
	dbFlag       string
	logLevelFlag string

	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "ctxlaunch",
	Short: "ctxlaunch - resolve context servers to launch commands",
	Long: `ctxlaunch maps context-server identifiers to the command an editor runs
to start an MCP tool server.

Servers come from the builtin table, the servers section of ctxlaunch.yaml,
and servers added with "ctxlaunch servers add", in that order of precedence
(later wins).`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default ./ctxlaunch.yaml or ~/.ctxlaunch/ctxlaunch.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Server database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warn, error")
}

func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.LoadFile(configFlag)
	}
	return config.Load()
}

// setupLogging configures logrus from --log-level, LOG_LEVEL or the config
// file, and mirrors output to LOG_FILE when set. Logs go to stderr so stdout
// stays clean for command output and the MCP stdio transport.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logLevelFlag
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = cfg.Log.Level
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)

	lf := os.Getenv("LOG_FILE")
	if lf == "" {
		lf = cfg.Log.File
	}
	if lf == "" {
		return nil
	}
	if strings.HasPrefix(lf, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			lf = filepath.Join(home, strings.TrimPrefix(lf, "~"))
		}
	}
	if err := os.MkdirAll(filepath.Dir(lf), 0o755); err != nil {
		logrus.WithError(err).Warn("failed to create directory for log file; using stderr only")
		return nil
	}
	f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.WithError(err).Warn("failed to open log file; using stderr only")
		return nil
	}
	logFile = f
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	logrus.WithField("file", lf).Debug("logging to file enabled")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
