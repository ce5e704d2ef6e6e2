// Package main provides the agent-session-manager entrypoint.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hadar/agent-session-manager/internal/config"
	"github.com/hadar/agent-session-manager/internal/logging"
	"github.com/hadar/agent-session-manager/internal/session"
	"github.com/hadar/agent-session-manager/internal/ui"
)

var version = "0.1.0"

// globalFlags are shared by every command
type globalFlags struct {
	dataDir    string
	configPath string
	logFile    string
	workers    int
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: ")+err.Error())
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	var logCloser func()

	cmd := &cobra.Command{
		Use:   "agent-session-manager",
		Short: "Browse, search and clean up Claude chat sessions",
		Long: `agent-session-manager lists the Claude sessions stored under ~/.claude/projects.

Sessions can be previewed, renamed, exported to Markdown, moved to a trash
directory and restored or purged from there.

Environment:
  CLAUDE_DATA_DIR    directory holding projects/ and trash/ (default ~/.claude)
  AGENT_CONFIG_DIR   directory holding config.json
  CLAUDE_BIN         claude binary used to resume sessions`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closer, err := setupLogging(flags.logFile)
			if err != nil {
				return err
			}
			logCloser = closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Claude data directory (overrides $CLAUDE_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file path (overrides $AGENT_CONFIG_DIR)")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "append structured JSON logs to this file")
	cmd.PersistentFlags().IntVar(&flags.workers, "workers", 0, "session files parsed in parallel (default GOMAXPROCS)")

	cmd.AddCommand(
		statsCmd(flags),
		exportCmd(flags),
	)
	return cmd
}

// setupLogging sends events to path; without a path logging stays off so the TUI is not disturbed
func setupLogging(path string) (func(), error) {
	if path == "" {
		logging.SetOutput(nil)
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.SetOutput(f)
	return func() {
		logging.SetOutput(nil)
		f.Close()
	}, nil
}

func resolveRoots(flags *globalFlags) (session.Roots, error) {
	if flags.dataDir != "" {
		return session.RootsIn(flags.dataDir), nil
	}
	return session.RootsFromEnv()
}

func resolveConfigPath(flags *globalFlags) (string, error) {
	if flags.configPath != "" {
		return flags.configPath, nil
	}
	return config.Path()
}

// loadConfig reads the config, reporting a broken file without failing
func loadConfig(flags *globalFlags) (config.AppConfig, string, error) {
	path, err := resolveConfigPath(flags)
	if err != nil {
		return config.Default(), "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.YellowString("Warning: ")+err.Error()+", using defaults")
	}
	return cfg, path, nil
}

func openStore(flags *globalFlags, opts ...session.Option) (*session.Store, error) {
	roots, err := resolveRoots(flags)
	if err != nil {
		return nil, err
	}
	if flags.workers > 0 {
		opts = append(opts, session.WithWorkers(flags.workers))
	}
	return session.NewStore(roots, opts...)
}

func runTUI(flags *globalFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; use the stats or export commands instead")
	}

	cfg, cfgPath, err := loadConfig(flags)
	if err != nil {
		return err
	}

	var opts []session.Option
	if term.IsTerminal(int(os.Stderr.Fd())) {
		opts = append(opts, session.WithProgress(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rLoading sessions %d/%d", done, total)
		}))
	}
	store, err := openStore(flags, opts...)
	if err != nil {
		return err
	}

	app, err := ui.NewApp(ui.Options{
		Store:      store,
		Config:     cfg,
		ConfigPath: cfgPath,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stderr, "\r\033[K")

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
