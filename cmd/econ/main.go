package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"economist/cmd/econ/config"
	"economist/internal/auth"
	"economist/internal/store"
)

const appVersion = "0.3.0"

var (
	// Global flags
	verbose bool

	// Logger for the non-interactive command surface
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "econ",
	Short: "econ - interactive console for your linked account",
	Long: `econ is a terminal console for an account-linked service.

Run without arguments to start the interactive console. Account linking
state lives in ~/.economist/session.json; interaction history is kept in
a local SQLite store alongside it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "econ" && cmd.CalledAs() == "econ" {
			return nil
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveConsole()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the econ version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "econ v%s\n", appVersion)
	},
}

// runInteractiveConsole assembles the console dependencies and runs the
// bubbletea program. The store and watcher outlive the model and are
// closed here.
func runInteractiveConsole() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("read environment settings: %w", err)
	}

	dataDir, err := auth.DataDir()
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	sessionPath, err := auth.SessionPath()
	if err != nil {
		return fmt.Errorf("resolve session path: %w", err)
	}

	// Config and store both touch disk; open them concurrently. A broken
	// store degrades the console to no logging; it does not prevent
	// startup.
	var (
		cfg config.Config
		st  *store.Store
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		loaded, err := config.Load()
		if err != nil {
			loaded = config.DefaultConfig()
		}
		cfg = loaded
		return nil
	})
	g.Go(func() error {
		opened, err := store.Open(filepath.Join(dataDir, "console.db"))
		if err != nil {
			return fmt.Errorf("interaction store unavailable: %w", err)
		}
		st = opened
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	zl := newConsoleZap(filepath.Join(dataDir, "econ.log"))
	defer func() { _ = zl.Sync() }()

	m := newChatModel(cfg, settings, st, sessionPath, zl)
	defer func() {
		if m.watcher != nil {
			m.watcher.Close()
		}
		if st != nil {
			st.Close()
		}
	}()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}

// newConsoleZap builds the zap logger the interactive console mirrors
// interaction events to. Stderr belongs to the TUI, so output goes to a
// log file next to the store.
func newConsoleZap(path string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	zl, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(authCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
