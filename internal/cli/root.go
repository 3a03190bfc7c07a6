package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/activityboard/internal/board"
	"github.com/existflow/activityboard/internal/config"
	"github.com/existflow/activityboard/internal/logger"
	"github.com/existflow/activityboard/internal/tui"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
)

// cfg is loaded once per invocation before any command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "board",
	Short: "Activity board - terminal client for the to-do activity API",
	Long: `board shows the pending and finished activities stored on the remote
activity API and lets you add, finish, reopen, edit and delete them.

Run 'board' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A broken config file is reported, never replaced by defaults
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("%w (fix or remove the config file)", err)
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Logging flags stick for later runs
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Activity board started",
			logger.F("command", cmd.Name()),
			logger.F("backend", cfg.BackendURL))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		b := board.New(newClient(), board.WithReconcile(board.ParseReconcilePolicy(cfg.Reconcile)))

		logger.Info("Launching TUI")
		m := tui.NewModel(cmd.Context(), b, tui.Options{
			ConfirmEdit:   cfg.ConfirmEdit,
			ConfirmDelete: cfg.ConfirmDelete,
		})
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Activity board exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveFakeCmd)
}
