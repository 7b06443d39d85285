// Package cli provides the command-line interface for the trade journal.
package cli

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradejournal/internal/config"
	"tradejournal/internal/journal"
	"tradejournal/internal/logging"
	"tradejournal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-31"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Journal *journal.Service
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journal commands will be unavailable")
	} else {
		app.Store = dataStore
		app.Journal = journal.NewService(dataStore, logger)
		logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "tradejournal",
		Short: "Trade Journal - personal trading journal CLI",
		Long: `Trade Journal is a personal trading journal for the command line.

Record trades with automatic risk and R-multiple metrics, import broker
statements, track balance adjustments, and analyze performance by system,
session, timeframe, and day of week.

Use 'tradejournal help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradejournal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addImportExportCommands(rootCmd, app)
	addStatsCommands(rootCmd, app)
	addBalanceCommands(rootCmd, app)
	addSettingsCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

var errStoreUnavailable = errors.New("data store unavailable, check database path in config")

// requireStore guards commands that need the data store.
func requireStore(app *App) error {
	if app.Store == nil || app.Journal == nil {
		return errStoreUnavailable
	}
	return nil
}
