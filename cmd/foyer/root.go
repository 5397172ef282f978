package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"foyer/internal/backend"
	"foyer/internal/cli"
	"foyer/internal/config"
	"foyer/internal/log"
)

var (
	flagBackend string
	flagDB      string
	flagFile    string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "foyer",
	Short: "Household budget allocation and monthly variance",
	Long: `foyer splits a couple's shared provisions and fixed bills between the two
members and reports what is left of the month's income after spending.

Settings not given as flags come from the environment (and a .env file),
the same variables the server and worker read.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.LoadEnvFile()
		log.SetDefault(newLogger())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "",
		"data backend: "+strings.Join(backend.GetBackendTypeStrings(), ", ")+" (default from DATA_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "sqlite database path (default from SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "household YAML file (default from HOUSEHOLD_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log to stderr at debug level")
}

// newLogger logs to stderr so stdout stays clean for --json output.
func newLogger() *log.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{
		Level:     level,
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig() *config.Config {
	cfg := config.Load()
	if flagBackend != "" {
		cfg.DataBackend = flagBackend
	}
	if flagDB != "" {
		cfg.SQLiteDBPath = flagDB
		if flagBackend == "" {
			cfg.DataBackend = string(backend.SQLiteBackend)
		}
	}
	if flagFile != "" {
		cfg.HouseholdFile = flagFile
	}
	return cfg
}

func openBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bc.Type, err)
	}
	return res, nil
}
