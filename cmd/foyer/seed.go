package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foyer/internal/household"
	"foyer/internal/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed <household.yaml>",
	Short: "Replace the sqlite configuration with a household file",
	Long: `seed validates a household file and writes it to the sqlite database,
replacing the stored household, provisions and fixed expenses. Bank lines
in the file are appended. Export versions are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

var validateCmd = &cobra.Command{
	Use:   "validate <household.yaml>",
	Short: "Check a household file without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setup, err := household.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d provisions, %d fixed expenses, %d transactions)\n",
			args[0], len(setup.Provisions), len(setup.FixedExpenses), len(setup.Transactions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(validateCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	setup, err := household.LoadFile(args[0])
	if err != nil {
		return err
	}

	dbPath := loadConfig().SQLiteDBPath
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Seed(cmd.Context(), setup); err != nil {
		return err
	}
	newLogger().Debug("Seeded database", "db_path", dbPath, "file", args[0])

	version, dirty, err := storage.SchemaVersion(dbPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded %s from %s: %d provisions, %d fixed expenses, %d transactions\n",
		dbPath, args[0], len(setup.Provisions), len(setup.FixedExpenses), len(setup.Transactions))
	fmt.Fprintf(out, "Schema version %d", version)
	if dirty {
		fmt.Fprint(out, " (dirty)")
	}
	fmt.Fprintln(out)
	return nil
}
