package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"foyer/internal/amqp"
	"foyer/internal/services"
)

var (
	exportYear  int
	exportMonth int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Queue the export of a month's report to the spreadsheet",
	Long: `export bumps the month's export version and publishes a request on the
AMQP queue read by foyer-worker. Use the sqlite backend so the worker sees
the same version.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "report year (default current)")
	exportCmd.Flags().IntVar(&exportMonth, "month", 0, "report month 1-12 (default current)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	period, err := periodFlags(cmd, exportYear, exportMonth, time.Now())
	if err != nil {
		return err
	}

	cfg := loadConfig()
	if cfg.AMQPURL == "" {
		return services.ErrExportDisabled
	}
	logger := newLogger()

	res, err := openBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer res.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	svc := services.NewBudgetService(res.Backend, services.BudgetOptions{
		Publisher: client,
		Versions:  res.Backend,
		Logger:    logger,
	})
	version, err := svc.RequestExport(cmd.Context(), period)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued export of %s (version %d)\n", period, version)
	return nil
}
