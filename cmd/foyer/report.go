package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"foyer/internal/cli"
	"foyer/internal/core"
	apphttp "foyer/internal/http"
	"foyer/internal/services"
)

var (
	reportYear  int
	reportMonth int
	reportJSON  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the budget report of a month",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportYear, "year", 0, "report year (default current)")
	reportCmd.Flags().IntVar(&reportMonth, "month", 0, "report month 1-12 (default current)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(reportCmd)
}

// periodFlags resolves --year and --month the way the HTTP API resolves
// its query parameters.
func periodFlags(cmd *cobra.Command, year, month int, now time.Time) (core.Period, error) {
	q := url.Values{}
	if cmd.Flags().Changed("year") {
		q.Set("year", strconv.Itoa(year))
	}
	if cmd.Flags().Changed("month") {
		q.Set("month", strconv.Itoa(month))
	}
	return apphttp.ParsePeriod(q, now)
}

func runReport(cmd *cobra.Command, _ []string) error {
	period, err := periodFlags(cmd, reportYear, reportMonth, time.Now())
	if err != nil {
		return err
	}

	logger := newLogger()
	res, err := openBackend(cmd.Context(), loadConfig(), logger)
	if err != nil {
		return err
	}
	defer res.Close()

	svc := services.NewBudgetService(res.Backend, services.BudgetOptions{Logger: logger})
	report, err := svc.MonthlyReport(cmd.Context(), period)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(apphttp.NewReportResponse(report))
	}
	writeReport(out, report)
	return nil
}

func writeReport(w io.Writer, r core.Report) {
	fmt.Fprintln(w, cli.RenderTitle("Budget du foyer "+r.Period.String()))
	fmt.Fprintf(w, "  Clé de répartition : %s %s / %s %s\n\n",
		r.Member1Name, core.FormatPercent(r.Ratio.Member1*100),
		r.Member2Name, core.FormatPercent(r.Ratio.Member2*100))

	fmt.Fprintln(w, cli.RenderTable(categoryTable("Provisions", r, r.Provisions)))
	fmt.Fprintln(w, cli.RenderTable(categoryTable("Charges fixes", r, r.FixedExpenses)))

	rows := [][]string{
		{"Revenus", core.FormatAmount(r.Inputs.TotalIncome)},
		{"Provisions", core.FormatAmount(r.Inputs.TotalProvisions)},
		{"Charges fixes", core.FormatAmount(r.Inputs.TotalFixedExpenses)},
		{"Dépenses variables", core.FormatAmount(r.Inputs.TotalVariableExpenses)},
		cli.Separator,
		{"Disponible", core.FormatAmount(r.Result.AvailableBudget)},
		{"Utilisation", core.FormatPercent(r.Result.UtilizationRate)},
	}
	if r.Result.HasMemberSplit {
		rows = append(rows,
			cli.Separator,
			[]string{"Disponible " + r.Member1Name, core.FormatAmount(r.Result.Member1Available)},
			[]string{"Disponible " + r.Member2Name, core.FormatAmount(r.Result.Member2Available)},
		)
	}
	fmt.Fprintln(w, cli.RenderTable(cli.Table{Title: "Bilan", Rows: rows}))

	if r.Result.IsOverBudget {
		fmt.Fprintln(w, "  "+cli.RenderAlert("Budget dépassé"))
	}
	for _, issue := range r.Issues {
		fmt.Fprintln(w, "  "+cli.RenderWarning("Anomalie "+issue.String()))
	}
}

func categoryTable(title string, r core.Report, c core.CategoryTotals) cli.Table {
	t := cli.Table{
		Title:   title,
		Headers: []string{"Poste", "Mensuel", r.Member1Name, r.Member2Name},
	}
	for _, l := range c.Lines {
		t.Rows = append(t.Rows, []string{
			l.Label,
			core.FormatAmount(l.Monthly),
			core.FormatAmount(l.Member1),
			core.FormatAmount(l.Member2),
		})
	}
	t.Rows = append(t.Rows, cli.Separator, []string{
		"Total",
		core.FormatAmount(c.Total),
		core.FormatAmount(c.Member1Total),
		core.FormatAmount(c.Member2Total),
	})
	return t
}
