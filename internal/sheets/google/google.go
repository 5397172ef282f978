package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"foyer/internal/core"
	ports "foyer/internal/sheets"
)

// ReportHeader is written on the first row of an empty report sheet.
var ReportHeader = []any{
	"Mois", "Membre 1", "Membre 2", "Revenus", "Provisions", "Charges fixes",
	"Dépenses variables", "Disponible", "Utilisation", "Dépassement",
	"Disponible membre 1", "Disponible membre 2", "Anomalies", "Généré le",
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without year (e.g. "Bilans"); the report year is prefixed.
	sheetBase string
	now       func() time.Time
}

var _ ports.ReportWriter = (*Client)(nil)

// Options configures a Client. An OAuth token file, with its client,
// takes precedence over service account credentials, which come from
// CredentialsJSON, then CredentialsFile, then
// GOOGLE_APPLICATION_CREDENTIALS. ClientOptions replace credential lookup
// entirely when set.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string
	ClientOptions   []goption.ClientOption
}

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetBase := strings.TrimSpace(opts.SheetName)
	if sheetBase == "" {
		sheetBase = "Bilans"
	}

	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 && opts.OAuthTokenFile != "" {
		ts, err := oauthTokenSource(ctx, opts)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{goption.WithTokenSource(ts)}
	}
	if len(clientOpts) == 0 {
		creds, err := loadCredentials(ctx, opts)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		now:           time.Now,
	}, nil
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	if j := strings.TrimSpace(opts.CredentialsJSON); j != "" {
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(j), nil
	}
	file := strings.TrimSpace(opts.CredentialsFile)
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	slog.DebugContext(ctx, "Read service account credentials", "path", file, "size", len(data))
	return data, nil
}

// WriteReport appends one row summarising r to the sheet of the report's
// year, creating the sheet and its header when needed. It returns the
// updated A1 range.
func (c *Client) WriteReport(ctx context.Context, r core.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := r.Period.Validate(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	sheet := yearPrefixedName(c.sheetBase, r.Period.Year)
	empty, err := c.sheetIsEmpty(ctx, sheet)
	if err != nil {
		return "", err
	}

	rows := [][]any{ReportRow(r, c.now())}
	if empty {
		rows = append([][]any{ReportHeader}, rows...)
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, sheet+"!A:N", &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append report to %s: %w", sheet, err)
	}

	ref := sheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Report written to sheet", "period", r.Period.String(), "ref", ref)
	return ref, nil
}

// sheetIsEmpty reports whether the first row of sheet is blank. A missing
// sheet is created and reported as empty.
func (c *Client) sheetIsEmpty(ctx context.Context, sheet string) (bool, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A1:A1").Context(ctx).Do()
	if err == nil {
		return len(resp.Values) == 0, nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false, fmt.Errorf("read %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Creating report sheet", "sheet", sheet)
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return true, nil
}

// ReportRow lays a report out as one sheet row. Amounts are rounded to
// cents; the utilization is written formatted so an unbounded rate stays
// readable.
func ReportRow(r core.Report, generatedAt time.Time) []any {
	over := "non"
	if r.Result.IsOverBudget {
		over = "oui"
	}
	row := []any{
		r.Period.String(),
		r.Member1Name,
		r.Member2Name,
		cents(r.Inputs.TotalIncome),
		cents(r.Inputs.TotalProvisions),
		cents(r.Inputs.TotalFixedExpenses),
		cents(r.Inputs.TotalVariableExpenses),
		cents(r.Result.AvailableBudget),
		core.FormatPercent(r.Result.UtilizationRate),
		over,
	}
	if r.Result.HasMemberSplit {
		row = append(row, cents(r.Result.Member1Available), cents(r.Result.Member2Available))
	} else {
		row = append(row, "", "")
	}
	return append(row, len(r.Issues), generatedAt.Format(time.DateTime))
}

func cents(v float64) float64 {
	if !core.ValidateAmount(v) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
