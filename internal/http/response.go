package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"foyer/internal/amqp"
	"foyer/internal/core"
	"foyer/internal/log"
	"foyer/internal/services"
)

// Amount is a euro value together with its display form.
type Amount struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

func amount(v float64) Amount {
	if !core.ValidateAmount(v) {
		v = 0
	}
	return Amount{Value: v, Formatted: core.FormatAmount(v)}
}

type LineResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Monthly Amount `json:"monthly"`
	Member1 Amount `json:"member1"`
	Member2 Amount `json:"member2"`
}

type IssueResponse struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

type CategoryResponse struct {
	Total        Amount          `json:"total"`
	Member1Total Amount          `json:"member1_total"`
	Member2Total Amount          `json:"member2_total"`
	Count        int             `json:"count"`
	Lines        []LineResponse  `json:"lines"`
	Issues       []IssueResponse `json:"issues"`
}

type RatioResponse struct {
	Member1Name string  `json:"member1_name"`
	Member2Name string  `json:"member2_name"`
	SplitMode   string  `json:"split_mode"`
	Member1     float64 `json:"member1"`
	Member2     float64 `json:"member2"`
}

type MemberAvailable struct {
	Member1 Amount `json:"member1"`
	Member2 Amount `json:"member2"`
}

// ReportResponse is the JSON form of a monthly report. Utilization is null
// when it is unbounded, i.e. spend without income.
type ReportResponse struct {
	Period               string           `json:"period"`
	Year                 int              `json:"year"`
	Month                int              `json:"month"`
	Ratio                RatioResponse    `json:"ratio"`
	Provisions           CategoryResponse `json:"provisions"`
	FixedExpenses        CategoryResponse `json:"fixed_expenses"`
	Income               Amount           `json:"income"`
	VariableExpenses     Amount           `json:"variable_expenses"`
	Available            Amount           `json:"available"`
	Utilization          *float64         `json:"utilization"`
	UtilizationUnbounded bool             `json:"utilization_unbounded"`
	UtilizationFormatted string           `json:"utilization_formatted"`
	OverBudget           bool             `json:"over_budget"`
	MemberAvailable      *MemberAvailable `json:"member_available,omitempty"`
	Issues               []IssueResponse  `json:"issues"`
}

type ExportResponse struct {
	Period  string `json:"period"`
	Version int64  `json:"version"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newCategoryResponse(c core.CategoryTotals) CategoryResponse {
	out := CategoryResponse{
		Total:        amount(c.Total),
		Member1Total: amount(c.Member1Total),
		Member2Total: amount(c.Member2Total),
		Count:        c.Count,
		Lines:        make([]LineResponse, 0, len(c.Lines)),
		Issues:       newIssues(c.Issues),
	}
	for _, l := range c.Lines {
		out.Lines = append(out.Lines, LineResponse{
			ID:      l.ID,
			Label:   l.Label,
			Monthly: amount(l.Monthly),
			Member1: amount(l.Member1),
			Member2: amount(l.Member2),
		})
	}
	return out
}

func newIssues(issues []core.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for _, i := range issues {
		out = append(out, IssueResponse{ItemID: i.ItemID, Error: i.Err.Error()})
	}
	return out
}

func newRatioResponse(h core.Household, r core.Ratio) RatioResponse {
	return RatioResponse{
		Member1Name: h.Member1Name,
		Member2Name: h.Member2Name,
		SplitMode:   string(h.SplitMode),
		Member1:     r.Member1,
		Member2:     r.Member2,
	}
}

// NewReportResponse builds the JSON form of a report.
func NewReportResponse(r core.Report) ReportResponse {
	out := ReportResponse{
		Period: r.Period.String(),
		Year:   r.Period.Year,
		Month:  r.Period.Month,
		Ratio: RatioResponse{
			Member1Name: r.Member1Name,
			Member2Name: r.Member2Name,
			Member1:     r.Ratio.Member1,
			Member2:     r.Ratio.Member2,
		},
		Provisions:           newCategoryResponse(r.Provisions),
		FixedExpenses:        newCategoryResponse(r.FixedExpenses),
		Income:               amount(r.Inputs.TotalIncome),
		VariableExpenses:     amount(r.Inputs.TotalVariableExpenses),
		Available:            amount(r.Result.AvailableBudget),
		UtilizationFormatted: core.FormatPercent(r.Result.UtilizationRate),
		OverBudget:           r.Result.IsOverBudget,
		Issues:               newIssues(r.Issues),
	}

	rate := r.Result.UtilizationRate
	switch {
	case math.IsInf(rate, 1):
		out.UtilizationUnbounded = true
	case core.ValidateAmount(rate):
		out.Utilization = &rate
	}

	if r.Result.HasMemberSplit {
		out.MemberAvailable = &MemberAvailable{
			Member1: amount(r.Result.Member1Available),
			Member2: amount(r.Result.Member2Available),
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoHousehold):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExportDisabled), errors.Is(err, amqp.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and answers with a JSON error.
// Internal details are not exposed for 5xx responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		op := log.OpRead
		if r.Method == http.MethodPost {
			op = log.OpExport
		}
		fields := log.NewFields().WithRequestID(w.Header().Get("X-Request-ID"))
		fields[log.FieldPath] = r.URL.Path
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, fields)
		if status == http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
	}
	writeJSON(w, status, ErrorResponse{Error: msg, RequestID: w.Header().Get("X-Request-ID")})
}
