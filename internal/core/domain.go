package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	SplitByRevenue HouseholdSplitMode = "revenue"
	SplitManual    HouseholdSplitMode = "manual"
)

const (
	BaseTotal   BaseCalculation = "total"
	BaseMember1 BaseCalculation = "member1"
	BaseMember2 BaseCalculation = "member2"
	BaseFixed   BaseCalculation = "fixed"
)

const (
	ProvisionSplitKey     ProvisionSplitMode = "key"
	ProvisionSplitEqual   ProvisionSplitMode = "50/50"
	ProvisionSplitMember1 ProvisionSplitMode = "100/0"
	ProvisionSplitMember2 ProvisionSplitMode = "0/100"
	ProvisionSplitCustom  ProvisionSplitMode = "custom"
)

const (
	ExpenseSplitKey         ExpenseSplitMode = "key"
	ExpenseSplitEqual       ExpenseSplitMode = "50/50"
	ExpenseSplitMember1Only ExpenseSplitMode = "member1Only"
	ExpenseSplitMember2Only ExpenseSplitMode = "member2Only"
	ExpenseSplitManual      ExpenseSplitMode = "manual"
)

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

type (
	HouseholdSplitMode string
	BaseCalculation    string
	ProvisionSplitMode string
	ExpenseSplitMode   string
	Frequency          string

	// Household holds the settings shared by both members.
	Household struct {
		Member1Name  string
		Member2Name  string
		Revenue1     float64
		Revenue2     float64
		SplitMode    HouseholdSplitMode
		ManualSplit1 float64 // fraction, used only when SplitMode is manual
		ManualSplit2 float64
	}

	// Provision is a savings goal funded every month.
	Provision struct {
		ID              string
		Name            string
		IsActive        bool
		BaseCalculation BaseCalculation
		Percentage      float64 // annual percent of the base
		FixedAmount     float64 // monthly amount when BaseCalculation is fixed
		SplitMode       ProvisionSplitMode
		SplitMember1    float64 // percent, custom only
		SplitMember2    float64
	}

	// FixedExpense is a recurring bill expressed per its billing frequency.
	FixedExpense struct {
		ID          string
		Label       string
		IsActive    bool
		Amount      float64
		Frequency   Frequency
		SplitMode   ExpenseSplitMode
		SplitRatio1 float64 // fraction, manual only
		SplitRatio2 float64
	}

	// Transaction is an imported bank line. Negative amounts are spend.
	Transaction struct {
		ID          int64
		BookedOn    time.Time
		Description string
		Amount      float64
		Category    string
	}
)

var (
	ErrEmptyMemberName   = errors.New("empty member name")
	ErrEmptyID           = errors.New("empty id")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPercentage = errors.New("invalid percentage")
	ErrInvalidShares     = errors.New("shares must sum to 1")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrNoHousehold       = errors.New("household not configured")

	ErrUnknownSplitMode       = errors.New("unknown split mode")
	ErrUnknownFrequency       = errors.New("unknown frequency")
	ErrUnknownBaseCalculation = errors.New("unknown base calculation")
)

// ConfigurationError marks a value computed from an unrecognised enum. The
// value that accompanies it is a fallback, not a trusted figure.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// shareTolerance absorbs float noise when checking that two shares sum to one.
const shareTolerance = 1e-6

func sharesSumTo(a, b, want float64) bool {
	d := a + b - want
	return d > -shareTolerance && d < shareTolerance
}

func (h Household) Validate() error {
	if strings.TrimSpace(h.Member1Name) == "" || strings.TrimSpace(h.Member2Name) == "" {
		return ErrEmptyMemberName
	}
	if !ValidateAmount(h.Revenue1) || !ValidateAmount(h.Revenue2) || h.Revenue1 < 0 || h.Revenue2 < 0 {
		return ErrInvalidAmount
	}
	switch h.SplitMode {
	case SplitByRevenue:
	case SplitManual:
		if !sharesSumTo(h.ManualSplit1, h.ManualSplit2, 1) {
			return ErrInvalidShares
		}
	default:
		return &ConfigurationError{Field: "split_mode", Value: string(h.SplitMode), Err: ErrUnknownSplitMode}
	}
	return nil
}

func (p Provision) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	switch p.BaseCalculation {
	case BaseFixed:
		if !ValidateAmount(p.FixedAmount) || p.FixedAmount < 0 {
			return ErrInvalidAmount
		}
	case BaseTotal, BaseMember1, BaseMember2:
		if !ValidateAmount(p.Percentage) || p.Percentage < 0 {
			return ErrInvalidPercentage
		}
	default:
		return &ConfigurationError{Field: "base_calculation", Value: string(p.BaseCalculation), Err: ErrUnknownBaseCalculation}
	}
	switch p.SplitMode {
	case ProvisionSplitKey, ProvisionSplitEqual, ProvisionSplitMember1, ProvisionSplitMember2:
	case ProvisionSplitCustom:
		if !sharesSumTo(p.SplitMember1, p.SplitMember2, 100) {
			return ErrInvalidShares
		}
	default:
		return &ConfigurationError{Field: "split_mode", Value: string(p.SplitMode), Err: ErrUnknownSplitMode}
	}
	return nil
}

func (e FixedExpense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Label) == "" {
		return ErrEmptyName
	}
	if !ValidateAmount(e.Amount) || e.Amount < 0 {
		return ErrInvalidAmount
	}
	switch e.Frequency {
	case Monthly, Quarterly, Annual:
	default:
		return &ConfigurationError{Field: "frequency", Value: string(e.Frequency), Err: ErrUnknownFrequency}
	}
	switch e.SplitMode {
	case ExpenseSplitKey, ExpenseSplitEqual, ExpenseSplitMember1Only, ExpenseSplitMember2Only:
	case ExpenseSplitManual:
		if !sharesSumTo(e.SplitRatio1, e.SplitRatio2, 1) {
			return ErrInvalidShares
		}
	default:
		return &ConfigurationError{Field: "split_mode", Value: string(e.SplitMode), Err: ErrUnknownSplitMode}
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.BookedOn.IsZero() {
		return errors.New("booking date cannot be zero")
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyName
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !ValidateAmount(t.Amount) {
		return ErrInvalidAmount
	}
	return nil
}

// IsSpend reports whether the transaction is an outflow.
func (t Transaction) IsSpend() bool {
	return t.Amount < 0
}
