package core

import (
	"fmt"
	"time"
)

// Ratio is the share of a shared amount carried by each member.
type Ratio struct {
	Member1 float64
	Member2 float64
}

// MemberSplit is an amount apportioned between the two members.
type MemberSplit struct {
	Member1 float64
	Member2 float64
}

// Line is the monthly contribution of one active item.
type Line struct {
	ID      string
	Label   string
	Monthly float64
	Member1 float64
	Member2 float64
}

// Issue ties a configuration error to the item that produced it.
type Issue struct {
	ItemID string
	Err    error
}

func (i Issue) String() string {
	return i.ItemID + ": " + i.Err.Error()
}

// CategoryTotals is the monthly sum of the active items of one category.
type CategoryTotals struct {
	Total        float64
	Member1Total float64
	Member2Total float64
	Count        int
	Lines        []Line
	Issues       []Issue
}

// BudgetInputs are the monthly figures the balance is computed from.
type BudgetInputs struct {
	TotalIncome           float64
	TotalProvisions       float64
	TotalFixedExpenses    float64
	TotalVariableExpenses float64
}

// BudgetResult is the balance of a month. UtilizationRate is a percentage
// and is +Inf when there is spend but no income.
type BudgetResult struct {
	AvailableBudget  float64
	UtilizationRate  float64
	IsOverBudget     bool
	Member1Available float64
	Member2Available float64
	HasMemberSplit   bool
}

// Period identifies a reporting month.
type Period struct {
	Year  int
	Month int // 1-12
}

func NewPeriod(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) Validate() error {
	if p.Year < 1970 || p.Year > 9999 || p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Previous returns the month before p.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// Report is the complete budget picture for one month.
type Report struct {
	Period        Period
	Member1Name   string
	Member2Name   string
	Ratio         Ratio
	Provisions    CategoryTotals
	FixedExpenses CategoryTotals
	Inputs        BudgetInputs
	Result        BudgetResult
	Issues        []Issue
}

// Setup is a complete household configuration together with its bank
// lines, as loaded from a household file or seeded into storage.
type Setup struct {
	Household     Household
	Provisions    []Provision
	FixedExpenses []FixedExpense
	Transactions  []Transaction
}

// Validate checks every part of the setup and reports the first problem
// with the offending item named.
func (s Setup) Validate() error {
	if err := s.Household.Validate(); err != nil {
		return fmt.Errorf("household: %w", err)
	}
	seen := make(map[string]bool)
	for _, p := range s.Provisions {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("provision %q: %w", p.ID, err)
		}
		if seen["p:"+p.ID] {
			return fmt.Errorf("provision %q: duplicate id", p.ID)
		}
		seen["p:"+p.ID] = true
	}
	for _, e := range s.FixedExpenses {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("fixed expense %q: %w", e.ID, err)
		}
		if seen["e:"+e.ID] {
			return fmt.Errorf("fixed expense %q: duplicate id", e.ID)
		}
		seen["e:"+e.ID] = true
	}
	for i, tx := range s.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i+1, err)
		}
	}
	return nil
}
