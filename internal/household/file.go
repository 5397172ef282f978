// Package household reads household files: the YAML description of a
// household, its provisions, its fixed expenses and optionally its bank
// lines.
package household

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"foyer/internal/core"
)

const dateLayout = "2006-01-02"

// File is the on-disk layout of a household file.
type File struct {
	Household     HouseholdEntry `yaml:"household"`
	Provisions    []Provision    `yaml:"provisions"`
	FixedExpenses []FixedExpense `yaml:"fixed_expenses"`
	Transactions  []Transaction  `yaml:"transactions"`
}

type HouseholdEntry struct {
	Member1     string   `yaml:"member1"`
	Member2     string   `yaml:"member2"`
	Revenue1    Amount   `yaml:"revenue1"`
	Revenue2    Amount   `yaml:"revenue2"`
	SplitMode   string   `yaml:"split_mode"`
	ManualSplit []Amount `yaml:"manual_split"`
}

type Provision struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Active      *bool    `yaml:"active"`
	Base        string   `yaml:"base"`
	Percentage  Amount   `yaml:"percentage"`
	FixedAmount Amount   `yaml:"fixed_amount"`
	Split       string   `yaml:"split"`
	Shares      []Amount `yaml:"shares"`
}

type FixedExpense struct {
	ID        string   `yaml:"id"`
	Label     string   `yaml:"label"`
	Active    *bool    `yaml:"active"`
	Amount    Amount   `yaml:"amount"`
	Frequency string   `yaml:"frequency"`
	Split     string   `yaml:"split"`
	Shares    []Amount `yaml:"shares"`
}

type Transaction struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Amount      Amount `yaml:"amount"`
	Category    string `yaml:"category"`
}

// Amount accepts plain YAML numbers as well as formatted strings such as
// "1 234,56 €".
type Amount float64

func (a *Amount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", n.Line)
	}
	v := core.ParseAmount(n.Value)
	if !core.ValidateAmount(v) {
		return fmt.Errorf("line %d: invalid amount %q", n.Line, n.Value)
	}
	*a = Amount(v)
	return nil
}

// Load decodes a household file and validates the result.
func Load(r io.Reader) (core.Setup, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Setup{}, errors.New("household file is empty")
		}
		return core.Setup{}, fmt.Errorf("decode household file: %w", err)
	}

	s, err := f.Setup()
	if err != nil {
		return core.Setup{}, err
	}
	if err := s.Validate(); err != nil {
		return core.Setup{}, err
	}
	return s, nil
}

// LoadFile reads and validates the household file at path.
func LoadFile(path string) (core.Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Setup{}, fmt.Errorf("read household file: %w", err)
	}
	s, err := Load(bytes.NewReader(data))
	if err != nil {
		return core.Setup{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Setup converts the file to domain values. Omitted active flags default
// to true and an omitted household split mode to revenue.
func (f File) Setup() (core.Setup, error) {
	h := core.Household{
		Member1Name: f.Household.Member1,
		Member2Name: f.Household.Member2,
		Revenue1:    float64(f.Household.Revenue1),
		Revenue2:    float64(f.Household.Revenue2),
		SplitMode:   core.HouseholdSplitMode(f.Household.SplitMode),
	}
	if h.SplitMode == "" {
		h.SplitMode = core.SplitByRevenue
	}
	if len(f.Household.ManualSplit) > 0 {
		m1, m2, err := pair(f.Household.ManualSplit, "household manual_split")
		if err != nil {
			return core.Setup{}, err
		}
		h.ManualSplit1, h.ManualSplit2 = m1, m2
	}

	s := core.Setup{Household: h}
	for _, p := range f.Provisions {
		out := core.Provision{
			ID:              p.ID,
			Name:            p.Name,
			IsActive:        p.Active == nil || *p.Active,
			BaseCalculation: core.BaseCalculation(p.Base),
			Percentage:      float64(p.Percentage),
			FixedAmount:     float64(p.FixedAmount),
			SplitMode:       core.ProvisionSplitMode(p.Split),
		}
		if len(p.Shares) > 0 {
			m1, m2, err := pair(p.Shares, "provision "+p.ID+" shares")
			if err != nil {
				return core.Setup{}, err
			}
			out.SplitMember1, out.SplitMember2 = m1, m2
		}
		s.Provisions = append(s.Provisions, out)
	}
	for _, e := range f.FixedExpenses {
		out := core.FixedExpense{
			ID:        e.ID,
			Label:     e.Label,
			IsActive:  e.Active == nil || *e.Active,
			Amount:    float64(e.Amount),
			Frequency: core.Frequency(e.Frequency),
			SplitMode: core.ExpenseSplitMode(e.Split),
		}
		if len(e.Shares) > 0 {
			m1, m2, err := pair(e.Shares, "fixed expense "+e.ID+" shares")
			if err != nil {
				return core.Setup{}, err
			}
			out.SplitRatio1, out.SplitRatio2 = m1, m2
		}
		s.FixedExpenses = append(s.FixedExpenses, out)
	}
	for i, t := range f.Transactions {
		booked, err := time.Parse(dateLayout, t.Date)
		if err != nil {
			return core.Setup{}, fmt.Errorf("transaction %d: invalid date %q", i+1, t.Date)
		}
		s.Transactions = append(s.Transactions, core.Transaction{
			BookedOn:    booked,
			Description: t.Description,
			Amount:      float64(t.Amount),
			Category:    t.Category,
		})
	}
	return s, nil
}

func pair(v []Amount, what string) (float64, float64, error) {
	if len(v) != 2 {
		return 0, 0, fmt.Errorf("%s: want two values, got %d", what, len(v))
	}
	return float64(v[0]), float64(v[1]), nil
}
