package budget

import (
	"fmt"

	"foyer/internal/core"
)

// Policy is the canonical split policy. Provisions and fixed expenses use
// different labels for the same five policies.
type Policy string

const (
	PolicyKey     Policy = "key"
	PolicyEqual   Policy = "equal"
	PolicyMember1 Policy = "member1"
	PolicyMember2 Policy = "member2"
	PolicyManual  Policy = "manual"
)

// Shares are explicit member fractions, used by PolicyManual only.
type Shares struct {
	Member1 float64
	Member2 float64
}

// Apportioner is the strategy interface for splitting a monthly amount.
type Apportioner interface {
	Apportion(monthly float64, ratio core.Ratio, shares Shares) core.MemberSplit
}

// KeyApportioner splits along the household ratio.
type KeyApportioner struct{}

func (KeyApportioner) Apportion(monthly float64, ratio core.Ratio, _ Shares) core.MemberSplit {
	return core.MemberSplit{Member1: monthly * ratio.Member1, Member2: monthly * ratio.Member2}
}

// EqualApportioner splits in two halves.
type EqualApportioner struct{}

func (EqualApportioner) Apportion(monthly float64, _ core.Ratio, _ Shares) core.MemberSplit {
	return core.MemberSplit{Member1: monthly * 0.5, Member2: monthly * 0.5}
}

// Member1Apportioner charges everything to the first member.
type Member1Apportioner struct{}

func (Member1Apportioner) Apportion(monthly float64, _ core.Ratio, _ Shares) core.MemberSplit {
	return core.MemberSplit{Member1: monthly}
}

// Member2Apportioner charges everything to the second member.
type Member2Apportioner struct{}

func (Member2Apportioner) Apportion(monthly float64, _ core.Ratio, _ Shares) core.MemberSplit {
	return core.MemberSplit{Member2: monthly}
}

// ManualApportioner applies the item's own fractions. Their sum is the
// caller's responsibility.
type ManualApportioner struct{}

func (ManualApportioner) Apportion(monthly float64, _ core.Ratio, shares Shares) core.MemberSplit {
	return core.MemberSplit{Member1: monthly * shares.Member1, Member2: monthly * shares.Member2}
}

var apportioners = map[Policy]Apportioner{
	PolicyKey:     KeyApportioner{},
	PolicyEqual:   EqualApportioner{},
	PolicyMember1: Member1Apportioner{},
	PolicyMember2: Member2Apportioner{},
	PolicyManual:  ManualApportioner{},
}

var provisionPolicies = map[core.ProvisionSplitMode]Policy{
	core.ProvisionSplitKey:     PolicyKey,
	core.ProvisionSplitEqual:   PolicyEqual,
	core.ProvisionSplitMember1: PolicyMember1,
	core.ProvisionSplitMember2: PolicyMember2,
	core.ProvisionSplitCustom:  PolicyManual,
}

var expensePolicies = map[core.ExpenseSplitMode]Policy{
	core.ExpenseSplitKey:         PolicyKey,
	core.ExpenseSplitEqual:       PolicyEqual,
	core.ExpenseSplitMember1Only: PolicyMember1,
	core.ExpenseSplitMember2Only: PolicyMember2,
	core.ExpenseSplitManual:      PolicyManual,
}

// GetApportioner returns the strategy for a policy.
func GetApportioner(p Policy) (Apportioner, error) {
	a, ok := apportioners[p]
	if !ok {
		return nil, fmt.Errorf("unknown split policy: %s", p)
	}
	return a, nil
}

// ProvisionPolicy maps a provision split label to its policy.
func ProvisionPolicy(mode core.ProvisionSplitMode) (Policy, bool) {
	p, ok := provisionPolicies[mode]
	return p, ok
}

// ExpensePolicy maps a fixed-expense split label to its policy.
func ExpensePolicy(mode core.ExpenseSplitMode) (Policy, bool) {
	p, ok := expensePolicies[mode]
	return p, ok
}

// Split apportions monthly between the members under policy.
//
// An unknown policy still yields a 50/50 split so totals keep rendering,
// but the split comes back with a *core.ConfigurationError.
func Split(monthly float64, policy Policy, ratio core.Ratio, shares Shares) (core.MemberSplit, error) {
	a, err := GetApportioner(policy)
	if err != nil {
		return fallbackSplit(monthly, string(policy))
	}
	return a.Apportion(monthly, ratio, shares), nil
}

// SplitProvision splits a provision's monthly amount. Custom shares are
// stored as percentages on the provision.
func SplitProvision(monthly float64, p core.Provision, ratio core.Ratio) (core.MemberSplit, error) {
	policy, ok := ProvisionPolicy(p.SplitMode)
	if !ok {
		return fallbackSplit(monthly, string(p.SplitMode))
	}
	return Split(monthly, policy, ratio, Shares{Member1: p.SplitMember1 / 100, Member2: p.SplitMember2 / 100})
}

// SplitFixedExpense splits a bill's monthly amount. Manual shares are
// stored as fractions on the expense.
func SplitFixedExpense(monthly float64, e core.FixedExpense, ratio core.Ratio) (core.MemberSplit, error) {
	policy, ok := ExpensePolicy(e.SplitMode)
	if !ok {
		return fallbackSplit(monthly, string(e.SplitMode))
	}
	return Split(monthly, policy, ratio, Shares{Member1: e.SplitRatio1, Member2: e.SplitRatio2})
}

func fallbackSplit(monthly float64, mode string) (core.MemberSplit, error) {
	return EqualApportioner{}.Apportion(monthly, equalRatio, Shares{}), &core.ConfigurationError{
		Field: "split_mode",
		Value: mode,
		Err:   core.ErrUnknownSplitMode,
	}
}
