package state

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError reports a malformed UserState. A pass never starts on one.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid user state: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks the invariants agents rely on.
func (s UserState) Validate() error {
	v := &ValidationError{}

	if bad(s.Income) || s.Income < 0 {
		v.add("income must be a non-negative number, got %v", s.Income)
	}
	for _, cat := range s.Categories() {
		amt := s.Expenses[cat]
		if strings.TrimSpace(cat) == "" {
			v.add("expense category name is empty")
		}
		if bad(amt) || amt < 0 {
			v.add("expense %q must be non-negative, got %v", cat, amt)
		}
	}
	for cat, n := range s.SpendCounts {
		if n < 0 {
			v.add("spend count for %q is negative", cat)
		}
	}
	if bad(s.SavingsRate) || s.SavingsRate < 0 || s.SavingsRate > 1 {
		v.add("savings rate must be within [0,1], got %v", s.SavingsRate)
	}
	for i, g := range s.Goals {
		if strings.TrimSpace(g.Name) == "" {
			v.add("goal %d has no name", i)
		}
		if bad(g.TargetAmount) || g.TargetAmount < 0 {
			v.add("goal %q target must be non-negative", g.Name)
		}
		if bad(g.SavedAmount) || g.SavedAmount < 0 {
			v.add("goal %q saved amount must be non-negative", g.Name)
		}
		if g.SavedAmount > g.TargetAmount {
			v.add("goal %q saved amount %v exceeds target %v", g.Name, g.SavedAmount, g.TargetAmount)
		}
		if g.Priority < 0 {
			v.add("goal %q priority must be non-negative", g.Name)
		}
	}
	for i, d := range s.Debts {
		if strings.TrimSpace(d.Name) == "" {
			v.add("debt %d has no name", i)
		}
		if bad(d.Balance) || d.Balance < 0 {
			v.add("debt %q balance must be non-negative", d.Name)
		}
		if bad(d.InterestRate) || d.InterestRate < 0 {
			v.add("debt %q interest rate must be non-negative", d.Name)
		}
		if bad(d.MinPayment) || d.MinPayment < 0 {
			v.add("debt %q minimum payment must be non-negative", d.Name)
		}
	}
	switch s.DebtStrategy {
	case "", StrategyAvalanche, StrategySnowball:
	default:
		v.add("unknown debt strategy %q", s.DebtStrategy)
	}
	if bad(s.ExtraDebtPayment) || s.ExtraDebtPayment < 0 {
		v.add("extra debt payment must be non-negative")
	}

	if len(v.Problems) > 0 {
		return v
	}
	return nil
}

// ParseStrategy accepts user input for the debt strategy.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case StrategyAvalanche:
		return StrategyAvalanche, nil
	case StrategySnowball:
		return StrategySnowball, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown debt strategy %q", raw)
	}
}

func bad(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }
