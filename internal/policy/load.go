package policy

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jask/smartsavernet/internal/state"
)

// ErrConfigurationMissing marks a policy file that is absent or unusable. Load still returns the
// built-in defaults alongside it; callers surface the error as a warning.
var ErrConfigurationMissing = errors.New("policy configuration missing")

// Load reads the YAML policy at path on top of the defaults.
func Load(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), fmt.Errorf("%w: no policy path configured, using defaults", ErrConfigurationMissing)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("%w: read %s: %v", ErrConfigurationMissing, path, err)
	}
	p, err := Parse(raw)
	if err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrConfigurationMissing, path, err)
	}
	return p, nil
}

// Parse decodes policy YAML on top of the defaults and validates the result.
func Parse(raw []byte) (*Policy, error) {
	p := Default()
	// Maps are replaced rather than merged so a file can drop a default limit.
	p.Thresholds, p.CategoryLimits = nil, nil
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if p.Thresholds == nil {
		p.Thresholds = map[string]float64{}
	}
	if p.CategoryLimits == nil {
		p.CategoryLimits = Default().CategoryLimits
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) validate() error {
	var problems []string
	r := p.BudgetRule
	if r.Essentials < 0 || r.Wants < 0 || r.Savings < 0 {
		problems = append(problems, "budget_rule ratios must be non-negative")
	}
	if sum := r.Essentials + r.Wants + r.Savings; math.Abs(sum-1) > 0.001 {
		problems = append(problems, fmt.Sprintf("budget_rule ratios sum to %.3f, want 1", sum))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"savings.min_savings_rate", p.Savings.MinSavingsRate},
		{"savings.max_auto_transfer_rate", p.Savings.MaxAutoTransferRate},
		{"savings.autosave_fraction", p.Savings.AutosaveFraction},
		{"debt.extra_share_of_savings", p.Debt.ExtraShareOfSavings},
		{"limit_grace", p.LimitGrace},
	} {
		if f.v < 0 || f.v > 1 {
			problems = append(problems, fmt.Sprintf("%s must be within [0,1]", f.name))
		}
	}
	if p.Savings.MicroSpendMinCount < 0 || p.Savings.MicroSpendThreshold < 0 {
		problems = append(problems, "savings micro-spend settings must be non-negative")
	}
	for cat, v := range p.Thresholds {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("threshold for %q is negative", cat))
		}
	}
	for cat, v := range p.CategoryLimits {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("category limit for %q is negative", cat))
		}
	}
	switch p.Debt.DefaultStrategy {
	case "":
		p.Debt.DefaultStrategy = state.StrategyAvalanche
	case state.StrategyAvalanche, state.StrategySnowball:
	default:
		problems = append(problems, fmt.Sprintf("unknown debt.default_strategy %q", p.Debt.DefaultStrategy))
	}
	if p.Debt.MaxMonths <= 0 {
		p.Debt.MaxMonths = Default().Debt.MaxMonths
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
