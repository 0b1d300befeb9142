// Package policy holds the read-only rules the agents consult: budget ratios, category
// taxonomy, overspend thresholds, savings and debt knobs, guardrails and message templates.
//
// A Policy is loaded once at startup and never mutated afterwards; agents only read it.
package policy

import (
	"text/template"

	"github.com/jask/smartsavernet/internal/calc"
	"github.com/jask/smartsavernet/internal/state"
)

// Policy is the parsed policy file.
type Policy struct {
	Version             int                 `yaml:"version"`
	BudgetRule          calc.BudgetRule     `yaml:"budget_rule"`
	EssentialCategories []string            `yaml:"essential_categories"`
	Taxonomy            []string            `yaml:"taxonomy"`
	Thresholds          map[string]float64  `yaml:"thresholds"`
	CategoryLimits      map[string]float64  `yaml:"category_limits"`
	LimitGrace          float64             `yaml:"limit_grace"`
	Merchants           map[string][]string `yaml:"merchants"`
	Savings             SavingsPolicy       `yaml:"savings"`
	Debt                DebtPolicy          `yaml:"debt"`
	Goals               GoalPolicy          `yaml:"goals"`
	Guardrails          Guardrails          `yaml:"guardrails"`
	Templates           map[string]string   `yaml:"templates"`
	UI                  UIPolicy            `yaml:"ui"`

	essential map[string]struct{}
	known     []string
	keywords  []keyword
	tmpl      map[string]*template.Template
}

// SavingsPolicy configures the savings agent and the budget nudge.
type SavingsPolicy struct {
	MinSavingsRate      float64 `yaml:"min_savings_rate"`
	MaxAutoTransferRate float64 `yaml:"max_auto_transfer_rate"`
	MicroSpendThreshold float64 `yaml:"micro_spend_threshold"`
	MicroSpendMinCount  int     `yaml:"micro_spend_min_count"`
	AutosaveFraction    float64 `yaml:"autosave_fraction"`
}

// DebtPolicy configures the debt agent.
type DebtPolicy struct {
	DefaultStrategy     state.Strategy `yaml:"default_strategy"`
	ExtraShareOfSavings float64        `yaml:"extra_share_of_savings"`
	MaxMonths           int            `yaml:"max_months"`
}

// GoalPolicy configures starter goals.
type GoalPolicy struct {
	StarterGoals    bool    `yaml:"starter_goals"`
	EmergencyMonths float64 `yaml:"emergency_months"`
	EmergencyFloor  float64 `yaml:"emergency_floor"`
	EmergencyDueIn  int     `yaml:"emergency_due_months"`
	CushionCap      float64 `yaml:"debt_cushion_cap"`
	CushionDueIn    int     `yaml:"debt_cushion_due_months"`
}

// Guardrails limit what the advice agent may say.
type Guardrails struct {
	NoInvestmentAdvice bool `yaml:"no_investment_advice"`
	NoTaxAdvice        bool `yaml:"no_tax_advice"`
}

// UIPolicy holds presentation hints.
type UIPolicy struct {
	Currency   string `yaml:"currency"`
	DateFormat string `yaml:"date_format"`
}

// Default returns the built-in policy used when no file is available.
func Default() *Policy {
	p := &Policy{
		Version:             1,
		BudgetRule:          calc.BudgetRule{Essentials: 0.50, Wants: 0.30, Savings: 0.20},
		EssentialCategories: []string{"rent", "food", "groceries", "utilities", "transport", "insurance", "health"},
		Taxonomy: []string{
			"income", "rent", "food", "groceries", "dining", "utilities", "transport", "insurance",
			"health", "entertainment", "shopping", "subscriptions", "coffee",
		},
		Thresholds: map[string]float64{},
		CategoryLimits: map[string]float64{
			"groceries":     0.12,
			"dining":        0.08,
			"shopping":      0.07,
			"transport":     0.06,
			"entertainment": 0.05,
		},
		LimitGrace: 0.10,
		Merchants: map[string][]string{
			"income":        {"salary", "payroll"},
			"rent":          {"rent", "landlord"},
			"groceries":     {"grocer", "supermarket", "woolworths", "bigbasket"},
			"dining":        {"restaurant", "uber eats", "swiggy", "zomato", "pizza"},
			"coffee":        {"cafe", "coffee", "starbucks"},
			"transport":     {"uber", "ola cabs", "metro", "fuel", "petrol"},
			"utilities":     {"electric", "water bill", "broadband", "internet"},
			"subscriptions": {"netflix", "spotify", "prime", "subscription"},
			"health":        {"pharmacy", "clinic", "hospital"},
		},
		Savings: SavingsPolicy{
			MinSavingsRate:      0.10,
			MaxAutoTransferRate: 0.30,
			MicroSpendThreshold: 2000,
			MicroSpendMinCount:  4,
			AutosaveFraction:    0.5,
		},
		Debt: DebtPolicy{
			DefaultStrategy:     state.StrategyAvalanche,
			ExtraShareOfSavings: 0.5,
			MaxMonths:           calc.DefaultMaxMonths,
		},
		Goals: GoalPolicy{
			StarterGoals:    true,
			EmergencyMonths: 3,
			EmergencyFloor:  50000,
			EmergencyDueIn:  12,
			CushionCap:      30000,
			CushionDueIn:    6,
		},
		Guardrails: Guardrails{NoInvestmentAdvice: true, NoTaxAdvice: true},
		Templates:  map[string]string{},
		UI:         UIPolicy{Currency: "₹", DateFormat: "2006-01-02"},
	}
	if err := p.compile(); err != nil {
		panic("policy: built-in defaults do not compile: " + err.Error())
	}
	return p
}

// MicroRule adapts the savings section for calc.FindMicroSavings.
func (p *Policy) MicroRule() calc.MicroRule {
	return calc.MicroRule{
		Threshold:    p.Savings.MicroSpendThreshold,
		MinCount:     p.Savings.MicroSpendMinCount,
		Fraction:     p.Savings.AutosaveFraction,
		MaxShareOfIn: p.Savings.MaxAutoTransferRate,
	}
}

// Money formats an amount in the policy currency.
func (p *Policy) Money(v float64) string { return calc.FormatMoney(p.UI.Currency, v) }
