package calc

import (
	"github.com/shopspring/decimal"

	"github.com/jask/smartsavernet/internal/state"
)

// BudgetRule is the fractional split of income, e.g. 0.5/0.3/0.2.
type BudgetRule struct {
	Essentials float64 `yaml:"essentials"`
	Wants      float64 `yaml:"wants"`
	Savings    float64 `yaml:"savings"`
}

// SplitBudget allocates income into essentials, wants and savings.
//
// When committed essential spend is known it becomes the essentials envelope and the rest is
// shared between wants and savings in the rule's wants:savings ratio. Without it the plain
// percentage rule applies. Committed essentials above income cap the envelope at income and the
// excess is returned as shortfall. Savings absorbs rounding so the plan sums to income exactly.
func SplitBudget(income, essentialSpend float64, rule BudgetRule) (plan state.BudgetPlan, shortfall float64) {
	inc := decimal.NewFromFloat(income).Round(2)
	if inc.IsNegative() {
		inc = decimal.Zero
	}
	ess := decimal.NewFromFloat(essentialSpend).Round(2)

	if ess.GreaterThan(inc) {
		return state.BudgetPlan{Essentials: inc.InexactFloat64()}, ess.Sub(inc).InexactFloat64()
	}

	var wants decimal.Decimal
	if ess.IsPositive() {
		rest := inc.Sub(ess)
		w := decimal.NewFromFloat(rule.Wants)
		denom := w.Add(decimal.NewFromFloat(rule.Savings))
		if denom.IsPositive() {
			wants = rest.Mul(w.Div(denom)).Round(2)
		}
	} else {
		ess = inc.Mul(decimal.NewFromFloat(rule.Essentials)).Round(2)
		wants = inc.Mul(decimal.NewFromFloat(rule.Wants)).Round(2)
		if ess.Add(wants).GreaterThan(inc) {
			wants = inc.Sub(ess)
		}
	}
	savings := inc.Sub(ess).Sub(wants)

	return state.BudgetPlan{
		Essentials: ess.InexactFloat64(),
		Wants:      wants.InexactFloat64(),
		Savings:    savings.InexactFloat64(),
	}, 0
}
