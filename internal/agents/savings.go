package agents

import (
	"context"
	"fmt"

	"github.com/jask/smartsavernet/internal/calc"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

type savingsAgent struct {
	p *policy.Policy
}

func (a *savingsAgent) Name() Name    { return Savings }
func (a *savingsAgent) Title() string { return Savings.Title() }

// Step only looks at discretionary spend. Goals are left to the goal agent.
func (a *savingsAgent) Step(_ context.Context, s *state.UserState) (string, error) {
	rule := a.p.MicroRule()
	sugs := calc.FindMicroSavings(s.Expenses, s.SpendCounts, a.p.IsEssential, rule)
	s.SavingsSuggestions = sugs
	s.SuggestedAutosave = calc.Autosave(sugs, s.Income, rule)

	var example string
	if len(sugs) > 0 {
		example = fmt.Sprintf("%s %s", sugs[0].Category, a.p.Money(sugs[0].Spent))
	}
	return a.p.Render(policy.TmplSavings, struct {
		Count             int
		Example           string
		Autosave, Planned float64
	}{len(sugs), example, s.SuggestedAutosave, s.BudgetPlan.Savings})
}
