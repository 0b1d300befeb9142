package agents

import (
	"context"
	"fmt"
	"math"

	"github.com/jask/smartsavernet/internal/calc"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

type budgetAgent struct {
	p *policy.Policy
}

func (a *budgetAgent) Name() Name    { return Budget }
func (a *budgetAgent) Title() string { return Budget.Title() }

func (a *budgetAgent) Step(_ context.Context, s *state.UserState) (string, error) {
	var committed float64
	for _, cat := range s.Categories() {
		if a.p.IsEssential(cat) {
			committed += s.Expenses[cat]
		}
	}

	plan, shortfall := calc.SplitBudget(s.Income, committed, a.p.BudgetRule)
	s.BudgetPlan = plan
	s.SavingsRate = 0
	if s.Income > 0 {
		s.SavingsRate = math.Round(plan.Savings/s.Income*10000) / 10000
	}

	switch {
	case shortfall > 0:
		s.AppendAlert(fmt.Sprintf("essentials exceed income by %s", calc.FormatAmount(shortfall)))
	case s.Income > 0 && s.SavingsRate < a.p.Savings.MinSavingsRate:
		s.AppendAlert(fmt.Sprintf("savings rate %.0f%% is below the %.0f%% target",
			s.SavingsRate*100, a.p.Savings.MinSavingsRate*100))
	}

	return a.p.Render(policy.TmplBudget, struct {
		Essentials, Wants, Savings, Rate float64
	}{plan.Essentials, plan.Wants, plan.Savings, s.SavingsRate})
}
