package agents

import (
	"context"
	"fmt"

	"github.com/jask/smartsavernet/internal/calc"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

type debtAgent struct {
	p *policy.Policy
}

func (a *debtAgent) Name() Name    { return Debt }
func (a *debtAgent) Title() string { return Debt.Title() }

func (a *debtAgent) Step(_ context.Context, s *state.UserState) (string, error) {
	if len(s.Debts) == 0 {
		s.DebtPlan = nil
		return "No debts on file.", nil
	}

	strategy := s.DebtStrategy
	if strategy == "" {
		strategy = a.p.Debt.DefaultStrategy
	}
	extra := s.ExtraDebtPayment
	if extra <= 0 {
		extra = calc.Round2(a.p.Debt.ExtraShareOfSavings * s.BudgetPlan.Savings)
	}

	plan := calc.PlanPayoff(s.Debts, strategy, extra, a.p.Debt.MaxMonths)
	s.DebtPlan = &plan
	for _, step := range plan.Schedule {
		if step.MonthsToPayoff < 0 {
			s.AppendAlert(fmt.Sprintf("%s is not paid off within %d months at current payments", step.Debt, a.p.Debt.MaxMonths))
		}
	}

	return a.p.Render(policy.TmplDebt, struct {
		Method string
		Focus  string
		Extra  float64
		Months int
	}{string(plan.Method), plan.Focus, plan.ExtraBudget, plan.MonthsToDebtFree})
}
