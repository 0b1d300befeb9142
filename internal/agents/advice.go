package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

type adviceAgent struct {
	p   *policy.Policy
	now Clock
}

func (a *adviceAgent) Name() Name    { return Advice }
func (a *adviceAgent) Title() string { return Advice.Title() }

// Step summarises whatever earlier agents left behind. Any section may be missing.
func (a *adviceAgent) Step(_ context.Context, s *state.UserState) (string, error) {
	var parts []string
	if !s.BudgetPlan.IsZero() {
		parts = append(parts, fmt.Sprintf("Keep an automatic transfer of %s on the 1st and review subscriptions quarterly",
			a.p.Money(s.BudgetPlan.Savings)))
	}
	if len(s.Alerts) > 0 {
		top := "Watch out: " + s.Alerts[0]
		if n := len(s.Alerts) - 1; n > 0 {
			top += fmt.Sprintf(" (and %d more)", n)
		}
		parts = append(parts, top)
	}
	if g, ok := s.NearestGoal(); ok {
		line := "Next goal: " + g.Name
		if !g.TargetDate.IsZero() {
			line += " by " + g.TargetDate.Format(a.p.UI.DateFormat)
			if months := monthsBetween(a.now(), g.TargetDate); months > 0 {
				line += fmt.Sprintf(" (%d months away)", months)
			}
		}
		parts = append(parts, line)
	}
	if s.DebtPlan != nil && s.DebtPlan.Focus != "" {
		parts = append(parts, "Keep extra payments focused on "+s.DebtPlan.Focus)
	}
	if s.Income > 0 && s.SavingsRate > 0 && s.SavingsRate < a.p.Savings.MinSavingsRate {
		parts = append(parts, "Try nudging your savings rate up by 1-2% this month")
	}

	summary := "Add your income and expenses to get a personalised plan."
	if len(parts) > 0 {
		summary = strings.Join(parts, ". ") + "."
	}
	if d := a.disclaimer(); d != "" {
		summary += " " + d
	}
	return a.p.Render(policy.TmplAdvice, struct{ Summary string }{summary})
}

func (a *adviceAgent) disclaimer() string {
	g := a.p.Guardrails
	switch {
	case g.NoInvestmentAdvice && g.NoTaxAdvice:
		return "This is budgeting guidance only, not investment or tax advice."
	case g.NoInvestmentAdvice:
		return "This is budgeting guidance only, not investment advice."
	case g.NoTaxAdvice:
		return "This is budgeting guidance only, not tax advice."
	}
	return ""
}
