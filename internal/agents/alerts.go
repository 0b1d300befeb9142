package agents

import (
	"context"

	"github.com/jask/smartsavernet/internal/calc"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

type alertsAgent struct {
	p *policy.Policy
}

func (a *alertsAgent) Name() Name    { return Alerts }
func (a *alertsAgent) Title() string { return Alerts.Title() }

// Step depends only on income and expenses, never on what earlier agents wrote.
func (a *alertsAgent) Step(_ context.Context, s *state.UserState) (string, error) {
	over := calc.DetectOverspend(s.Expenses, a.p.LimitFor(s.Income))
	for _, o := range over {
		s.AppendAlert(o.String())
	}
	return a.p.Render(policy.TmplAlerts, struct{ Count int }{len(over)})
}
