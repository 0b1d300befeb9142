package agents

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/jask/smartsavernet/internal/calc"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

type goalAgent struct {
	p   *policy.Policy
	now Clock
}

func (a *goalAgent) Name() Name    { return Goal }
func (a *goalAgent) Title() string { return Goal.Title() }

// Step projects goal completion from the planned monthly savings. Saved amounts are the
// user's and are never changed here.
func (a *goalAgent) Step(_ context.Context, s *state.UserState) (string, error) {
	asOf := a.now()
	var created []string
	if len(s.Goals) == 0 && a.p.Goals.StarterGoals {
		s.Goals = a.starterGoals(s, asOf)
		for _, g := range s.Goals {
			created = append(created, g.Name)
		}
	}
	if len(s.Goals) == 0 {
		return "No goals yet.", nil
	}

	prefix := ""
	if len(created) > 0 {
		prefix = "Created starter goals: " + strings.Join(created, ", ") + ". "
	}

	monthly := s.BudgetPlan.Savings
	if monthly <= 0 {
		for i := range s.Goals {
			s.Goals[i].ProjectedDate = nil
			s.Goals[i].OnTrack = s.Goals[i].Complete()
		}
		s.AppendMessage(Goal.Title(), state.LevelWarning, "No monthly savings planned, so goal dates cannot be projected.")
		return prefix + "Goals unchanged.", nil
	}

	for _, pr := range calc.ProjectGoals(s.Goals, monthly, asOf) {
		g := &s.Goals[pr.Index]
		g.ProjectedDate = pr.ProjectedDate
		g.OnTrack = pr.OnTrack
	}

	data := struct {
		Name, Deadline, Projected string
		Percent                   int
	}{}
	if g, ok := s.NearestGoal(); ok {
		data.Name = g.Name
		if g.TargetAmount > 0 {
			data.Percent = int(100 * g.SavedAmount / g.TargetAmount)
		}
		if !g.TargetDate.IsZero() {
			data.Deadline = g.TargetDate.Format(a.p.UI.DateFormat)
		}
		if g.ProjectedDate != nil {
			data.Projected = g.ProjectedDate.Format(a.p.UI.DateFormat)
		}
	}
	msg, err := a.p.Render(policy.TmplGoals, data)
	if err != nil {
		return "", err
	}

	for _, g := range s.Goals {
		if !g.OnTrack && !g.Complete() {
			s.AppendMessage(Goal.Title(), state.LevelWarning, g.Name+" is behind its target date at the current savings pace.")
		}
	}
	return prefix + msg, nil
}

func (a *goalAgent) starterGoals(s *state.UserState, asOf time.Time) []state.Goal {
	gp := a.p.Goals
	emergency := math.Max(gp.EmergencyFloor, math.Round(s.Income*gp.EmergencyMonths/1000)*1000)
	goals := []state.Goal{{
		Name:         "Emergency Fund",
		TargetAmount: emergency,
		TargetDate:   monthEnd(asOf, gp.EmergencyDueIn),
	}}
	if len(s.Debts) > 0 {
		goals = append(goals, state.Goal{
			Name:         "Debt Cushion",
			TargetAmount: math.Min(gp.CushionCap, emergency*0.4),
			TargetDate:   monthEnd(asOf, gp.CushionDueIn),
		})
	}
	return goals
}

// monthEnd returns the last day of the month n months after t.
func monthEnd(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, n+1, -1)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
