package state

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateCollectsProblems(t *testing.T) {
	s := Default()
	s.Income = -1
	s.Expenses["food"] = math.NaN()
	s.Goals = []Goal{{Name: "Trip", TargetAmount: 100, SavedAmount: 150}}
	s.Debts = append(s.Debts, Debt{Name: "Loan", Balance: -5})
	s.DebtStrategy = "lottery"

	err := s.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Problems, 5)
	require.Contains(t, err.Error(), "income")
	require.Contains(t, err.Error(), "exceeds target")
}

func TestCloneIsDeep(t *testing.T) {
	proj := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Default()
	s.Expenses["rent"] = 1200
	s.Goals = []Goal{{Name: "Car", TargetAmount: 1000, ProjectedDate: &proj}}
	s.DebtPlan = &DebtPlan{Schedule: []PayoffStep{{Debt: "Credit Card"}}}
	s.AppendAlert("a")

	c := s.Clone()
	c.Expenses["rent"] = 1
	c.Goals[0].Name = "Bike"
	*c.Goals[0].ProjectedDate = time.Time{}
	c.Debts[0].Balance = 0
	c.DebtPlan.Schedule[0].Debt = "x"
	c.Alerts[0] = "b"

	require.Equal(t, 1200.0, s.Expenses["rent"])
	require.Equal(t, "Car", s.Goals[0].Name)
	require.Equal(t, proj, *s.Goals[0].ProjectedDate)
	require.Equal(t, 30000.0, s.Debts[0].Balance)
	require.Equal(t, "Credit Card", s.DebtPlan.Schedule[0].Debt)
	require.Equal(t, "a", s.Alerts[0])
}

func TestResetPassClearsAgentOutput(t *testing.T) {
	s := Default()
	s.Goals = []Goal{{Name: "Car", TargetAmount: 1000}}
	s.BudgetPlan = BudgetPlan{Essentials: 1, Wants: 2, Savings: 3}
	s.DebtPlan = &DebtPlan{Focus: "Credit Card"}
	s.SavingsSuggestions = []SavingsSuggestion{{Category: "coffee"}}
	s.SuggestedAutosave = 250
	s.AppendAlert("a")
	s.AppendMessage("Budget Agent", LevelInfo, "hi")
	s.Expenses = nil

	s.ResetPass()
	require.True(t, s.BudgetPlan.IsZero())
	require.Nil(t, s.DebtPlan)
	require.Empty(t, s.SavingsSuggestions)
	require.Zero(t, s.SuggestedAutosave)
	require.Empty(t, s.Alerts)
	require.Empty(t, s.Messages)
	require.NotNil(t, s.Expenses)
	require.Len(t, s.Goals, 1)
	require.Len(t, s.Debts, 2)
}

func TestTotalExpenses(t *testing.T) {
	s := UserState{Expenses: map[string]float64{"rent": 1200, "food": 400.5}}
	require.Equal(t, 1600.5, s.TotalExpenses())
	require.Zero(t, UserState{}.TotalExpenses())
}

func TestNearestGoalSkipsCompleted(t *testing.T) {
	s := UserState{Goals: []Goal{
		{Name: "Done", TargetAmount: 10, SavedAmount: 10, TargetDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Later", TargetAmount: 10, TargetDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Sooner", TargetAmount: 10, TargetDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
	}}
	g, ok := s.NearestGoal()
	require.True(t, ok)
	require.Equal(t, "Sooner", g.Name)

	_, ok = UserState{}.NearestGoal()
	require.False(t, ok)
}

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy(" Snowball ")
	require.NoError(t, err)
	require.Equal(t, StrategySnowball, got)
	_, err = ParseStrategy("random")
	require.Error(t, err)
}
