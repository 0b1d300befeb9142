package state

import (
	"sort"
	"time"
)

// Strategy selects the debt repayment ordering.
type Strategy string

const (
	StrategyAvalanche Strategy = "avalanche"
	StrategySnowball  Strategy = "snowball"
)

// Level marks how a message should be presented.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelAlert   Level = "alert"
)

// BudgetPlan is the monthly envelope split. It sums to income.
type BudgetPlan struct {
	Essentials float64 `json:"essentials"`
	Wants      float64 `json:"wants"`
	Savings    float64 `json:"savings"`
}

// Total returns the sum of all envelopes.
func (b BudgetPlan) Total() float64 { return b.Essentials + b.Wants + b.Savings }

// IsZero reports whether no plan has been computed yet.
func (b BudgetPlan) IsZero() bool { return b == BudgetPlan{} }

// Goal is a savings target.
type Goal struct {
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	SavedAmount   float64    `json:"saved_amount"`
	TargetDate    time.Time  `json:"target_date"`
	Priority      int        `json:"priority,omitempty"`
	ProjectedDate *time.Time `json:"projected_date,omitempty"`
	OnTrack       bool       `json:"on_track"`
}

// Remaining is what is still to be saved.
func (g Goal) Remaining() float64 {
	if g.SavedAmount >= g.TargetAmount {
		return 0
	}
	return g.TargetAmount - g.SavedAmount
}

// Complete reports whether the target has been reached.
func (g Goal) Complete() bool { return g.Remaining() == 0 }

// Debt is one liability. InterestRate is an annual percentage (20 means 20%).
type Debt struct {
	Name         string  `json:"name"`
	Balance      float64 `json:"balance"`
	InterestRate float64 `json:"interest_rate"`
	MinPayment   float64 `json:"min_payment"`
}

// PayoffStep is one row of the repayment schedule.
type PayoffStep struct {
	Debt           string  `json:"debt"`
	Order          int     `json:"order"`
	MinPayment     float64 `json:"min_payment"`
	ExtraPayment   float64 `json:"extra_payment"`
	MonthsToPayoff int     `json:"months_to_payoff"`
}

// DebtPlan is written by the debt agent.
type DebtPlan struct {
	Method             Strategy     `json:"method"`
	Focus              string       `json:"focus,omitempty"`
	ExtraBudget        float64      `json:"extra_budget"`
	Schedule           []PayoffStep `json:"schedule"`
	MonthsToDebtFree   int          `json:"months_to_debt_free"`
	ProjectedInterest  float64      `json:"projected_interest"`
	TotalMonthlyOutlay float64      `json:"total_monthly_outlay"`
}

// SavingsSuggestion is one micro-savings idea.
type SavingsSuggestion struct {
	Category          string  `json:"category"`
	Spent             float64 `json:"spent"`
	Charges           int     `json:"charges"`
	EstMonthlySavings float64 `json:"est_monthly_savings"`
	Tip               string  `json:"tip"`
}

// Message is an agent-authored line for the activity feed.
type Message struct {
	Agent   string `json:"agent"`
	Level   Level  `json:"level"`
	Content string `json:"content"`
}

// UserState is the record threaded through every agent of a pass.
type UserState struct {
	Income      float64            `json:"income"`
	Expenses    map[string]float64 `json:"expenses"`
	SpendCounts map[string]int     `json:"spend_counts,omitempty"`
	SavingsRate float64            `json:"savings_rate"`

	BudgetPlan BudgetPlan `json:"budget_plan"`

	Goals []Goal `json:"goals"`

	Debts            []Debt    `json:"debts"`
	DebtStrategy     Strategy  `json:"debt_strategy,omitempty"`
	ExtraDebtPayment float64   `json:"extra_debt_payment,omitempty"`
	DebtPlan         *DebtPlan `json:"debt_plan,omitempty"`

	SavingsSuggestions []SavingsSuggestion `json:"savings_suggestions,omitempty"`
	SuggestedAutosave  float64             `json:"suggested_autosave"`

	Alerts   []string  `json:"alerts"`
	Messages []Message `json:"messages"`
}

// Default returns the demo state a new session starts from.
func Default() UserState {
	return UserState{
		Income:      60000,
		Expenses:    map[string]float64{},
		SpendCounts: map[string]int{},
		SavingsRate: 0.15,
		Debts: []Debt{
			{Name: "Credit Card", Balance: 30000, InterestRate: 36, MinPayment: 1500},
			{Name: "Student Loan", Balance: 120000, InterestRate: 11, MinPayment: 2500},
		},
		DebtStrategy: StrategyAvalanche,
	}
}

// Clone returns a deep copy so callers never share maps or slices.
func (s UserState) Clone() UserState {
	out := s
	out.Expenses = make(map[string]float64, len(s.Expenses))
	for k, v := range s.Expenses {
		out.Expenses[k] = v
	}
	if s.SpendCounts != nil {
		out.SpendCounts = make(map[string]int, len(s.SpendCounts))
		for k, v := range s.SpendCounts {
			out.SpendCounts[k] = v
		}
	}
	out.Goals = make([]Goal, len(s.Goals))
	for i, g := range s.Goals {
		if g.ProjectedDate != nil {
			d := *g.ProjectedDate
			g.ProjectedDate = &d
		}
		out.Goals[i] = g
	}
	out.Debts = append([]Debt(nil), s.Debts...)
	if s.DebtPlan != nil {
		p := *s.DebtPlan
		p.Schedule = append([]PayoffStep(nil), s.DebtPlan.Schedule...)
		out.DebtPlan = &p
	}
	out.SavingsSuggestions = append([]SavingsSuggestion(nil), s.SavingsSuggestions...)
	out.Alerts = append([]string(nil), s.Alerts...)
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}

// ResetPass clears everything a pass writes so a new pass starts clean. Agents left
// disabled this time leave their section empty rather than stale.
func (s *UserState) ResetPass() {
	s.BudgetPlan = BudgetPlan{}
	s.DebtPlan = nil
	s.SavingsSuggestions = nil
	s.SuggestedAutosave = 0
	s.Alerts = nil
	s.Messages = nil
	if s.Expenses == nil {
		s.Expenses = map[string]float64{}
	}
}

// AppendMessage adds a line to the activity feed.
func (s *UserState) AppendMessage(agent string, level Level, content string) {
	s.Messages = append(s.Messages, Message{Agent: agent, Level: level, Content: content})
}

// AppendAlert adds an advisory string.
func (s *UserState) AppendAlert(alert string) {
	s.Alerts = append(s.Alerts, alert)
}

// TotalExpenses sums all categories.
func (s UserState) TotalExpenses() float64 {
	var total float64
	for _, v := range s.Expenses {
		total += v
	}
	return total
}

// Categories returns expense category names in sorted order.
func (s UserState) Categories() []string {
	out := make([]string, 0, len(s.Expenses))
	for k := range s.Expenses {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NearestGoal returns the incomplete goal with the earliest target date.
func (s UserState) NearestGoal() (Goal, bool) {
	var best Goal
	found := false
	for _, g := range s.Goals {
		if g.Complete() {
			continue
		}
		if !found || (!g.TargetDate.IsZero() && (best.TargetDate.IsZero() || g.TargetDate.Before(best.TargetDate))) {
			best = g
			found = true
		}
	}
	return best, found
}
