// Package agents wraps the calculators in named steps that read and update a UserState.
//
// Every agent reads the shared policy, never mutates it, and reports one headline line per
// step. Extra warnings and alerts go straight onto the state.
package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

// Name identifies an agent in toggles, preferences and API payloads.
type Name string

const (
	Budget  Name = "budget"
	Savings Name = "savings"
	Debt    Name = "debt"
	Goal    Name = "goal"
	Alerts  Name = "alerts"
	Advice  Name = "advice"
)

// Order is the fixed pipeline order.
var Order = []Name{Budget, Savings, Debt, Goal, Alerts, Advice}

// Agent is one step of a pass.
type Agent interface {
	Name() Name
	Title() string
	// Step updates s in place and returns the headline message for the activity feed.
	Step(ctx context.Context, s *state.UserState) (string, error)
}

// Clock returns the as-of time for date projections.
type Clock func() time.Time

// All returns every agent in pipeline order.
func All(p *policy.Policy, clock Clock) []Agent {
	if clock == nil {
		clock = time.Now
	}
	return []Agent{
		&budgetAgent{p: p},
		&savingsAgent{p: p},
		&debtAgent{p: p},
		&goalAgent{p: p, now: clock},
		&alertsAgent{p: p},
		&adviceAgent{p: p, now: clock},
	}
}

var titles = map[Name]string{
	Budget:  "Budget Agent",
	Savings: "Savings Agent",
	Debt:    "Debt Agent",
	Goal:    "Goal Agent",
	Alerts:  "Spending Alert Agent",
	Advice:  "Advice Agent",
}

// Title returns the display name for n.
func (n Name) Title() string {
	if t, ok := titles[n]; ok {
		return t
	}
	return string(n)
}

// Valid reports whether n is a known agent.
func (n Name) Valid() bool {
	_, ok := titles[n]
	return ok
}

// ParseNames turns user input ("budget, Debt", "all") into agent names in pipeline order.
// Unknown names are rejected.
func ParseNames(raw []string) ([]Name, error) {
	want := map[Name]bool{}
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			switch part {
			case "":
				continue
			case "all":
				for _, n := range Order {
					want[n] = true
				}
				continue
			case "goals":
				part = string(Goal)
			case "alert", "spending":
				part = string(Alerts)
			}
			n := Name(part)
			if !n.Valid() {
				return nil, fmt.Errorf("unknown agent %q", part)
			}
			want[n] = true
		}
	}
	out := make([]Name, 0, len(want))
	for _, n := range Order {
		if want[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

// Strings converts names for storage.
func Strings(names []Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}
