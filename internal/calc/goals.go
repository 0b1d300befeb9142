package calc

import (
	"math"
	"time"

	"github.com/jask/smartsavernet/internal/state"
)

// GoalProjection is the linear completion estimate for one goal.
type GoalProjection struct {
	Index         int
	MonthlyShare  float64
	Months        int
	ProjectedDate *time.Time
	OnTrack       bool
}

// ProjectGoals shares monthly savings across incomplete goals and extrapolates linearly.
// The share is equal unless some goal carries a priority, in which case it is weighted by
// priority (goals without one weigh 1). Completed goals get no share. With nothing to share
// the projections carry no date.
func ProjectGoals(goals []state.Goal, monthly float64, asOf time.Time) []GoalProjection {
	out := make([]GoalProjection, len(goals))
	weighted := false
	for _, g := range goals {
		if g.Priority > 0 {
			weighted = true
			break
		}
	}

	var totalWeight float64
	for i, g := range goals {
		out[i].Index = i
		if g.Complete() {
			out[i].OnTrack = true
			continue
		}
		totalWeight += weight(g, weighted)
	}

	for i, g := range goals {
		if g.Complete() || totalWeight == 0 || monthly <= 0 {
			continue
		}
		share := monthly * weight(g, weighted) / totalWeight
		months := int(math.Ceil(g.Remaining()/share - 1e-9))
		if months < 1 {
			months = 1
		}
		projected := asOf.AddDate(0, months, 0)
		out[i].MonthlyShare = Round2(share)
		out[i].Months = months
		out[i].ProjectedDate = &projected
		out[i].OnTrack = g.TargetDate.IsZero() || !projected.After(g.TargetDate)
	}
	return out
}

func weight(g state.Goal, weighted bool) float64 {
	if !weighted {
		return 1
	}
	return float64(max(g.Priority, 1))
}
