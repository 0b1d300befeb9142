package calc

import (
	"fmt"
	"sort"

	"github.com/jask/smartsavernet/internal/state"
)

// MicroRule configures micro-spend detection.
type MicroRule struct {
	Threshold    float64 // category totals below this count as small
	MinCount     int     // and need at least this many charges
	Fraction     float64 // share of the identified slack proposed for autosave
	MaxShareOfIn float64 // autosave cap as a fraction of income; 0 disables the cap
}

// FindMicroSavings returns discretionary categories made of many small charges, largest
// estimated saving first. A category missing from counts is treated as a single charge.
func FindMicroSavings(expenses map[string]float64, counts map[string]int, essential func(string) bool, r MicroRule) []state.SavingsSuggestion {
	var out []state.SavingsSuggestion
	for cat, spent := range expenses {
		if essential != nil && essential(cat) {
			continue
		}
		n, ok := counts[cat]
		if !ok {
			n = 1
		}
		if spent <= 0 || spent >= r.Threshold || n < r.MinCount {
			continue
		}
		est := Round2(spent * r.Fraction)
		out = append(out, state.SavingsSuggestion{
			Category:          cat,
			Spent:             Round2(spent),
			Charges:           n,
			EstMonthlySavings: est,
			Tip:               fmt.Sprintf("%d small %s charges add up to %s; skip half of them", n, cat, FormatAmount(spent)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EstMonthlySavings != out[j].EstMonthlySavings {
			return out[i].EstMonthlySavings > out[j].EstMonthlySavings
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Autosave sums the suggestions and applies the income cap.
func Autosave(suggestions []state.SavingsSuggestion, income float64, r MicroRule) float64 {
	var total float64
	for _, s := range suggestions {
		total += s.EstMonthlySavings
	}
	if r.MaxShareOfIn > 0 {
		if limit := income * r.MaxShareOfIn; total > limit {
			total = limit
		}
	}
	return Round2(total)
}
