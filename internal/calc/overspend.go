package calc

import (
	"fmt"
	"sort"
)

// Overspend is one category above its limit.
type Overspend struct {
	Category string
	Spent    float64
	Limit    float64
	Over     float64
}

// String is the alert text, e.g. "food over by 50".
func (o Overspend) String() string {
	return fmt.Sprintf("%s over by %s", o.Category, FormatAmount(o.Over))
}

// DetectOverspend compares every category against limitFor in sorted category order, so the
// same expenses always give the same result.
func DetectOverspend(expenses map[string]float64, limitFor func(category string) (float64, bool)) []Overspend {
	cats := make([]string, 0, len(expenses))
	for c := range expenses {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var out []Overspend
	for _, c := range cats {
		limit, ok := limitFor(c)
		if !ok {
			continue
		}
		spent := expenses[c]
		over := Round2(spent - limit)
		if over <= 0 {
			continue
		}
		out = append(out, Overspend{Category: c, Spent: Round2(spent), Limit: Round2(limit), Over: over})
	}
	return out
}
