package policy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Normalize lower-cases and trims a stored category label. Empty labels become
// "uncategorized". It never guesses; rules and limits key on its result.
func (p *Policy) Normalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "uncategorized"
	}
	return name
}

// Canonical maps a raw imported category label ("Groceries ", "grocerys") onto the policy
// taxonomy, tolerating small typos that keep the first four letters. Unknown labels come
// back normalized.
func (p *Policy) Canonical(raw string) string {
	name := p.Normalize(raw)
	best, bestDist := "", -1
	for _, k := range p.known {
		if k == name {
			return k
		}
		if commonPrefix(name, k) < minTypoPrefix {
			continue
		}
		d := levenshtein.ComputeDistance(name, k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	maxDist := 1
	if len(name) >= 6 {
		maxDist = 2
	}
	if bestDist >= 0 && bestDist <= maxDist {
		return best
	}
	return name
}

const minTypoPrefix = 4

func commonPrefix(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[n] == rb[n] {
		n++
	}
	return n
}

// IsEssential reports whether spending in the category is committed rather than discretionary.
func (p *Policy) IsEssential(category string) bool {
	_, ok := p.essential[p.Normalize(category)]
	return ok
}

// LimitFor returns the overspend limit lookup for a given income. Absolute thresholds win;
// otherwise a percent-of-income soft cap plus grace applies.
func (p *Policy) LimitFor(income float64) func(string) (float64, bool) {
	return func(category string) (float64, bool) {
		c := p.Normalize(category)
		if v, ok := p.Thresholds[c]; ok {
			return v, true
		}
		if pct, ok := p.CategoryLimits[c]; ok && income > 0 {
			return income * pct * (1 + p.LimitGrace), true
		}
		return 0, false
	}
}

func (p *Policy) buildTaxonomy() {
	p.essential = make(map[string]struct{}, len(p.EssentialCategories))
	seen := map[string]struct{}{}
	add := func(c string) string {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			return c
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			p.known = append(p.known, c)
		}
		return c
	}
	p.known = nil
	for _, c := range p.Taxonomy {
		add(c)
	}
	for _, c := range p.EssentialCategories {
		p.essential[add(c)] = struct{}{}
	}
	thresholds := make(map[string]float64, len(p.Thresholds))
	for c, v := range p.Thresholds {
		thresholds[add(c)] = v
	}
	p.Thresholds = thresholds
	limits := make(map[string]float64, len(p.CategoryLimits))
	for c, v := range p.CategoryLimits {
		limits[add(c)] = v
	}
	p.CategoryLimits = limits

	p.keywords = p.keywords[:0]
	for c, words := range p.Merchants {
		c = add(c)
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				p.keywords = append(p.keywords, keyword{word: w, category: c})
			}
		}
	}
	sort.Slice(p.keywords, func(i, j int) bool {
		a, b := p.keywords[i], p.keywords[j]
		if len(a.word) != len(b.word) {
			return len(a.word) > len(b.word)
		}
		return a.word < b.word
	})
	sort.Strings(p.known)
}

type keyword struct {
	word     string
	category string
}

// CategoryFor guesses a category from a transaction description using the merchant keywords.
// Longer keywords win, so "uber eats" beats "uber".
func (p *Policy) CategoryFor(description string) (string, bool) {
	desc := strings.ToLower(description)
	for _, k := range p.keywords {
		if strings.Contains(desc, k.word) {
			return k.category, true
		}
	}
	return "", false
}
