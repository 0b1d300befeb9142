package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/smartsavernet/internal/state"
)

func TestLoadMissingFileFallsBack(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConfigurationMissing))
	require.NotNil(t, p)
	require.Equal(t, 0.5, p.BudgetRule.Essentials)
}

func TestLoadMalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("budget_rule:\n  essentials: 0.9\n  wants: 0.3\n  savings: 0.2\n"), 0o600))

	p, err := Load(path)
	require.ErrorIs(t, err, ErrConfigurationMissing)
	require.Contains(t, err.Error(), "sum to")
	require.Equal(t, Default().BudgetRule, p.BudgetRule)
}

func TestLoadRepositoryPolicy(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "configs", "policy.yaml"))
	require.NoError(t, err)
	require.Equal(t, state.StrategyAvalanche, p.Debt.DefaultStrategy)
	require.Equal(t, 6000.0, p.Thresholds["dining"])
}

func TestParseOverridesAndTemplates(t *testing.T) {
	p, err := Parse([]byte(`
thresholds:
  Food: 350
category_limits: {}
templates:
  alerts: "{{.Count}} warnings"
ui:
  currency: "$"
`))
	require.NoError(t, err)
	require.Equal(t, 350.0, p.Thresholds["food"])
	require.Empty(t, p.CategoryLimits)

	out, err := p.Render(TmplAlerts, struct{ Count int }{2})
	require.NoError(t, err)
	require.Equal(t, "2 warnings", out)

	out, err = p.Render(TmplBudget, struct{ Essentials, Wants, Savings, Rate float64 }{1600, 1440, 960, 0.24})
	require.NoError(t, err)
	require.Equal(t, "Set your monthly budget: Essentials $1,600, Wants $1,440, Savings $960 (24%).", out)
}

func TestParseRejectsBrokenTemplate(t *testing.T) {
	_, err := Parse([]byte("templates:\n  budget: \"{{.Essentials\"\n"))
	require.Error(t, err)
}

func TestCanonicalAndEssential(t *testing.T) {
	p := Default()
	require.Equal(t, "groceries", p.Canonical("Groceries "))
	require.Equal(t, "subscriptions", p.Canonical("subscription"))
	require.Equal(t, "rent", p.Canonical("RENT"))
	require.Equal(t, "pets", p.Canonical("Pets"))
	require.Equal(t, "uncategorized", p.Canonical("  "))
	require.Equal(t, "groceries", p.Canonical("grocerys"))

	// Near neighbours that are different words stay as typed.
	for _, raw := range []string{"wealth", "ford", "pent", "shipping"} {
		require.Equal(t, raw, p.Canonical(raw), raw)
	}

	require.True(t, p.IsEssential("Food"))
	require.True(t, p.IsEssential(" Rent"))
	require.False(t, p.IsEssential("dining"))
	require.False(t, p.IsEssential("wealth"))
	require.False(t, p.IsEssential("ford"))
	require.False(t, p.IsEssential("grocerys"))
}

func TestNormalize(t *testing.T) {
	p := Default()
	require.Equal(t, "groceries", p.Normalize(" Groceries"))
	require.Equal(t, "grocerys", p.Normalize("grocerys"))
	require.Equal(t, "uncategorized", p.Normalize(""))
}

func TestLimitFor(t *testing.T) {
	p, err := Parse([]byte("thresholds:\n  food: 350\n"))
	require.NoError(t, err)
	limit := p.LimitFor(10000)

	v, ok := limit("food")
	require.True(t, ok)
	require.Equal(t, 350.0, v)

	v, ok = limit("dining")
	require.True(t, ok)
	require.InDelta(t, 880.0, v, 0.0001)

	_, ok = limit("rent")
	require.False(t, ok)

	_, ok = limit("shipping")
	require.False(t, ok)
	_, ok = limit("ford")
	require.False(t, ok)

	_, ok = p.LimitFor(0)("dining")
	require.False(t, ok)
}

func TestCategoryFor(t *testing.T) {
	p := Default()
	cat, ok := p.CategoryFor("UBER EATS* SUSHI")
	require.True(t, ok)
	require.Equal(t, "dining", cat)

	cat, ok = p.CategoryFor("Uber trip 42")
	require.True(t, ok)
	require.Equal(t, "transport", cat)

	_, ok = p.CategoryFor("ACME HARDWARE")
	require.False(t, ok)

	p, err := Parse([]byte("merchants:\n  Pets: [vet]\n"))
	require.NoError(t, err)
	cat, ok = p.CategoryFor("City Vet Care")
	require.True(t, ok)
	require.Equal(t, "pets", cat)
}
