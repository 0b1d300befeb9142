package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/database"
	"github.com/jask/smartsavernet/internal/database/repository"
	"github.com/jask/smartsavernet/internal/mockdata"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/session"
	"github.com/jask/smartsavernet/internal/state"
)

var now = time.Date(2026, time.April, 20, 12, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

func setupRepo(t *testing.T) *repository.TransactionRepo {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, database.SQLite))
	return repository.NewTransactionRepo(db)
}

func newCoach(repo *repository.TransactionRepo) *Coach {
	return &Coach{
		Policy:       policy.Default(),
		Sessions:     session.NewMemoryStore(),
		Transactions: repo,
		UserID:       "demo",
		SeedDays:     60,
		Clock:        func() time.Time { return now },
	}
}

func TestFromTransactions(t *testing.T) {
	txns := []repository.Transaction{
		{Date: day(time.February, 28), AmountCents: 9_999_900, Category: "income"}, // before the month
		{Date: day(time.March, 1), AmountCents: 6_000_000, Category: "Income"},
		{Date: day(time.March, 3), AmountCents: -1_200_000, Category: "rent"},
		{Date: day(time.March, 6), AmountCents: -15_000, Category: "Coffee"},
		{Date: day(time.March, 9), AmountCents: -12_050, Category: "coffee"},
		{Date: day(time.March, 10), AmountCents: -5_000, Category: "shopping"},
		{Date: day(time.March, 11), AmountCents: 8_000, Category: "shopping"}, // refund
		{Date: day(time.March, 31), AmountCents: -1_000, Category: "coffee"},
		{Date: day(time.April, 1), AmountCents: 7_000_000, Category: "income"}, // current month
		{Date: day(time.April, 2), AmountCents: -2_000, Category: "coffee"},
	}
	base := state.Default()
	base.Goals = []state.Goal{{Name: "Trip", TargetAmount: 1000}}

	s := FromTransactions(base, txns, policy.Default(), now)
	require.Equal(t, 60000.0, s.Income)
	require.Equal(t, map[string]float64{"rent": 12000, "coffee": 280.5, "shopping": 0}, s.Expenses)
	require.Equal(t, map[string]int{"rent": 1, "coffee": 3, "shopping": 1}, s.SpendCounts)
	require.Len(t, s.Goals, 1)
	require.Len(t, s.Debts, 2)
	require.NoError(t, s.Validate())

	empty := FromTransactions(base, nil, policy.Default(), now)
	require.Equal(t, base.Income, empty.Income)
	require.Empty(t, empty.Expenses)
}

func TestFromTransactionsFallsBackToCurrentMonth(t *testing.T) {
	txns := []repository.Transaction{
		{Date: day(time.April, 1), AmountCents: 5_000_000, Category: "income"},
		{Date: day(time.April, 3), AmountCents: -900_000, Category: "rent"},
		{Date: day(time.April, 21), AmountCents: -1_000, Category: "coffee"}, // after now
	}
	s := FromTransactions(state.Default(), txns, policy.Default(), now)
	require.Equal(t, 50000.0, s.Income)
	require.Equal(t, map[string]float64{"rent": 9000}, s.Expenses)
}

// One salary and one rent per snapshot, whatever day of the month it is taken on.
func TestFromTransactionsMonthBoundaries(t *testing.T) {
	for _, at := range []time.Time{
		time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC),
	} {
		t.Run(at.Format("2006-01-02"), func(t *testing.T) {
			txns := mockdata.Generate("demo", 90, at, 7)
			start, end := snapshotWindow(txns, at)
			require.Equal(t, 1, start.Day())
			require.Equal(t, at.Month(), end.Month())

			var salary, rent float64
			var salaries, rents int
			for _, tx := range txns {
				if tx.Date.Before(start) || !tx.Date.Before(end) {
					continue
				}
				switch tx.Category {
				case "income":
					salaries++
					salary += tx.Amount()
				case "rent":
					rents++
					rent -= tx.Amount()
				}
			}
			require.Equal(t, 1, salaries)
			require.Equal(t, 1, rents)

			s := FromTransactions(state.Default(), txns, policy.Default(), at)
			require.Equal(t, salary, s.Income)
			require.Equal(t, rent, s.Expenses["rent"])
		})
	}
}

func TestCoachWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	c := newCoach(nil)

	s, err := c.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, state.Default().Income, s.Income)

	_, _, err = c.Seed(ctx, "s1", 30)
	require.ErrorIs(t, err, ErrNoDatabase)
	_, err = c.RecentTransactions(ctx, 10)
	require.ErrorIs(t, err, ErrNoDatabase)
	_, err = c.Import(ctx, "s1", strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoDatabase)
}

func TestCoachRunAndReset(t *testing.T) {
	ctx := context.Background()
	c := newCoach(nil)

	out, report, err := c.Run(ctx, "s1", RunRequest{Strategy: state.StrategySnowball})
	require.NoError(t, err)
	require.Equal(t, agents.Order, report.Ran())
	require.Equal(t, state.StrategySnowball, out.DebtPlan.Method)
	require.Equal(t, "Credit Card", out.DebtPlan.Focus)
	require.NotEmpty(t, out.Goals)

	stored, err := c.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, out.BudgetPlan, stored.BudgetPlan)
	_, ok := c.LastReport("s1")
	require.True(t, ok)

	other, err := c.State(ctx, "s2")
	require.NoError(t, err)
	require.True(t, other.BudgetPlan.IsZero())

	reset, err := c.Reset(ctx, "s1")
	require.NoError(t, err)
	require.True(t, reset.BudgetPlan.IsZero())
	require.Empty(t, reset.Goals)
	_, ok = c.LastReport("s1")
	require.False(t, ok)
}

func TestCoachRunRejectsInvalidState(t *testing.T) {
	ctx := context.Background()
	c := newCoach(nil)
	bad := state.Default()
	bad.Income = -1
	require.NoError(t, c.Sessions.Put(ctx, "s1", bad))

	_, _, err := c.Run(ctx, "s1", RunRequest{})
	var verr *state.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCoachSeedAndImport(t *testing.T) {
	ctx := context.Background()
	c := newCoach(setupRepo(t))

	n, s, err := c.Seed(ctx, "s1", 0)
	require.NoError(t, err)
	require.Positive(t, n)
	require.NotEmpty(t, s.Expenses)
	require.Contains(t, s.Expenses, "rent")

	recent, err := c.RecentTransactions(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)

	csv := "date,description,amount,category\n" +
		"2026-03-18,STARBUCKS 221,-350.00,\n" +
		"2026-03-18,Pet food,-900,pets\n"
	res, err := c.Import(ctx, "s1", strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	s, err = c.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 900.0, s.Expenses["pets"])

	totals, sum, err := c.Totals(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, totals)
	require.Equal(t, 2026, sum.Year)
}

func TestImportCSVKeepsRepeatedCharges(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	svc := &IngestService{Transactions: repo, Policy: policy.Default()}

	data := "2026-03-05,Corner Cafe,-4.50,coffee\n" +
		"2026-03-05,Corner Cafe,-4.50,coffee\n"
	res, err := svc.ImportCSV(ctx, strings.NewReader(data), "demo", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	res, err = svc.ImportCSV(ctx, strings.NewReader(data+"2026-03-05,Corner Cafe,-4.50,coffee\n"), "demo", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Equal(t, 2, res.Skipped)

	all, err := repo.ListAll(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	svc := &IngestService{Transactions: repo, Policy: policy.Default()}

	data := "2026-02-01,UBER EATS* SUSHI,-45.67\n" +
		"not-a-date,BAD,10.00\n" +
		"3/02/2026,SALARY ACME,\"+2,500.00\"\n" +
		"2026-02-04,Mystery shop,-12\n" +
		"2026-02-01,UBER EATS* SUSHI,-45.67\n" +
		"2026-02-05,short\n"

	res, err := svc.ImportCSV(ctx, strings.NewReader(data), "demo", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 4, res.Imported)
	require.Zero(t, res.Skipped)
	require.Len(t, res.Errors, 2)

	all, err := repo.ListAll(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "dining", all[0].Category)
	require.EqualValues(t, -4567, all[0].AmountCents)
	require.Equal(t, "dining", all[1].Category)
	require.EqualValues(t, -4567, all[1].AmountCents)
	require.Equal(t, "income", all[2].Category)
	require.EqualValues(t, 250000, all[2].AmountCents)
	require.Equal(t, "uncategorized", all[3].Category)

	again, err := svc.ImportCSV(ctx, strings.NewReader(data), "demo", time.UTC)
	require.NoError(t, err)
	require.Zero(t, again.Imported)
	require.Equal(t, 4, again.Skipped)
}

func TestCoachUsesConfiguredTracer(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	c := newCoach(nil)
	c.Tracer = tp

	_, _, err := c.Run(context.Background(), "s1", RunRequest{Enabled: []agents.Name{agents.Budget}})
	require.NoError(t, err)

	var names []string
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
	}
	require.ElementsMatch(t, []string{"agent.budget", "pass.run"}, names)
}
