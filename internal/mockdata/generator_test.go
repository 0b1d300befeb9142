package mockdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/smartsavernet/internal/database"
	"github.com/jask/smartsavernet/internal/database/repository"
)

var now = time.Date(2026, time.April, 30, 15, 0, 0, 0, time.UTC)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate("demo", 90, now, 7)
	b := Generate("demo", 90, now, 7)
	require.Equal(t, a, b)
	require.NotEqual(t, a, Generate("demo", 90, now, 8))
}

func TestGenerateShape(t *testing.T) {
	txns := Generate("demo", 90, now, 1)
	require.NotEmpty(t, txns)

	var salaries, rents, coffees int
	for i, tx := range txns {
		require.Equal(t, "demo", tx.UserID)
		require.NotEmpty(t, tx.ID)
		if i > 0 {
			require.False(t, tx.Date.Before(txns[i-1].Date), "oldest first")
		}
		switch tx.Category {
		case "income":
			salaries++
			require.Equal(t, 1, tx.Date.Day())
			require.Positive(t, tx.AmountCents)
		case "rent":
			rents++
			require.Equal(t, 3, tx.Date.Day())
		case "coffee":
			coffees++
			require.Less(t, tx.Amount(), 0.0)
			require.Greater(t, tx.Amount(), -181.0)
		default:
			require.Negative(t, tx.AmountCents)
		}
	}
	require.Equal(t, 3, salaries)
	require.Equal(t, 3, rents)
	require.GreaterOrEqual(t, coffees, 25)
	require.Equal(t, "Groceries Purchase", purchase("groceries"))
}

func TestSeedReplacesExisting(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, database.SQLite))
	repo := repository.NewTransactionRepo(db)

	n, err := Seed(ctx, repo, "demo", 30, now, 3)
	require.NoError(t, err)
	again, err := Seed(ctx, repo, "demo", 30, now, 3)
	require.NoError(t, err)
	require.Equal(t, n, again)

	count, err := repo.Count(ctx, "demo")
	require.NoError(t, err)
	require.Equal(t, n, count)

	_, err = Seed(ctx, repo, "demo", 0, now, 3)
	require.Error(t, err)
}
