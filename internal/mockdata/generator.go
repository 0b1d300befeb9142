// Package mockdata generates synthetic transactions for demos and tests.
package mockdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jask/smartsavernet/internal/database/repository"
)

type spend struct {
	Category string
	Lo, Hi   float64
}

var spends = []spend{
	{"groceries", 200, 1200},
	{"dining", 150, 900},
	{"transport", 50, 400},
	{"utilities", 600, 2000},
	{"entertainment", 200, 1200},
	{"shopping", 300, 2500},
}

var (
	salaries = []float64{45000, 60000, 75000}
	rents    = []float64{8000, 12000, 15000}
)

// Generate returns deterministic transactions for the days ending at now, oldest first.
// Salary lands on the 1st, rent on the 3rd and one random spend on every other day. Coffee
// every third day and two monthly subscriptions supply the small recurring charges.
func Generate(userID string, days int, now time.Time, seed int64) []repository.Transaction {
	rng := rand.New(rand.NewSource(seed))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	ids := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", userID, seed)))

	var out []repository.Transaction
	add := func(d time.Time, desc string, amount float64, cat string) {
		out = append(out, repository.Transaction{
			ID:          uuid.NewSHA1(ids, []byte(fmt.Sprintf("%d", len(out)))).String(),
			UserID:      userID,
			Date:        d,
			Description: desc,
			AmountCents: repository.ToCents(amount),
			Category:    cat,
		})
	}

	for i := days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		switch d.Day() {
		case 1:
			add(d, "Salary Credit", salaries[rng.Intn(len(salaries))], "income")
			continue
		case 3:
			add(d, "Monthly Rent", -rents[rng.Intn(len(rents))], "rent")
			continue
		case 15:
			add(d, "Streaming Subscription", -499, "subscriptions")
		case 20:
			add(d, "Music Subscription", -199, "subscriptions")
		}

		s := spends[rng.Intn(len(spends))]
		amt := s.Lo + rng.Float64()*(s.Hi-s.Lo)
		add(d, purchase(s.Category), -roundCents(amt), s.Category)

		if d.Day()%3 == 0 {
			add(d, "Corner Cafe", -roundCents(80+rng.Float64()*100), "coffee")
		}
	}
	return out
}

func purchase(category string) string {
	return string(category[0]-'a'+'A') + category[1:] + " Purchase"
}

func roundCents(v float64) float64 {
	return float64(repository.ToCents(v)) / 100
}

// Seed replaces the user's transactions with a generated set and returns how many were written.
func Seed(ctx context.Context, repo *repository.TransactionRepo, userID string, days int, now time.Time, seed int64) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("seed: days must be positive, got %d", days)
	}
	if _, err := repo.DeleteAll(ctx, userID); err != nil {
		return 0, err
	}
	return repo.BulkInsert(ctx, Generate(userID, days, now, seed))
}
