package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is how transaction dates are stored. Lexical order equals date order.
const DateLayout = "2006-01-02"

// Transaction represents a transaction row. AmountCents is positive for credits and negative
// for spend.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
}

// Amount returns the signed amount in currency units.
func (t Transaction) Amount() float64 {
	return decimal.New(t.AmountCents, -2).InexactFloat64()
}

// IsSpend reports whether money left the account.
func (t Transaction) IsSpend() bool { return t.AmountCents < 0 }

// ToCents converts a currency amount to cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// CategoryTotal is a per-category aggregate.
type CategoryTotal struct {
	Category   string `json:"category"`
	TotalCents int64  `json:"total_cents"`
	Count      int    `json:"count"`
}

// MonthlySummary is the count and sums for one calendar month.
type MonthlySummary struct {
	Year        int   `json:"year"`
	Month       int   `json:"month"`
	Count       int   `json:"count"`
	TotalCents  int64 `json:"total_cents"`
	SpendCents  int64 `json:"spend_cents"`
	IncomeCents int64 `json:"income_cents"`
}
