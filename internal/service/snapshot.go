package service

import (
	"time"

	"github.com/jask/smartsavernet/internal/calc"
	"github.com/jask/smartsavernet/internal/database/repository"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

// FromTransactions rebuilds income, expenses and charge counts from one calendar month of
// transactions: the last full month before now, or the current month to date when nothing
// is stored for the last one. Goals, debts and preferences come from base. Credits in the
// income category count as income; other credits are refunds against their category. When
// the month holds no income the base income is kept.
func FromTransactions(base state.UserState, txns []repository.Transaction, p *policy.Policy, now time.Time) state.UserState {
	s := base.Clone()
	start, end := snapshotWindow(txns, now)

	expenses := map[string]float64{}
	counts := map[string]int{}
	var income float64
	for _, t := range txns {
		if t.Date.Before(start) || !t.Date.Before(end) {
			continue
		}
		cat := p.Normalize(t.Category)
		if t.AmountCents > 0 {
			if cat == "income" {
				income += t.Amount()
			} else {
				expenses[cat] -= t.Amount()
			}
			continue
		}
		expenses[cat] += -t.Amount()
		counts[cat]++
	}
	for cat, v := range expenses {
		expenses[cat] = calc.Round2(max(v, 0))
	}

	if income > 0 {
		s.Income = calc.Round2(income)
	}
	s.Expenses = expenses
	s.SpendCounts = counts
	return s
}

// snapshotWindow returns the half-open date range [start, end) the snapshot covers.
func snapshotWindow(txns []repository.Transaction, now time.Time) (time.Time, time.Time) {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	for _, t := range txns {
		if !t.Date.Before(lastMonth) && t.Date.Before(thisMonth) {
			return lastMonth, thisMonth
		}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return thisMonth, today.AddDate(0, 0, 1)
}
