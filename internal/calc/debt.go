package calc

import (
	"sort"

	"github.com/jask/smartsavernet/internal/state"
)

// DefaultMaxMonths bounds the payoff simulation.
const DefaultMaxMonths = 600

const settled = 0.005

// OrderDebts returns a copy ordered by strategy. Avalanche sorts by interest rate descending,
// snowball by balance ascending; ties keep their input order.
func OrderDebts(debts []state.Debt, strategy state.Strategy) []state.Debt {
	out := append([]state.Debt(nil), debts...)
	if strategy == state.StrategySnowball {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Balance < out[j].Balance })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].InterestRate > out[j].InterestRate })
	}
	return out
}

// PlanPayoff orders debts and allocates extra money in a waterfall: everything above the
// minimums goes to the first debt until it is retired, then rolls to the next. Months to payoff
// come from a month-by-month simulation where freed minimums roll forward; -1 means the debt
// does not amortise within maxMonths.
func PlanPayoff(debts []state.Debt, strategy state.Strategy, extra float64, maxMonths int) state.DebtPlan {
	if strategy == "" {
		strategy = state.StrategyAvalanche
	}
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonths
	}
	if extra < 0 {
		extra = 0
	}
	ordered := OrderDebts(debts, strategy)
	plan := state.DebtPlan{Method: strategy, ExtraBudget: Round2(extra)}
	if len(ordered) == 0 {
		return plan
	}

	remaining := extra
	var outlay float64
	plan.Schedule = make([]state.PayoffStep, len(ordered))
	for i, d := range ordered {
		minPay := min(d.MinPayment, d.Balance)
		give := min(remaining, max(0, d.Balance-minPay))
		remaining -= give
		outlay += minPay + give
		plan.Schedule[i] = state.PayoffStep{
			Debt:         d.Name,
			Order:        i + 1,
			MinPayment:   Round2(minPay),
			ExtraPayment: Round2(give),
		}
		if plan.Focus == "" && d.Balance > settled {
			plan.Focus = d.Name
		}
	}
	plan.TotalMonthlyOutlay = Round2(outlay)

	months, interest := simulate(ordered, extra, maxMonths)
	plan.ProjectedInterest = Round2(interest)
	plan.MonthsToDebtFree = 0
	for i, m := range months {
		plan.Schedule[i].MonthsToPayoff = m
		if m < 0 {
			plan.MonthsToDebtFree = -1
		} else if plan.MonthsToDebtFree >= 0 && m > plan.MonthsToDebtFree {
			plan.MonthsToDebtFree = m
		}
	}
	return plan
}

func simulate(ordered []state.Debt, extra float64, maxMonths int) ([]int, float64) {
	balances := make([]float64, len(ordered))
	months := make([]int, len(ordered))
	budget := extra
	open := 0
	for i, d := range ordered {
		balances[i] = d.Balance
		budget += d.MinPayment
		if d.Balance > settled {
			months[i] = -1
			open++
		}
	}

	var interest float64
	for month := 1; month <= maxMonths && open > 0; month++ {
		pay := budget
		for i, d := range ordered {
			if balances[i] <= settled {
				continue
			}
			accrued := balances[i] * d.InterestRate / 1200
			balances[i] += accrued
			interest += accrued
		}
		for i, d := range ordered {
			if balances[i] <= settled {
				continue
			}
			p := min(d.MinPayment, balances[i], pay)
			balances[i] -= p
			pay -= p
		}
		for i := range ordered {
			if pay <= 0 {
				break
			}
			if balances[i] <= settled {
				continue
			}
			p := min(pay, balances[i])
			balances[i] -= p
			pay -= p
		}
		for i := range ordered {
			if months[i] == -1 && balances[i] <= settled {
				months[i] = month
				open--
			}
		}
	}
	return months, interest
}
