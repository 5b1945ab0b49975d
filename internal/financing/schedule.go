package financing

import (
	"github.com/shopspring/decimal"

	"boatshare/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Schedule breaks the internal loan of a computed result down month by month.
// Amounts are rounded to øre; the last month absorbs the rounding so the
// remaining balance ends at exactly zero. A settled result has no schedule.
func Schedule(result core.FinancingResult, params core.FinancingParameters) []core.ScheduleEntry {
	numPayments := params.LoanTermYears * 12
	if numPayments <= 0 || result.InternalLoanAmount <= 0 {
		return nil
	}

	remaining := decimal.NewFromFloat(result.InternalLoanAmount).Round(2)
	payment := decimal.NewFromFloat(result.MonthlyPayment).Round(2)
	monthlyRate := decimal.Zero
	if params.AnnualInterestRatePercent > 0 {
		monthlyRate = decimal.NewFromFloat(params.AnnualInterestRatePercent).Div(hundred).Div(decimal.NewFromInt(12))
	}

	schedule := make([]core.ScheduleEntry, 0, numPayments)
	for month := 1; month <= numPayments; month++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principal := payment.Sub(interest)
		if month == numPayments || principal.GreaterThan(remaining) {
			principal = remaining
		}
		remaining = remaining.Sub(principal)

		schedule = append(schedule, core.ScheduleEntry{
			Month:            month,
			Payment:          principal.Add(interest).InexactFloat64(),
			Interest:         interest.InexactFloat64(),
			Principal:        principal.InexactFloat64(),
			RemainingBalance: remaining.InexactFloat64(),
		})
		if remaining.IsZero() {
			break
		}
	}
	return schedule
}

// BreakEvenMonth is the first month after which nothing is owed, or 0 for an
// empty schedule.
func BreakEvenMonth(schedule []core.ScheduleEntry) int {
	for _, e := range schedule {
		if e.RemainingBalance <= 0 {
			return e.Month
		}
	}
	return 0
}

// Totals sums what is paid over a schedule.
func Totals(schedule []core.ScheduleEntry) (paid, interest float64) {
	p, in := decimal.Zero, decimal.Zero
	for _, e := range schedule {
		p = p.Add(decimal.NewFromFloat(e.Payment))
		in = in.Add(decimal.NewFromFloat(e.Interest))
	}
	return p.InexactFloat64(), in.InexactFloat64()
}
