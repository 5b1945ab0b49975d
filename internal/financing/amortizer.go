// Package financing splits a shared purchase fairly between co-owners.
//
// Everyone owns an equal share regardless of what they paid upfront. Whoever
// paid more than their share lends the difference to whoever paid less, and
// that internal loan is paid back monthly with interest over the loan term.
package financing

import (
	"math"

	"boatshare/internal/core"
)

// Compute returns each co-owner's share and the internal loan that evens out
// uneven upfront contributions. The breakdown keeps the input order.
//
// Only an empty owner set and a non-positive term are rejected. Negative
// prices or rates are computed as given; range checks belong to the caller.
func Compute(params core.FinancingParameters, contributions []core.Contribution) (core.FinancingResult, error) {
	if len(contributions) == 0 {
		return core.FinancingResult{}, core.ErrEmptyOwnerSet
	}
	if err := params.Validate(); err != nil {
		return core.FinancingResult{}, err
	}

	owners := float64(len(contributions))
	equalShare := params.PurchasePrice / owners

	result := core.FinancingResult{
		Breakdown: make([]core.PersonBreakdown, len(contributions)),
	}

	var totalLent, totalBorrowed float64
	var lenders, borrowers int
	for i, c := range contributions {
		result.TotalUpfront += c.Amount
		p := core.PersonBreakdown{
			ID:             c.ID,
			Name:           c.Name,
			Amount:         c.Amount,
			EqualShare:     equalShare,
			ExcessUpfront:  c.Amount - equalShare,
			OwnershipShare: 1 / owners,
		}
		switch {
		case p.ExcessUpfront > 0:
			lenders++
			totalLent += p.ExcessUpfront
		case p.ExcessUpfront < 0:
			borrowers++
			totalBorrowed += -p.ExcessUpfront
		}
		result.Breakdown[i] = p
	}

	// Nobody owes anybody unless both sides exist.
	if lenders == 0 || borrowers == 0 {
		return result, nil
	}

	// The smaller side caps what can be lent; the rest of the larger side is
	// left unamortized.
	loan := math.Min(totalLent, totalBorrowed)
	numPayments := params.LoanTermYears * 12
	payment := MonthlyInstallment(loan, params.AnnualInterestRatePercent, numPayments)

	result.InternalLoanAmount = loan
	result.MonthlyPayment = payment
	result.TotalInterest = payment*float64(numPayments) - loan

	for i := range result.Breakdown {
		p := &result.Breakdown[i]
		switch {
		case p.ExcessUpfront > 0:
			p.MonthlyCredit = p.ExcessUpfront / totalLent * payment
			p.NetMonthlyPayment = -p.MonthlyCredit
			p.MonthsToBreakEven = numPayments
		case p.ExcessUpfront < 0:
			p.NetMonthlyPayment = -p.ExcessUpfront / totalBorrowed * payment
			p.MonthsToBreakEven = numPayments
		}
	}

	return result, nil
}

// MonthlyInstallment is the fixed annuity payment for a loan. A zero rate
// pays the principal back in equal parts.
func MonthlyInstallment(principal, annualRatePercent float64, numPayments int) float64 {
	if numPayments <= 0 {
		return 0
	}
	monthlyRate := annualRatePercent / 100 / 12
	n := float64(numPayments)
	if monthlyRate > 0 {
		factor := math.Pow(1+monthlyRate, n)
		return principal * monthlyRate * factor / (factor - 1)
	}
	return principal / n
}
