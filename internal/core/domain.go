package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	RoleLender   Role = "lender"
	RoleBorrower Role = "borrower"
	RoleSettled  Role = "settled"
)

type (
	// Role tells whether a co-owner paid more, less or exactly their equal share upfront.
	Role string

	// Contribution is one co-owner's upfront payment toward the purchase.
	Contribution struct {
		ID     string  `json:"id" yaml:"id"`
		Name   string  `json:"name" yaml:"name"`
		Amount float64 `json:"amount" yaml:"amount"`
	}

	// FinancingParameters are fixed for the duration of one calculation.
	FinancingParameters struct {
		PurchasePrice             float64 `json:"purchase_price" yaml:"purchase_price"`
		AnnualInterestRatePercent float64 `json:"annual_interest_rate_percent" yaml:"annual_interest_rate_percent"`
		LoanTermYears             int     `json:"loan_term_years" yaml:"loan_term_years"`
	}

	// PersonBreakdown is the per co-owner outcome of a calculation.
	PersonBreakdown struct {
		ID                string  `json:"id"`
		Name              string  `json:"name"`
		Amount            float64 `json:"amount"`
		EqualShare        float64 `json:"equal_share"`
		ExcessUpfront     float64 `json:"excess_upfront"`
		OwnershipShare    float64 `json:"ownership_share"`
		MonthlyCredit     float64 `json:"monthly_credit"`
		NetMonthlyPayment float64 `json:"net_monthly_payment"`
		MonthsToBreakEven int     `json:"months_to_break_even"`
	}

	// FinancingResult aggregates the internal loan between co-owners.
	FinancingResult struct {
		TotalUpfront       float64           `json:"total_upfront"`
		InternalLoanAmount float64           `json:"internal_loan_amount"`
		MonthlyPayment     float64           `json:"monthly_payment"`
		TotalInterest      float64           `json:"total_interest"`
		Breakdown          []PersonBreakdown `json:"breakdown"`
	}

	// ScheduleEntry is one month of the internal loan's amortization.
	ScheduleEntry struct {
		Month            int     `json:"month"`
		Payment          float64 `json:"payment"`
		Interest         float64 `json:"interest"`
		Principal        float64 `json:"principal"`
		RemainingBalance float64 `json:"remaining_balance"`
	}

	// Scenario is a stored calculation: what was asked and what came out.
	Scenario struct {
		ID            int64               `json:"id"`
		Parameters    FinancingParameters `json:"parameters"`
		Contributions []Contribution      `json:"contributions"`
		Result        FinancingResult     `json:"result"`
		CreatedAt     time.Time           `json:"created_at"`
	}
)

var (
	ErrEmptyOwnerSet   = errors.New("at least one co-owner is required")
	ErrNonPositiveTerm = errors.New("loan term must be at least one year")
	ErrNegativeAmount  = errors.New("contribution amount cannot be negative")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidInput    = errors.New("invalid input")
)

// Role derives the co-owner's position in the internal loan.
func (p PersonBreakdown) Role() Role {
	switch {
	case p.ExcessUpfront > 0:
		return RoleLender
	case p.ExcessUpfront < 0:
		return RoleBorrower
	default:
		return RoleSettled
	}
}

func (c Contribution) Validate() error {
	if !isFinite(c.Amount) {
		return fmt.Errorf("%w: amount must be finite", ErrInvalidAmount)
	}
	if c.Amount < 0 {
		return ErrNegativeAmount
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: name too long (max 100 characters)", ErrInvalidInput)
	}
	return nil
}

// ValidateContributions checks the owner set a calculation will run over.
func ValidateContributions(contributions []Contribution) error {
	if len(contributions) == 0 {
		return ErrEmptyOwnerSet
	}
	seen := make(map[string]struct{}, len(contributions))
	var total float64
	for _, c := range contributions {
		if err := c.Validate(); err != nil {
			return err
		}
		total += c.Amount
		if !isFinite(total) {
			return fmt.Errorf("%w: contributions add up past the float range", ErrInvalidAmount)
		}
		id := strings.TrimSpace(c.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate contribution id %q", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (p FinancingParameters) Validate() error {
	if p.LoanTermYears <= 0 {
		return ErrNonPositiveTerm
	}
	if !isFinite(p.PurchasePrice) {
		return fmt.Errorf("%w: purchase price must be finite", ErrInvalidAmount)
	}
	if !isFinite(p.AnnualInterestRatePercent) {
		return fmt.Errorf("%w: interest rate must be finite", ErrInvalidAmount)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ByID returns the breakdown row for the given co-owner.
func (r FinancingResult) ByID(id string) (PersonBreakdown, bool) {
	for _, p := range r.Breakdown {
		if p.ID == id {
			return p, true
		}
	}
	return PersonBreakdown{}, false
}
