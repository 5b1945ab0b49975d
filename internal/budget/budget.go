// Package budget works out what boat a family can afford to keep.
//
// Running a boat costs a yearly fraction of its price (mooring, insurance,
// maintenance, fuel). Given what the family is willing to spend per year,
// the affordable price follows from the average fraction for the boat type.
package budget

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"boatshare/internal/core"
)

// CostRange is the yearly running cost as a fraction of the purchase price.
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

var costRanges = map[core.BoatType]CostRange{
	core.Motorboat: {Min: 0.06, Max: 0.08, Avg: 0.07},
	core.Sailboat:  {Min: 0.05, Max: 0.07, Avg: 0.06},
	core.Speedboat: {Min: 0.07, Max: 0.09, Avg: 0.08},
	core.Fishing:   {Min: 0.04, Max: 0.06, Avg: 0.05},
}

const finnSearchBase = "https://www.finn.no/mobility/search/boat"

var (
	ErrUnknownBoatType = errors.New("unknown boat type")
	ErrInvalidFamily   = errors.New("family size must be at least 1")
)

// Costs returns the running cost range for a boat type.
func Costs(t core.BoatType) (CostRange, error) {
	r, ok := costRanges[t]
	if !ok {
		return CostRange{}, fmt.Errorf("%w: %q", ErrUnknownBoatType, t)
	}
	return r, nil
}

// MaxPrice is the most expensive boat whose average yearly running cost fits
// the annual budget, in whole kroner.
func MaxPrice(annualBudget float64, t core.BoatType) (int64, error) {
	r, err := Costs(t)
	if err != nil {
		return 0, err
	}
	return int64(math.Floor(annualBudget / r.Avg)), nil
}

// PerPersonCost splits a purchase price evenly, rounded down to whole kroner.
func PerPersonCost(price int64, familySize int) int64 {
	if familySize < 1 {
		familySize = 1
	}
	return int64(math.Floor(float64(price) / float64(familySize)))
}

// SearchURL links to Finn.no boats with room for the whole family in the
// given price band. Both private and dealer sales are included.
func SearchURL(minPrice, maxPrice int64) string {
	q := url.Values{}
	q.Set("no_of_seats_from", "8")
	q.Set("price_from", strconv.FormatInt(minPrice, 10))
	q.Set("price_to", strconv.FormatInt(maxPrice, 10))
	q.Add("sales_form", "120")
	q.Add("sales_form", "121")
	return finnSearchBase + "?" + q.Encode()
}

// Summarize computes the budget overview for a family.
func Summarize(familySize int, annualBudget float64, t core.BoatType) (core.BudgetSummary, error) {
	if familySize < 1 {
		return core.BudgetSummary{}, ErrInvalidFamily
	}
	if annualBudget < 0 {
		return core.BudgetSummary{}, fmt.Errorf("annual budget cannot be negative: %w", core.ErrInvalidAmount)
	}
	maxPrice, err := MaxPrice(annualBudget, t)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	perPerson := annualBudget / float64(familySize)
	return core.BudgetSummary{
		FamilySize:       familySize,
		AnnualBudget:     annualBudget,
		BoatType:         t,
		MaxPrice:         maxPrice,
		PerPersonAnnual:  perPerson,
		PerPersonMonthly: int64(math.Floor(perPerson / 12)),
		SearchURL:        SearchURL(0, maxPrice),
	}, nil
}
