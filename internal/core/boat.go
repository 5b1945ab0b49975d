package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Motorboat BoatType = "motorboat"
	Sailboat  BoatType = "sailboat"
	Speedboat BoatType = "speedboat"
	Fishing   BoatType = "fishing"
)

type (
	BoatType string

	Votes struct {
		Up   int `json:"up"`
		Down int `json:"down"`
	}

	// Boat is a proposal a family member put on the shortlist.
	Boat struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Price       int64     `json:"price"`
		Year        string    `json:"year,omitempty"`
		Length      string    `json:"length,omitempty"`
		Engine      string    `json:"engine,omitempty"`
		FinnURL     string    `json:"finn_url,omitempty"`
		Description string    `json:"description,omitempty"`
		AddedBy     string    `json:"added_by"`
		AddedAt     time.Time `json:"added_at"`
		Votes       Votes     `json:"votes"`
		Version     int64     `json:"version"`
	}

	// BudgetSummary is what a family can afford given a yearly running-cost budget.
	BudgetSummary struct {
		FamilySize       int      `json:"family_size"`
		AnnualBudget     float64  `json:"annual_budget"`
		BoatType         BoatType `json:"boat_type"`
		MaxPrice         int64    `json:"max_price"`
		PerPersonAnnual  float64  `json:"per_person_annual"`
		PerPersonMonthly int64    `json:"per_person_monthly"`
		SearchURL        string   `json:"search_url"`
	}
)

// DefaultAddedBy is used when a proposal does not say who suggested it.
const DefaultAddedBy = "Family Member"

var ErrBoatNotFound = errors.New("boat not found")

// BoatTypes lists the supported boat types in display order.
func BoatTypes() []BoatType {
	return []BoatType{Motorboat, Sailboat, Speedboat, Fishing}
}

func (t BoatType) IsValid() bool {
	switch t {
	case Motorboat, Sailboat, Speedboat, Fishing:
		return true
	}
	return false
}

// Score is the net vote count used to rank proposals.
func (b Boat) Score() int {
	return b.Votes.Up - b.Votes.Down
}

func (b Boat) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return fmt.Errorf("%w: name too long (max 200 characters)", ErrInvalidInput)
	}
	if b.Price <= 0 {
		return ErrInvalidPrice
	}
	if len(b.Description) > 2000 {
		return fmt.Errorf("%w: description too long (max 2000 characters)", ErrInvalidInput)
	}
	if b.FinnURL != "" && !strings.HasPrefix(b.FinnURL, "http://") && !strings.HasPrefix(b.FinnURL, "https://") {
		return fmt.Errorf("%w: finn url must be an http(s) link", ErrInvalidInput)
	}
	return nil
}
