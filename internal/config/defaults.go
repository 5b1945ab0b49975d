package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"boatshare/internal/core"
)

// Defaults are the starting values of the calculators before a family edits them.
type Defaults struct {
	FamilySize   int           `yaml:"family_size"`
	AnnualBudget float64       `yaml:"annual_budget"`
	BoatType     core.BoatType `yaml:"boat_type"`
	BoatPrice    float64       `yaml:"boat_price"`
	InterestRate float64       `yaml:"interest_rate"`
	LoanYears    int           `yaml:"loan_years"`
}

func BuiltinDefaults() Defaults {
	return Defaults{
		FamilySize:   4,
		AnnualBudget: 50000,
		BoatType:     core.Motorboat,
		BoatPrice:    750000,
		InterestRate: 4.5,
		LoanYears:    5,
	}
}

func (d Defaults) Validate() error {
	var errs []error
	if d.FamilySize < 1 {
		errs = append(errs, fmt.Errorf("invalid default family size %d: must be at least 1", d.FamilySize))
	}
	if d.AnnualBudget < 0 {
		errs = append(errs, fmt.Errorf("invalid default annual budget %v: cannot be negative", d.AnnualBudget))
	}
	if !d.BoatType.IsValid() {
		errs = append(errs, fmt.Errorf("invalid default boat type '%s': must be one of %v", d.BoatType, core.BoatTypes()))
	}
	if d.BoatPrice < 0 {
		errs = append(errs, fmt.Errorf("invalid default boat price %v: cannot be negative", d.BoatPrice))
	}
	if d.InterestRate < 0 || d.InterestRate > 15 {
		errs = append(errs, fmt.Errorf("invalid default interest rate %v: must be between 0 and 15", d.InterestRate))
	}
	if d.LoanYears < 1 {
		errs = append(errs, fmt.Errorf("invalid default loan term %d: must be at least 1 year", d.LoanYears))
	}
	return errors.Join(errs...)
}

// Parameters turns the defaults into the inputs of a financing calculation.
func (d Defaults) Parameters() core.FinancingParameters {
	return core.FinancingParameters{
		PurchasePrice:             d.BoatPrice,
		AnnualInterestRatePercent: d.InterestRate,
		LoanTermYears:             d.LoanYears,
	}
}

// LoadDefaults overlays the YAML file at path on top of the built-in
// defaults. Keys missing from the file keep their built-in value.
func LoadDefaults(path string) (Defaults, error) {
	d := BuiltinDefaults()
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read defaults file: %w", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse defaults file %s: %w", path, err)
	}
	return d, nil
}

// LoadWithDefaults is Load plus the defaults file named by DEFAULTS_FILE.
func LoadWithDefaults() (*Config, error) {
	cfg := Load()
	d, err := LoadDefaults(cfg.DefaultsFile)
	if err != nil {
		return cfg, err
	}
	cfg.Defaults = d
	return cfg, nil
}
