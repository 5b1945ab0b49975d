package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"boatshare/internal/budget"
	"boatshare/internal/core"
)

func newBudgetCmd(a *app) *cobra.Command {
	var (
		family     int
		annual     string
		boatType   string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:     "budget",
		Short:   "Find the most expensive boat a yearly running-cost budget can keep",
		Example: `  boatcalc budget --family 4 --budget "50 000" --type sailboat`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("family") {
				family = a.defaults.FamilySize
			}
			amount := a.defaults.AnnualBudget
			if flags.Changed("budget") {
				v, err := core.ParseKroner(annual)
				if err != nil {
					return fmt.Errorf("--budget %q: %w", annual, err)
				}
				amount = v
			}
			t := a.defaults.BoatType
			if flags.Changed("type") {
				t = core.BoatType(boatType)
			}

			summary, err := budget.Summarize(family, amount, t)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			return printBudget(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().IntVar(&family, "family", 0, "number of family members sharing the boat")
	cmd.Flags().StringVar(&annual, "budget", "", "yearly running-cost budget in kroner")
	cmd.Flags().StringVar(&boatType, "type", "", fmt.Sprintf("boat type, one of %v", core.BoatTypes()))
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	return cmd
}

func printBudget(w io.Writer, s core.BudgetSummary) error {
	costs, err := budget.Costs(s.BoatType)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Boat type:          %s (%.0f-%.0f %% of price per year)\n", s.BoatType, costs.Min*100, costs.Max*100)
	fmt.Fprintf(w, "Yearly budget:      %s\n", core.FormatKroner(s.AnnualBudget))
	fmt.Fprintf(w, "Max boat price:     %s\n", core.FormatKroner(float64(s.MaxPrice)))
	fmt.Fprintf(w, "Per person yearly:  %s\n", core.FormatKroner(s.PerPersonAnnual))
	fmt.Fprintf(w, "Per person monthly: %s\n", core.FormatKroner(float64(s.PerPersonMonthly)))
	_, err = fmt.Fprintf(w, "Search Finn.no:     %s\n", s.SearchURL)
	return err
}
