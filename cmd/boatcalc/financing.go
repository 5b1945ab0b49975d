package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"boatshare/internal/core"
	"boatshare/internal/services"
)

// scenarioFile is the YAML layout accepted by --scenario.
type scenarioFile struct {
	Parameters    core.FinancingParameters `yaml:"parameters"`
	Contributions []core.Contribution      `yaml:"contributions"`
}

type financingFlags struct {
	price         string
	rate          float64
	years         int
	owners        int
	equal         bool
	contributions []string
	scenario      string
	json          bool
}

func (f *financingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.price, "price", "", `purchase price in kroner, e.g. "750 000"`)
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "annual interest rate in percent")
	cmd.Flags().IntVar(&f.years, "years", 0, "loan term in years")
	cmd.Flags().IntVar(&f.owners, "owners", 0, "number of co-owners when no contributions are given")
	cmd.Flags().BoolVar(&f.equal, "equal", false, "split the price evenly when no contributions are given")
	cmd.Flags().StringArrayVarP(&f.contributions, "contribution", "c", nil, `upfront payment as name=amount, repeatable`)
	cmd.Flags().StringVar(&f.scenario, "scenario", "", "YAML file with parameters and contributions")
	cmd.Flags().BoolVar(&f.json, "json", false, "print JSON instead of a table")
}

// inputs resolves the calculation inputs. Precedence: explicit flags, then
// the scenario file, then the configured defaults.
func (f *financingFlags) inputs(cmd *cobra.Command, a *app) (core.FinancingParameters, []core.Contribution, error) {
	params := a.defaults.Parameters()
	var contributions []core.Contribution

	if f.scenario != "" {
		sc, err := loadScenario(f.scenario)
		if err != nil {
			return params, nil, err
		}
		params = sc.Parameters
		contributions = sc.Contributions
	}

	flags := cmd.Flags()
	if flags.Changed("price") {
		price, err := core.ParseKroner(f.price)
		if err != nil {
			return params, nil, fmt.Errorf("--price %q: %w", f.price, err)
		}
		params.PurchasePrice = price
	}
	if flags.Changed("rate") {
		params.AnnualInterestRatePercent = f.rate
	}
	if flags.Changed("years") {
		params.LoanTermYears = f.years
	}

	if len(f.contributions) > 0 {
		parsed, err := parseContributions(f.contributions)
		if err != nil {
			return params, nil, err
		}
		contributions = parsed
	}
	if len(contributions) == 0 {
		size := f.owners
		if size < 1 {
			size = a.defaults.FamilySize
		}
		if f.equal {
			contributions = core.EqualContributions(params.PurchasePrice, size)
		} else {
			contributions = core.ResizeContributions(nil, size)
		}
	} else if flags.Changed("owners") {
		contributions = core.ResizeContributions(contributions, f.owners)
	}
	return params, contributions, nil
}

func loadScenario(path string) (scenarioFile, error) {
	var sc scenarioFile
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return sc, nil
}

// parseContributions turns name=amount pairs into contributions numbered
// in the order given.
func parseContributions(raw []string) ([]core.Contribution, error) {
	out := make([]core.Contribution, 0, len(raw))
	for i, kv := range raw {
		name, amount, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--contribution %q: want name=amount", kv)
		}
		v, err := core.ParseKroner(amount)
		if err != nil {
			return nil, fmt.Errorf("--contribution %q: %w", kv, err)
		}
		c := core.DefaultContribution(i)
		c.Name = name
		c.Amount = v
		out = append(out, c)
	}
	return out, nil
}

func newFinancingCmd(a *app) *cobra.Command {
	f := &financingFlags{}
	var owner string
	cmd := &cobra.Command{
		Use:   "financing",
		Short: "Split the purchase and compute the internal loan between co-owners",
		Example: `  boatcalc financing --price "750 000" -c Ola=400000 -c Kari=200000 -c Per=150000 -c Anne=0
  boatcalc financing --scenario family.yaml --rate 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, contributions, err := f.inputs(cmd, a)
			if err != nil {
				return err
			}
			svc := services.NewFinancingService(nil, nil, a.logger)
			result, err := svc.Calculate(context.Background(), params, contributions)
			if err != nil {
				return err
			}
			if owner != "" {
				p, ok := result.ByID(owner)
				if !ok {
					return fmt.Errorf("--owner %q: no such co-owner", owner)
				}
				if f.json {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				return printPerson(cmd.OutOrStdout(), p)
			}
			if f.json {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printFinancing(cmd.OutOrStdout(), params, result)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&owner, "owner", "", "print only the co-owner with this id")
	return cmd
}

func newScheduleCmd(a *app) *cobra.Command {
	f := &financingFlags{}
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the month-by-month repayment plan of the internal loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, contributions, err := f.inputs(cmd, a)
			if err != nil {
				return err
			}
			svc := services.NewFinancingService(nil, nil, a.logger)
			sched, err := svc.Schedule(context.Background(), params, contributions)
			if err != nil {
				return err
			}
			if f.json {
				return writeJSON(cmd.OutOrStdout(), sched)
			}
			return printSchedule(cmd.OutOrStdout(), sched)
		},
	}
	f.register(cmd)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFinancing(w io.Writer, p core.FinancingParameters, r core.FinancingResult) error {
	fmt.Fprintf(w, "Purchase price:  %s\n", core.FormatKroner(p.PurchasePrice))
	fmt.Fprintf(w, "Interest rate:   %.2f %%\n", p.AnnualInterestRatePercent)
	fmt.Fprintf(w, "Loan term:       %d years\n", p.LoanTermYears)
	fmt.Fprintf(w, "Paid upfront:    %s\n", core.FormatKroner(r.TotalUpfront))
	fmt.Fprintf(w, "Internal loan:   %s\n", core.FormatKroner(r.InternalLoanAmount))
	fmt.Fprintf(w, "Monthly payment: %s\n", core.FormatKroner(r.MonthlyPayment))
	fmt.Fprintf(w, "Total interest:  %s\n\n", core.FormatKroner(r.TotalInterest))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Name\tPaid\tShare\tExcess\tOwnership\tMonthly\tRole\t")
	for _, b := range r.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f %%\t%s\t%s\t\n",
			b.Name,
			core.FormatKroner(b.Amount),
			core.FormatKroner(b.EqualShare),
			core.FormatKroner(b.ExcessUpfront),
			b.OwnershipShare*100,
			core.FormatKroner(b.NetMonthlyPayment),
			b.Role())
	}
	return tw.Flush()
}

func printPerson(w io.Writer, b core.PersonBreakdown) error {
	fmt.Fprintf(w, "Name:            %s\n", b.Name)
	fmt.Fprintf(w, "Paid upfront:    %s\n", core.FormatKroner(b.Amount))
	fmt.Fprintf(w, "Equal share:     %s\n", core.FormatKroner(b.EqualShare))
	fmt.Fprintf(w, "Excess:          %s\n", core.FormatKroner(b.ExcessUpfront))
	fmt.Fprintf(w, "Ownership:       %.1f %%\n", b.OwnershipShare*100)
	fmt.Fprintf(w, "Monthly:         %s\n", core.FormatKroner(b.NetMonthlyPayment))
	_, err := fmt.Fprintf(w, "Role:            %s\n", b.Role())
	return err
}

func printSchedule(w io.Writer, s services.ScheduleResult) error {
	if len(s.Schedule) == 0 {
		_, err := fmt.Fprintln(w, "Contributions are already even; there is nothing to repay.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tPayment\tInterest\tPrincipal\tRemaining\t")
	for _, e := range s.Schedule {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t\n", e.Month, e.Payment, e.Interest, e.Principal, e.RemainingBalance)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nPaid off after month %d: %s in total, %s of it interest\n",
		s.BreakEvenMonth, core.FormatKroner(s.TotalPaid), core.FormatKroner(s.TotalInterest))
	return nil
}
