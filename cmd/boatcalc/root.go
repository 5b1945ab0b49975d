package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"boatshare/internal/config"
	applog "boatshare/internal/log"
)

// app holds what every subcommand shares once flags are parsed.
type app struct {
	defaultsFile string
	verbose      bool

	defaults config.Defaults
	logger   *applog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "boatcalc",
		Short:         "Work out how a family can share the cost of a boat",
		Long:          "boatcalc computes the internal loan between co-owners, its monthly plan and what boat a yearly budget can keep afloat.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.defaultsFile, "defaults", os.Getenv("DEFAULTS_FILE"), "YAML file overriding the built-in calculator defaults")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log calculation details to stderr")

	root.AddCommand(
		newFinancingCmd(a),
		newScheduleCmd(a),
		newBudgetCmd(a),
	)
	return root
}

func (a *app) init(logOut io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = applog.New(applog.Config{Level: level, Component: applog.ComponentCLI, Output: logOut})

	d, err := config.LoadDefaults(a.defaultsFile)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	a.defaults = d
	return nil
}
