package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shiprisk/internal/config"
	"shiprisk/internal/infrastructure"
	transport "shiprisk/internal/transport/http"
	"shiprisk/pkg/contracts"
)

func newRootCmd() *cobra.Command {
	var (
		opts overrides
		a    *app
	)

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Predict late shipments and price the prevention policy",
		Long: `shiprisk loads a shipment spreadsheet, engineers and encodes features,
fits a logistic regression for on-time delivery, evaluates it on held-out
partitions and projects the financial effect of acting on its predictions.`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			var err error
			a, err = newApp(opts, cmd.ErrOrStderr())
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default: $"+config.ConfigFileEnv+" or shiprisk.yaml)")
	flags.StringVarP(&opts.input, "input", "i", "", "shipment file (.xlsx or .csv)")
	flags.StringVar(&opts.sheet, "sheet", "", "worksheet name for .xlsx input")
	flags.StringVar(&opts.artifacts, "artifacts", "", "artifact directory")
	flags.StringVar(&opts.reports, "reports", "", "report output directory")
	flags.StringVar(&opts.storeKind, "store", "", "artifact store backend (file|badger)")
	flags.StringVar(&opts.labelRule, "label-rule", "", "label rule for thresholding (inverted|natural)")
	flags.StringVar(&opts.fitScope, "fit-scope", "", "rows the encoder and normalizer learn from (train|all)")
	flags.Int64Var(&opts.seed, "seed", 0, "partition seed")

	current := func() *app { return a }
	root.AddCommand(
		newPrepareCmd(current),
		newFitCmd(current),
		newEvaluateCmd(current),
		newRunCmd(current),
		newReportCmd(current),
		newServeCmd(current),
	)

	// Release the app on every exit path, including failed runs.
	for _, sub := range root.Commands() {
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if a != nil {
				if closeErr := a.close(); err == nil {
					err = closeErr
				}
				a = nil
			}
			return err
		}
	}
	return root
}

// commandContext cancels on SIGINT/SIGTERM and carries a fresh run ID
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return infrastructure.EnsureRunID(ctx), stop
}

func newPrepareCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Ingest, clean, engineer and split the input; persist the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()

			state, err := app().pipeline.Prepare(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prepared %d rows (run %s)\n", len(state.Dataset.Rows), state.ID)
			for _, b := range state.Partitions.Balance {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %5d rows  %5d on time  %5d late\n", b.Name, b.Rows, b.OnTime, b.Late)
			}
			return nil
		},
	}
}

func newFitCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fit",
		Short: "Fit the encoder, normalizer and logistic model on the training partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()

			state, err := app().pipeline.Fit(ctx)
			if err != nil {
				return err
			}
			m := state.Fitted.Model
			fmt.Fprintf(cmd.OutOrStdout(), "Fitted %d features on %d rows in %d iterations (converged: %t)\n",
				len(m.Features), m.TrainingRows, m.Iterations, m.Converged)
			for _, w := range state.Fitted.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s: %s\n", w.Kind, w.Message)
			}
			return nil
		},
	}
}

func newEvaluateCmd(app func() *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the fitted model, price the results and write the reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()

			report, err := app().pipeline.Evaluate(ctx)
			if err != nil {
				return err
			}
			return app().publish(report, cmd.OutOrStdout(), quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "write report files only")
	return cmd
}

func newRunCmd(app func() *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run prepare, fit and evaluate in one process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()

			report, err := app().pipeline.Run(ctx)
			if err != nil {
				return err
			}
			return app().publish(report, cmd.OutOrStdout(), quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "write report files only")
	return cmd
}

func newReportCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the last persisted report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app().pipeline.LatestReport(cmd.Context())
			if err != nil {
				return err
			}
			return app().publish(report, cmd.OutOrStdout(), false)
		},
	}
}

func newServeCmd(app func() *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the persisted report, model and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()

			a := app()
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			router := transport.NewRouter(transport.RouterDeps{
				Config:  cfg,
				Store:   a.store,
				Metrics: a.metrics,
				Tracer:  a.tracing.Tracer,
				Logger:  a.logger,
			})
			return transport.NewServer(cfg, router, a.logger).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
