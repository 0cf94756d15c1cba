package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/app"
	"fxconvert/internal/config"
	"fxconvert/internal/ingest"
	"fxconvert/internal/platform/db"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type seedFlags struct {
	configPath string
	sheet      string
	reset      bool
	batchSize  int
	skipErrors bool
}

func seedCommand() *cobra.Command {
	flags := &seedFlags{}

	cmd := &cobra.Command{
		Use:          "seed <file.csv|file.xlsx>",
		Short:        "Load currencies and monthly rates from a wide CSV or XLSX export",
		Version:      "v1.0.0",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "Path to the config file")
	cmd.Flags().StringVar(&flags.sheet, "sheet", "", "Worksheet name for XLSX input (first sheet by default)")
	cmd.Flags().BoolVar(&flags.reset, "reset", false, "Remove all currencies, rates and audits before loading")
	cmd.Flags().IntVarP(&flags.batchSize, "batch-size", "b", ingest.DefaultBatchSize, "Rates per insert batch")
	cmd.Flags().BoolVar(&flags.skipErrors, "skip-errors", false, "Skip rows that fail instead of aborting")

	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, path string, flags *seedFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	app.SetupLogging(cfg.Logging)

	pool, err := db.CreatePoolAndPing(ctx, cfg.DbServer)
	if err != nil {
		return err
	}
	defer pool.Close()
	if !cfg.DbServer.Migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	src, err := ingest.Open(path, flags.sheet)
	if err != nil {
		return err
	}
	defer src.Close()

	logrus.WithField("file", path).Info("seed: loading")
	sum, err := ingest.NewLoader(postgres.NewSeedRepository(pool)).Load(ctx, src, ingest.Options{
		Reset:      flags.reset,
		BatchSize:  flags.batchSize,
		SkipErrors: flags.skipErrors,
	})
	fmt.Fprintln(cmd.OutOrStdout(), sum)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedCommand().ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("Seed failed")
		os.Exit(1)
	}
}
