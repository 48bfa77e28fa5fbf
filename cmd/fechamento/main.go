// Command fechamento prints the monthly settlement without going through the
// chat bot.
//
//	fechamento <mês> [ano]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"casinha/internal/backend"
	"casinha/internal/cli"
	"casinha/internal/log"
	"casinha/internal/services"
	"casinha/internal/settlement"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "time limit for fetching both tabs")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: fechamento [-timeout 30s] <mês> [ano]")
		flag.PrintDefaults()
	}
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentReport)

	period, err := settlement.ParsePeriod(flag.Args(), time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	household, err := cfg.Household()
	if err != nil {
		logger.Error("Invalid household", "error", err)
		os.Exit(1)
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	bcfg.CacheTTL = 0

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	text, err := services.NewReportService(res.Source, household, logger).Generate(ctx, period)
	if err != nil {
		logger.Error("Report failed", "error", err, "month", period.Month, "year", period.Year)
		os.Exit(1)
	}
	fmt.Println(text)
}
