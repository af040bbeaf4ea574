package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StockCast/internal/di"
	"StockCast/pkg/config"
	applogger "StockCast/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	run, cleanup, err := di.InitializeETL(cfg)
	if err != nil {
		log.Fatalf("etl initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if cfg.ETL.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ETL.Timeout)
		defer cancel()
	}
	defer stop()

	ok := runOnce(ctx, run)
	cleanup()
	if !ok {
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, run *di.ETLRun) bool {
	l := run.Logger
	res, err := run.Job.RunOnce(ctx)
	if err != nil {
		l.Critical("ETL pipeline failed", applogger.Error(err))
		return false
	}
	l.Info("ETL pipeline completed",
		applogger.Int("fetched", res.Fetched),
		applogger.Int("inserted", res.Inserted),
		applogger.Bool("skipped", res.Skipped),
	)
	return true
}
