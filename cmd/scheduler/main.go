package main

import (
	"context"
	"flag"
	"log"
	"os"

	"StockCast/internal/di"
	"StockCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, cleanup, err := di.InitializeSchedulerApp(cfg)
	if err != nil {
		log.Fatalf("scheduler initialization failed: %v", err)
	}

	log.Printf("ETL scheduled daily at %s for %s", cfg.Schedule.Time, cfg.AlphaVantage.Symbol)
	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("scheduler error: %v", err)
		os.Exit(1)
	}
}
