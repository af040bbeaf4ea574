package main

import (
	"context"
	"flag"
	"log"
	"os"

	"StockCast/internal/di"
	"StockCast/pkg/config"
	"StockCast/pkg/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s service=%s", cfg.Environment, cfg.Service.Kind)

	var (
		app     *server.App
		cleanup func()
	)
	if cfg.Service.Kind == config.KindStock {
		app, cleanup, err = di.InitializeStockApp(cfg)
	} else {
		app, cleanup, err = di.InitializeTabularApp(cfg)
	}
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// blocks until SIGINT/SIGTERM
	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
