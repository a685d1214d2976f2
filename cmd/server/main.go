package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/options-trader/internal/clients/yahoo"
	"github.com/aristath/options-trader/internal/config"
	"github.com/aristath/options-trader/internal/database"
	"github.com/aristath/options-trader/internal/marketdata"
	"github.com/aristath/options-trader/internal/modules/payoff"
	"github.com/aristath/options-trader/internal/modules/pricing"
	"github.com/aristath/options-trader/internal/modules/strategy"
	"github.com/aristath/options-trader/internal/scheduler"
	"github.com/aristath/options-trader/internal/server"
	"github.com/aristath/options-trader/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Options Trader")

	// cache.db - Market data cache (quotes, chains, expiries)
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache database")
	}
	defer cacheDB.Close()

	cache, err := marketdata.NewCache(cacheDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize market data cache")
	}

	// Market data: Yahoo Finance behind the SQLite cache
	quoteClient := yahoo.NewQuoteClient(log)
	optionsClient := yahoo.NewOptionsClient(log)
	market := marketdata.NewService(quoteClient, optionsClient, cache, log)

	// Pricing engine and its worker pool
	pricingService := pricing.NewService(log)
	pool := pricing.NewWorkerPool(pricingService, 0) // 0 = pool default

	// Strategy construction and payoff analysis
	strategyService := strategy.NewService(log)
	payoffEngine := payoff.NewEngine(pricingService, pool, log)

	// Background jobs
	sched := scheduler.New(log)
	purgeJob := scheduler.NewCachePurgeJob(market, cacheDB, log)
	if err := sched.AddJob(cfg.CachePurgeCron, purgeJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache_purge job")
	}

	sched.Start()

	// HTTP server
	srv := server.New(server.Config{
		Log:      log,
		Cfg:      cfg,
		CacheDB:  cacheDB,
		Pricing:  pricingService,
		Pool:     pool,
		Strategy: strategyService,
		Payoff:   payoffEngine,
		Market:   market,
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Options Trader started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	if err := cacheDB.WALCheckpoint(""); err != nil {
		log.Warn().Err(err).Msg("Final WAL checkpoint failed")
	}

	log.Info().Msg("Options Trader stopped")
}
