package main

import (
	"github.com/jetchart/impostor/bot"
	"github.com/jetchart/impostor/config"
	"github.com/jetchart/impostor/game"
	"github.com/jetchart/impostor/logger"
	"github.com/jetchart/impostor/monitor"
	"github.com/jetchart/impostor/persistence"
	"github.com/jetchart/impostor/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database. Analytics are optional: without a database
	// the server runs with the no-op store.
	var store persistence.Store
	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Warnf("Database unavailable, session analytics disabled: %v", err)
		store = persistence.Nop{}
	} else {
		logger.Log.Info("Database connection successful.")
		store = db
	}

	// Suggestion service for bot turns; bots fall back to local pools
	// when it is not configured.
	var suggester game.Suggester
	if cfg.Suggest.APIKey != "" {
		if cfg.Suggest.BaseURL != "" {
			suggester = bot.NewClientWithBaseURL(cfg.Suggest.APIKey, cfg.Suggest.Model, cfg.Suggest.BaseURL)
		} else {
			suggester = bot.NewClient(cfg.Suggest.APIKey, cfg.Suggest.Model)
		}
	} else {
		logger.Log.Warn("No suggest api_key configured, bots use local fallbacks.")
	}

	// Metrics
	mon := monitor.NewMonitor("impostor")
	if cfg.Server.MonitorAddress != "" {
		mon.StartServer(cfg.Server.MonitorAddress)
	}

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, store, suggester, mon)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
