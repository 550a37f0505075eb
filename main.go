package main

import (
	"github.com/wfunc/dodgerelay/config"
	"github.com/wfunc/dodgerelay/logger"
	"github.com/wfunc/dodgerelay/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize relay server
	gameServer := server.NewGameServer(cfg)

	// Start Server
	logger.Log.Infof("Starting dodge relay server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
