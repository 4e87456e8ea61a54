package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-pulse/internal/api"
	"github.com/kurihiro0119/github-pulse/internal/config"
	"github.com/kurihiro0119/github-pulse/internal/pulse"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Initialize the pulse runner and handler
	runner := pulse.NewRunner(logger)
	handler := api.NewHandler(runner, cfg, logger)

	// Setup routes
	router := api.SetupRoutes(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.WithField("addr", addr).Info("starting API server")

	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}
