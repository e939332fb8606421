package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zipmap/zip-api/internal/config"
	"github.com/zipmap/zip-api/internal/pkg/logger"
)

var cfg *config.Config

func main() {
	cfg = config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
