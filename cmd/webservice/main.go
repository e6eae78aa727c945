package main

import (
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/app"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	config := config.CreateNewConfig()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	// requests without a scoped logger still log through the global one
	zerolog.DefaultContextLogger = &log.Logger

	application := app.App{
		Config: config,
	}

	go func() {
		if err := application.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start storefront service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down storefront service")
	if err := application.StopServer(); err != nil {
		log.Error().Err(err).Msg("Failed to stop storefront service cleanly")
	}
}
