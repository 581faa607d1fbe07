// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/arenahq/arenagrid/internal/config"
	"github.com/arenahq/arenagrid/internal/ratelimit"
	"github.com/arenahq/arenagrid/internal/scheduler"
	"github.com/arenahq/arenagrid/internal/store"
)

const shutdownTimeout = 30 * time.Second

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return config.Load(path)
	}

	// No config file: defaults with environment overrides.
	cfg := config.Default()
	if port := getEnvAsInt("PORT", 0); port != 0 {
		cfg.App.Port = port
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.App.Environment = env
	}
	if filename := os.Getenv("DATABASE_FILE"); filename != "" {
		cfg.Database.Filename = filename
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	st, err := store.New(cfg.Database.Filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer st.Close()

	limiter := ratelimit.New(&ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	})
	defer limiter.Close()

	maintenance, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create maintenance scheduler")
	}
	if err := maintenance.RegisterRetentionJob(st, cfg.Retention.Cron, cfg.Retention.Days); err != nil {
		log.Fatal().Err(err).Msg("Failed to register retention job")
	}
	maintenance.Start()

	server := newServer(cfg, st, limiter)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := maintenance.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop maintenance scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
