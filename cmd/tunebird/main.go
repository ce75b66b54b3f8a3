// Command tunebird runs the music recommendation API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tunebird/tunebird-backend/internal/db"
	"github.com/tunebird/tunebird-backend/internal/modelsvc"
	"github.com/tunebird/tunebird-backend/internal/recommend"
	"github.com/tunebird/tunebird-backend/internal/taste"
	"github.com/tunebird/tunebird-backend/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("please set the DATABASE_URL environment variable")
	}

	addr := os.Getenv("TUNEBIRD_ADDR")
	if addr == "" {
		addr = web.DefaultAddr
	}

	ctx := context.Background()
	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	catalog := database.Catalog()

	// The model service is optional; without it the personalized engine
	// serves heuristic fallback recommendations only.
	var engineOpts []recommend.Option
	modelCfg, err := modelsvc.LoadConfig()
	switch {
	case err == nil:
		engineOpts = append(engineOpts, recommend.WithSuggester(modelsvc.NewClient(modelCfg)))
		logger.Info().Str("url", modelCfg.BaseURL).Msg("model service configured")
	case errors.Is(err, modelsvc.ErrNotConfigured):
		logger.Info().Msg("no model service configured, personalized recommendations use fallback only")
	default:
		return fmt.Errorf("loading model service config: %w", err)
	}

	engine := recommend.NewEngine(catalog, logger, engineOpts...)
	tasteSvc := taste.NewService(catalog)

	server := web.NewServer(web.ServerConfig{Addr: addr}, engine, tasteSvc, logger)
	return server.Run()
}
