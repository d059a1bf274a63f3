package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CoderSATTY/Jobs-Tinder/internal/config"
	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/extraction"
	"github.com/CoderSATTY/Jobs-Tinder/internal/feed"
	"github.com/CoderSATTY/Jobs-Tinder/internal/llm"
	"github.com/CoderSATTY/Jobs-Tinder/internal/logger"
	"github.com/CoderSATTY/Jobs-Tinder/internal/pipeline"
	"github.com/CoderSATTY/Jobs-Tinder/internal/profile"
	"github.com/CoderSATTY/Jobs-Tinder/internal/server"
	"github.com/CoderSATTY/Jobs-Tinder/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the resume ingest, job feed, and match endpoints.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	model, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	defer func() { _ = model.Close() }()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	ingester := pipeline.New(
		extraction.NewDocumentExtractor(),
		profile.NewStructurer(model),
		model,
		database,
		log,
	)

	srv := server.New(server.Options{
		Port:           cfg.Port,
		Store:          database,
		Users:          database,
		Feed:           feed.New(database, log),
		Ingester:       ingester,
		JWTConfig:      jwtConfig,
		PasswordConfig: passwordConfig,
		RateLimit:      ratelimit.LoadConfig(),
		Log:            log,
	})

	return srv.Start()
}
