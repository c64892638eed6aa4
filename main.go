package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"image_generation_server/clock"
	"image_generation_server/config"
	"image_generation_server/databases"
	"image_generation_server/databases/postgres"
	"image_generation_server/databases/sqlite"
	"image_generation_server/discord_bot"
	"image_generation_server/generation_pipeline"
	"image_generation_server/http_server"
	"image_generation_server/image_generator"
	"image_generation_server/logger"
	"image_generation_server/metrics"
	"image_generation_server/prompt_enhancer"
	"image_generation_server/repositories/image_generations"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var envFile = flag.String("env", ".env", "Optional dotenv file loaded before reading the environment")

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}

	log.Info().Msg("Gracefully shut down.")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	generationRepo, closeDB, err := newImageGenerationRepo(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	enhancer, err := newPromptEnhancer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("create prompt enhancer: %w", err)
	}

	imageGenerator, err := image_generator.New(image_generator.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.ImageModel,
		Size:    cfg.ImageSize,
		Quality: cfg.ImageQuality,
		Logger:  log.With().Str("component", "image_generator").Logger(),
	})
	if err != nil {
		return fmt.Errorf("create image generator: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pipeline, err := generation_pipeline.New(generation_pipeline.Config{
		PromptEnhancer:      enhancer,
		ImageGenerator:      imageGenerator,
		ImageGenerationRepo: generationRepo,
		Metrics:             metrics.New(registry),
		Logger:              log.With().Str("component", "generation_pipeline").Logger(),
	})
	if err != nil {
		return fmt.Errorf("create generation pipeline: %w", err)
	}

	server, err := http_server.New(http_server.Config{
		Addr:                cfg.HTTPAddr,
		Pipeline:            pipeline,
		ImageGenerationRepo: generationRepo,
		Gatherer:            registry,
		MaxRecentLimit:      cfg.MaxRecentLimit,
		ShutdownTimeout:     cfg.ShutdownTimeout,
		Logger:              log.With().Str("component", "http_server").Logger(),
	})
	if err != nil {
		return fmt.Errorf("create http server: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.Run(groupCtx)
	})

	if cfg.DiscordEnabled() {
		if cfg.DiscordDevMode {
			log.Info().Msg("Starting Discord bot in development mode, commands prefixed with \"dev_\"")
		}

		bot, err := discord_bot.New(discord_bot.Config{
			DevelopmentMode: cfg.DiscordDevMode,
			BotToken:        cfg.DiscordBotToken,
			GuildID:         cfg.DiscordGuildID,
			Pipeline:        pipeline,
			ImagineCommand:  cfg.DiscordImagineCommand,
			RemoveCommands:  cfg.DiscordRemoveCommands,
			Logger:          log.With().Str("component", "discord_bot").Logger(),
		})
		if err != nil {
			return fmt.Errorf("create discord bot: %w", err)
		}

		group.Go(func() error {
			bot.Start(groupCtx)
			return nil
		})
	}

	return group.Wait()
}

func newImageGenerationRepo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (image_generations.Repository, func(), error) {
	dbLog := log.With().Str("component", "database").Str("driver", cfg.DBDriver).Logger()

	var (
		db      *sql.DB
		dialect databases.Dialect
		err     error
	)

	switch cfg.DBDriver {
	case config.DBDriverMemory:
		dbLog.Warn().Msg("Using in-memory storage, image generations will not survive a restart")

		return image_generations.NewMemoryRepository(clock.NewClock()), func() {}, nil
	case config.DBDriverPostgres:
		dialect = databases.DialectPostgres
		db, err = postgres.New(ctx, postgres.Config{DatabaseURL: cfg.DatabaseURL, Logger: dbLog})
	default:
		dialect = databases.DialectSQLite
		db, err = sqlite.New(ctx, sqlite.Config{Filename: cfg.SQLitePath, Logger: dbLog})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			dbLog.Error().Err(err).Msg("Failed to close database")
		}
	}

	repo, err := image_generations.NewRepository(&image_generations.Config{
		DB:      db,
		Dialect: dialect,
		Clock:   clock.NewClock(),
	})
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create image generation repository: %w", err)
	}

	return repo, closeDB, nil
}

func newPromptEnhancer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (prompt_enhancer.Enhancer, error) {
	enhancerLog := log.With().Str("component", "prompt_enhancer").Str("provider", cfg.EnhancerProvider).Logger()

	switch cfg.EnhancerProvider {
	case config.EnhancerNone:
		return prompt_enhancer.NewPassthrough(), nil
	case config.EnhancerGemini:
		return prompt_enhancer.NewGemini(ctx, prompt_enhancer.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
			Logger: enhancerLog,
		})
	default:
		return prompt_enhancer.NewOpenAI(prompt_enhancer.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.EnhancerModel,
			Logger:  enhancerLog,
		})
	}
}
