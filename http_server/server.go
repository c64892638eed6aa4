package http_server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"image_generation_server/generation_pipeline"
	"image_generation_server/repositories/image_generations"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	defaultMaxRecentLimit  = 100
	defaultShutdownTimeout = 10 * time.Second
)

type serverImpl struct {
	addr            string
	engine          *gin.Engine
	pipeline        generation_pipeline.Pipeline
	generationRepo  image_generations.Repository
	maxRecentLimit  int
	shutdownTimeout time.Duration
	log             zerolog.Logger
}

type Config struct {
	Addr                string
	Pipeline            generation_pipeline.Pipeline
	ImageGenerationRepo image_generations.Repository
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer        prometheus.Gatherer
	MaxRecentLimit  int
	ShutdownTimeout time.Duration
	Logger          zerolog.Logger
}

func New(cfg Config) (Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("missing generation pipeline")
	}

	if cfg.ImageGenerationRepo == nil {
		return nil, errors.New("missing image generation repository")
	}

	s := &serverImpl{
		addr:            cfg.Addr,
		pipeline:        cfg.Pipeline,
		generationRepo:  cfg.ImageGenerationRepo,
		maxRecentLimit:  cfg.MaxRecentLimit,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             cfg.Logger,
	}

	if s.maxRecentLimit < 1 {
		s.maxRecentLimit = defaultMaxRecentLimit
	}

	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}

	engine := gin.New()
	engine.Use(requestLogger(cfg.Logger), recovery())

	api := engine.Group("/api")
	api.POST("/generate-image", s.generateImage)
	api.GET("/image-generations", s.listImageGenerations)
	api.GET("/image-generations/recent/:limit", s.recentImageGenerations)
	api.GET("/image-generations/:id", s.getImageGeneration)

	engine.GET("/health", s.health)

	if cfg.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	engine.NoRoute(s.notFound)

	s.engine = engine

	return s, nil
}

func (s *serverImpl) Handler() http.Handler {
	return s.engine
}

func (s *serverImpl) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("HTTP server listening")

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}

		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
