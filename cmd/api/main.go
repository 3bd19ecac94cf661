package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fuel-rl/internal/api"
	"fuel-rl/internal/config"
	"fuel-rl/internal/data"
	"fuel-rl/internal/logger"
	"fuel-rl/internal/metrics"
	"fuel-rl/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.For("api")

	// Environment overrides
	if port := os.Getenv("API_PORT"); port != "" {
		cfg.API.Port = port
	}
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		cfg.API.StaticDir = dir
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := data.Source{Path: cfg.Data.Path, URL: cfg.Data.URL, Limit: cfg.Data.Limit}
	ds, err := data.Open(ctx, src)
	if err != nil {
		log.Fatal().Err(err).Str("source", src.String()).Msg("failed to load dataset")
	}
	log.Info().Str("source", src.String()).Int("rows", ds.Len()).Msg("dataset loaded")

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed to open store")
		}
		defer st.Close()
		log.Info().Str("path", cfg.Store.Path).Msg("session store opened")
	} else {
		log.Warn().Msg("store.path is empty, sessions and checkpoints will not be persisted")
	}

	router := api.NewRouter(api.Deps{
		Dataset:        ds,
		Source:         src.String(),
		Store:          st,
		Recorder:       metrics.New(prometheus.DefaultRegisterer),
		Gatherer:       prometheus.DefaultGatherer,
		Logger:         log,
		AllowedOrigins: cfg.API.AllowedOrigins,
		StaticDir:      cfg.API.StaticDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.API.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	log.Info().Msg("server stopped")
}

// loadConfig reads CONFIG_PATH when set, otherwise runs on defaults.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
