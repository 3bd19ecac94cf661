package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fuel-rl/internal/api/handlers"
	"fuel-rl/internal/api/middleware"
	"fuel-rl/internal/metrics"
	"fuel-rl/internal/model"
	"fuel-rl/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the shared services behind the HTTP API.
type Deps struct {
	Dataset *model.Dataset
	Source  string
	// Store may be nil; persistence endpoints then answer 503.
	Store    *store.Store
	Recorder *metrics.Recorder
	// Gatherer backs /metrics; nil skips the endpoint.
	Gatherer       prometheus.Gatherer
	Logger         zerolog.Logger
	AllowedOrigins []string
	StaticDir      string
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(d.AllowedOrigins))
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.Metrics(d.Recorder))

	sessionHandler := handlers.NewSessionHandler(d.Dataset, d.Source, d.Store, d.Recorder, d.Logger)
	trainHandler := handlers.NewTrainHandler(d.Dataset, d.Store, d.Recorder, d.Logger)
	datasetHandler := handlers.NewDatasetHandler(d.Dataset, d.Source)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"rows":    d.Dataset.Len(),
			"store":   d.Store != nil,
			"dataset": d.Source,
		})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/sessions", sessionHandler.RunSession)
		api.GET("/sessions", sessionHandler.ListSessions)
		api.POST("/sessions/compare", sessionHandler.CompareSessions)
		api.GET("/sessions/:id", sessionHandler.GetSession)

		api.POST("/train", trainHandler.Train)
		api.GET("/checkpoints", handlers.ListCheckpoints(d.Store))

		api.GET("/policies", handlers.ListPolicies)
		api.GET("/dataset", datasetHandler.GetDataset)
	}

	serveStatic(router, d.StaticDir, d.Logger)
	return router
}

// serveStatic serves a built single page app from dir when it exists.
func serveStatic(router *gin.Engine, dir string, log zerolog.Logger) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Debug().Str("dir", dir).Msg("static directory not found, skipping static file serving")
		return
	}
	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	log.Info().Str("dir", dir).Msg("serving static files")
}
