package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"annualreports/controllers"
	"annualreports/core"
	"annualreports/ingest"
	"annualreports/internal/assets"
	"annualreports/internal/fetch"
	"annualreports/internal/thumbnail"
	"annualreports/models"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const fetchRetries = 3

func main() {
	godotenv.Load()

	cfg, err := core.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := core.NewLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// connect to the database and migrate the schema
	db, err := core.InitDB(cfg.Database)
	if err != nil {
		logger.Fatalw("Failed to initialize the database", "error", err)
	}

	engine, err := createServer(cfg, db, logger)
	if err != nil {
		logger.Fatalw("Failed to create the server", "error", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logger.Infow("Starting server", "port", cfg.Port, "assets", cfg.Assets.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func createServer(cfg *core.Config, db *gorm.DB, logger *zap.SugaredLogger) (*gin.Engine, error) {
	store, err := assets.NewStore(cfg.Assets)
	if err != nil {
		return nil, err
	}

	repo := models.NewRepository(db)
	extractor := thumbnail.NewExtractor(thumbnail.Poppler{
		Binary: cfg.PdftoppmPath,
		DPI:    cfg.ThumbnailDPI,
	})
	pipeline := ingest.NewPipeline(store, repo, repo, extractor, logger.With("component", "ingest"), cfg.RemoteTimeout)
	fetcher := fetch.NewFetcher(cfg.RemoteTimeout, fetchRetries)

	// set up http server
	engine := gin.New()
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	engine.MaxMultipartMemory = 32 << 20

	engine.Use(gin.Recovery())
	engine.Use(controllers.RequestLogger(logger.With("component", "http")))
	engine.Use(controllers.Metrics())
	engine.Use(controllers.Cors(cfg.AllowedOrigins))
	// Downloads are streamed PDFs, compressing them only costs CPU.
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/report/\d+/download$`})))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if strings.EqualFold(cfg.Assets.Backend, "local") && strings.HasPrefix(cfg.Assets.BaseURL, "/") {
		engine.Static(cfg.Assets.BaseURL, cfg.Assets.BasePath)
	}

	router := controllers.Router{
		HealthController: &controllers.HealthController{
			DB:     repo,
			Logger: logger.With("controller", "health"),
		},
		CompaniesController: &controllers.CompaniesController{
			Catalog:  repo,
			MediaURL: cfg.MediaURL,
			Logger:   logger.With("controller", "companies"),
		},
		ReportsController: &controllers.ReportsController{
			Catalog: repo,
			Fetcher: fetcher,
			Logger:  logger.With("controller", "reports"),
		},
		UploadsController: &controllers.UploadsController{
			Ingester:       pipeline,
			MaxUploadBytes: cfg.MaxUploadBytes,
			Logger:         logger.With("controller", "uploads"),
		},
	}

	router.RegisterRoutes(engine)
	return engine, nil
}
