package main

import (
	"context"
	"log"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docforge/internal/artifact"
	"docforge/internal/config"
	"docforge/internal/convert"
	"docforge/internal/database"
	"docforge/internal/database/migration"
	handlers "docforge/internal/http/handler"
	"docforge/internal/http/middleware"
	"docforge/internal/model"
	"docforge/internal/otel"
	"docforge/internal/repository/postgres"
	"docforge/internal/service"
	"docforge/internal/storage"
)

func main() {
	ctx := context.Background()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	artifacts := artifact.NewStore(cfg.Artifacts.Dir)
	if err := artifacts.EnsureDirs(); err != nil {
		log.Fatalf("failed to prepare artifact directories: %v", err)
	}

	sweeper := artifact.NewSweeper(artifacts, artifact.CleanupPolicy{MaxAge: cfg.Artifacts.MaxAge}, cfg.Artifacts.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	converter := convert.New(cfg.Converter, artifacts.Dir(model.ArtifactPDF))

	tmplRepo := postgres.NewTemplatePostgres(db)
	tmplSvc := service.NewTemplateService(cfg.TemplatesDir, objStore, tmplRepo)
	genSvc := service.NewGenerateService(cfg.TemplatesDir, tmplRepo, artifacts, converter)

	metrics, err := middleware.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, tmplSvc, genSvc, artifacts, metrics)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
