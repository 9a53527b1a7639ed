package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ats-ng/scmc-video-upload-api/docs"
	"github.com/ats-ng/scmc-video-upload-api/internal/config"
	"github.com/ats-ng/scmc-video-upload-api/internal/database"
	"github.com/ats-ng/scmc-video-upload-api/internal/database/migration"
	handlers "github.com/ats-ng/scmc-video-upload-api/internal/http/handler"
	"github.com/ats-ng/scmc-video-upload-api/internal/http/middleware"
	"github.com/ats-ng/scmc-video-upload-api/internal/otel"
	"github.com/ats-ng/scmc-video-upload-api/internal/repository/postgres"
	"github.com/ats-ng/scmc-video-upload-api/internal/service"
	"github.com/ats-ng/scmc-video-upload-api/internal/storage"
)

// @title Media Upload & Streaming API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Initialize OTLP tracing (no-op when the exporter is unreachable or disabled)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Bootstrap the media schema if it does not exist yet
	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Initialize repository and service
	mediaRepo := postgres.NewMediaPostgres(db)
	mediaSvc := service.NewMediaService(objStore, mediaRepo)

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.Stream.MaxUploadBytes,
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Permissive CORS for the demo web client
	app.Use(cors.New())
	// Trace every request
	app.Use(otelfiber.Middleware())

	// Prometheus request metrics plus the exposition endpoint
	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, mediaSvc, cfg.Stream.ChunkBytes)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
