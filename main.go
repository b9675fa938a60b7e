package main

import (
	"context"
	"log"
	"time"

	"github.com/Conceptual-Machines/metrome-api/internal/api"
	"github.com/Conceptual-Machines/metrome-api/internal/config"
	"github.com/Conceptual-Machines/metrome-api/internal/database"
	"github.com/Conceptual-Machines/metrome-api/internal/metrics"
	"github.com/Conceptual-Machines/metrome-api/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "metrome-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	if cfg.AuthMode == config.AuthModeJWT && cfg.JWTSecret == "" {
		log.Fatal("AUTH_MODE=jwt requires JWT_SECRET")
	}

	deps := api.Dependencies{}

	// Scores live in Postgres when configured, in memory otherwise
	if cfg.PersistenceEnabled() {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		if err := database.Migrate(db); err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to run migrations:", err)
		}
		deps.DB = db
		deps.Repository = services.NewScoreStore(db)
		log.Println("🗄️  Score store: postgres")
	} else {
		deps.Repository = services.NewMemoryScoreStore()
		log.Println("🗄️  Score store: memory (DATABASE_URL not set)")
	}

	if cfg.RenderProfile != "" {
		profile, err := config.LoadRenderProfile(cfg.RenderProfile)
		if err != nil {
			log.Fatal("Failed to load render profile:", err)
		}
		deps.Profile = &profile
		log.Printf("🥁 Render profile loaded from %s (%d Hz)", cfg.RenderProfile, profile.SampleRate)
	}

	cloudwatch, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}
	deps.APIMetrics = cloudwatch
	deps.Metrics = metrics.Multi{metrics.NewSentryMetrics(), cloudwatch}

	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(cfg, deps, GetVersion())

	log.Printf("🚀 Starting server on port %s (auth: %s)", cfg.Port, cfg.AuthMode)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
