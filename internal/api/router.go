package api

import (
	"github.com/Conceptual-Machines/metrome-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/metrome-api/internal/api/middleware"
	"github.com/Conceptual-Machines/metrome-api/internal/click"
	"github.com/Conceptual-Machines/metrome-api/internal/config"
	"github.com/Conceptual-Machines/metrome-api/internal/metrics"
	"github.com/Conceptual-Machines/metrome-api/internal/middleware"
	"github.com/Conceptual-Machines/metrome-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router wires into its handlers.
// Zero values fall back to an in-memory store, no metrics and the default
// render profile at cfg.SampleRate.
type Dependencies struct {
	DB         *gorm.DB
	Repository services.ScoreRepository
	Metrics    metrics.Recorder
	APIMetrics apimiddleware.APIRequestRecorder
	Profile    *click.Profile
}

// authMiddlewares returns the required and optional auth middleware for cfg.AuthMode
func authMiddlewares(cfg *config.Config) (required, optional gin.HandlerFunc) {
	switch cfg.AuthMode {
	case config.AuthModeGateway:
		return apimiddleware.GatewayAuth(), apimiddleware.OptionalGatewayAuth()
	case config.AuthModeJWT:
		return middleware.JWTAuth(cfg), middleware.OptionalJWTAuth(cfg)
	default:
		return apimiddleware.NoAuth(), apimiddleware.NoAuth()
	}
}

func SetupRouter(cfg *config.Config, deps Dependencies, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.APIMetrics))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	repo := deps.Repository
	if repo == nil {
		repo = services.NewMemoryScoreStore()
	}
	storeName := "memory"
	if deps.DB != nil {
		storeName = "postgres"
	}

	profile := click.DefaultProfile()
	profile.SampleRate = cfg.SampleRate
	if deps.Profile != nil {
		profile = *deps.Profile
	}

	scoreService := services.NewScoreService(services.Limits{
		MaxBytes:         cfg.MaxScoreBytes,
		MaxBeats:         cfg.MaxScoreBeats,
		MaxRenderSeconds: cfg.MaxRenderSeconds,
	}, deps.Metrics)
	library := services.NewScoreLibrary(repo, scoreService)
	scoreHandler := handlers.NewScoreHandler(scoreService, library, profile)

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, cfg.AuthMode, storeName, profile)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	requireAuth, optionalAuth := authMiddlewares(cfg)

	v1 := router.Group("/api/v1")
	{
		// Stateless endpoints; identity is only used for the parse log
		v1.POST("/scores/parse", optionalAuth, scoreHandler.Parse)
		v1.POST("/scores/render", optionalAuth, scoreHandler.Render)

		// Stored scores
		stored := v1.Group("/scores")
		stored.Use(requireAuth)
		{
			stored.POST("", scoreHandler.Create)
			stored.GET("", scoreHandler.List)
			stored.GET("/:id", scoreHandler.Get)
			stored.GET("/:id/wav", scoreHandler.GetWAV)
			stored.DELETE("/:id", scoreHandler.Delete)
		}
	}

	// Admin API routes (admin only)
	admin := router.Group("/api/admin")
	admin.Use(requireAuth, middleware.AdminRequired())
	{
		admin.GET("/parse-logs", scoreHandler.ParseLogs)
	}

	return router
}
