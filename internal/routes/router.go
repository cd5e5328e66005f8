package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"patroltrack/internal/config"
	"patroltrack/internal/delivery/http/handler"
	"patroltrack/internal/infrastructure/database/postgres"
	"patroltrack/internal/infrastructure/storage"
	"patroltrack/internal/logger"
	"patroltrack/internal/middleware"
	"patroltrack/internal/notify"
	"patroltrack/internal/usecase/incident"
	"patroltrack/internal/usecase/patrol"
	"patroltrack/internal/usecase/user"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB, publisher notify.Publisher) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userRepository := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	userService := user.NewService(userRepository, refreshTokenRepo, &cfg.JWT)
	userHandler := handler.NewUserHandler(userService)

	go userService.StartTokenCleanup(context.Background(), time.Hour)

	patrolLogRepo := postgres.NewPatrolLogRepository(db)
	dutyStatusRepo := postgres.NewDutyStatusRepository(db)
	patrolService := patrol.NewService(patrolLogRepo, dutyStatusRepo, publisher)
	patrolHandler := handler.NewPatrolHandler(patrolService)

	incidentRepository := postgres.NewIncidentRepository(db)
	incidentService := incident.NewService(incidentRepository, patrolService, publisher)
	incidentHandler := handler.NewIncidentHandler(incidentService)

	evidenceStore := storage.NewEvidenceStore(&cfg.Storage)
	uploadHandler := handler.NewUploadHandler(evidenceStore)

	v1 := router.Group("/api/v1")
	{
		userHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			userHandler.RegisterProfileRoutes(protected)
			incidentHandler.RegisterRoutes(protected)
			patrolHandler.RegisterRoutes(protected)
			uploadHandler.RegisterRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				userHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
