package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/movefit/streakd/config"
	"github.com/movefit/streakd/controllers"
	"github.com/movefit/streakd/middleware"
	"github.com/movefit/streakd/repository"
	"github.com/movefit/streakd/services"
	"github.com/movefit/streakd/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.RequestLogger())
	r.Use(utils.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.ServiceKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	streakRepo := repository.NewUserStreakRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	progressRepo := repository.NewMilestoneProgressRepository(db)
	coinRepo := repository.NewCoinRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	streakService := services.NewStreakService(
		streakRepo, milestoneRepo, progressRepo, coinRepo, activityRepo, subscriptionRepo,
		cfg.Streak,
	)

	streakController := controllers.NewStreakController(streakService)
	adminController := controllers.NewAdminController(milestoneRepo)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware())

	streaks := api.Group("/streaks")
	streaks.Use(middleware.InvokerAuth())
	streaks.POST("/process", streakController.ProcessDaily)
	streaks.GET("/status", streakController.Status)
	streaks.GET("/milestones", streakController.Milestones)

	claims := api.Group("/streaks")
	claims.Use(middleware.AuthRequired())
	claims.POST("/milestones/:id/claim", streakController.ClaimReward)

	admin := api.Group("/admin")
	admin.Use(middleware.ServiceRequired())
	admin.POST("/milestones", adminController.CreateMilestone)
	admin.PUT("/milestones/:id", adminController.UpdateMilestone)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
