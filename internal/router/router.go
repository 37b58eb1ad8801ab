package router

import (
	"net/http"

	"carbon-tracker/internal/advisor"
	"carbon-tracker/internal/config"
	"carbon-tracker/internal/handler"
	"carbon-tracker/internal/middleware"
	"carbon-tracker/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRouter wires every route. adv is built once at startup and shared by all requests.
func SetupRouter(cfg *config.Config, db *gorm.DB, adv *advisor.Advisor) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/healthz", healthz(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ====== API ======
	api := r.Group("/api")

	api.GET("/factors", handler.ListFactors)

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/users/register", authHandler.Register)
	api.POST("/users/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.GET("/users/profile", handler.GetProfile)
	protected.PUT("/users/profile", handler.UpdateProfile(db))
	protected.PUT("/users/change-password", handler.ChangePassword(db, cfg.Security.BcryptCost))

	activityStore := store.NewActivityStore(db)

	activityHandler := handler.NewActivityHandler(activityStore)
	protected.POST("/activities", activityHandler.CreateActivity)
	protected.GET("/activities", activityHandler.ListActivities)
	protected.GET("/activities/stats", activityHandler.GetStats)
	protected.GET("/activities/trend", activityHandler.GetTrend)
	protected.GET("/activities/breakdown", activityHandler.GetBreakdown)
	protected.GET("/activities/daily", activityHandler.GetDaily)
	protected.GET("/activities/:id", activityHandler.GetActivity)
	protected.PUT("/activities/:id", activityHandler.UpdateActivity)
	protected.DELETE("/activities/:id", activityHandler.DeleteActivity)

	aiLimiter := middleware.NewRateLimiter(cfg.RateLimit.AIRequestsPerSecond, cfg.RateLimit.AIBurst)
	aiHandler := handler.NewAIHandler(activityStore, adv, cfg.App.RecommendationWindow)
	ai := protected.Group("/ai")
	ai.Use(aiLimiter.Limit())
	ai.POST("/recommendations", aiHandler.Recommendations)
	ai.POST("/insights", aiHandler.Insights)

	exportHandler := handler.NewExportHandler(activityStore)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
