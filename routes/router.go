package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/config"
	"github.com/civicpulse/civicpulse/controllers"
	"github.com/civicpulse/civicpulse/middleware"
	"github.com/civicpulse/civicpulse/store"
	"github.com/civicpulse/civicpulse/utils"
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
	// Access and panic logs go to a rotated file, not the console.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
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

	r.Use(middleware.TrafficRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	complaintStore := store.New(db)
	complaintController := controllers.NewComplaintController(complaintStore)
	summaryController := controllers.NewSummaryController(complaintStore)
	geoController := controllers.NewGeoController()
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	complaintsGroup := api.Group("/complaints")
	complaintsGroup.GET("", complaintController.ListComplaints)
	complaintsGroup.GET("/:id", complaintController.GetComplaint)
	// Writes are anonymous; the per-IP limiter is the only throttle.
	complaintsGroup.POST("", middleware.RateLimitMiddleware(), complaintController.CreateComplaint)
	complaintsGroup.POST("/:id/vote", middleware.RateLimitMiddleware(), complaintController.VoteComplaint)

	api.GET("/heatmap", complaintController.Heatmap)
	api.GET("/ai-summary", summaryController.GetSummary)
	api.GET("/geocode", geoController.ReverseGeocode)
	api.GET("/search-location", geoController.SearchLocation)
	api.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
