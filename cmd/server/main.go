package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/arnavshah/duty-rotation-go/pkg/auth"
	"github.com/arnavshah/duty-rotation-go/pkg/database"
	"github.com/arnavshah/duty-rotation-go/pkg/handlers"
	"github.com/arnavshah/duty-rotation-go/pkg/logging"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	h := &handlers.Handler{
		DB:           db,
		Logger:       logging.NewText(slog.LevelInfo),
		SettingsPath: envOr("SETTINGS_PATH", "config/settings.yaml"),
		NGDatesPath:  envOr("NG_DATES_PATH", "config/ng_dates.yaml"),
		HistoryPath:  envOr("HISTORY_PATH", "data/duty_roster.csv"),
	}

	r := gin.Default()

	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Duty Rotation API",
			"version": "1.0.0",
		})
	})

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)

		admin.GET("/members", h.GetMembers)
		admin.GET("/ng", h.GetNGDates)
		admin.POST("/ng/global", h.AddGlobalNG)
		admin.DELETE("/ng/global/:date", h.RemoveGlobalNG)
		admin.POST("/ng/member", h.AddMemberNG)
		admin.DELETE("/ng/member/:member/:date", h.RemoveMemberNG)
		admin.POST("/ng/period", h.AddPeriodNG)
		admin.DELETE("/ng/period/:member/:start", h.RemovePeriodNG)
	}

	// Scheduler Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedule", h.GenerateSchedule)
		api.GET("/schedule", h.ListScheduleRuns)
		api.GET("/schedule/:id/csv", h.GetScheduleCSV)
		api.POST("/validate", h.ValidateConfig)
		api.GET("/usage", h.GetMyUsage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
