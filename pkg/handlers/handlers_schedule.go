package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/duty-rotation-go/pkg/analyzer"
	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/database"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/formatter"
	"github.com/arnavshah/duty-rotation-go/pkg/loader"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/scheduler"
)

// GenerateSchedule runs the builder for the requested rotation and variant
// count, analyzes each successful variant, and archives the first successful
// schedule for CSV download.
func (h *Handler) GenerateSchedule(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Variants < 1 {
		req.Variants = 1
	}
	if req.TopK < 1 {
		req.TopK = scheduler.DefaultTopK
	}

	start, err := dateutil.ParseDate(req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
		return
	}
	start, end := dateutil.RotationPeriod(start)

	settings, err := config.LoadSettings(h.SettingsPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ngDates, err := config.LoadNGConfig(h.NGDatesPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := loader.LoadStats(h.HistoryPath, loader.DefaultLookbackMonths)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	builder := scheduler.NewBuilder(settings, ngDates, stats, h.Logger)
	results, buildErr := builder.BuildVariants(start, end, req.Variants, req.TopK)

	resp := models.GenerateResponse{
		RunID: uuid.NewString(),
		Start: dateutil.FormatDate(start),
		End:   dateutil.FormatDate(end),
	}

	var archived *scheduler.BuildResult
	for i := range results {
		r := results[i]
		vr := models.VariantResult{Variant: r.Variant}
		if r.Err != nil {
			vr.Error = r.Err.Error()
		} else {
			vr.Schedule = r.Schedule
			vr.Analysis = analyzer.New(r.Schedule, stats).Analyze()
			if archived == nil {
				archived = &results[i]
			}
		}
		resp.Warnings = append(resp.Warnings, r.Warnings...)
		resp.Variants = append(resp.Variants, vr)
	}

	if buildErr != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    buildErr.Error(),
			"variants": resp.Variants,
		})
		return
	}

	csvData, err := formatter.CSVString(archived.Schedule)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not render schedule CSV"})
		return
	}
	run := database.ScheduleRun{
		ID:           resp.RunID,
		StartDate:    resp.Start,
		EndDate:      resp.End,
		VariantCount: req.Variants,
		Variant:      archived.Variant,
		Status:       "complete",
		CSV:          csvData,
	}
	if err := h.DB.Create(&run).Error; err != nil {
		h.Logger.Error("could not archive schedule run", "error", err)
	}

	totalSlots := len(archived.Schedule.Day)*3 + len(archived.Schedule.Night)*2
	h.RecordUsage(c, totalSlots, req.Variants)

	c.JSON(http.StatusOK, resp)
}

// GetScheduleCSV serves an archived run as a CSV download.
func (h *Handler) GetScheduleCSV(c *gin.Context) {
	id := c.Param("id")
	var run database.ScheduleRun
	if err := h.DB.First(&run, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule_`+run.StartDate+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(run.CSV))
}

// ListScheduleRuns returns the most recent archived runs.
func (h *Handler) ListScheduleRuns(c *gin.Context) {
	var runs []database.ScheduleRun
	h.DB.Order("created_at desc").Limit(30).Find(&runs)
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, slotCount, variantCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":  gorm.Expr("request_count + ?", 1),
			"total_slots":    gorm.Expr("total_slots + ?", slotCount),
			"total_variants": gorm.Expr("total_variants + ?", variantCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:         apiKey.ID,
		Date:          today,
		RequestCount:  1,
		TotalSlots:    slotCount,
		TotalVariants: variantCount,
	})
}
