package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/loader"
)

// ValidateConfig checks that the settings, NG dates and history files parse
// and reports the group sizes a build would see.
func (h *Handler) ValidateConfig(c *gin.Context) {
	settings, err := config.LoadSettings(h.SettingsPath)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	if _, err := config.LoadNGConfig(h.NGDatesPath); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	stats, err := loader.LoadStats(h.HistoryPath, loader.DefaultLookbackMonths)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	dayIndex12 := config.ActiveNames(settings.Members.DayShift.Index12Group)
	dayIndex3 := config.ActiveNames(settings.Members.DayShift.Index3Group)
	nightIndex1 := config.ActiveNames(settings.Members.NightShift.Index1Group)
	nightIndex2 := config.ActiveNames(settings.Members.NightShift.Index2Group)

	if len(dayIndex12) == 0 || len(dayIndex3) == 0 || len(nightIndex1) == 0 || len(nightIndex2) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "every shift group needs at least one active member",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"day_index_1_2_count": len(dayIndex12),
			"day_index_3_count":   len(dayIndex3),
			"night_index_1_count": len(nightIndex1),
			"night_index_2_count": len(nightIndex2),
			"history_members":     len(stats),
		},
	})
}
