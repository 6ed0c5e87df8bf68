package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
)

// GetNGDates returns the editable NG-date document.
func (h *Handler) GetNGDates(c *gin.Context) {
	f, err := config.LoadNGFile(h.NGDatesPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, f.NGDates)
}

// AddGlobalNG adds a date to the global exclusion list.
func (h *Handler) AddGlobalNG(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := dateutil.ParseDate(req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	h.mutateNG(c, func(f *config.NGFile) { f.AddGlobal(req.Date) })
}

// RemoveGlobalNG removes a date from the global exclusion list.
func (h *Handler) RemoveGlobalNG(c *gin.Context) {
	date := c.Param("date")
	h.mutateNG(c, func(f *config.NGFile) { f.RemoveGlobal(date) })
}

// AddMemberNG adds a per-member exclusion date.
func (h *Handler) AddMemberNG(c *gin.Context) {
	var req struct {
		Member string `json:"member" binding:"required"`
		Date   string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := dateutil.ParseDate(req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	h.mutateNG(c, func(f *config.NGFile) { f.AddMemberDate(req.Member, req.Date) })
}

// RemoveMemberNG removes a per-member exclusion date.
func (h *Handler) RemoveMemberNG(c *gin.Context) {
	member := c.Param("member")
	date := c.Param("date")
	h.mutateNG(c, func(f *config.NGFile) { f.RemoveMemberDate(member, date) })
}

// AddPeriodNG adds a per-member exclusion period.
func (h *Handler) AddPeriodNG(c *gin.Context) {
	var req struct {
		Member string `json:"member" binding:"required"`
		Start  string `json:"start" binding:"required"`
		End    string `json:"end" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := dateutil.ParseDate(req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
		return
	}
	end, err := dateutil.ParseDate(req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end before start"})
		return
	}
	h.mutateNG(c, func(f *config.NGFile) {
		f.AddPeriod(req.Member, config.Period{Start: req.Start, End: req.End, Reason: req.Reason})
	})
}

// RemovePeriodNG removes a per-member exclusion period by its start date.
func (h *Handler) RemovePeriodNG(c *gin.Context) {
	member := c.Param("member")
	start := c.Param("start")
	h.mutateNG(c, func(f *config.NGFile) { f.RemovePeriod(member, start) })
}

// GetMembers lists every configured member name for the dashboard pickers.
func (h *Handler) GetMembers(c *gin.Context) {
	settings, err := config.LoadSettings(h.SettingsPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": settings.AllMemberNames()})
}

// mutateNG applies an edit to the NG-date file under load-modify-save.
func (h *Handler) mutateNG(c *gin.Context, edit func(*config.NGFile)) {
	f, err := config.LoadNGFile(h.NGDatesPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	edit(f)
	if err := config.SaveNGFile(h.NGDatesPath, f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, f.NGDates)
}
