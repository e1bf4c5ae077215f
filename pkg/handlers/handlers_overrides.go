package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// ListWeeklyOverrides returns overrides, optionally scoped to one week
func (h *Handler) ListWeeklyOverrides(c *gin.Context) {
	q := h.DB.Order("week_start_date, day_of_week")
	if weekStart := c.Query("week_start"); weekStart != "" {
		week, ok := parseWeekStart(weekStart)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
			return
		}
		q = q.Where("week_start_date = ?", week)
	}

	var overrides []models.WeeklyScheduleOverride
	if err := q.Find(&overrides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch overrides"})
		return
	}
	c.JSON(http.StatusOK, overrides)
}

// CreateWeeklyOverride creates or updates the override for one (week, day).
// The global time-slot grid is left untouched; overrides only control which
// days count as configured for that week.
func (h *Handler) CreateWeeklyOverride(c *gin.Context) {
	var req struct {
		WeekStartDate       string `json:"week_start_date" binding:"required"`
		DayOfWeek           *int   `json:"day_of_week" binding:"required"`
		StartTime           string `json:"start_time" binding:"required"`
		EndTime             string `json:"end_time" binding:"required"`
		SlotDurationMinutes int    `json:"slot_duration_minutes"`
		IsActive            *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	week, ok := parseWeekStart(req.WeekStartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start_date format"})
		return
	}
	if req.SlotDurationMinutes <= 0 {
		req.SlotDurationMinutes = 30
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	var existing models.WeeklyScheduleOverride
	err := h.DB.Where("week_start_date = ? AND day_of_week = ?", week, *req.DayOfWeek).
		First(&existing).Error
	if err == nil {
		existing.StartTime = req.StartTime
		existing.EndTime = req.EndTime
		existing.SlotDurationMinutes = req.SlotDurationMinutes
		existing.IsActive = active
		if err := h.DB.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update override"})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	override := models.WeeklyScheduleOverride{
		WeekStartDate:       week,
		DayOfWeek:           *req.DayOfWeek,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		IsActive:            active,
	}
	if err := h.DB.Create(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create override"})
		return
	}
	c.JSON(http.StatusCreated, override)
}

// UpdateWeeklyOverride edits an override by id
func (h *Handler) UpdateWeeklyOverride(c *gin.Context) {
	var override models.WeeklyScheduleOverride
	if err := h.DB.First(&override, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Override not found"})
		return
	}

	var req struct {
		StartTime           *string `json:"start_time"`
		EndTime             *string `json:"end_time"`
		SlotDurationMinutes *int    `json:"slot_duration_minutes"`
		IsActive            *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StartTime != nil {
		override.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		override.EndTime = *req.EndTime
	}
	if req.SlotDurationMinutes != nil {
		override.SlotDurationMinutes = *req.SlotDurationMinutes
	}
	if req.IsActive != nil {
		override.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update override"})
		return
	}
	c.JSON(http.StatusOK, override)
}

// DeleteWeeklyOverride removes one override, reverting that day to the
// standard week
func (h *Handler) DeleteWeeklyOverride(c *gin.Context) {
	res := h.DB.Delete(&models.WeeklyScheduleOverride{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete override"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Override not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Override deleted, reverted to standard week"})
}

// CreateOverridesFromStandard copies the active standard-week template into
// one week's overrides, updating any that already exist
func (h *Handler) CreateOverridesFromStandard(c *gin.Context) {
	var req struct {
		WeekStartDate string `json:"week_start_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	week, ok := parseWeekStart(req.WeekStartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start_date format"})
		return
	}

	var schedules []models.DaySchedule
	if err := h.DB.Where("is_active = ?", true).Order("day_of_week").Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch day schedules"})
		return
	}

	overrides := make([]models.WeeklyScheduleOverride, 0, len(schedules))
	for _, schedule := range schedules {
		var override models.WeeklyScheduleOverride
		err := h.DB.Where("week_start_date = ? AND day_of_week = ?", week, schedule.DayOfWeek).
			First(&override).Error
		if err != nil {
			override = models.WeeklyScheduleOverride{
				WeekStartDate: week,
				DayOfWeek:     schedule.DayOfWeek,
			}
		}
		override.StartTime = schedule.StartTime
		override.EndTime = schedule.EndTime
		override.SlotDurationMinutes = schedule.SlotDurationMinutes
		override.IsActive = schedule.IsActive

		if err := h.DB.Save(&override).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save override"})
			return
		}
		overrides = append(overrides, override)
	}

	c.JSON(http.StatusCreated, overrides)
}

// DeleteWeekOverrides clears every override of one week
func (h *Handler) DeleteWeekOverrides(c *gin.Context) {
	weekStart := c.Query("week_start")
	if weekStart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start parameter required"})
		return
	}
	week, ok := parseWeekStart(weekStart)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
		return
	}

	res := h.DB.Where("week_start_date = ?", week).Delete(&models.WeeklyScheduleOverride{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete overrides"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Deleted %d overrides, reverted to standard week", res.RowsAffected),
	})
}
