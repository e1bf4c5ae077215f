package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oliverkemp/staffdesk/pkg/models"
	"github.com/oliverkemp/staffdesk/pkg/slotgen"
)

// ListTimeSlots returns the whole weekly slot grid
func (h *Handler) ListTimeSlots(c *gin.Context) {
	var slots []models.TimeSlot
	if err := h.DB.Order("day_of_week, start_time").Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch time slots"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

type timeSlotRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// CreateTimeSlot adds a single grid cell
func (h *Handler) CreateTimeSlot(c *gin.Context) {
	var req timeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be 0-6"})
		return
	}

	slot := models.TimeSlot{DayOfWeek: *req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := h.DB.Create(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create time slot"})
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// UpdateTimeSlot edits a grid cell in place
func (h *Handler) UpdateTimeSlot(c *gin.Context) {
	var slot models.TimeSlot
	if err := h.DB.First(&slot, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		return
	}

	var req struct {
		DayOfWeek *int    `json:"day_of_week"`
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DayOfWeek != nil {
		if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be 0-6"})
			return
		}
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}

	if err := h.DB.Save(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update time slot"})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// DeleteTimeSlot removes a grid cell. Availability and assignment rows that
// referenced it become orphans, which downstream readers tolerate.
func (h *Handler) DeleteTimeSlot(c *gin.Context) {
	res := h.DB.Delete(&models.TimeSlot{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete time slot"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time slot deleted"})
}

// ListDaySchedules returns the standard-week template
func (h *Handler) ListDaySchedules(c *gin.Context) {
	var schedules []models.DaySchedule
	if err := h.DB.Order("day_of_week").Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch day schedules"})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

type dayScheduleRequest struct {
	DayOfWeek           *int   `json:"day_of_week" binding:"required"`
	StartTime           string `json:"start_time" binding:"required"`
	EndTime             string `json:"end_time" binding:"required"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	IsActive            *bool  `json:"is_active"`
}

// CreateDaySchedule defines a day's standard working window and generates
// its time slots
func (h *Handler) CreateDaySchedule(c *gin.Context) {
	var req dayScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be 0-6"})
		return
	}
	if req.SlotDurationMinutes <= 0 {
		req.SlotDurationMinutes = 30
	}

	schedule := models.DaySchedule{
		DayOfWeek:           *req.DayOfWeek,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		IsActive:            true,
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A schedule for that day already exists"})
		return
	}

	var created []models.TimeSlot
	if schedule.IsActive {
		slots, err := slotgen.GenerateForDay(h.DB, slotgen.Bounds(schedule))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created = slots
	}

	c.JSON(http.StatusCreated, gin.H{"schedule": schedule, "slots_created": len(created)})
}

// UpdateDaySchedule edits a day's window and regenerates that day's slots
func (h *Handler) UpdateDaySchedule(c *gin.Context) {
	var schedule models.DaySchedule
	if err := h.DB.First(&schedule, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Day schedule not found"})
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
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.SlotDurationMinutes != nil {
		schedule.SlotDurationMinutes = *req.SlotDurationMinutes
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update day schedule"})
		return
	}

	slotsCreated := 0
	if schedule.IsActive {
		slots, err := slotgen.RegenerateForDay(h.DB, slotgen.Bounds(schedule))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slotsCreated = len(slots)
	} else {
		if _, err := slotgen.DeleteForDay(h.DB, schedule.DayOfWeek); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not remove day slots"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule, "slots_created": slotsCreated})
}

// DeleteDaySchedule removes a day's template together with its slots
func (h *Handler) DeleteDaySchedule(c *gin.Context) {
	var schedule models.DaySchedule
	if err := h.DB.First(&schedule, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Day schedule not found"})
		return
	}

	deleted, err := slotgen.DeleteForDay(h.DB, schedule.DayOfWeek)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not remove day slots"})
		return
	}
	if err := h.DB.Delete(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete day schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Day schedule deleted", "slots_deleted": deleted})
}

// PreviewDaySlots shows the slots a window would produce without creating them
func (h *Handler) PreviewDaySlots(c *gin.Context) {
	var req struct {
		StartTime           string `json:"start_time" binding:"required"`
		EndTime             string `json:"end_time" binding:"required"`
		SlotDurationMinutes int    `json:"slot_duration_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SlotDurationMinutes <= 0 {
		req.SlotDurationMinutes = 30
	}

	slots, err := slotgen.Preview(req.StartTime, req.EndTime, req.SlotDurationMinutes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots, "count": len(slots)})
}

// RegenerateAllTimeSlots wipes and rebuilds the whole grid from the
// standard-week template
func (h *Handler) RegenerateAllTimeSlots(c *gin.Context) {
	res, err := slotgen.RegenerateAll(h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not regenerate time slots"})
		return
	}
	c.JSON(http.StatusOK, res)
}
