package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// ListShiftRequirements returns capacity overrides, optionally for one week
func (h *Handler) ListShiftRequirements(c *gin.Context) {
	q := h.DB.Order("week_start_date")
	if weekStart := c.Query("week_start"); weekStart != "" {
		week, ok := parseWeekStart(weekStart)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
			return
		}
		q = q.Where("week_start_date = ?", week)
	}

	var requirements []models.ShiftRequirement
	if err := q.Find(&requirements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch shift requirements"})
		return
	}
	c.JSON(http.StatusOK, requirements)
}

// CreateShiftRequirement upserts the capacity override for one
// (location, slot, week) cell. required_workers 0 blocks the cell.
func (h *Handler) CreateShiftRequirement(c *gin.Context) {
	user := currentUser(c)

	var req struct {
		LocationID      uint   `json:"location_id" binding:"required"`
		TimeSlotID      uint   `json:"time_slot_id" binding:"required"`
		WeekStartDate   string `json:"week_start_date" binding:"required"`
		RequiredWorkers *int   `json:"required_workers" binding:"required"`
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
	if *req.RequiredWorkers < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required_workers must be non-negative"})
		return
	}

	var existing models.ShiftRequirement
	err := h.DB.Where("location_id = ? AND time_slot_id = ? AND week_start_date = ?",
		req.LocationID, req.TimeSlotID, week).First(&existing).Error
	if err == nil {
		existing.RequiredWorkers = *req.RequiredWorkers
		existing.CreatedBy = &user.ID
		if err := h.DB.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update shift requirement"})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	requirement := models.ShiftRequirement{
		LocationID:      req.LocationID,
		TimeSlotID:      req.TimeSlotID,
		WeekStartDate:   week,
		RequiredWorkers: *req.RequiredWorkers,
		CreatedBy:       &user.ID,
	}
	if err := h.DB.Create(&requirement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create shift requirement"})
		return
	}
	c.JSON(http.StatusCreated, requirement)
}

// UpdateShiftRequirement edits an override by id
func (h *Handler) UpdateShiftRequirement(c *gin.Context) {
	var requirement models.ShiftRequirement
	if err := h.DB.First(&requirement, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift requirement not found"})
		return
	}

	var req struct {
		RequiredWorkers *int    `json:"required_workers"`
		LocationID      *uint   `json:"location_id"`
		TimeSlotID      *uint   `json:"time_slot_id"`
		WeekStartDate   *string `json:"week_start_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RequiredWorkers != nil {
		if *req.RequiredWorkers < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "required_workers must be non-negative"})
			return
		}
		requirement.RequiredWorkers = *req.RequiredWorkers
	}
	if req.LocationID != nil {
		requirement.LocationID = *req.LocationID
	}
	if req.TimeSlotID != nil {
		requirement.TimeSlotID = *req.TimeSlotID
	}
	if req.WeekStartDate != nil {
		week, ok := parseWeekStart(*req.WeekStartDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start_date format"})
			return
		}
		requirement.WeekStartDate = week
	}

	if err := h.DB.Save(&requirement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update shift requirement"})
		return
	}
	c.JSON(http.StatusOK, requirement)
}

// DeleteShiftRequirement removes an override; the cell falls back to the
// global default capacity
func (h *Handler) DeleteShiftRequirement(c *gin.Context) {
	res := h.DB.Delete(&models.ShiftRequirement{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete shift requirement"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift requirement not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shift requirement deleted"})
}
