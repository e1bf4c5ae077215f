package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// ListAvailability returns the current user's declarations, optionally for
// one week
func (h *Handler) ListAvailability(c *gin.Context) {
	user := currentUser(c)

	q := h.DB.Where("user_id = ?", user.ID)
	if weekStart := c.Query("week_start"); weekStart != "" {
		week, ok := parseWeekStart(weekStart)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
			return
		}
		q = q.Where("week_start_date = ?", week)
	}

	var availability []models.UserAvailability
	if err := q.Find(&availability).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch availability"})
		return
	}
	c.JSON(http.StatusOK, availability)
}

type availabilityEntry struct {
	LocationID      uint `json:"location_id" binding:"required"`
	TimeSlotID      uint `json:"time_slot_id" binding:"required"`
	PreferenceLevel int  `json:"preference_level"`
}

// upsertAvailability creates or updates the row for one unique
// (user, location, slot, week) tuple
func (h *Handler) upsertAvailability(userID uint, week string, entry availabilityEntry) (models.UserAvailability, bool, error) {
	pref := entry.PreferenceLevel
	if pref == 0 {
		pref = 1
	}

	var existing models.UserAvailability
	err := h.DB.Where("user_id = ? AND location_id = ? AND time_slot_id = ? AND week_start_date = ?",
		userID, entry.LocationID, entry.TimeSlotID, week).First(&existing).Error
	if err == nil {
		existing.PreferenceLevel = pref
		return existing, false, h.DB.Save(&existing).Error
	}

	availability := models.UserAvailability{
		UserID:          userID,
		LocationID:      entry.LocationID,
		TimeSlotID:      entry.TimeSlotID,
		WeekStartDate:   week,
		PreferenceLevel: pref,
	}
	return availability, true, h.DB.Create(&availability).Error
}

// CreateAvailability declares or updates one availability entry for the
// current user
func (h *Handler) CreateAvailability(c *gin.Context) {
	user := currentUser(c)

	var req struct {
		availabilityEntry
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

	availability, created, err := h.upsertAvailability(user.ID, week, req.availabilityEntry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save availability"})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, availability)
}

// CreateAvailabilityBatch declares or updates several entries at once for
// one week
func (h *Handler) CreateAvailabilityBatch(c *gin.Context) {
	user := currentUser(c)

	var req struct {
		WeekStartDate string              `json:"week_start_date" binding:"required"`
		Entries       []availabilityEntry `json:"entries" binding:"required"`
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

	results := make([]models.UserAvailability, 0, len(req.Entries))
	for _, entry := range req.Entries {
		availability, _, err := h.upsertAvailability(user.ID, week, entry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save availability"})
			return
		}
		results = append(results, availability)
	}
	c.JSON(http.StatusCreated, results)
}
