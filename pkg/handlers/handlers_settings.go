package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// GetSettings returns the settings singleton, creating the default row when
// none exists yet
func (h *Handler) GetSettings(c *gin.Context) {
	var settings models.GlobalSettings
	err := h.DB.First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = models.GlobalSettings{MaxWorkersPerShift: 3}
		err = h.DB.Create(&settings).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings changes the default capacity and/or the weekly hour cap.
// Sending max_hours_per_user_per_week as null clears the cap.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var settings models.GlobalSettings
	err := h.DB.First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = models.GlobalSettings{MaxWorkersPerShift: 3}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load settings"})
		return
	}

	var req map[string]*int
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if v, ok := req["max_workers_per_shift"]; ok {
		if v == nil || *v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_workers_per_shift must be a non-negative integer"})
			return
		}
		settings.MaxWorkersPerShift = *v
	}
	if v, ok := req["max_hours_per_user_per_week"]; ok {
		settings.MaxHoursPerUserPerWeek = v
	}

	if err := h.DB.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
