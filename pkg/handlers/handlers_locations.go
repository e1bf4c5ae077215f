package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// ListLocations returns all active locations
func (h *Handler) ListLocations(c *gin.Context) {
	var locations []models.Location
	if err := h.DB.Where("is_active = ?", true).Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch locations"})
		return
	}
	c.JSON(http.StatusOK, locations)
}

// CreateLocation adds a new active location
func (h *Handler) CreateLocation(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location := models.Location{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.DB.Create(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create location"})
		return
	}
	c.JSON(http.StatusCreated, location)
}

// UpdateLocation changes name, description, or active flag
func (h *Handler) UpdateLocation(c *gin.Context) {
	var location models.Location
	if err := h.DB.First(&location, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Description != nil {
		location.Description = *req.Description
	}
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update location"})
		return
	}
	c.JSON(http.StatusOK, location)
}

// DeleteLocation soft-deletes by clearing the active flag; existing
// assignments keep their location reference
func (h *Handler) DeleteLocation(c *gin.Context) {
	var location models.Location
	if err := h.DB.First(&location, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	location.IsActive = false
	if err := h.DB.Save(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete location"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location deleted"})
}
