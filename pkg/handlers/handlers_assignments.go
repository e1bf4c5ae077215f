package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oliverkemp/staffdesk/pkg/models"
	"github.com/oliverkemp/staffdesk/pkg/scheduler"
)

// ListAssignments returns a week's bookings. Workers see only their own;
// admins see everything and may filter by user or location.
func (h *Handler) ListAssignments(c *gin.Context) {
	user := currentUser(c)

	weekStart := c.Query("week_start")
	if weekStart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start parameter is required"})
		return
	}
	week, ok := parseWeekStart(weekStart)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
		return
	}

	q := h.DB.Where("week_start_date = ?", week)
	if user.Role != "admin" {
		q = q.Where("user_id = ?", user.ID)
	} else {
		if userID := c.Query("user_id"); userID != "" {
			q = q.Where("user_id = ?", userID)
		}
		if locationID := c.Query("location_id"); locationID != "" {
			q = q.Where("location_id = ?", locationID)
		}
	}

	var assignments []models.Assignment
	if err := q.Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch assignments"})
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// checkSlotCapacity validates that adding one more booking to a cell stays
// within the default capacity, ignoring excludeID when re-homing an existing
// row. Returns the limit for the error message.
func (h *Handler) checkSlotCapacity(timeSlotID, locationID uint, week string, excludeID uint) (bool, int, error) {
	var settings models.GlobalSettings
	maxWorkers := 3
	if err := h.DB.First(&settings).Error; err == nil {
		maxWorkers = settings.MaxWorkersPerShift
	}

	q := h.DB.Model(&models.Assignment{}).
		Where("time_slot_id = ? AND location_id = ? AND week_start_date = ?", timeSlotID, locationID, week)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, maxWorkers, err
	}
	return count < int64(maxWorkers), maxWorkers, nil
}

// hasUserSlotOverlap reports whether the user already holds the same time
// slot in that week at any location, ignoring excludeID
func (h *Handler) hasUserSlotOverlap(userID, timeSlotID uint, week string, excludeID uint) (bool, error) {
	q := h.DB.Model(&models.Assignment{}).
		Where("user_id = ? AND time_slot_id = ? AND week_start_date = ?", userID, timeSlotID, week)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// CreateAssignment books a worker into a cell by direct admin action
func (h *Handler) CreateAssignment(c *gin.Context) {
	admin := currentUser(c)

	var req struct {
		UserID        uint   `json:"user_id" binding:"required"`
		LocationID    uint   `json:"location_id" binding:"required"`
		TimeSlotID    uint   `json:"time_slot_id" binding:"required"`
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

	fits, maxWorkers, err := h.checkSlotCapacity(req.TimeSlotID, req.LocationID, week, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not validate capacity"})
		return
	}
	if !fits {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "OVER_MAX_WORKERS",
			"message": fmt.Sprintf("Maximum %d workers already scheduled in that slot", maxWorkers),
		})
		return
	}

	overlap, err := h.hasUserSlotOverlap(req.UserID, req.TimeSlotID, week, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not validate overlap"})
		return
	}
	if overlap {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "OVERLAP_FOR_USER",
			"message": "This worker is already scheduled at that time",
		})
		return
	}

	assignment := models.Assignment{
		UserID:        req.UserID,
		LocationID:    req.LocationID,
		TimeSlotID:    req.TimeSlotID,
		WeekStartDate: week,
		AssignedBy:    &admin.ID,
	}
	if err := h.DB.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create assignment"})
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// UpdateAssignment re-homes an assignment to another worker, location, or
// slot within its week, re-validating capacity and overlap
func (h *Handler) UpdateAssignment(c *gin.Context) {
	admin := currentUser(c)

	var assignment models.Assignment
	if err := h.DB.First(&assignment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	var req struct {
		UserID     *uint `json:"user_id"`
		LocationID *uint `json:"location_id"`
		TimeSlotID *uint `json:"time_slot_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.UserID != nil {
		assignment.UserID = *req.UserID
		assignment.AssignedBy = &admin.ID
	}

	if req.LocationID != nil || req.TimeSlotID != nil {
		newLocationID := assignment.LocationID
		if req.LocationID != nil {
			newLocationID = *req.LocationID
		}
		newTimeSlotID := assignment.TimeSlotID
		if req.TimeSlotID != nil {
			newTimeSlotID = *req.TimeSlotID
		}

		var location models.Location
		var slot models.TimeSlot
		if h.DB.First(&location, newLocationID).Error != nil ||
			h.DB.First(&slot, newTimeSlotID).Error != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location or time slot not found"})
			return
		}

		overlap, err := h.hasUserSlotOverlap(assignment.UserID, newTimeSlotID, assignment.WeekStartDate, assignment.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not validate overlap"})
			return
		}
		if overlap {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "OVERLAP_FOR_USER",
				"message": "This worker is already scheduled at that time",
			})
			return
		}

		fits, maxWorkers, err := h.checkSlotCapacity(newTimeSlotID, newLocationID, assignment.WeekStartDate, assignment.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not validate capacity"})
			return
		}
		if !fits {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "OVER_MAX_WORKERS",
				"message": fmt.Sprintf("Maximum %d workers already scheduled in that slot", maxWorkers),
			})
			return
		}

		assignment.LocationID = newLocationID
		assignment.TimeSlotID = newTimeSlotID
		assignment.AssignedBy = &admin.ID
	}

	if err := h.DB.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update assignment"})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// MoveAssignment relocates an assignment to the slot matching a new calendar
// start/end, possibly in a different week or location
func (h *Handler) MoveAssignment(c *gin.Context) {
	admin := currentUser(c)

	var assignment models.Assignment
	if err := h.DB.First(&assignment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	var req struct {
		NewStart      string `json:"new_start" binding:"required"`
		NewEnd        string `json:"new_end" binding:"required"`
		NewTimeSlotID *uint  `json:"new_time_slot_id"`
		NewLocationID *uint  `json:"new_location_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStart, err := time.Parse(time.RFC3339, req.NewStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid datetime format"})
		return
	}
	newEnd, err := time.Parse(time.RFC3339, req.NewEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid datetime format"})
		return
	}

	// 0=Monday in the slot grid; Go weeks start on Sunday
	dayOfWeek := (int(newStart.Weekday()) + 6) % 7

	var slot models.TimeSlot
	if req.NewTimeSlotID != nil {
		if err := h.DB.First(&slot, *req.NewTimeSlotID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
			return
		}
	} else {
		err := h.DB.Where("day_of_week = ? AND start_time = ? AND end_time = ?",
			dayOfWeek, newStart.Format("15:04"), newEnd.Format("15:04")).First(&slot).Error
		if err != nil {
			// Fall back to any slot on that day
			if err := h.DB.Where("day_of_week = ?", dayOfWeek).First(&slot).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "No matching time slot found"})
				return
			}
		}
	}

	newLocationID := assignment.LocationID
	if req.NewLocationID != nil {
		newLocationID = *req.NewLocationID
	}
	var location models.Location
	if err := h.DB.First(&location, newLocationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	// Monday of the week containing the new start
	newWeek := newStart.AddDate(0, 0, -dayOfWeek).Format("2006-01-02")

	overlap, err := h.hasUserSlotOverlap(assignment.UserID, slot.ID, newWeek, assignment.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not validate overlap"})
		return
	}
	if overlap {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "OVERLAP_FOR_USER",
			"message": "This worker is already scheduled at that time",
		})
		return
	}

	fits, maxWorkers, err := h.checkSlotCapacity(slot.ID, newLocationID, newWeek, assignment.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not validate capacity"})
		return
	}
	if !fits {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "OVER_MAX_WORKERS",
			"message": fmt.Sprintf("Maximum %d workers already scheduled in that slot", maxWorkers),
		})
		return
	}

	assignment.TimeSlotID = slot.ID
	assignment.LocationID = newLocationID
	assignment.WeekStartDate = newWeek
	assignment.AssignedBy = &admin.ID

	if err := h.DB.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not move assignment"})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment removes a booking
func (h *Handler) DeleteAssignment(c *gin.Context) {
	res := h.DB.Delete(&models.Assignment{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete assignment"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted"})
}

// AvailableWorkers lists users who declared availability for a cell and are
// not yet booked into that slot this week
func (h *Handler) AvailableWorkers(c *gin.Context) {
	locationID := c.Query("location_id")
	timeSlotID := c.Query("time_slot_id")
	weekStart := c.Query("week_start")
	if locationID == "" || timeSlotID == "" || weekStart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id, time_slot_id, and week_start are required"})
		return
	}
	week, ok := parseWeekStart(weekStart)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
		return
	}

	var slot models.TimeSlot
	if err := h.DB.First(&slot, timeSlotID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		return
	}

	var availability []models.UserAvailability
	if err := h.DB.Where("location_id = ? AND time_slot_id = ? AND week_start_date = ?",
		locationID, timeSlotID, week).Find(&availability).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch availability"})
		return
	}
	if len(availability) == 0 {
		c.JSON(http.StatusOK, []models.User{})
		return
	}

	candidateIDs := make([]uint, 0, len(availability))
	for _, av := range availability {
		candidateIDs = append(candidateIDs, av.UserID)
	}

	var booked []models.Assignment
	if err := h.DB.Where("week_start_date = ? AND time_slot_id = ? AND user_id IN ?",
		week, slot.ID, candidateIDs).Find(&booked).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch assignments"})
		return
	}
	bookedIDs := make(map[uint]bool, len(booked))
	for _, a := range booked {
		bookedIDs[a.UserID] = true
	}

	freeIDs := make([]uint, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if !bookedIDs[id] {
			freeIDs = append(freeIDs, id)
		}
	}
	if len(freeIDs) == 0 {
		c.JSON(http.StatusOK, []models.User{})
		return
	}

	var users []models.User
	if err := h.DB.Where("id IN ?", freeIDs).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// ExportAssignmentsCSV exports one week's assignments as CSV
func (h *Handler) ExportAssignmentsCSV(c *gin.Context) {
	week, ok := parseWeekStart(c.Query("week_start"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
		return
	}
	weekStart, err := time.Parse("2006-01-02", week)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start format"})
		return
	}

	var assignments []models.Assignment
	if err := h.DB.Where("week_start_date = ?", week).Order("time_slot_id").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch assignments"})
		return
	}

	var outCSV strings.Builder
	writer := csv.NewWriter(&outCSV)
	writer.Write([]string{"date", "day", "start_time", "end_time", "location", "worker", "duration_hours"})

	for _, a := range assignments {
		var slot models.TimeSlot
		if err := h.DB.First(&slot, a.TimeSlotID).Error; err != nil {
			continue
		}
		var loc models.Location
		h.DB.First(&loc, a.LocationID)
		var worker models.User
		h.DB.First(&worker, a.UserID)

		date := weekStart.AddDate(0, 0, slot.DayOfWeek).Format("2006-01-02")
		writer.Write([]string{
			date,
			slot.DayName(),
			slot.StartTime,
			slot.EndTime,
			loc.Name,
			worker.Name,
			fmt.Sprintf("%.2f", scheduler.HoursForSlot(slot)),
		})
	}
	writer.Flush()

	c.JSON(http.StatusOK, gin.H{"csv": outCSV.String()})
}

// RunScheduler triggers the auto-scheduler for one week
func (h *Handler) RunScheduler(c *gin.Context) {
	var req struct {
		WeekStartDate string `json:"week_start_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start_date is required"})
		return
	}
	week, ok := parseWeekStart(req.WeekStartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start_date format"})
		return
	}

	result, err := scheduler.New(h.DB).RunAutoScheduler(week)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Scheduler failed: %v", err)})
		return
	}
	c.JSON(http.StatusOK, result)
}
