package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint onto the engine. Read-only grid data
// (locations, slots, requirements) is public; everything else needs a token,
// and mutations need the admin role.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "StaffDesk Scheduling API",
			"version": "1.2.0",
		})
	})

	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", h.AuthMiddleware(), h.Me)

	r.GET("/api/locations", h.ListLocations)
	r.GET("/api/time-slots", h.ListTimeSlots)
	r.GET("/api/shift-requirements", h.ListShiftRequirements)

	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/users/me", h.Me)
		api.POST("/users/me/picture", h.UploadProfilePicture)

		api.GET("/availability", h.ListAvailability)
		api.POST("/availability", h.CreateAvailability)
		api.POST("/availability/batch", h.CreateAvailabilityBatch)

		api.GET("/assignments", h.ListAssignments)
	}

	admin := r.Group("/api")
	admin.Use(h.AuthMiddleware(), h.AdminOnly())
	{
		admin.GET("/users", h.ListUsers)

		admin.POST("/locations", h.CreateLocation)
		admin.PUT("/locations/:id", h.UpdateLocation)
		admin.DELETE("/locations/:id", h.DeleteLocation)

		admin.POST("/time-slots", h.CreateTimeSlot)
		admin.PUT("/time-slots/:id", h.UpdateTimeSlot)
		admin.DELETE("/time-slots/:id", h.DeleteTimeSlot)

		admin.GET("/day-schedules", h.ListDaySchedules)
		admin.POST("/day-schedules", h.CreateDaySchedule)
		admin.PUT("/day-schedules/:id", h.UpdateDaySchedule)
		admin.DELETE("/day-schedules/:id", h.DeleteDaySchedule)
		admin.POST("/day-schedules/preview", h.PreviewDaySlots)
		admin.POST("/day-schedules/regenerate-all", h.RegenerateAllTimeSlots)

		admin.GET("/weekly-overrides", h.ListWeeklyOverrides)
		admin.POST("/weekly-overrides", h.CreateWeeklyOverride)
		admin.PUT("/weekly-overrides/:id", h.UpdateWeeklyOverride)
		admin.DELETE("/weekly-overrides/:id", h.DeleteWeeklyOverride)
		admin.POST("/weekly-overrides/create-from-standard", h.CreateOverridesFromStandard)
		// Clears a whole week; takes ?week_start=
		admin.DELETE("/weekly-overrides", h.DeleteWeekOverrides)

		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)

		admin.POST("/shift-requirements", h.CreateShiftRequirement)
		admin.PUT("/shift-requirements/:id", h.UpdateShiftRequirement)
		admin.DELETE("/shift-requirements/:id", h.DeleteShiftRequirement)

		admin.POST("/assignments", h.CreateAssignment)
		admin.PUT("/assignments/:id", h.UpdateAssignment)
		admin.PUT("/assignments/:id/move", h.MoveAssignment)
		admin.DELETE("/assignments/:id", h.DeleteAssignment)
		admin.GET("/assignments/available-workers", h.AvailableWorkers)
		admin.GET("/assignments/export", h.ExportAssignmentsCSV)
		admin.POST("/assignments/run-scheduler", h.RunScheduler)
	}
}
