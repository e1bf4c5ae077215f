package models

import "time"

// User is a student worker or an administrator
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Email          string    `gorm:"unique;not null" json:"email"`
	Role           string    `gorm:"not null;default:user" json:"role"` // "user" or "admin"
	PasswordHash   string    `json:"-"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Location is a staffed site; only active locations are scheduled against
type Location struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
}

// TimeSlot is a recurring weekly grid cell shared across all weeks.
// Start and end are wall-clock "HH:MM" strings with no date attached.
type TimeSlot struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	DayOfWeek int    `gorm:"not null" json:"day_of_week"` // 0=Monday .. 6=Sunday
	StartTime string `gorm:"not null" json:"start_time"`
	EndTime   string `gorm:"not null" json:"end_time"`
}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English weekday name for the slot's day index
func (ts TimeSlot) DayName() string {
	if ts.DayOfWeek < 0 || ts.DayOfWeek >= len(dayNames) {
		return "Unknown"
	}
	return dayNames[ts.DayOfWeek]
}

// GlobalSettings is a singleton row holding scheduling defaults.
// MaxHoursPerUserPerWeek nil (or zero) means no weekly hour cap.
type GlobalSettings struct {
	ID                     uint `gorm:"primaryKey" json:"id"`
	MaxWorkersPerShift     int  `gorm:"not null;default:3" json:"max_workers_per_shift"`
	MaxHoursPerUserPerWeek *int `json:"max_hours_per_user_per_week"`
}

// HourCap reports whether a weekly hour cap is in effect and its value
func (s GlobalSettings) HourCap() (int, bool) {
	if s.MaxHoursPerUserPerWeek == nil || *s.MaxHoursPerUserPerWeek <= 0 {
		return 0, false
	}
	return *s.MaxHoursPerUserPerWeek, true
}

// DaySchedule defines the standard working hours for one weekday; the slot
// generator expands it into fixed-duration TimeSlot rows
type DaySchedule struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	DayOfWeek           int    `gorm:"not null;unique" json:"day_of_week"`
	StartTime           string `gorm:"not null" json:"start_time"`
	EndTime             string `gorm:"not null" json:"end_time"`
	SlotDurationMinutes int    `gorm:"not null;default:30" json:"slot_duration_minutes"`
	IsActive            bool   `gorm:"not null;default:true" json:"is_active"`
}

// DayName returns the English weekday name for the schedule's day index
func (d DaySchedule) DayName() string {
	if d.DayOfWeek < 0 || d.DayOfWeek >= len(dayNames) {
		return "Unknown"
	}
	return dayNames[d.DayOfWeek]
}

// WeeklyScheduleOverride is a per-week exception to a DaySchedule.
// Week-start dates are stored as "2006-01-02" strings throughout.
type WeeklyScheduleOverride struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	WeekStartDate       string `gorm:"uniqueIndex:idx_week_day;not null" json:"week_start_date"`
	DayOfWeek           int    `gorm:"uniqueIndex:idx_week_day;not null" json:"day_of_week"`
	StartTime           string `gorm:"not null" json:"start_time"`
	EndTime             string `gorm:"not null" json:"end_time"`
	SlotDurationMinutes int    `gorm:"not null;default:30" json:"slot_duration_minutes"`
	IsActive            bool   `gorm:"not null;default:true" json:"is_active"`
}

// ShiftRequirement is a per-week capacity override for one (location, slot)
// cell. RequiredWorkers 0 blocks the cell for that week outright.
type ShiftRequirement struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	LocationID      uint   `gorm:"not null;index" json:"location_id"`
	TimeSlotID      uint   `gorm:"not null;index" json:"time_slot_id"`
	WeekStartDate   string `gorm:"not null;index" json:"week_start_date"`
	RequiredWorkers int    `gorm:"not null" json:"required_workers"`
	CreatedBy       *uint  `json:"created_by"`
}

// UserAvailability is a worker's declaration of willingness to work a
// (location, slot) cell in one week. Preference 1 = available, 2 = preferred.
type UserAvailability struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UserID          uint   `gorm:"uniqueIndex:idx_availability;not null" json:"user_id"`
	LocationID      uint   `gorm:"uniqueIndex:idx_availability;not null" json:"location_id"`
	TimeSlotID      uint   `gorm:"uniqueIndex:idx_availability;not null" json:"time_slot_id"`
	WeekStartDate   string `gorm:"uniqueIndex:idx_availability;not null" json:"week_start_date"`
	PreferenceLevel int    `gorm:"not null;default:1" json:"preference_level"`
}

// Assignment books one worker into one (location, slot) cell for one week.
// AssignedBy nil marks a scheduler-generated row versus an admin-issued one.
type Assignment struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	LocationID    uint   `gorm:"not null;index" json:"location_id"`
	TimeSlotID    uint   `gorm:"not null;index" json:"time_slot_id"`
	WeekStartDate string `gorm:"not null;index" json:"week_start_date"`
	AssignedBy    *uint  `json:"assigned_by"`
}

// AssignmentDetail is one scheduler-created row in a SchedulerResult
type AssignmentDetail struct {
	UserID       uint   `json:"user_id"`
	UserName     string `json:"user_name"`
	LocationID   uint   `json:"location_id"`
	LocationName string `json:"location_name"`
	TimeSlotID   uint   `json:"time_slot_id"`
	Day          string `json:"day"`
	Time         string `json:"time"`
}

// SchedulerResult summarizes one auto-scheduler run
type SchedulerResult struct {
	Message      string             `json:"message"`
	Scheduled    int                `json:"scheduled"`
	SkippedSlots int                `json:"skipped_slots"`
	Assignments  []AssignmentDetail `json:"assignments"`
}
