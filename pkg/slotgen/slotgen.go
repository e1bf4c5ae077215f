package slotgen

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// DayBounds is the generator input: one day's working window and the slot
// length to cut it into. Both DaySchedule and WeeklyScheduleOverride satisfy
// it structurally via Bounds helpers below.
type DayBounds struct {
	DayOfWeek           int
	StartTime           string
	EndTime             string
	SlotDurationMinutes int
}

// Bounds adapts a DaySchedule for the generator
func Bounds(d models.DaySchedule) DayBounds {
	return DayBounds{d.DayOfWeek, d.StartTime, d.EndTime, d.SlotDurationMinutes}
}

// OverrideBounds adapts a WeeklyScheduleOverride for the generator
func OverrideBounds(o models.WeeklyScheduleOverride) DayBounds {
	return DayBounds{o.DayOfWeek, o.StartTime, o.EndTime, o.SlotDurationMinutes}
}

// SlotPreview is one would-be slot returned by Preview
type SlotPreview struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

const clockLayout = "15:04"

// Preview lists the slots that a window and duration would produce, without
// touching the database. Returns an error on malformed times or a
// non-positive duration.
func Preview(startTime, endTime string, durationMinutes int) ([]SlotPreview, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", durationMinutes)
	}
	start, err := time.Parse(clockLayout, startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}
	end, err := time.Parse(clockLayout, endTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end time %q: %w", endTime, err)
	}

	duration := time.Duration(durationMinutes) * time.Minute
	slots := []SlotPreview{}
	for current := start; !current.Add(duration).After(end); current = current.Add(duration) {
		slots = append(slots, SlotPreview{
			StartTime: current.Format(clockLayout),
			EndTime:   current.Add(duration).Format(clockLayout),
		})
	}
	return slots, nil
}

// GenerateForDay expands one day's bounds into TimeSlot rows, skipping
// day/time combinations that already exist. Returns the newly created slots.
func GenerateForDay(db *gorm.DB, bounds DayBounds) ([]models.TimeSlot, error) {
	previews, err := Preview(bounds.StartTime, bounds.EndTime, bounds.SlotDurationMinutes)
	if err != nil {
		return nil, err
	}

	created := []models.TimeSlot{}
	for _, p := range previews {
		var count int64
		if err := db.Model(&models.TimeSlot{}).
			Where("day_of_week = ? AND start_time = ? AND end_time = ?",
				bounds.DayOfWeek, p.StartTime, p.EndTime).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		slot := models.TimeSlot{
			DayOfWeek: bounds.DayOfWeek,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
		}
		if err := db.Create(&slot).Error; err != nil {
			return nil, err
		}
		created = append(created, slot)
	}
	return created, nil
}

// DeleteForDay removes every TimeSlot on the given weekday and reports how
// many rows went away
func DeleteForDay(db *gorm.DB, dayOfWeek int) (int64, error) {
	res := db.Where("day_of_week = ?", dayOfWeek).Delete(&models.TimeSlot{})
	return res.RowsAffected, res.Error
}

// RegenerateForDay wipes a day's slots and rebuilds them from its bounds
func RegenerateForDay(db *gorm.DB, bounds DayBounds) ([]models.TimeSlot, error) {
	if _, err := DeleteForDay(db, bounds.DayOfWeek); err != nil {
		return nil, err
	}
	return GenerateForDay(db, bounds)
}

// RegenerateAllResult summarizes a full grid rebuild
type RegenerateAllResult struct {
	Deleted int64          `json:"deleted"`
	Created int            `json:"created"`
	ByDay   map[string]int `json:"by_day"`
}

// RegenerateAll clears the whole time-slot grid and rebuilds it from every
// active DaySchedule
func RegenerateAll(db *gorm.DB) (*RegenerateAllResult, error) {
	res := db.Where("1 = 1").Delete(&models.TimeSlot{})
	if res.Error != nil {
		return nil, res.Error
	}

	var schedules []models.DaySchedule
	if err := db.Where("is_active = ?", true).Find(&schedules).Error; err != nil {
		return nil, err
	}

	result := &RegenerateAllResult{
		Deleted: res.RowsAffected,
		ByDay:   make(map[string]int, len(schedules)),
	}
	for _, schedule := range schedules {
		slots, err := GenerateForDay(db, Bounds(schedule))
		if err != nil {
			return nil, err
		}
		result.ByDay[schedule.DayName()] = len(slots)
		result.Created += len(slots)
	}
	return result, nil
}
