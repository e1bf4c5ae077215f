package scheduler

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// Scheduler fills open shift capacity for one week from worker availability.
// All reads and inserts of a run happen inside a single transaction; a storage
// error rolls the whole run back and is returned to the caller. Re-running
// against unchanged data creates nothing: every already-booked candidate is
// filtered out, so the run is additive and safe to repeat.
type Scheduler struct {
	DB *gorm.DB
}

// New creates a scheduler bound to a database handle
func New(db *gorm.DB) *Scheduler {
	return &Scheduler{DB: db}
}

// candidate is one eligible worker for a single (location, slot) cell
type candidate struct {
	UserID          uint
	CurrentHours    float64
	PreferenceLevel int
	Priority        float64
}

// clockMinutes parses a wall-clock "HH:MM" string into minutes since midnight
func clockMinutes(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		// Tolerate seconds, some clients send them
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return 0, false
		}
	}
	return t.Hour()*60 + t.Minute(), true
}

// HoursForSlot returns the slot's duration in hours, wall-clock only.
// An end time numerically earlier than the start is an overnight shift
// spanning midnight.
func HoursForSlot(ts models.TimeSlot) float64 {
	startMin, okStart := clockMinutes(ts.StartTime)
	endMin, okEnd := clockMinutes(ts.EndTime)
	if !okStart || !okEnd {
		return 0
	}

	if endMin < startMin {
		return float64(24*60-startMin+endMin) / 60
	}
	return float64(endMin-startMin) / 60
}

// UserWeekHours sums the durations of a user's assignments in one week.
// Assignments pointing at a deleted time slot contribute nothing.
func (s *Scheduler) UserWeekHours(userID uint, weekStart string) (float64, error) {
	var assignments []models.Assignment
	if err := s.DB.Where("user_id = ? AND week_start_date = ?", userID, weekStart).
		Find(&assignments).Error; err != nil {
		return 0, err
	}

	total := 0.0
	for _, a := range assignments {
		var slot models.TimeSlot
		if err := s.DB.First(&slot, a.TimeSlotID).Error; err != nil {
			continue // orphaned time slot reference
		}
		total += HoursForSlot(slot)
	}
	return total, nil
}

// HasConflictingAssignment reports whether the user is already booked into
// this exact (slot, location, week) cell
func (s *Scheduler) HasConflictingAssignment(userID, timeSlotID, locationID uint, weekStart string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Assignment{}).
		Where("user_id = ? AND time_slot_id = ? AND location_id = ? AND week_start_date = ?",
			userID, timeSlotID, locationID, weekStart).
		Count(&count).Error
	return count > 0, err
}

// AssignmentCount returns the current headcount for a (slot, location, week) cell
func (s *Scheduler) AssignmentCount(timeSlotID, locationID uint, weekStart string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Assignment{}).
		Where("time_slot_id = ? AND location_id = ? AND week_start_date = ?",
			timeSlotID, locationID, weekStart).
		Count(&count).Error
	return count, err
}

// LoadSettings fetches the settings singleton, creating the default row
// (capacity 3, no hour cap) when none exists yet
func (s *Scheduler) LoadSettings() (models.GlobalSettings, error) {
	var settings models.GlobalSettings
	err := s.DB.First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = models.GlobalSettings{MaxWorkersPerShift: 3}
		err = s.DB.Create(&settings).Error
	}
	return settings, err
}

// RunAutoScheduler assigns available workers to every under-capacity
// (active location, time slot) cell of the given week. Capacity per cell is
// the week's ShiftRequirement override when present, else the global default;
// a zero override blocks the cell. Candidates are ranked low-hours-first with
// preferred slots breaking ties among equally loaded workers, and each insert
// is re-checked against a conflicting booking right before it happens.
func (s *Scheduler) RunAutoScheduler(weekStart string) (*models.SchedulerResult, error) {
	var result *models.SchedulerResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		run := &Scheduler{DB: tx}
		res, err := run.schedule(weekStart)
		result = res
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scheduler) schedule(weekStart string) (*models.SchedulerResult, error) {
	settings, err := s.LoadSettings()
	if err != nil {
		return nil, err
	}
	defaultMax := settings.MaxWorkersPerShift

	var timeSlots []models.TimeSlot
	if err := s.DB.Find(&timeSlots).Error; err != nil {
		return nil, err
	}
	if len(timeSlots) == 0 {
		return &models.SchedulerResult{
			Message:     "No time slots configured",
			Assignments: []models.AssignmentDetail{},
		}, nil
	}

	var locations []models.Location
	if err := s.DB.Where("is_active = ?", true).Find(&locations).Error; err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return &models.SchedulerResult{
			Message:     "No active locations configured",
			Assignments: []models.AssignmentDetail{},
		}, nil
	}

	// Sparse capacity override map for this week; a missing key means
	// "use the global default", not zero.
	var requirements []models.ShiftRequirement
	if err := s.DB.Where("week_start_date = ?", weekStart).Find(&requirements).Error; err != nil {
		return nil, err
	}
	type cellKey struct {
		LocationID uint
		TimeSlotID uint
	}
	overrides := make(map[cellKey]int, len(requirements))
	for _, req := range requirements {
		overrides[cellKey{req.LocationID, req.TimeSlotID}] = req.RequiredWorkers
	}

	scheduledCount := 0
	skippedSlots := 0
	details := []models.AssignmentDetail{}

	for _, location := range locations {
		for _, timeSlot := range timeSlots {
			maxCapacity := defaultMax
			if v, ok := overrides[cellKey{location.ID, timeSlot.ID}]; ok {
				maxCapacity = v
			}

			if maxCapacity == 0 {
				skippedSlots++ // explicitly blocked slot
				continue
			}

			currentCount, err := s.AssignmentCount(timeSlot.ID, location.ID, weekStart)
			if err != nil {
				return nil, err
			}
			remaining := maxCapacity - int(currentCount)
			if remaining <= 0 {
				continue // slot already at capacity
			}

			var availabilities []models.UserAvailability
			if err := s.DB.Where("location_id = ? AND time_slot_id = ? AND week_start_date = ?",
				location.ID, timeSlot.ID, weekStart).Find(&availabilities).Error; err != nil {
				return nil, err
			}
			if len(availabilities) == 0 {
				continue
			}

			var candidates []candidate
			for _, avail := range availabilities {
				booked, err := s.HasConflictingAssignment(avail.UserID, timeSlot.ID, location.ID, weekStart)
				if err != nil {
					return nil, err
				}
				if booked {
					continue
				}

				currentHours, err := s.UserWeekHours(avail.UserID, weekStart)
				if err != nil {
					return nil, err
				}

				if hourCap, capped := settings.HourCap(); capped {
					if currentHours+HoursForSlot(timeSlot) > float64(hourCap) {
						continue
					}
				}

				// Lower score wins: fewer assigned hours first, and among
				// equally loaded workers a preferred slot beats a neutral one.
				priority := currentHours*100 - float64(avail.PreferenceLevel)*10

				candidates = append(candidates, candidate{
					UserID:          avail.UserID,
					CurrentHours:    currentHours,
					PreferenceLevel: avail.PreferenceLevel,
					Priority:        priority,
				})
			}

			sort.SliceStable(candidates, func(i, j int) bool {
				return candidates[i].Priority < candidates[j].Priority
			})

			toAssign := remaining
			if len(candidates) < toAssign {
				toAssign = len(candidates)
			}

			for i := 0; i < toAssign; i++ {
				cand := candidates[i]

				// Re-check right before inserting; a concurrent run or a
				// manual booking may have landed since filtering.
				booked, err := s.HasConflictingAssignment(cand.UserID, timeSlot.ID, location.ID, weekStart)
				if err != nil {
					return nil, err
				}
				if booked {
					continue
				}

				assignment := models.Assignment{
					UserID:        cand.UserID,
					LocationID:    location.ID,
					TimeSlotID:    timeSlot.ID,
					WeekStartDate: weekStart,
					AssignedBy:    nil, // system assignment
				}
				if err := s.DB.Create(&assignment).Error; err != nil {
					return nil, err
				}
				scheduledCount++

				userName := "Unknown"
				var user models.User
				if err := s.DB.First(&user, cand.UserID).Error; err == nil {
					userName = user.Name
				}

				details = append(details, models.AssignmentDetail{
					UserID:       cand.UserID,
					UserName:     userName,
					LocationID:   location.ID,
					LocationName: location.Name,
					TimeSlotID:   timeSlot.ID,
					Day:          timeSlot.DayName(),
					Time:         fmt.Sprintf("%s - %s", timeSlot.StartTime, timeSlot.EndTime),
				})
			}
		}
	}

	return &models.SchedulerResult{
		Message:      fmt.Sprintf("Scheduled %d assignments based on availability", scheduledCount),
		Scheduled:    scheduledCount,
		SkippedSlots: skippedSlots,
		Assignments:  details,
	}, nil
}
