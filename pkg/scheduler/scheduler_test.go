package scheduler

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oliverkemp/staffdesk/pkg/database"
	"github.com/oliverkemp/staffdesk/pkg/models"
)

const week = "2026-01-05"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@test.local", Role: "user"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedLocation(t *testing.T, db *gorm.DB, name string, active bool) models.Location {
	t.Helper()
	l := models.Location{Name: name, IsActive: active}
	if err := db.Create(&l).Error; err != nil {
		t.Fatalf("seed location %s: %v", name, err)
	}
	return l
}

func seedSlot(t *testing.T, db *gorm.DB, day int, start, end string) models.TimeSlot {
	t.Helper()
	ts := models.TimeSlot{DayOfWeek: day, StartTime: start, EndTime: end}
	if err := db.Create(&ts).Error; err != nil {
		t.Fatalf("seed slot %s-%s: %v", start, end, err)
	}
	return ts
}

func seedSettings(t *testing.T, db *gorm.DB, maxWorkers int, maxHours *int) {
	t.Helper()
	s := models.GlobalSettings{MaxWorkersPerShift: maxWorkers, MaxHoursPerUserPerWeek: maxHours}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}
}

func markAvailable(t *testing.T, db *gorm.DB, user models.User, loc models.Location, slot models.TimeSlot, pref int) {
	t.Helper()
	av := models.UserAvailability{
		UserID:          user.ID,
		LocationID:      loc.ID,
		TimeSlotID:      slot.ID,
		WeekStartDate:   week,
		PreferenceLevel: pref,
	}
	if err := db.Create(&av).Error; err != nil {
		t.Fatalf("seed availability: %v", err)
	}
}

func TestHoursForSlot(t *testing.T) {
	cases := []struct {
		start, end string
		want       float64
	}{
		{"09:00", "17:00", 8.0},
		{"09:00", "09:30", 0.5},
		{"22:00", "06:00", 8.0}, // overnight shift spans midnight
		{"23:30", "00:15", 0.75},
		{"bogus", "17:00", 0.0},
	}
	for _, c := range cases {
		got := HoursForSlot(models.TimeSlot{StartTime: c.start, EndTime: c.end})
		if got != c.want {
			t.Errorf("HoursForSlot(%s-%s) = %v, want %v", c.start, c.end, got, c.want)
		}
	}
}

func TestUserWeekHours_OrphanedSlot(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	loc := seedLocation(t, db, "Library", true)

	// Assignment pointing at a time slot that no longer exists
	a := models.Assignment{UserID: user.ID, LocationID: loc.ID, TimeSlotID: 999, WeekStartDate: week}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	hours, err := New(db).UserWeekHours(user.ID, week)
	if err != nil {
		t.Fatalf("UserWeekHours: %v", err)
	}
	if hours != 0 {
		t.Errorf("expected orphaned assignment to contribute 0 hours, got %v", hours)
	}
}

func TestRunAutoScheduler_NoTimeSlots(t *testing.T) {
	db := newTestDB(t)
	seedLocation(t, db, "Library", true)

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 0 {
		t.Errorf("expected 0 scheduled, got %d", res.Scheduled)
	}
	if res.Message != "No time slots configured" {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestRunAutoScheduler_NoActiveLocations(t *testing.T) {
	db := newTestDB(t)
	seedSlot(t, db, 0, "09:00", "11:00")
	seedLocation(t, db, "Closed Desk", false)

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 0 {
		t.Errorf("expected 0 scheduled, got %d", res.Scheduled)
	}
	if res.Message != "No active locations configured" {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestRunAutoScheduler_CreatesDefaultSettings(t *testing.T) {
	db := newTestDB(t)
	seedSlot(t, db, 0, "09:00", "11:00")
	seedLocation(t, db, "Library", true)

	if _, err := New(db).RunAutoScheduler(week); err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}

	var settings models.GlobalSettings
	if err := db.First(&settings).Error; err != nil {
		t.Fatalf("expected settings row to be created: %v", err)
	}
	if settings.MaxWorkersPerShift != 3 {
		t.Errorf("expected default capacity 3, got %d", settings.MaxWorkersPerShift)
	}
	if settings.MaxHoursPerUserPerWeek != nil {
		t.Errorf("expected unlimited hours by default, got %v", *settings.MaxHoursPerUserPerWeek)
	}
}

func TestRunAutoScheduler_CapacityBound(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 3, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")

	for i := 0; i < 5; i++ {
		u := seedUser(t, db, fmt.Sprintf("worker%d", i))
		markAvailable(t, db, u, loc, slot, 1)
	}

	s := New(db)
	res, err := s.RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 3 {
		t.Errorf("expected 3 scheduled, got %d", res.Scheduled)
	}

	count, err := s.AssignmentCount(slot.ID, loc.ID, week)
	if err != nil {
		t.Fatalf("AssignmentCount: %v", err)
	}
	if count != 3 {
		t.Errorf("headcount %d exceeds capacity 3", count)
	}
}

func TestRunAutoScheduler_Idempotent(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 2, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")
	for i := 0; i < 2; i++ {
		u := seedUser(t, db, fmt.Sprintf("worker%d", i))
		markAvailable(t, db, u, loc, slot, 1)
	}

	s := New(db)
	first, err := s.RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Scheduled != 2 {
		t.Fatalf("expected 2 scheduled on first run, got %d", first.Scheduled)
	}

	second, err := s.RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Scheduled != 0 {
		t.Errorf("expected 0 scheduled on unchanged re-run, got %d", second.Scheduled)
	}

	var total int64
	db.Model(&models.Assignment{}).Count(&total)
	if total != 2 {
		t.Errorf("expected 2 assignment rows after two runs, got %d", total)
	}
}

func TestRunAutoScheduler_Additive(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 2, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")
	admin := seedUser(t, db, "admin")
	manual := seedUser(t, db, "manual-worker")

	// A row the admin created by hand must come through untouched
	existing := models.Assignment{
		UserID: manual.ID, LocationID: loc.ID, TimeSlotID: slot.ID,
		WeekStartDate: week, AssignedBy: &admin.ID,
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("seed manual assignment: %v", err)
	}

	auto := seedUser(t, db, "auto-worker")
	markAvailable(t, db, auto, loc, slot, 1)

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 1 {
		t.Errorf("expected 1 scheduled into remaining capacity, got %d", res.Scheduled)
	}

	var kept models.Assignment
	if err := db.First(&kept, existing.ID).Error; err != nil {
		t.Fatalf("manual assignment was removed: %v", err)
	}
	if kept.AssignedBy == nil || *kept.AssignedBy != admin.ID {
		t.Errorf("manual assignment was mutated: assigned_by = %v", kept.AssignedBy)
	}

	var created models.Assignment
	if err := db.Where("user_id = ?", auto.ID).First(&created).Error; err != nil {
		t.Fatalf("expected scheduler-created row: %v", err)
	}
	if created.AssignedBy != nil {
		t.Errorf("scheduler row should have assigned_by = nil, got %v", *created.AssignedBy)
	}
}

func TestRunAutoScheduler_BlockedCell(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 3, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")
	u := seedUser(t, db, "worker")
	markAvailable(t, db, u, loc, slot, 2)

	block := models.ShiftRequirement{
		LocationID: loc.ID, TimeSlotID: slot.ID,
		WeekStartDate: week, RequiredWorkers: 0,
	}
	if err := db.Create(&block).Error; err != nil {
		t.Fatalf("seed requirement: %v", err)
	}

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 0 {
		t.Errorf("blocked cell got %d assignments", res.Scheduled)
	}
	if res.SkippedSlots != 1 {
		t.Errorf("expected skipped_slots = 1, got %d", res.SkippedSlots)
	}
}

func TestRunAutoScheduler_OverrideBeatsDefault(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 2, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")

	req := models.ShiftRequirement{
		LocationID: loc.ID, TimeSlotID: slot.ID,
		WeekStartDate: week, RequiredWorkers: 5,
	}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed requirement: %v", err)
	}

	for i := 0; i < 5; i++ {
		u := seedUser(t, db, fmt.Sprintf("worker%d", i))
		markAvailable(t, db, u, loc, slot, 1)
	}

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 5 {
		t.Errorf("expected override capacity 5 to govern, got %d scheduled", res.Scheduled)
	}
}

func TestRunAutoScheduler_PriorityOrdering(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 1, nil)
	loc := seedLocation(t, db, "Library", true)

	// Worker A already carries an 8-hour shift this week
	longSlot := seedSlot(t, db, 1, "09:00", "17:00")
	target := seedSlot(t, db, 0, "09:00", "11:00")

	a := seedUser(t, db, "loaded")
	b := seedUser(t, db, "fresh")

	prior := models.Assignment{UserID: a.ID, LocationID: loc.ID, TimeSlotID: longSlot.ID, WeekStartDate: week}
	if err := db.Create(&prior).Error; err != nil {
		t.Fatalf("seed prior assignment: %v", err)
	}

	markAvailable(t, db, a, loc, target, 1)
	markAvailable(t, db, b, loc, target, 1)

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 1 {
		t.Fatalf("expected 1 scheduled, got %d", res.Scheduled)
	}

	var created models.Assignment
	if err := db.Where("time_slot_id = ? AND assigned_by IS NULL", target.ID).First(&created).Error; err != nil {
		t.Fatalf("find created assignment: %v", err)
	}
	if created.UserID != b.ID {
		t.Errorf("expected less-loaded worker %d to win, got %d", b.ID, created.UserID)
	}
}

func TestRunAutoScheduler_PreferenceTiebreak(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 1, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")

	a := seedUser(t, db, "neutral")
	b := seedUser(t, db, "keen")
	markAvailable(t, db, a, loc, slot, 1)
	markAvailable(t, db, b, loc, slot, 2)

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 1 {
		t.Fatalf("expected 1 scheduled, got %d", res.Scheduled)
	}

	var created models.Assignment
	if err := db.First(&created).Error; err != nil {
		t.Fatalf("find created assignment: %v", err)
	}
	if created.UserID != b.ID {
		t.Errorf("expected preferred worker %d to win the tie, got %d", b.ID, created.UserID)
	}
}

func TestRunAutoScheduler_HourCap(t *testing.T) {
	db := newTestDB(t)
	maxHours := 8
	seedSettings(t, db, 3, &maxHours)
	loc := seedLocation(t, db, "Library", true)

	longSlot := seedSlot(t, db, 1, "09:00", "15:00") // 6h already booked for A
	target := seedSlot(t, db, 0, "09:00", "13:00")   // 4h, would push A to 10h

	a := seedUser(t, db, "near-cap")
	b := seedUser(t, db, "fresh")

	prior := models.Assignment{UserID: a.ID, LocationID: loc.ID, TimeSlotID: longSlot.ID, WeekStartDate: week}
	if err := db.Create(&prior).Error; err != nil {
		t.Fatalf("seed prior assignment: %v", err)
	}

	markAvailable(t, db, a, loc, target, 2)
	markAvailable(t, db, b, loc, target, 1)

	s := New(db)
	res, err := s.RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 1 {
		t.Fatalf("expected only the uncapped worker scheduled, got %d", res.Scheduled)
	}

	for _, u := range []models.User{a, b} {
		hours, err := s.UserWeekHours(u.ID, week)
		if err != nil {
			t.Fatalf("UserWeekHours: %v", err)
		}
		if hours > float64(maxHours) {
			t.Errorf("worker %s over hour cap: %v > %d", u.Name, hours, maxHours)
		}
	}
}

func TestRunAutoScheduler_NoDoubleBooking(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 3, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")
	u := seedUser(t, db, "worker")
	markAvailable(t, db, u, loc, slot, 1)

	// Already booked into this exact cell
	existing := models.Assignment{UserID: u.ID, LocationID: loc.ID, TimeSlotID: slot.ID, WeekStartDate: week}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 0 {
		t.Errorf("expected already-booked candidate to be filtered, got %d scheduled", res.Scheduled)
	}

	var count int64
	db.Model(&models.Assignment{}).
		Where("user_id = ? AND time_slot_id = ? AND location_id = ? AND week_start_date = ?",
			u.ID, slot.ID, loc.ID, week).
		Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one booking for the cell, got %d", count)
	}
}

func TestRunAutoScheduler_DetailFields(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 1, nil)
	loc := seedLocation(t, db, "Front Desk", true)
	slot := seedSlot(t, db, 2, "14:00", "18:00")
	u := seedUser(t, db, "carol")
	markAvailable(t, db, u, loc, slot, 1)

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if len(res.Assignments) != 1 {
		t.Fatalf("expected 1 detail record, got %d", len(res.Assignments))
	}

	d := res.Assignments[0]
	if d.UserName != "carol" || d.LocationName != "Front Desk" {
		t.Errorf("unexpected names in detail: %+v", d)
	}
	if d.Day != "Wednesday" {
		t.Errorf("expected day Wednesday, got %q", d.Day)
	}
	if d.Time != "14:00 - 18:00" {
		t.Errorf("unexpected time range %q", d.Time)
	}
}

func TestRunAutoScheduler_ScopedToWeek(t *testing.T) {
	db := newTestDB(t)
	seedSettings(t, db, 3, nil)
	loc := seedLocation(t, db, "Library", true)
	slot := seedSlot(t, db, 0, "09:00", "11:00")
	u := seedUser(t, db, "worker")

	// Availability declared for a different week must not be picked up
	other := models.UserAvailability{
		UserID: u.ID, LocationID: loc.ID, TimeSlotID: slot.ID,
		WeekStartDate: "2026-01-12", PreferenceLevel: 2,
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed availability: %v", err)
	}

	res, err := New(db).RunAutoScheduler(week)
	if err != nil {
		t.Fatalf("RunAutoScheduler: %v", err)
	}
	if res.Scheduled != 0 {
		t.Errorf("availability from another week leaked in: %d scheduled", res.Scheduled)
	}
}
