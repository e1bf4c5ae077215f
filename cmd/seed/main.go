package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oliverkemp/staffdesk/pkg/auth"
	"github.com/oliverkemp/staffdesk/pkg/database"
	"github.com/oliverkemp/staffdesk/pkg/models"
	"github.com/oliverkemp/staffdesk/pkg/slotgen"
)

// Seeds a fresh database with a demo grid: two locations, weekday schedules
// at 30-minute slots, and the default settings row.
func main() {
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	db := database.InitDB()
	if err := auth.EnsureAdminExists(db); err != nil {
		log.Fatalf("could not bootstrap admin: %v", err)
	}

	locations := []models.Location{
		{Name: "Main Library", Description: "Circulation desk", IsActive: true},
		{Name: "Computer Lab", Description: "Student help desk", IsActive: true},
	}
	for i := range locations {
		var existing models.Location
		if err := db.Where("name = ?", locations[i].Name).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&locations[i]).Error; err != nil {
			log.Fatalf("could not create location %q: %v", locations[i].Name, err)
		}
	}

	created := 0
	for day := 0; day < 5; day++ { // Monday through Friday
		schedule := models.DaySchedule{
			DayOfWeek:           day,
			StartTime:           "09:00",
			EndTime:             "17:00",
			SlotDurationMinutes: 30,
			IsActive:            true,
		}
		var existing models.DaySchedule
		if err := db.Where("day_of_week = ?", day).First(&existing).Error; err == nil {
			schedule = existing
		} else if err := db.Create(&schedule).Error; err != nil {
			log.Fatalf("could not create day schedule: %v", err)
		}

		slots, err := slotgen.GenerateForDay(db, slotgen.Bounds(schedule))
		if err != nil {
			log.Fatalf("could not generate slots: %v", err)
		}
		created += len(slots)
	}

	var settings models.GlobalSettings
	if err := db.First(&settings).Error; err != nil {
		settings = models.GlobalSettings{MaxWorkersPerShift: 3}
		if err := db.Create(&settings).Error; err != nil {
			log.Fatalf("could not create settings: %v", err)
		}
	}

	fmt.Printf("Seeded %d time slots across 5 weekdays\n", created)
	os.Exit(0)
}
