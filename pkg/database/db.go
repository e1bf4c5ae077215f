package database

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

// InitDB opens the database connection and migrates the schema.
// DATABASE_URL selects Postgres; otherwise a SQLite file is used
// (DATA_PATH, default staffdesk.db).
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "staffdesk.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	return db
}

// Migrate runs the schema auto-migration for all persisted entities
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.TimeSlot{},
		&models.GlobalSettings{},
		&models.DaySchedule{},
		&models.WeeklyScheduleOverride{},
		&models.ShiftRequirement{},
		&models.UserAvailability{},
		&models.Assignment{},
	)
}
