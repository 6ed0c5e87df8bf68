package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	TotalSlots    int    `gorm:"default:0" json:"total_slots"`
	TotalVariants int    `gorm:"default:0" json:"total_variants"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScheduleRun archives one generated rotation so it can be re-downloaded as
// CSV. Variant is the index of the stored (first successful) schedule.
type ScheduleRun struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	StartDate    string    `gorm:"not null" json:"start_date"`
	EndDate      string    `gorm:"not null" json:"end_date"`
	VariantCount int       `gorm:"default:1" json:"variant_count"`
	Variant      int       `json:"variant"`
	Status       string    `gorm:"not null" json:"status"`
	CSV          string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB initializes the database connection and migrates the schema
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
			dbPath = "duty_rotation.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &ScheduleRun{})

	return db
}
