package database

import (
	"time"

	"github.com/campusconnect/rsvp-service/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.AutoMigrate(&models.Event{}, &models.Rsvp{}, &models.Notification{}); err != nil {
		log.Fatal().Err(err).Msg("failed to auto-migrate")
	}

	// Partial unique index: at most one non-cancelled RSVP per (event, user)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_rsvp_active
		ON rsvps (event_id, user_id)
		WHERE status <> 'cancelled'
	`)

	return db
}
