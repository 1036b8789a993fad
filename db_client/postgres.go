package db_client

import (
	"time"

	"github.com/Strum355/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB *gorm.DB
)

// PlayEvent is one row of listening history: which track started playing for
// which user, and when.
type PlayEvent struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	TrackID     string
	SetListName string
	PlayedAt    time.Time
}

// Init connects the play-history recorder. With no DSN configured the
// handle stays nil and every write is a no-op.
func Init() {
	dsn := viper.GetString("postgres.dsn")
	if dsn == "" {
		log.Info("postgres.dsn not set, play history disabled")
		return
	}

	var err error
	for i := 0; i < 10; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			sqlDB, _ := DB.DB()
			if pingErr := sqlDB.Ping(); pingErr == nil {
				break
			}
		}
		log.Info("Waiting for Postgres to be ready...")
		time.Sleep(time.Second)
	}
	if err != nil {
		log.WithError(err).Error("Unable to connect to database")
		DB = nil
		return
	}

	if err := DB.AutoMigrate(&PlayEvent{}); err != nil {
		log.WithError(err).Error("Unable to migrate play history schema")
	}
}

// RecordPlay appends one history row, fire-and-forget.
func RecordPlay(userID, trackID, setListName string) {
	if DB == nil {
		return
	}
	event := PlayEvent{
		UserID:      userID,
		TrackID:     trackID,
		SetListName: setListName,
		PlayedAt:    time.Now(),
	}
	if err := DB.Create(&event).Error; err != nil {
		log.WithError(err).Error("failed to record play event")
	}
}
