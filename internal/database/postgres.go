package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kibercoin-bot/internal/config"
	"kibercoin-bot/internal/models"
)

// ConnectPostgres opens the database and runs migrations. The container
// orchestration may bring the bot up before postgres accepts connections, so
// the initial dial is retried.
func ConnectPostgres(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	var db *gorm.DB
	var err error

	const maxRetries = 30
	for attempt := 1; attempt <= maxRetries; attempt++ {
		// TranslateError turns driver unique-violation errors into
		// gorm.ErrDuplicatedKey, which the referral code assigner relies on.
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if attempt < maxRetries {
			log.Warn("Database not ready, retrying in 2 seconds",
				zap.Int("attempt", attempt), zap.Int("max", maxRetries))
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Connected to PostgreSQL")

	if err := db.AutoMigrate(&models.User{}, &models.CoinTransaction{}, &models.Group{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
