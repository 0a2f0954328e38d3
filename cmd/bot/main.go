package main

import (
	"go.uber.org/zap"

	"kibercoin-bot/internal/bot"
	"kibercoin-bot/internal/config"
	"kibercoin-bot/internal/database"
	"kibercoin-bot/internal/fsm"
	"kibercoin-bot/internal/ledger"
	"kibercoin-bot/internal/logger"
	"kibercoin-bot/internal/models"
	"kibercoin-bot/internal/registration"
	"kibercoin-bot/internal/worker"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	log := logger.Init(cfg.Environment, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	// Connect to Database
	db, err := database.ConnectPostgres(cfg, log)
	if err != nil {
		log.Fatal("Could not connect to database", zap.Error(err))
	}

	// Connect to Redis
	rdb, err := database.ConnectRedis(cfg, log)
	if err != nil {
		log.Fatal("Could not connect to redis", zap.Error(err))
	}

	// Bootstrap admin roles from config
	for _, telegramID := range cfg.AdminIDs {
		err := db.Model(&models.User{}).
			Where("telegram_id = ?", telegramID).
			Update("role", models.RoleAdmin).Error
		if err != nil {
			log.Warn("Failed to promote admin", zap.Int64("telegram_id", telegramID), zap.Error(err))
		}
	}

	engine := ledger.NewEngine(db, log)
	states := fsm.NewRedisStorage(rdb, cfg.SessionTTL)
	reg := registration.NewService(db, states, engine, cfg.ReferralReward, log)

	tgBot, err := bot.NewBot(cfg.BotToken, db, engine, reg, cfg.ReferralReward, log)
	if err != nil {
		log.Fatal("Could not create bot", zap.Error(err))
	}

	reconciler := worker.NewReconciler(db, rdb, tgBot.Instance, log)
	go reconciler.Start()

	log.Info("Service started successfully")
	tgBot.Start()
}
