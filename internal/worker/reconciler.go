package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kibercoin-bot/internal/models"
)

// Reconciler periodically verifies the ledger invariant: every user's balance
// must equal the sum of their transaction amounts. A drift means some code
// path mutated a balance outside the transaction engine (or a partial write
// slipped through) and is reported to admins.
type Reconciler struct {
	DB    *gorm.DB
	Redis *redis.Client
	Bot   *telego.Bot
	Log   *zap.Logger
}

func NewReconciler(db *gorm.DB, rdb *redis.Client, bot *telego.Bot, log *zap.Logger) *Reconciler {
	return &Reconciler{DB: db, Redis: rdb, Bot: bot, Log: log}
}

func (r *Reconciler) Start() {
	ticker := time.NewTicker(1 * time.Hour)
	r.Log.Info("Background reconciliation worker started")

	// Run once at start
	r.checkBalances()

	for range ticker.C {
		r.checkBalances()
	}
}

type reconciliationRow struct {
	UserID     uint
	TelegramID int64
	Coins      int64
	LedgerSum  int64
}

func (r *Reconciler) checkBalances() {
	ctx := context.Background()

	r.Log.Info("Running balance reconciliation cycle")

	var rows []reconciliationRow
	err := r.DB.Model(&models.User{}).
		Select("users.id AS user_id, users.telegram_id, users.coins, COALESCE(SUM(coin_transactions.amount), 0) AS ledger_sum").
		Joins("LEFT JOIN coin_transactions ON coin_transactions.user_id = users.id").
		Group("users.id, users.telegram_id, users.coins").
		Scan(&rows).Error
	if err != nil {
		r.Log.Error("Reconciliation query failed", zap.Error(err))
		return
	}

	drifted := 0
	for _, row := range rows {
		if row.Coins == row.LedgerSum {
			continue
		}
		drifted++

		r.Log.Error("Balance drift detected",
			zap.Uint("user_id", row.UserID),
			zap.Int64("balance", row.Coins),
			zap.Int64("ledger_sum", row.LedgerSum))

		// Alert each drift once per day, not every cycle.
		key := fmt.Sprintf("reconcile_alert_%d", row.UserID)
		exists, _ := r.Redis.Exists(ctx, key).Result()
		if exists != 0 {
			continue
		}

		r.notifyAdmins(ctx, fmt.Sprintf(
			"⚠️ Balans nomuvofiqligi aniqlandi!\n\nUser ID: %d\nBalans: %d\nTranzaksiyalar yig'indisi: %d",
			row.UserID, row.Coins, row.LedgerSum))
		r.Redis.Set(ctx, key, "true", 24*time.Hour)
	}

	if drifted == 0 {
		r.Log.Info("Reconciliation complete, all balances consistent", zap.Int("users", len(rows)))
	}
}

func (r *Reconciler) notifyAdmins(ctx context.Context, text string) {
	var admins []models.User
	if err := r.DB.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		r.Log.Error("Failed to load admins for alert", zap.Error(err))
		return
	}

	for _, admin := range admins {
		_, err := r.Bot.SendMessage(ctx, tu.Message(tu.ID(admin.TelegramID), text))
		if err != nil {
			r.Log.Warn("Failed to send reconciliation alert",
				zap.Int64("telegram_id", admin.TelegramID), zap.Error(err))
		}
	}
}
