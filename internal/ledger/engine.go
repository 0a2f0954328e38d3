package ledger

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kibercoin-bot/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// errBalanceConflict signals that a concurrent mutation changed the balance
// between the read and the compare-and-swap update. Internal, always retried.
var errBalanceConflict = errors.New("balance changed concurrently")

const debitRetries = 25

// Engine is the only sanctioned path for balance mutation. Every change to
// users.coins goes through Credit or Debit, and each pairs the balance update
// with its CoinTransaction row in one database transaction: either both
// persist or neither does.
type Engine struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewEngine(db *gorm.DB, log *zap.Logger) *Engine {
	return &Engine{db: db, log: log}
}

// WithTx binds the engine to an open transaction so a caller can make a
// credit atomic with its own writes. Inner transactions become savepoints.
func (e *Engine) WithTx(tx *gorm.DB) *Engine {
	return &Engine{db: tx, log: e.log}
}

// Credit increases the user's balance by amount (> 0) and appends a ledger row
// with the given type and metadata. The increment is executed by the store
// (coins = coins + ?), so concurrent credits never lose an update. Returns the
// new balance.
func (e *Engine) Credit(userID uint, amount int64, txType models.TransactionType, description string, adminID, relatedUserID *uint) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64
	err := e.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("coins", gorm.Expr("coins + ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		record := models.CoinTransaction{
			UserID:          userID,
			Amount:          amount,
			TransactionType: txType,
			Description:     description,
			AdminID:         adminID,
			RelatedUserID:   relatedUserID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Select("coins").First(&user, userID).Error; err != nil {
			return err
		}
		newBalance = user.Coins
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("storage failure during credit: %w", err)
	}

	e.log.Info("Credited coins",
		zap.Uint("user_id", userID),
		zap.Int64("amount", amount),
		zap.String("type", string(txType)),
		zap.Int64("balance", newBalance))
	return newBalance, nil
}

// Debit decreases the user's balance by amount (> 0), clamped at zero. The
// ledger row records the delta that was actually applied, which can be smaller
// in magnitude than the requested amount; the applied delta is also returned
// so callers can observe the clamp. A debit against a zero balance applies
// nothing and writes no row (ledger amounts are never zero).
//
// The clamp needs the balance it was computed from to still hold when the
// update lands, so the update is a compare-and-swap retried on conflict.
func (e *Engine) Debit(userID uint, amount int64, description string, adminID *uint) (applied int64, newBalance int64, err error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	for attempt := 0; attempt < debitRetries; attempt++ {
		var user models.User
		if err := e.db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, 0, ErrUserNotFound
			}
			return 0, 0, fmt.Errorf("storage failure during debit: %w", err)
		}

		applied = amount
		if user.Coins < amount {
			applied = user.Coins
		}
		if applied == 0 {
			return 0, 0, nil
		}

		err := e.db.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.User{}).
				Where("id = ? AND coins = ?", userID, user.Coins).
				UpdateColumn("coins", gorm.Expr("coins - ?", applied))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errBalanceConflict
			}

			record := models.CoinTransaction{
				UserID:          userID,
				Amount:          -applied,
				TransactionType: models.TransactionAdminRemove,
				Description:     description,
				AdminID:         adminID,
			}
			return tx.Create(&record).Error
		})
		if errors.Is(err, errBalanceConflict) {
			continue
		}
		if err != nil {
			return 0, 0, fmt.Errorf("storage failure during debit: %w", err)
		}

		newBalance = user.Coins - applied
		e.log.Info("Debited coins",
			zap.Uint("user_id", userID),
			zap.Int64("requested", amount),
			zap.Int64("applied", applied),
			zap.Int64("balance", newBalance))
		return applied, newBalance, nil
	}

	return 0, 0, fmt.Errorf("storage failure during debit: %w", errBalanceConflict)
}
