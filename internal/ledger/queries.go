package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kibercoin-bot/internal/models"
)

// Balance returns the current balance for an external identity.
func (e *Engine) Balance(telegramID int64) (int64, error) {
	var user models.User
	err := e.db.Select("coins").Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query balance: %w", err)
	}
	return user.Coins, nil
}

// History returns the user's transactions, most recent first.
func (e *Engine) History(userID uint, limit int) ([]models.CoinTransaction, error) {
	var transactions []models.CoinTransaction
	query := e.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return transactions, nil
}

// AllTransactions returns one page of transactions across all users, most
// recent first, with the owning user preloaded for display.
func (e *Engine) AllTransactions(offset, limit int) ([]models.CoinTransaction, error) {
	var transactions []models.CoinTransaction
	query := e.db.Preload("User").Order("created_at DESC, id DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return transactions, nil
}

// TransactionCount is the total number of ledger rows.
func (e *Engine) TransactionCount() (int64, error) {
	var count int64
	if err := e.db.Model(&models.CoinTransaction{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// TotalCoins is the aggregate balance across all users.
func (e *Engine) TotalCoins() (int64, error) {
	var total int64
	err := e.db.Model(&models.User{}).
		Select("COALESCE(SUM(coins), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

// HolderCount is the number of users with a positive balance.
func (e *Engine) HolderCount() (int64, error) {
	var count int64
	err := e.db.Model(&models.User{}).Where("coins > 0").Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count holders: %w", err)
	}
	return count, nil
}

// ReferralCount is how many users were attributed to the given referrer.
func (e *Engine) ReferralCount(userID uint) (int64, error) {
	var count int64
	err := e.db.Model(&models.User{}).Where("referred_by_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}
