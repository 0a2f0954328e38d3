package models

import (
	"time"
)

type TransactionType string

const (
	TransactionReferralBonus TransactionType = "referral_bonus"
	TransactionAdminAdd      TransactionType = "admin_add"
	TransactionAdminRemove   TransactionType = "admin_remove"
)

// CoinTransaction is an append-only ledger row. Amount is signed: positive for
// credits, negative for debits, and always equals the balance delta that was
// actually applied. Rows are never updated or deleted.
type CoinTransaction struct {
	ID              uint            `gorm:"primaryKey"`
	UserID          uint            `gorm:"not null;index"`
	User            User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Amount          int64           `gorm:"not null"`
	TransactionType TransactionType `gorm:"size:32;not null"`
	Description     string          `gorm:"size:512"`
	AdminID         *uint           `gorm:"index"`
	RelatedUserID   *uint           `gorm:"index"`
	CreatedAt       time.Time
}
