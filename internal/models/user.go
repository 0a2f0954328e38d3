package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID            uint     `gorm:"primaryKey"`
	TelegramID    int64    `gorm:"uniqueIndex;not null"`
	Username      string   `gorm:"size:255"`
	FirstName     string   `gorm:"size:255"`
	LastName      string   `gorm:"size:255"`
	PhoneNumber   string   `gorm:"size:20;index"`
	PreferredName string   `gorm:"size:255"`
	LanguageCode  string   `gorm:"size:10"`
	Role          UserRole `gorm:"size:16;default:'user'"`
	IsRegistered  bool     `gorm:"not null;default:false"`
	Coins         int64    `gorm:"not null;default:0"`
	ReferralCode  *string  `gorm:"size:32;uniqueIndex"`
	ReferredByID  *uint    `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName is what the bot calls the user in messages.
func (u *User) DisplayName() string {
	if u.PreferredName != "" {
		return u.PreferredName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
