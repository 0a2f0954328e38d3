package models

import (
	"time"
)

type ChatType string

const (
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

type Group struct {
	ID             uint     `gorm:"primaryKey"`
	ChatID         int64    `gorm:"uniqueIndex;not null"`
	Title          string   `gorm:"size:255;not null"`
	ChatType       ChatType `gorm:"size:16;not null"`
	Username       string   `gorm:"size:255"`
	Description    string   `gorm:"type:text"`
	BotIsAdmin     bool     `gorm:"not null;default:false"`
	BotPermissions string   `gorm:"type:text"` // JSON string
	IsActive       bool     `gorm:"not null;default:true"`
	MemberCount    *int
	JoinedAt       time.Time
	LeftAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
