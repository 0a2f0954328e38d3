package bot

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kibercoin-bot/internal/models"
)

func chatTypeOf(chat telego.Chat) (models.ChatType, bool) {
	switch chat.Type {
	case "group":
		return models.ChatGroup, true
	case "supergroup":
		return models.ChatSupergroup, true
	case "channel":
		return models.ChatChannel, true
	}
	return "", false
}

// handleMyChatMember tracks the bot's own membership in groups and channels:
// added, promoted, demoted, removed.
func (b *Bot) handleMyChatMember(ctx *th.Context, update telego.Update) error {
	event := update.MyChatMember
	chat := event.Chat

	chatType, ok := chatTypeOf(chat)
	if !ok {
		return nil
	}

	status := event.NewChatMember.MemberStatus()
	if status == "left" || status == "kicked" {
		b.deactivateGroup(chat)
		return nil
	}

	botIsAdmin := status == "creator" || status == "administrator"

	var memberCount *int
	if count, err := ctx.Bot().GetChatMemberCount(ctx.Context(), &telego.GetChatMemberCountParams{ChatID: telego.ChatID{ID: chat.ID}}); err == nil {
		memberCount = count
	}

	// The chat object inside updates carries no description; fetch it.
	description := ""
	if info, err := ctx.Bot().GetChat(ctx.Context(), &telego.GetChatParams{ChatID: telego.ChatID{ID: chat.ID}}); err == nil {
		description = info.Description
	}

	b.upsertGroup(chat, chatType, status, botIsAdmin, memberCount, description)
	return nil
}

// upsertGroup records the bot's membership in a chat, reactivating a
// previously left one.
func (b *Bot) upsertGroup(chat telego.Chat, chatType models.ChatType, status string, botIsAdmin bool, memberCount *int, description string) {
	permissions, _ := json.Marshal(map[string]interface{}{
		"is_admin": botIsAdmin,
		"status":   status,
	})

	var group models.Group
	err := b.DB.Where("chat_id = ?", chat.ID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		group = models.Group{
			ChatID:         chat.ID,
			Title:          chat.Title,
			ChatType:       chatType,
			Username:       chat.Username,
			Description:    description,
			BotIsAdmin:     botIsAdmin,
			BotPermissions: string(permissions),
			IsActive:       true,
			MemberCount:    memberCount,
			JoinedAt:       time.Now(),
		}
		if err := b.DB.Create(&group).Error; err != nil {
			b.Log.Error("Failed to create group record", zap.Int64("chat_id", chat.ID), zap.Error(err))
			return
		}
		b.Log.Info("Bot added to chat",
			zap.Int64("chat_id", chat.ID), zap.String("title", chat.Title), zap.Bool("admin", botIsAdmin))
		return
	}
	if err != nil {
		b.Log.Error("Failed to load group record", zap.Int64("chat_id", chat.ID), zap.Error(err))
		return
	}

	updates := map[string]interface{}{
		"title":           chat.Title,
		"username":        chat.Username,
		"chat_type":       chatType,
		"description":     description,
		"bot_is_admin":    botIsAdmin,
		"bot_permissions": string(permissions),
		"is_active":       true,
		"left_at":         nil,
	}
	if memberCount != nil {
		updates["member_count"] = *memberCount
	}
	if err := b.DB.Model(&group).Updates(updates).Error; err != nil {
		b.Log.Error("Failed to update group record", zap.Int64("chat_id", chat.ID), zap.Error(err))
		return
	}

	b.Log.Info("Chat membership updated",
		zap.Int64("chat_id", chat.ID), zap.String("status", status))
}

func (b *Bot) deactivateGroup(chat telego.Chat) {
	now := time.Now()
	err := b.DB.Model(&models.Group{}).
		Where("chat_id = ?", chat.ID).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   now,
		}).Error
	if err != nil {
		b.Log.Error("Failed to deactivate group", zap.Int64("chat_id", chat.ID), zap.Error(err))
		return
	}
	b.Log.Info("Bot left chat", zap.Int64("chat_id", chat.ID), zap.String("title", chat.Title))
}
