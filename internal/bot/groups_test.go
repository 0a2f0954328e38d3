package bot

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"

	"kibercoin-bot/internal/models"
)

func TestUpsertGroup(t *testing.T) {
	b := newTestBot(t)

	chat := telego.Chat{ID: -100123, Title: "Test Community", Type: "supergroup", Username: "testcommunity"}
	members := 42

	b.upsertGroup(chat, models.ChatSupergroup, "administrator", true, &members, "A place to test things")

	var group models.Group
	require.NoError(t, b.DB.Where("chat_id = ?", chat.ID).First(&group).Error)
	require.Equal(t, "Test Community", group.Title)
	require.Equal(t, models.ChatSupergroup, group.ChatType)
	require.Equal(t, "testcommunity", group.Username)
	require.Equal(t, "A place to test things", group.Description)
	require.True(t, group.BotIsAdmin)
	require.True(t, group.IsActive)
	require.NotNil(t, group.MemberCount)
	require.Equal(t, 42, *group.MemberCount)
	require.Nil(t, group.LeftAt)

	t.Run("leaving deactivates", func(t *testing.T) {
		b.deactivateGroup(chat)

		var fresh models.Group
		require.NoError(t, b.DB.Where("chat_id = ?", chat.ID).First(&fresh).Error)
		require.False(t, fresh.IsActive)
		require.NotNil(t, fresh.LeftAt)
	})

	t.Run("re-adding reactivates and refreshes", func(t *testing.T) {
		chat.Title = "Test Community v2"
		members := 50
		b.upsertGroup(chat, models.ChatSupergroup, "member", false, &members, "Now with a new description")

		var fresh models.Group
		require.NoError(t, b.DB.Where("chat_id = ?", chat.ID).First(&fresh).Error)
		require.Equal(t, "Test Community v2", fresh.Title)
		require.Equal(t, "Now with a new description", fresh.Description)
		require.False(t, fresh.BotIsAdmin)
		require.True(t, fresh.IsActive)
		require.Nil(t, fresh.LeftAt)
		require.NotNil(t, fresh.MemberCount)
		require.Equal(t, 50, *fresh.MemberCount)

		// Only one record per chat.
		var count int64
		require.NoError(t, b.DB.Model(&models.Group{}).Count(&count).Error)
		require.EqualValues(t, 1, count)
	})
}
