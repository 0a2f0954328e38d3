package bot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kibercoin-bot/internal/ledger"
	"kibercoin-bot/internal/models"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CoinTransaction{}, &models.Group{}))

	log := zap.NewNop()
	return &Bot{DB: db, Ledger: ledger.NewEngine(db, log), Log: log, Reward: 7}
}

func TestPageFromCallback(t *testing.T) {
	require.Equal(t, 1, pageFromCallback("admin_users", "users_page_"))
	require.Equal(t, 3, pageFromCallback("users_page_3", "users_page_"))
	require.Equal(t, 1, pageFromCallback("users_page_x", "users_page_"))
	require.Equal(t, 1, pageFromCallback("users_page_0", "users_page_"))
}

func TestUsersPage(t *testing.T) {
	b := newTestBot(t)

	t.Run("empty listing", func(t *testing.T) {
		text, keyboard, err := b.usersPage(1)
		require.NoError(t, err)
		require.Contains(t, text, "Hozircha userlar yo'q")
		require.Nil(t, keyboard)
	})

	for i := 1; i <= 25; i++ {
		user := models.User{
			TelegramID:   int64(i),
			FirstName:    fmt.Sprintf("User%d", i),
			IsRegistered: i%2 == 0,
		}
		require.NoError(t, b.DB.Create(&user).Error)
	}

	t.Run("first page", func(t *testing.T) {
		text, keyboard, err := b.usersPage(1)
		require.NoError(t, err)
		require.Contains(t, text, "Sahifa 1/3")
		require.Contains(t, text, "Jami: 25 ta user")
		require.Contains(t, text, "Ism: User1\n")
		require.Contains(t, text, "Ism: User10\n")
		require.NotContains(t, text, "Ism: User11\n")

		require.NotNil(t, keyboard)
		nav := keyboard.InlineKeyboard[0]
		require.Equal(t, "1/3", nav[0].Text)
		require.Equal(t, "users_page_2", nav[1].CallbackData)
	})

	t.Run("out of range page clamps to last", func(t *testing.T) {
		text, keyboard, err := b.usersPage(99)
		require.NoError(t, err)
		require.Contains(t, text, "Sahifa 3/3")
		require.Contains(t, text, "Ism: User25\n")
		require.NotContains(t, text, "Ism: User20\n")

		// Last page only navigates backwards.
		nav := keyboard.InlineKeyboard[0]
		require.Equal(t, "users_page_2", nav[0].CallbackData)
		require.Equal(t, "3/3", nav[1].Text)
		require.Len(t, nav, 2)
	})
}

func TestGroupsPage(t *testing.T) {
	b := newTestBot(t)

	members := 120
	groups := []models.Group{
		{ChatID: -1, Title: "Chat One", ChatType: models.ChatGroup, IsActive: true},
		{ChatID: -2, Title: "Big One", ChatType: models.ChatSupergroup, IsActive: true, BotIsAdmin: true, MemberCount: &members},
		{ChatID: -3, Title: "News", ChatType: models.ChatChannel, IsActive: false},
	}
	for i := range groups {
		require.NoError(t, b.DB.Create(&groups[i]).Error)
	}

	text, keyboard, err := b.groupsPage(1)
	require.NoError(t, err)
	require.Contains(t, text, "Sahifa 1/1")
	require.Contains(t, text, "Jami: 3 ta")
	require.Contains(t, text, "Chat One")
	require.Contains(t, text, "🔷 ✅ 👑")
	require.Contains(t, text, "👥 120 a'zo")
	require.Contains(t, text, "📢 ❌")
	require.NotNil(t, keyboard)
}

func TestBroadcastTargets(t *testing.T) {
	b := newTestBot(t)

	users := []models.User{
		{TelegramID: 10, IsRegistered: true},
		{TelegramID: 20, IsRegistered: false},
		{TelegramID: 30, IsRegistered: true},
	}
	for i := range users {
		require.NoError(t, b.DB.Create(&users[i]).Error)
	}
	groups := []models.Group{
		{ChatID: -10, Title: "Active", ChatType: models.ChatGroup, IsActive: true},
		{ChatID: -20, Title: "Left", ChatType: models.ChatGroup, IsActive: false},
	}
	for i := range groups {
		require.NoError(t, b.DB.Create(&groups[i]).Error)
	}

	t.Run("users: registered only", func(t *testing.T) {
		targets, err := b.broadcastUserTargets()
		require.NoError(t, err)
		require.ElementsMatch(t, []int64{10, 30}, targets)
	})

	t.Run("groups: active only", func(t *testing.T) {
		targets, err := b.broadcastGroupTargets()
		require.NoError(t, err)
		require.Equal(t, []int64{-10}, targets)
	})
}
