package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"kibercoin-bot/internal/models"
)

const (
	usersPerPage        = 10
	groupsPerPage       = 10
	transactionsPerPage = 10
)

// pageFromCallback parses the page number out of callback data like
// "users_page_3". Data without the prefix (the menu entry point) is page 1.
func pageFromCallback(data, prefix string) int {
	if !strings.HasPrefix(data, prefix) {
		return 1
	}
	page, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// clampPage returns the valid page and the total page count for the listing.
func clampPage(total int64, perPage, page int) (int, int) {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}

// navigationKeyboard builds the prev/next row for a paginated listing. The
// prefix yields callback data like "users_page_2".
func navigationKeyboard(prefix string, page, totalPages int) *telego.InlineKeyboardMarkup {
	var nav []telego.InlineKeyboardButton
	if page > 1 {
		nav = append(nav, tu.InlineKeyboardButton("◀️").WithCallbackData(fmt.Sprintf("%s%d", prefix, page-1)))
	}
	nav = append(nav, tu.InlineKeyboardButton(fmt.Sprintf("%d/%d", page, totalPages)).WithCallbackData("noop"))
	if page < totalPages {
		nav = append(nav, tu.InlineKeyboardButton("▶️").WithCallbackData(fmt.Sprintf("%s%d", prefix, page+1)))
	}

	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(nav...),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« Orqaga").WithCallbackData("admin_back"),
		),
	)
}

func formatUserLine(user models.User, index int) string {
	roleEmoji := "👤"
	if user.IsAdmin() {
		roleEmoji = "👑"
	}
	status := "⏳"
	if user.IsRegistered {
		status = "✅"
	}

	line := fmt.Sprintf("%d. %s %s\n", index, roleEmoji, status)
	name := user.DisplayName()
	if name == "" {
		name = "Noma'lum"
	}
	line += fmt.Sprintf("   Ism: %s\n", name)
	if user.Username != "" {
		line += fmt.Sprintf("   @%s\n", user.Username)
	}
	if user.PhoneNumber != "" {
		line += fmt.Sprintf("   📱 %s\n", user.PhoneNumber)
	}
	line += fmt.Sprintf("   ID: %d\n", user.TelegramID)
	return line
}

func formatGroupLine(group models.Group, index int) string {
	status := "❌"
	if group.IsActive {
		status = "✅"
	}
	adminEmoji := "👤"
	if group.BotIsAdmin {
		adminEmoji = "👑"
	}
	typeEmoji := "💬"
	switch group.ChatType {
	case models.ChatSupergroup:
		typeEmoji = "🔷"
	case models.ChatChannel:
		typeEmoji = "📢"
	}

	line := fmt.Sprintf("%d. %s %s %s\n   %s\n", index, typeEmoji, status, adminEmoji, group.Title)
	if group.Username != "" {
		line += fmt.Sprintf("   @%s\n", group.Username)
	}
	if group.MemberCount != nil {
		line += fmt.Sprintf("   👥 %d a'zo\n", *group.MemberCount)
	}
	line += fmt.Sprintf("   ID: %d\n", group.ChatID)
	return line
}

// usersPage renders one page of the admin user listing. An empty listing is
// reported with a nil keyboard.
func (b *Bot) usersPage(page int) (string, *telego.InlineKeyboardMarkup, error) {
	var total int64
	if err := b.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return "", nil, err
	}
	if total == 0 {
		return "📭 Hozircha userlar yo'q.", nil, nil
	}

	page, totalPages := clampPage(total, usersPerPage, page)

	var users []models.User
	err := b.DB.Order("id").
		Offset((page - 1) * usersPerPage).
		Limit(usersPerPage).
		Find(&users).Error
	if err != nil {
		return "", nil, err
	}

	text := fmt.Sprintf("👥 Foydalanuvchilar (Sahifa %d/%d)\n\nJami: %d ta user\n\n", page, totalPages, total)
	for i, user := range users {
		text += formatUserLine(user, (page-1)*usersPerPage+i+1)
		text += "\n"
	}
	text += "\n👑 - Admin | 👤 - User\n✅ - Ro'yxatdan o'tgan | ⏳ - Jarayonda"

	return text, navigationKeyboard("users_page_", page, totalPages), nil
}

// groupsPage renders one page of the admin group/channel listing.
func (b *Bot) groupsPage(page int) (string, *telego.InlineKeyboardMarkup, error) {
	var total int64
	if err := b.DB.Model(&models.Group{}).Count(&total).Error; err != nil {
		return "", nil, err
	}
	if total == 0 {
		return "📭 Hozircha guruhlar yo'q.", nil, nil
	}

	page, totalPages := clampPage(total, groupsPerPage, page)

	var groups []models.Group
	err := b.DB.Order("id").
		Offset((page - 1) * groupsPerPage).
		Limit(groupsPerPage).
		Find(&groups).Error
	if err != nil {
		return "", nil, err
	}

	text := fmt.Sprintf("💬 Guruhlar va Kanallar (Sahifa %d/%d)\n\nJami: %d ta\n\n", page, totalPages, total)
	for i, group := range groups {
		text += formatGroupLine(group, (page-1)*groupsPerPage+i+1)
		text += "\n"
	}
	text += "\n💬 - Guruh | 🔷 - Superguruh | 📢 - Kanal\n" +
		"✅ - Aktiv | ❌ - Chiqib ketgan\n" +
		"👑 - Bot admin | 👤 - Oddiy a'zo"

	return text, navigationKeyboard("groups_page_", page, totalPages), nil
}

func (b *Bot) handleAdminUsers(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	text, keyboard, err := b.usersPage(pageFromCallback(callback.Data, "users_page_"))
	if err != nil {
		b.Log.Error("Failed to build user listing", zap.Error(err))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}

	message := tu.Message(tu.ID(callback.From.ID), text)
	if keyboard != nil {
		message = message.WithReplyMarkup(keyboard)
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), message)
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

func (b *Bot) handleAdminGroups(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	text, keyboard, err := b.groupsPage(pageFromCallback(callback.Data, "groups_page_"))
	if err != nil {
		b.Log.Error("Failed to build group listing", zap.Error(err))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}

	message := tu.Message(tu.ID(callback.From.ID), text)
	if keyboard != nil {
		message = message.WithReplyMarkup(keyboard)
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), message)
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}
