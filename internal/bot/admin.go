package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"kibercoin-bot/internal/fsm"
	"kibercoin-bot/internal/models"
)

func adminMenuKeyboard() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📊 Statistika").WithCallbackData("admin_stats"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("👥 Userlar").WithCallbackData("admin_users"),
			tu.InlineKeyboardButton("💬 Guruhlar").WithCallbackData("admin_groups"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("💰 KiberCoin boshqaruvi").WithCallbackData("admin_coin_management"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📢 Broadcast").WithCallbackData("admin_broadcast"),
		),
	)
}

// handleNoop answers the page-indicator button so the client drops the
// loading spinner.
func (b *Bot) handleNoop(ctx *th.Context, update telego.Update) error {
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(update.CallbackQuery.ID))
	return nil
}

// admin loads the sender and checks the admin role.
func (b *Bot) admin(telegramID int64) (*models.User, bool) {
	var user models.User
	if err := b.DB.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, user.IsAdmin()
}

func (b *Bot) handleAdmin(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if _, ok := b.admin(message.From.ID); !ok {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			"❌ Kechirasiz, sizda admin huquqi yo'q!\n\nBu buyruq faqat adminlar uchun.",
		))
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		"👑 Admin Panel\n\nXush kelibsiz, admin! Bu yerda botni boshqarishingiz mumkin.\n\nKerakli bo'limni tanlang:",
	).WithReplyMarkup(adminMenuKeyboard()))
	return nil
}

func (b *Bot) handleAdminBack(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(callback.From.ID),
		"👑 Admin Panel\n\nKerakli bo'limni tanlang:",
	).WithReplyMarkup(adminMenuKeyboard()))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

func (b *Bot) handleAdminStats(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	var totalUsers, registeredUsers, admins int64
	b.DB.Model(&models.User{}).Count(&totalUsers)
	b.DB.Model(&models.User{}).Where("is_registered = ?", true).Count(&registeredUsers)
	b.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)

	var totalGroups, activeGroups, channels, supergroups, groups int64
	b.DB.Model(&models.Group{}).Count(&totalGroups)
	b.DB.Model(&models.Group{}).Where("is_active = ?", true).Count(&activeGroups)
	b.DB.Model(&models.Group{}).Where("chat_type = ?", models.ChatChannel).Count(&channels)
	b.DB.Model(&models.Group{}).Where("chat_type = ?", models.ChatSupergroup).Count(&supergroups)
	b.DB.Model(&models.Group{}).Where("chat_type = ?", models.ChatGroup).Count(&groups)

	totalCoins, _ := b.Ledger.TotalCoins()
	holders, _ := b.Ledger.HolderCount()

	text := fmt.Sprintf("📊 Statistika\n\n"+
		"👥 Foydalanuvchilar:\n"+
		"├ Jami: %d\n"+
		"├ Ro'yxatdan o'tgan: %d\n"+
		"└ Adminlar: %d\n\n"+
		"💬 Guruhlar va Kanallar:\n"+
		"├ Jami: %d\n"+
		"├ Aktiv: %d\n"+
		"├ Kanallar: %d\n"+
		"├ Superguruhlar: %d\n"+
		"└ Oddiy guruhlar: %d\n\n"+
		"💰 KiberCoin:\n"+
		"├ Tizimda jami: %d\n"+
		"└ Coin'li userlar: %d",
		totalUsers, registeredUsers, admins,
		totalGroups, activeGroups, channels, supergroups, groups,
		totalCoins, holders)

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« Orqaga").WithCallbackData("admin_back"),
		),
	)

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).WithReplyMarkup(keyboard))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

func (b *Bot) handleCoinManagement(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	totalCoins, _ := b.Ledger.TotalCoins()
	holders, _ := b.Ledger.HolderCount()

	text := fmt.Sprintf("💰 KiberCoin Boshqaruvi\n\n"+
		"📊 Tizimda jami: %d KiberCoin\n"+
		"👥 Coin'li userlar: %d\n\n"+
		"Quyidagi tugmalardan birini tanlang:", totalCoins, holders)

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("➕ Coin qo'shish").WithCallbackData("coin_add"),
			tu.InlineKeyboardButton("➖ Coin ayirish").WithCallbackData("coin_remove"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📊 Tranzaksiyalar").WithCallbackData("coin_transactions"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« Orqaga").WithCallbackData("admin_back"),
		),
	)

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).WithReplyMarkup(keyboard))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

func (b *Bot) startCoinOperation(ctx *th.Context, update telego.Update, action string) error {
	callback := update.CallbackQuery
	telegramID := callback.From.ID
	if _, ok := b.admin(telegramID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	conv := &fsm.Conversation{State: fsm.StateAdminAwaitingPhone, Action: action}
	if err := b.States.Set(ctx.Context(), telegramID, conv); err != nil {
		b.Log.Error("Failed to store admin conversation state", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}

	title := "➕ Coin Qo'shish"
	if action == "remove" {
		title = "➖ Coin Ayirish"
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(telegramID),
		fmt.Sprintf("%s\n\nUserning telefon raqamini yuboring:\nMasalan: +998901234567\n\n❌ Bekor qilish uchun /cancel yuboring", title),
	))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

func (b *Bot) handleCoinAdd(ctx *th.Context, update telego.Update) error {
	return b.startCoinOperation(ctx, update, "add")
}

func (b *Bot) handleCoinRemove(ctx *th.Context, update telego.Update) error {
	return b.startCoinOperation(ctx, update, "remove")
}

func (b *Bot) processAdminPhone(ctx *th.Context, message *telego.Message, conv *fsm.Conversation) error {
	telegramID := message.From.ID
	phone := strings.TrimSpace(message.Text)

	var user models.User
	if err := b.DB.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			fmt.Sprintf("❌ Telefon raqami %s topilmadi!\n\nBoshqa raqam kiriting yoki /cancel yuboring.", phone),
		))
		return nil
	}

	conv.State = fsm.StateAdminAwaitingAmount
	conv.TargetUserID = user.ID
	conv.TargetName = user.DisplayName()
	if err := b.States.Set(ctx.Context(), telegramID, conv); err != nil {
		b.Log.Error("Failed to store admin conversation state", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}

	actionText := "qo'shmoqchisiz"
	if conv.Action == "remove" {
		actionText = "ayirmoqchisiz"
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		fmt.Sprintf("✅ User topildi: %s\n💰 Hozirgi balans: %d KiberCoin\n\n"+
			"Nechta KiberCoin %s?\nMasalan: 100\n\n"+
			"❌ Bekor qilish uchun /cancel yuboring",
			user.DisplayName(), user.Coins, actionText),
	))
	return nil
}

func (b *Bot) processAdminAmount(ctx *th.Context, message *telego.Message, conv *fsm.Conversation) error {
	telegramID := message.From.ID

	amount, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Faqat raqam kiriting!"))
		return nil
	}
	if amount <= 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Musbat son kiriting!"))
		return nil
	}

	adminUser, ok := b.admin(telegramID)
	if !ok {
		_ = b.States.Clear(ctx.Context(), telegramID)
		return nil
	}

	var text string
	if conv.Action == "add" {
		newBalance, err := b.Ledger.Credit(conv.TargetUserID, amount, models.TransactionAdminAdd,
			"Admin tomonidan qo'shildi", &adminUser.ID, nil)
		if err != nil {
			b.Log.Error("Admin credit failed", zap.Uint("target", conv.TargetUserID), zap.Error(err))
			text = "❌ Xatolik yuz berdi!"
		} else {
			text = fmt.Sprintf("✅ Muvaffaqiyatli!\n\n👤 User: %s\n➕ Qo'shildi: %d KiberCoin\n💰 Yangi balans: %d KiberCoin",
				conv.TargetName, amount, newBalance)
		}
	} else {
		applied, newBalance, err := b.Ledger.Debit(conv.TargetUserID, amount,
			"Admin tomonidan olib tashlandi", &adminUser.ID)
		if err != nil {
			b.Log.Error("Admin debit failed", zap.Uint("target", conv.TargetUserID), zap.Error(err))
			text = "❌ Xatolik yuz berdi!"
		} else {
			text = fmt.Sprintf("✅ Muvaffaqiyatli!\n\n👤 User: %s\n➖ Olib tashlandi: %d KiberCoin\n💰 Yangi balans: %d KiberCoin",
				conv.TargetName, applied, newBalance)
			if applied < amount {
				text += fmt.Sprintf("\n\n⚠️ Balans yetarli emas edi: so'ralgan %d, ayirilgan %d", amount, applied)
			}
		}
	}

	if err := b.States.Clear(ctx.Context(), telegramID); err != nil {
		b.Log.Warn("Failed to clear admin conversation state", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), text))
	return nil
}

func (b *Bot) handleAllTransactions(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	total, err := b.Ledger.TransactionCount()
	if err != nil {
		b.Log.Error("Failed to count transactions", zap.Error(err))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}
	if total == 0 {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("📭 Tranzaksiyalar yo'q").WithShowAlert())
		return nil
	}

	page, totalPages := clampPage(total, transactionsPerPage, pageFromCallback(callback.Data, "transactions_page_"))

	transactions, err := b.Ledger.AllTransactions((page-1)*transactionsPerPage, transactionsPerPage)
	if err != nil {
		b.Log.Error("Failed to load transactions", zap.Error(err))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}

	text := fmt.Sprintf("📊 Barcha Tranzaksiyalar (Sahifa %d/%d)\n\n", page, totalPages)
	for _, tx := range transactions {
		amountStr := fmt.Sprintf("%d", tx.Amount)
		emoji := "💸"
		if tx.Amount > 0 {
			amountStr = fmt.Sprintf("+%d", tx.Amount)
			emoji = "💰"
		}

		text += fmt.Sprintf("%s %s - %s\n   %s - %s\n",
			emoji, amountStr, tx.User.DisplayName(),
			transactionTypeName(tx.TransactionType), tx.CreatedAt.Format("02.01.2006 15:04"))
		if tx.Description != "" {
			text += fmt.Sprintf("   💬 %s\n", tx.Description)
		}
		text += "\n"
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).
		WithReplyMarkup(navigationKeyboard("transactions_page_", page, totalPages)))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

func (b *Bot) handleCancel(ctx *th.Context, update telego.Update) error {
	message := update.Message
	telegramID := message.From.ID

	conv, err := b.States.Get(ctx.Context(), telegramID)
	if err != nil || conv == nil {
		return nil
	}

	if err := b.States.Clear(ctx.Context(), telegramID); err != nil {
		b.Log.Warn("Failed to clear conversation state", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Operatsiya bekor qilindi!"))
	return nil
}

func (b *Bot) handleStartBroadcast(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	telegramID := callback.From.ID
	if _, ok := b.admin(telegramID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	conv := &fsm.Conversation{State: fsm.StateBroadcastAwaitingContent}
	if err := b.States.Set(ctx.Context(), telegramID, conv); err != nil {
		b.Log.Error("Failed to store broadcast state", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(telegramID),
		"📢 Broadcast\n\nYubormoqchi bo'lgan kontentingizni yuboring:\n\n"+
			"✅ Matn\n✅ Rasm\n✅ Video\n✅ Audio\n✅ Fayl\n✅ Sticker\n\nKontentni yuboring:",
	))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

// handleBroadcastContent catches non-text broadcast content (photos, videos,
// files). Text content arrives through handleText's state routing instead.
func (b *Bot) handleBroadcastContent(ctx *th.Context, update telego.Update) error {
	message := update.Message
	telegramID := message.From.ID

	conv, err := b.States.Get(ctx.Context(), telegramID)
	if err != nil || conv == nil || conv.State != fsm.StateBroadcastAwaitingContent {
		return nil
	}
	return b.processBroadcastContent(ctx, message)
}

func (b *Bot) processBroadcastContent(ctx *th.Context, message *telego.Message) error {
	telegramID := message.From.ID

	conv := &fsm.Conversation{
		State:     fsm.StateBroadcastAwaitingContent,
		MessageID: message.MessageID,
		ChatID:    message.Chat.ID,
	}
	if err := b.States.Set(ctx.Context(), telegramID, conv); err != nil {
		b.Log.Error("Failed to store broadcast content", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("👥 Users").WithCallbackData("broadcast_users"),
			tu.InlineKeyboardButton("💬 Groups").WithCallbackData("broadcast_groups"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("❌ Bekor qilish").WithCallbackData("broadcast_cancel"),
		),
	)

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		"✅ Kontent qabul qilindi!\n\nKimga yuborish kerak?",
	).WithReplyMarkup(keyboard))
	return nil
}

// broadcastUserTargets returns the chat ids of all registered users.
func (b *Bot) broadcastUserTargets() ([]int64, error) {
	var ids []int64
	err := b.DB.Model(&models.User{}).Where("is_registered = ?", true).Pluck("telegram_id", &ids).Error
	return ids, err
}

// broadcastGroupTargets returns the chat ids of all groups and channels the
// bot is still a member of.
func (b *Bot) broadcastGroupTargets() ([]int64, error) {
	var ids []int64
	err := b.DB.Model(&models.Group{}).Where("is_active = ?", true).Pluck("chat_id", &ids).Error
	return ids, err
}

// sendBroadcast copies the stashed message to every target chat with a delay
// between sends to stay under flood limits. Per-chat failures (blocked bot,
// deleted account) are counted and skipped.
func (b *Bot) sendBroadcast(ctx *th.Context, callback *telego.CallbackQuery, label string, targets []int64, delay time.Duration) error {
	telegramID := callback.From.ID

	conv, err := b.States.Get(ctx.Context(), telegramID)
	if err != nil || conv == nil || conv.MessageID == 0 {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik! Qaytadan urinib ko'ring.").WithShowAlert())
		return nil
	}

	if len(targets) == 0 {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Qabul qiluvchilar topilmadi!").WithShowAlert())
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(telegramID),
		fmt.Sprintf("📤 Yuborilmoqda...\n\nJami: %d ta\n\n⏳ Iltimos kuting...", len(targets)),
	))

	success, failed := 0, 0
	for _, target := range targets {
		_, err := ctx.Bot().CopyMessage(ctx.Context(), &telego.CopyMessageParams{
			ChatID:     tu.ID(target),
			FromChatID: tu.ID(conv.ChatID),
			MessageID:  conv.MessageID,
		})
		if err != nil {
			failed++
			continue
		}
		success++

		time.Sleep(delay)
	}

	if err := b.States.Clear(ctx.Context(), telegramID); err != nil {
		b.Log.Warn("Failed to clear broadcast state", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	b.Log.Info("Broadcast finished",
		zap.String("target", label), zap.Int("success", success), zap.Int("failed", failed))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(telegramID),
		fmt.Sprintf("✅ Broadcast yakunlandi!\n\n🎯 Target: %s\n\n📬 Yuborildi: %d\n❌ Xatolik: %d\n📊 Jami: %d",
			label, success, failed, len(targets)),
	))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

func (b *Bot) handleBroadcastSend(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	targets, err := b.broadcastUserTargets()
	if err != nil {
		b.Log.Error("Failed to load broadcast recipients", zap.Error(err))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}
	return b.sendBroadcast(ctx, callback, "Users", targets, 50*time.Millisecond)
}

func (b *Bot) handleBroadcastGroups(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if _, ok := b.admin(callback.From.ID); !ok {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Sizda admin huquqi yo'q!").WithShowAlert())
		return nil
	}

	targets, err := b.broadcastGroupTargets()
	if err != nil {
		b.Log.Error("Failed to load broadcast recipients", zap.Error(err))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}
	// Group chats get a longer delay, matching their stricter flood limits.
	return b.sendBroadcast(ctx, callback, "Groups/Channels", targets, 100*time.Millisecond)
}

func (b *Bot) handleBroadcastCancel(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	telegramID := callback.From.ID

	if err := b.States.Clear(ctx.Context(), telegramID); err != nil {
		b.Log.Warn("Failed to clear broadcast state", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Broadcast bekor qilindi"))
	return nil
}
