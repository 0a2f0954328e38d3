package bot

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"kibercoin-bot/internal/models"
	"kibercoin-bot/internal/referral"
)

func transactionTypeName(t models.TransactionType) string {
	switch t {
	case models.TransactionReferralBonus:
		return "Referal bonus"
	case models.TransactionAdminAdd:
		return "Admin qo'shdi"
	case models.TransactionAdminRemove:
		return "Admin olib tashladi"
	}
	return "Noma'lum"
}

func (b *Bot) handleCoins(ctx *th.Context, update telego.Update) error {
	message := update.Message
	telegramID := message.From.ID

	var user models.User
	if err := b.DB.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil || !user.IsRegistered {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			"❌ Avval ro'yxatdan o'ting!\n\n/start buyrug'ini yuboring.",
		))
		return nil
	}

	// Old records may predate code assignment; Assign is a no-op otherwise.
	code, err := referral.Assign(b.DB, &user)
	if err != nil {
		b.Log.Error("Failed to ensure referral code", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}

	referralsCount, err := b.Ledger.ReferralCount(user.ID)
	if err != nil {
		b.Log.Error("Failed to count referrals", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	text := fmt.Sprintf("💰 KiberCoin Balansingiz\n\n"+
		"👤 Ism: %s\n"+
		"💎 Balans: %d KiberCoin\n"+
		"👥 Referal: %d kishi\n\n"+
		"🔗 Sizning referal linkingiz:\n%s\n\n"+
		"📊 Har bir taklif qilingan do'st uchun:\n"+
		"💰 +%d KiberCoin\n\n"+
		"Do'stlaringizni taklif qiling va KiberCoin yutib oling! 🎉",
		user.DisplayName(), user.Coins, referralsCount, b.referralLink(ctx.Context(), code), b.Reward)

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📋 Nusxalash").WithCallbackData("copy_referral_link"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📊 Tranzaksiyalar").WithCallbackData("my_transactions"),
		),
	)

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), text).WithReplyMarkup(keyboard))
	return nil
}

func (b *Bot) handleCopyReferralLink(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	telegramID := callback.From.ID

	var user models.User
	if err := b.DB.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil || user.ReferralCode == nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(telegramID),
		fmt.Sprintf("🔗 Referal linkingiz:\n\n%s\n\n"+
			"☝️ Linkni nusxalash uchun ustiga bosing!\n"+
			"Keyin do'stlaringizga yuboring.", b.referralLink(ctx.Context(), *user.ReferralCode)),
	))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("✅ Link yuborildi!"))
	return nil
}

func (b *Bot) handleMyTransactions(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	telegramID := callback.From.ID

	var user models.User
	if err := b.DB.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}

	transactions, err := b.Ledger.History(user.ID, 10)
	if err != nil {
		b.Log.Error("Failed to load transactions", zap.Uint("user_id", user.ID), zap.Error(err))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("❌ Xatolik yuz berdi").WithShowAlert())
		return nil
	}
	if len(transactions) == 0 {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("📭 Hali tranzaksiyalar yo'q").WithShowAlert())
		return nil
	}

	text := "📊 Oxirgi 10 ta tranzaksiya:\n\n"
	for _, tx := range transactions {
		amountStr := fmt.Sprintf("%d", tx.Amount)
		emoji := "💸"
		if tx.Amount > 0 {
			amountStr = fmt.Sprintf("+%d", tx.Amount)
			emoji = "💰"
		}

		text += fmt.Sprintf("%s %s KiberCoin\n📝 %s\n", emoji, amountStr, transactionTypeName(tx.TransactionType))
		if tx.Description != "" {
			text += fmt.Sprintf("💬 %s\n", tx.Description)
		}
		text += fmt.Sprintf("📅 %s\n\n", tx.CreatedAt.Format("02.01.2006 15:04"))
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(telegramID), text))
	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	return nil
}

// handleInlineShare answers inline queries of the form @bot <referral_code>
// with a ready-made invitation message. Unknown codes get an empty result set.
func (b *Bot) handleInlineShare(ctx *th.Context, update telego.Update) error {
	query := update.InlineQuery
	code := strings.TrimSpace(query.Query)

	answer := &telego.AnswerInlineQueryParams{InlineQueryID: query.ID, CacheTime: 1}
	if code == "" {
		_ = ctx.Bot().AnswerInlineQuery(ctx.Context(), answer)
		return nil
	}

	owner, err := referral.Resolve(b.DB, code)
	if err != nil {
		b.Log.Error("Failed to resolve referral code for inline share", zap.Error(err))
		_ = ctx.Bot().AnswerInlineQuery(ctx.Context(), answer)
		return nil
	}
	if owner == nil {
		_ = ctx.Bot().AnswerInlineQuery(ctx.Context(), answer)
		return nil
	}

	shareText := fmt.Sprintf("🎉 Salom do'stim!\n\n"+
		"Men ajoyib botni topdim va siz bilan ulashmoqchiman! 🤖\n\n"+
		"💰 KiberCoin yig'ish imkoniyati bor!\n"+
		"🎁 Ro'yxatdan o'ting va bonuslar oling\n"+
		"🚀 Do'stlaringizni taklif qilib coin yutib oling\n\n"+
		"👇 Hoziroq qo'shiling:\n%s\n\n"+
		"Tezroq start oling va KiberCoin yig'ing! 💎",
		b.referralLink(ctx.Context(), code))

	answer.Results = []telego.InlineQueryResult{
		&telego.InlineQueryResultArticle{
			Type:        "article",
			ID:          "referral",
			Title:       "🎁 Do'stingizni taklif qiling!",
			Description: fmt.Sprintf("KiberCoin yutib oling - Har bir referal uchun +%d coin!", b.Reward),
			InputMessageContent: &telego.InputTextMessageContent{
				MessageText: shareText,
			},
		},
	}
	_ = ctx.Bot().AnswerInlineQuery(ctx.Context(), answer)
	return nil
}
