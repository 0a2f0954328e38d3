package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"kibercoin-bot/internal/fsm"
	"kibercoin-bot/internal/registration"
)

func phoneKeyboard() *telego.ReplyKeyboardMarkup {
	return &telego.ReplyKeyboardMarkup{
		Keyboard: [][]telego.KeyboardButton{{
			{Text: "📱 Telefon raqamni yuborish", RequestContact: true},
		}},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

func (b *Bot) handleStart(ctx *th.Context, update telego.Update) error {
	message := update.Message
	from := message.From

	identity := registration.Identity{
		TelegramID:   from.ID,
		Username:     from.Username,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
	}

	result, err := b.Registration.Start(ctx.Context(), identity, commandArgs(message.Text))
	if err != nil {
		b.Log.Error("Failed to start registration", zap.Int64("telegram_id", from.ID), zap.Error(err))
		return nil
	}

	if result.AlreadyRegistered {
		user := result.User
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			fmt.Sprintf("Assalomu alaykum, %s! 🎉\n\n"+
				"Sizni yana ko'rganimdan xursandman! 😊\n\n"+
				"💰 KiberCoin balansingiz: %d\n"+
				"Referal tizimi haqida ma'lumot olish uchun /coins buyrug'ini yuboring.",
				user.DisplayName(), user.Coins),
		))
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		"Assalomu alaykum! 👋\n\n"+
			"Botimizga xush kelibsiz! Ro'yxatdan o'tish uchun telefon raqamingizni yuboring.\n\n"+
			"Pastdagi tugmani bosing va telefon raqamingiz avtomatik yuboriladi. 📱",
	).WithReplyMarkup(phoneKeyboard()))
	return nil
}

func (b *Bot) handleContact(ctx *th.Context, update telego.Update) error {
	message := update.Message
	telegramID := message.From.ID

	err := b.Registration.SubmitContact(ctx.Context(), telegramID, message.Contact.PhoneNumber)
	if errors.Is(err, registration.ErrWrongState) {
		return nil
	}
	if err != nil {
		b.Log.Error("Failed to save contact", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		"Rahmat! Telefon raqamingiz qabul qilindi. ✅\n\n"+
			"Endi sizni qanday chaqirsak bo'ladi? Ismingizni yozing. 😊",
	).WithReplyMarkup(&telego.ReplyKeyboardRemove{RemoveKeyboard: true}))
	return nil
}

// handleText routes free text by the sender's conversation state. Without an
// active conversation the message is ignored.
func (b *Bot) handleText(ctx *th.Context, update telego.Update) error {
	message := update.Message
	telegramID := message.From.ID

	conv, err := b.States.Get(ctx.Context(), telegramID)
	if err != nil {
		b.Log.Error("Failed to load conversation state", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil
	}
	if conv == nil {
		return nil
	}

	switch conv.State {
	case fsm.StateAwaitingContact:
		// Text instead of a shared contact: re-prompt, no transition.
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			"Iltimos, telefon raqamingizni yuborish uchun pastdagi tugmani bosing. 👇",
		).WithReplyMarkup(phoneKeyboard()))
		return nil
	case fsm.StateAwaitingName:
		return b.processName(ctx, message)
	case fsm.StateAdminAwaitingPhone:
		return b.processAdminPhone(ctx, message, conv)
	case fsm.StateAdminAwaitingAmount:
		return b.processAdminAmount(ctx, message, conv)
	case fsm.StateBroadcastAwaitingContent:
		return b.processBroadcastContent(ctx, message)
	}
	return nil
}

func (b *Bot) processName(ctx *th.Context, message *telego.Message) error {
	telegramID := message.From.ID
	name := strings.TrimSpace(message.Text)

	result, err := b.Registration.SubmitName(ctx.Context(), telegramID, name)
	if errors.Is(err, registration.ErrWrongState) {
		return nil
	}
	if err != nil {
		b.Log.Error("Failed to complete registration", zap.Int64("telegram_id", telegramID), zap.Error(err))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "❌ Xatolik yuz berdi. Qaytadan urinib ko'ring."))
		return nil
	}

	// The registering user always sees the success confirmation, whatever
	// happened to the attribution.
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		fmt.Sprintf("Juda yaxshi, %s! 🎉\n\n"+
			"Ro'yxatdan o'tish muvaffaqiyatli yakunlandi! ✅\n\n"+
			"💰 Do'stlaringizni taklif qiling va KiberCoin yutib oling!\n"+
			"/coins buyrug'i orqali referal linkingizni oling.", name),
	))

	if result.Referrer != nil {
		b.notifyReferrer(result)
	}
	return nil
}

// notifyReferrer tells the referrer about the credited bonus. The credit is
// already committed; delivery failures are swallowed.
func (b *Bot) notifyReferrer(result *registration.CompletionResult) {
	referrer := result.Referrer
	text := fmt.Sprintf("🎉 Tabriklaymiz!\n\n"+
		"Sizning referal linkingiz orqali %s botga qo'shildi!\n\n"+
		"💰 +%d KiberCoin\n"+
		"Jami balansingiz: %d KiberCoin",
		result.User.DisplayName(), result.Reward, result.ReferrerBalance)

	go func() {
		_, err := b.Instance.SendMessage(context.Background(), tu.Message(tu.ID(referrer.TelegramID), text))
		if err != nil {
			b.Log.Warn("Failed to notify referrer",
				zap.Int64("referrer_telegram_id", referrer.TelegramID), zap.Error(err))
		}
	}()
}
