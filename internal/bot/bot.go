package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kibercoin-bot/internal/fsm"
	"kibercoin-bot/internal/ledger"
	"kibercoin-bot/internal/registration"
)

type Bot struct {
	Instance     *telego.Bot
	DB           *gorm.DB
	Ledger       *ledger.Engine
	Registration *registration.Service
	States       fsm.Storage
	Reward       int64
	Log          *zap.Logger

	// Cached bot username for referral links. Handlers run concurrently, so
	// the cache is guarded.
	usernameMu sync.Mutex
	username   string
}

func NewBot(token string, db *gorm.DB, engine *ledger.Engine, reg *registration.Service, reward int64, log *zap.Logger) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance:     tgBot,
		DB:           db,
		Ledger:       engine,
		Registration: reg,
		States:       reg.States(),
		Reward:       reward,
		Log:          log,
	}, nil
}

func (b *Bot) Start() {
	updates, _ := b.Instance.UpdatesViaLongPolling(context.Background(), nil)

	handler, _ := th.NewBotHandler(b.Instance, updates)

	// Command handlers.
	handler.Handle(b.handleStart, th.CommandEqual("start"))
	handler.Handle(b.handleCoins, th.CommandEqual("coins"))
	handler.Handle(b.handleAdmin, th.CommandEqual("admin"))
	handler.Handle(b.handleCancel, th.CommandEqual("cancel"))

	// Registration: shared contact carries the phone number.
	handler.Handle(b.handleContact, messageWithContact)

	// Group/channel membership changes.
	handler.Handle(b.handleMyChatMember, anyMyChatMember)

	// Coins callbacks.
	handler.Handle(b.handleCopyReferralLink, th.CallbackDataEqual("copy_referral_link"))
	handler.Handle(b.handleMyTransactions, th.CallbackDataEqual("my_transactions"))

	// Admin callbacks.
	handler.Handle(b.handleAdminStats, th.CallbackDataEqual("admin_stats"))
	handler.Handle(b.handleAdminUsers, th.CallbackDataEqual("admin_users"))
	handler.Handle(b.handleAdminUsers, callbackDataPrefix("users_page_"))
	handler.Handle(b.handleAdminGroups, th.CallbackDataEqual("admin_groups"))
	handler.Handle(b.handleAdminGroups, callbackDataPrefix("groups_page_"))
	handler.Handle(b.handleCoinManagement, th.CallbackDataEqual("admin_coin_management"))
	handler.Handle(b.handleCoinAdd, th.CallbackDataEqual("coin_add"))
	handler.Handle(b.handleCoinRemove, th.CallbackDataEqual("coin_remove"))
	handler.Handle(b.handleAllTransactions, th.CallbackDataEqual("coin_transactions"))
	handler.Handle(b.handleAllTransactions, callbackDataPrefix("transactions_page_"))
	handler.Handle(b.handleStartBroadcast, th.CallbackDataEqual("admin_broadcast"))
	handler.Handle(b.handleBroadcastSend, th.CallbackDataEqual("broadcast_users"))
	handler.Handle(b.handleBroadcastGroups, th.CallbackDataEqual("broadcast_groups"))
	handler.Handle(b.handleBroadcastCancel, th.CallbackDataEqual("broadcast_cancel"))
	handler.Handle(b.handleAdminBack, th.CallbackDataEqual("admin_back"))
	handler.Handle(b.handleNoop, th.CallbackDataEqual("noop"))

	// Inline queries share the referral link.
	handler.Handle(b.handleInlineShare, anyInlineQuery)

	// Free text is routed by conversation state (registration name input,
	// admin coin management). Registered last so commands win.
	handler.Handle(b.handleText, th.AnyMessageWithText())

	// Broadcast content can be any message type, not just text.
	handler.Handle(b.handleBroadcastContent, anyMessage)

	b.Log.Info("Bot handlers registered, starting long polling")
	handler.Start()
}

// Username returns the bot's own username, fetched once and cached. Used to
// build t.me deep links. The lock spans the fetch so concurrent cold-cache
// callers trigger a single GetMe.
func (b *Bot) Username(ctx context.Context) string {
	b.usernameMu.Lock()
	defer b.usernameMu.Unlock()

	if b.username != "" {
		return b.username
	}
	info, err := b.Instance.GetMe(ctx)
	if err != nil {
		b.Log.Warn("Failed to fetch bot info", zap.Error(err))
		return ""
	}
	b.username = info.Username
	return b.username
}

func (b *Bot) referralLink(ctx context.Context, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", b.Username(ctx), code)
}

// commandArgs returns everything after the command itself, e.g. the referral
// code in "/start ABC12345".
func commandArgs(text string) string {
	if parts := strings.SplitN(text, " ", 2); len(parts) > 1 {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func messageWithContact(_ context.Context, update telego.Update) bool {
	return update.Message != nil && update.Message.Contact != nil
}

func anyMyChatMember(_ context.Context, update telego.Update) bool {
	return update.MyChatMember != nil
}

func anyMessage(_ context.Context, update telego.Update) bool {
	return update.Message != nil
}

func anyInlineQuery(_ context.Context, update telego.Update) bool {
	return update.InlineQuery != nil
}

func callbackDataPrefix(prefix string) func(context.Context, telego.Update) bool {
	return func(_ context.Context, update telego.Update) bool {
		return update.CallbackQuery != nil && strings.HasPrefix(update.CallbackQuery.Data, prefix)
	}
}
