package fsm

import (
	"context"
)

// State names the step a conversation is waiting on. A user with no stored
// conversation is either unregistered-and-idle or fully registered; the
// terminal state is represented by clearing the conversation.
type State string

const (
	// Registration flow.
	StateAwaitingContact State = "awaiting_contact"
	StateAwaitingName    State = "awaiting_name"

	// Admin coin management flow.
	StateAdminAwaitingPhone  State = "admin_awaiting_phone"
	StateAdminAwaitingAmount State = "admin_awaiting_amount"

	// Broadcast flow.
	StateBroadcastAwaitingContent State = "broadcast_awaiting_content"
)

// Conversation is the transient per-identity state bag. It is only ever
// touched by its own identity's turns, so no field needs cross-user locking.
type Conversation struct {
	State State `json:"state"`

	// Stashed referral code, carried through the registration flow and only
	// persisted (as an attribution) at completion.
	ReferralCode string `json:"referral_code,omitempty"`

	// Admin coin management scratch fields.
	Action       string `json:"action,omitempty"` // "add" or "remove"
	TargetUserID uint   `json:"target_user_id,omitempty"`
	TargetName   string `json:"target_name,omitempty"`

	// Broadcast scratch fields: the message to copy out.
	MessageID int   `json:"message_id,omitempty"`
	ChatID    int64 `json:"chat_id,omitempty"`
}

// Storage keeps conversations keyed by telegram id. Get returns (nil, nil)
// when the identity has no active conversation.
type Storage interface {
	Get(ctx context.Context, telegramID int64) (*Conversation, error)
	Set(ctx context.Context, telegramID int64, conv *Conversation) error
	Clear(ctx context.Context, telegramID int64) error
}
