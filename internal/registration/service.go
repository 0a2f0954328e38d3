package registration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kibercoin-bot/internal/fsm"
	"kibercoin-bot/internal/ledger"
	"kibercoin-bot/internal/models"
	"kibercoin-bot/internal/referral"
)

// ErrWrongState means the identity's conversation is not waiting for the
// submitted input. The bot layer re-prompts without a transition.
var ErrWrongState = errors.New("conversation not in expected state")

// errAlreadyAttributed guards the one-time referred_by write.
var errAlreadyAttributed = errors.New("user already attributed")

// Identity is the stable external identity plus the profile fields the
// transport hands us on first contact.
type Identity struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

type StartResult struct {
	User *models.User
	// AlreadyRegistered short-circuits to a greeting: no state change.
	AlreadyRegistered bool
}

// CompletionResult reports a finished registration. Referrer is non-nil only
// when an attribution credit was committed; the bot layer uses it for the
// asynchronous referrer notification.
type CompletionResult struct {
	User            *models.User
	Referrer        *models.User
	Reward          int64
	ReferrerBalance int64
}

// Service drives the per-user registration conversation:
// Unregistered -> AwaitingContact -> AwaitingName -> Registered,
// with one-time referral attribution on completion.
type Service struct {
	db     *gorm.DB
	states fsm.Storage
	ledger *ledger.Engine
	reward int64
	log    *zap.Logger
}

func NewService(db *gorm.DB, states fsm.Storage, engine *ledger.Engine, reward int64, log *zap.Logger) *Service {
	return &Service{db: db, states: states, ledger: engine, reward: reward, log: log}
}

// States exposes the conversation storage so other flows (admin panel,
// broadcast) share the same per-identity state keying.
func (s *Service) States() fsm.Storage {
	return s.states
}

// Start handles first contact. It creates the User record if none exists,
// stashes an optional referral code in the conversation (not on the User),
// and moves the conversation to AwaitingContact. For an already registered
// user it is an idempotent no-op apart from the greeting.
func (s *Service) Start(ctx context.Context, id Identity, referralCode string) (*StartResult, error) {
	var user models.User
	err := s.db.Where(models.User{TelegramID: id.TelegramID}).
		Attrs(models.User{
			Username:     id.Username,
			FirstName:    id.FirstName,
			LastName:     id.LastName,
			LanguageCode: id.LanguageCode,
		}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get/create user: %w", err)
	}

	if user.IsRegistered {
		return &StartResult{User: &user, AlreadyRegistered: true}, nil
	}

	conv := &fsm.Conversation{State: fsm.StateAwaitingContact, ReferralCode: referralCode}
	if err := s.states.Set(ctx, id.TelegramID, conv); err != nil {
		return nil, err
	}

	return &StartResult{User: &user}, nil
}

// SubmitContact persists the phone number and advances to AwaitingName. The
// stashed referral code is carried forward.
func (s *Service) SubmitContact(ctx context.Context, telegramID int64, phone string) error {
	conv, err := s.states.Get(ctx, telegramID)
	if err != nil {
		return err
	}
	if conv == nil || conv.State != fsm.StateAwaitingContact {
		return ErrWrongState
	}

	err = s.db.Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("phone_number", phone).Error
	if err != nil {
		return fmt.Errorf("failed to update phone number: %w", err)
	}

	conv.State = fsm.StateAwaitingName
	return s.states.Set(ctx, telegramID, conv)
}

// SubmitName completes registration: persists the display name, marks the
// user registered, assigns a referral code, and applies one-time attribution
// if a code was stashed. The user's own registration is final once the name
// write commits; attribution and its credit are best-effort after that point.
func (s *Service) SubmitName(ctx context.Context, telegramID int64, name string) (*CompletionResult, error) {
	conv, err := s.states.Get(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.State != fsm.StateAwaitingName {
		return nil, ErrWrongState
	}

	var user models.User
	if err := s.db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	updates := map[string]interface{}{
		"preferred_name": name,
		"is_registered":  true,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}
	user.PreferredName = name
	user.IsRegistered = true

	// The code is assigned at completion, never earlier, so a user cannot
	// refer themselves before their own code exists.
	if _, err := referral.Assign(s.db, &user); err != nil {
		s.log.Error("Failed to assign referral code",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	result := &CompletionResult{User: &user}
	if conv.ReferralCode != "" {
		result.Referrer, result.ReferrerBalance = s.attribute(&user, conv.ReferralCode)
		result.Reward = s.reward
	}

	if err := s.states.Clear(ctx, telegramID); err != nil {
		s.log.Warn("Failed to clear conversation state",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	return result, nil
}

// attribute resolves the stashed code and, if it names a distinct existing
// user, sets referred_by and credits the referrer in one transaction. Any
// skip condition (unknown code, self-referral, already attributed) is silent:
// the registering user never asked for the bonus. A storage failure here is
// logged and swallowed; it never rolls back the registration itself.
func (s *Service) attribute(user *models.User, code string) (*models.User, int64) {
	referrer, err := referral.Resolve(s.db, code)
	if err != nil {
		s.log.Error("Failed to resolve referral code",
			zap.String("code", code), zap.Error(err))
		return nil, 0
	}
	if referrer == nil || referrer.ID == user.ID {
		return nil, 0
	}

	var newBalance int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND referred_by_id IS NULL", user.ID).
			Update("referred_by_id", referrer.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlreadyAttributed
		}

		balance, err := s.ledger.WithTx(tx).Credit(
			referrer.ID,
			s.reward,
			models.TransactionReferralBonus,
			fmt.Sprintf("Referral bonus: %s joined the bot", user.DisplayName()),
			nil,
			&user.ID,
		)
		if err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if errors.Is(err, errAlreadyAttributed) {
		return nil, 0
	}
	if err != nil {
		s.log.Error("Referral attribution failed, registration kept",
			zap.Uint("user_id", user.ID),
			zap.Uint("referrer_id", referrer.ID),
			zap.Error(err))
		return nil, 0
	}

	user.ReferredByID = &referrer.ID
	s.log.Info("Referral attributed",
		zap.Uint("user_id", user.ID),
		zap.Uint("referrer_id", referrer.ID),
		zap.Int64("reward", s.reward))
	return referrer, newBalance
}
