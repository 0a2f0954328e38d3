package registration

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kibercoin-bot/internal/fsm"
	"kibercoin-bot/internal/ledger"
	"kibercoin-bot/internal/models"
	"kibercoin-bot/internal/referral"
)

const testReward = 7

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CoinTransaction{}))

	log := zap.NewNop()
	engine := ledger.NewEngine(db, log)
	return NewService(db, fsm.NewMemoryStorage(), engine, testReward, log), db
}

func identity(telegramID int64, name string) Identity {
	return Identity{TelegramID: telegramID, FirstName: name}
}

// register walks one user through the whole conversation.
func register(t *testing.T, svc *Service, telegramID int64, name, referralCode string) *CompletionResult {
	t.Helper()
	ctx := context.Background()

	start, err := svc.Start(ctx, identity(telegramID, name), referralCode)
	require.NoError(t, err)
	require.False(t, start.AlreadyRegistered)

	require.NoError(t, svc.SubmitContact(ctx, telegramID, fmt.Sprintf("+99890%07d", telegramID)))

	result, err := svc.SubmitName(ctx, telegramID, name)
	require.NoError(t, err)
	return result
}

func TestRegistrationFlow(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	result := register(t, svc, 1, "Alisher", "")

	user := result.User
	require.True(t, user.IsRegistered)
	require.Equal(t, "Alisher", user.PreferredName)
	require.NotNil(t, user.ReferralCode)
	require.Len(t, *user.ReferralCode, 8)
	require.Nil(t, result.Referrer)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	require.True(t, fresh.IsRegistered)
	require.Equal(t, "+998900000001", fresh.PhoneNumber)
	require.Nil(t, fresh.ReferredByID)

	// Conversation is cleared on completion.
	conv, err := svc.States().Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, conv)
}

func TestStartIsIdempotentForRegisteredUser(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	first := register(t, svc, 1, "Alisher", "")

	// Re-entry short-circuits: greeting only, no state, no new user.
	start, err := svc.Start(ctx, identity(1, "Alisher"), "")
	require.NoError(t, err)
	require.True(t, start.AlreadyRegistered)
	require.Equal(t, first.User.ID, start.User.ID)

	conv, err := svc.States().Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, conv)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWrongStateInputs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("contact without a conversation", func(t *testing.T) {
		err := svc.SubmitContact(ctx, 5, "+998901234567")
		require.ErrorIs(t, err, ErrWrongState)
	})

	t.Run("name while awaiting contact", func(t *testing.T) {
		_, err := svc.Start(ctx, identity(5, "B"), "")
		require.NoError(t, err)

		_, err = svc.SubmitName(ctx, 5, "B")
		require.ErrorIs(t, err, ErrWrongState)
	})
}

func TestReferralAttribution(t *testing.T) {
	svc, db := newTestService(t)

	alice := register(t, svc, 1, "Alice", "").User
	require.NotNil(t, alice.ReferralCode)

	result := register(t, svc, 2, "Bob", *alice.ReferralCode)

	require.NotNil(t, result.Referrer)
	require.Equal(t, alice.ID, result.Referrer.ID)
	require.EqualValues(t, testReward, result.Reward)
	require.EqualValues(t, testReward, result.ReferrerBalance)

	var bob models.User
	require.NoError(t, db.First(&bob, result.User.ID).Error)
	require.NotNil(t, bob.ReferredByID)
	require.Equal(t, alice.ID, *bob.ReferredByID)

	var freshAlice models.User
	require.NoError(t, db.First(&freshAlice, alice.ID).Error)
	require.EqualValues(t, testReward, freshAlice.Coins)

	// Exactly one ledger row: +7 referral bonus for Alice, counterparty Bob.
	var records []models.CoinTransaction
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	require.Equal(t, alice.ID, records[0].UserID)
	require.EqualValues(t, testReward, records[0].Amount)
	require.Equal(t, models.TransactionReferralBonus, records[0].TransactionType)
	require.NotNil(t, records[0].RelatedUserID)
	require.Equal(t, bob.ID, *records[0].RelatedUserID)
}

func TestSelfReferralIsSilentlySkipped(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	// Force the edge: a user mid-registration who already holds their own
	// code and stashed it.
	_, err := svc.Start(ctx, identity(1, "Alice"), "")
	require.NoError(t, err)
	require.NoError(t, svc.SubmitContact(ctx, 1, "+998901234567"))

	var alice models.User
	require.NoError(t, db.Where("telegram_id = ?", 1).First(&alice).Error)
	code, err := referral.Assign(db, &alice)
	require.NoError(t, err)

	conv, err := svc.States().Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, conv)
	conv.ReferralCode = code
	require.NoError(t, svc.States().Set(ctx, 1, conv))

	result, err := svc.SubmitName(ctx, 1, "Alice")
	require.NoError(t, err)

	// Registration completes; no credit, no attribution.
	require.True(t, result.User.IsRegistered)
	require.Nil(t, result.Referrer)

	var fresh models.User
	require.NoError(t, db.First(&fresh, alice.ID).Error)
	require.EqualValues(t, 0, fresh.Coins)
	require.Nil(t, fresh.ReferredByID)

	var count int64
	require.NoError(t, db.Model(&models.CoinTransaction{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestUnknownCodeIsSilentlySkipped(t *testing.T) {
	svc, db := newTestService(t)

	result := register(t, svc, 1, "Bob", "NOPE0000")

	require.True(t, result.User.IsRegistered)
	require.Nil(t, result.Referrer)

	var fresh models.User
	require.NoError(t, db.First(&fresh, result.User.ID).Error)
	require.Nil(t, fresh.ReferredByID)

	var count int64
	require.NoError(t, db.Model(&models.CoinTransaction{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestAttributionFailureKeepsRegistration(t *testing.T) {
	svc, db := newTestService(t)

	alice := register(t, svc, 1, "Alice", "").User
	require.NotNil(t, alice.ReferralCode)

	// Break the ledger table so the attribution credit cannot commit.
	require.NoError(t, db.Migrator().DropTable(&models.CoinTransaction{}))

	result := register(t, svc, 2, "Bob", *alice.ReferralCode)

	// Registration stands; the failed attribution rolled back whole.
	require.True(t, result.User.IsRegistered)
	require.Nil(t, result.Referrer)

	var bob models.User
	require.NoError(t, db.First(&bob, result.User.ID).Error)
	require.True(t, bob.IsRegistered)
	require.Nil(t, bob.ReferredByID)

	var freshAlice models.User
	require.NoError(t, db.First(&freshAlice, alice.ID).Error)
	require.EqualValues(t, 0, freshAlice.Coins)
}

func TestAttributionIsOneTime(t *testing.T) {
	svc, db := newTestService(t)

	alice := register(t, svc, 1, "Alice", "").User
	carol := register(t, svc, 3, "Carol", "").User

	bob := register(t, svc, 2, "Bob", *alice.ReferralCode).User

	// A second attribution attempt against an already-referred user must not
	// overwrite the reference or credit anyone.
	referrer, balance := svc.attribute(bob, *carol.ReferralCode)
	require.Nil(t, referrer)
	require.EqualValues(t, 0, balance)

	var fresh models.User
	require.NoError(t, db.First(&fresh, bob.ID).Error)
	require.Equal(t, alice.ID, *fresh.ReferredByID)

	var count int64
	require.NoError(t, db.Model(&models.CoinTransaction{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
