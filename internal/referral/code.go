package referral

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"kibercoin-bot/internal/models"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8

	// At 36^8 codes a collision is astronomically unlikely; the cap is a
	// safety valve, not an expected path.
	maxAssignAttempts = 10
)

// ErrCodeSpaceExhausted means the assigner hit the retry cap without finding
// an unused code.
var ErrCodeSpaceExhausted = errors.New("referral code space exhausted")

// Generate produces an 8-character code over A-Z0-9. Codes double as share
// tokens in deep links, so they come from a cryptographically strong source
// rather than a guessable sequence.
func Generate() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Assign gives the user a referral code if they don't have one yet and returns
// it. Uniqueness is enforced by the unique index on users.referral_code: the
// write either lands or comes back as gorm.ErrDuplicatedKey, in which case a
// fresh candidate is tried. Calling Assign again returns the existing code.
func Assign(db *gorm.DB, user *models.User) (string, error) {
	if user.ReferralCode != nil && *user.ReferralCode != "" {
		return *user.ReferralCode, nil
	}

	for attempt := 0; attempt < maxAssignAttempts; attempt++ {
		code, err := Generate()
		if err != nil {
			return "", err
		}

		result := db.Model(&models.User{}).
			Where("id = ? AND referral_code IS NULL", user.ID).
			Update("referral_code", code)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				continue
			}
			return "", fmt.Errorf("failed to assign referral code: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			// A concurrent call won the assignment; use its code.
			var fresh models.User
			if err := db.First(&fresh, user.ID).Error; err != nil {
				return "", fmt.Errorf("failed to reload user %d: %w", user.ID, err)
			}
			if fresh.ReferralCode != nil && *fresh.ReferralCode != "" {
				user.ReferralCode = fresh.ReferralCode
				return *fresh.ReferralCode, nil
			}
			continue
		}

		user.ReferralCode = &code
		return code, nil
	}

	return "", ErrCodeSpaceExhausted
}

// Resolve looks up the owner of a referral code. A nil user with a nil error
// means the code does not exist.
func Resolve(db *gorm.DB, code string) (*models.User, error) {
	var user models.User
	err := db.Where("referral_code = ?", code).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve referral code: %w", err)
	}
	return &user, nil
}
