package referral

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kibercoin-bot/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CoinTransaction{}))
	return db
}

func TestGenerate(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)
	require.Len(t, code, codeLength)

	for _, r := range code {
		require.Contains(t, codeAlphabet, string(r))
	}

	// Two draws from a 36^8 space colliding would point at a broken source.
	other, err := Generate()
	require.NoError(t, err)
	require.NotEqual(t, code, other)
}

func TestAssignIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	user := &models.User{TelegramID: 1}
	require.NoError(t, db.Create(user).Error)

	first, err := Assign(db, user)
	require.NoError(t, err)
	require.Len(t, first, codeLength)

	second, err := Assign(db, user)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// And persisted, not just cached on the struct.
	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	require.NotNil(t, fresh.ReferralCode)
	require.Equal(t, first, *fresh.ReferralCode)
}

func TestAssignUniqueAcrossUsers(t *testing.T) {
	db := newTestDB(t)

	const users = 20
	codes := make(map[string]bool)
	for i := 0; i < users; i++ {
		user := &models.User{TelegramID: int64(i + 1)}
		require.NoError(t, db.Create(user).Error)

		code, err := Assign(db, user)
		require.NoError(t, err)
		require.False(t, codes[code], "code %s assigned twice", code)
		codes[code] = true
	}
}

func TestAssignConcurrentSameUser(t *testing.T) {
	db := newTestDB(t)

	user := &models.User{TelegramID: 1}
	require.NoError(t, db.Create(user).Error)

	const callers = 8
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each caller re-reads its own copy, as concurrent handlers would.
			var u models.User
			if err := db.First(&u, user.ID).Error; err != nil {
				results <- ""
				return
			}
			code, err := Assign(db, &u)
			if err != nil {
				results <- ""
				return
			}
			results <- code
		}()
	}
	wg.Wait()
	close(results)

	// All callers must converge on one code.
	var assigned string
	for code := range results {
		require.NotEmpty(t, code)
		if assigned == "" {
			assigned = code
		}
		require.Equal(t, assigned, code)
	}

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	require.NotNil(t, fresh.ReferralCode)
	require.Equal(t, assigned, *fresh.ReferralCode)
}

func TestResolve(t *testing.T) {
	db := newTestDB(t)

	user := &models.User{TelegramID: 1}
	require.NoError(t, db.Create(user).Error)
	code, err := Assign(db, user)
	require.NoError(t, err)

	t.Run("known code", func(t *testing.T) {
		found, err := Resolve(db, code)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Equal(t, user.ID, found.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		found, err := Resolve(db, "NOPE0000")
		require.NoError(t, err)
		require.Nil(t, found)
	})
}
