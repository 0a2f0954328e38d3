package fsm

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	t.Run("missing conversation is nil", func(t *testing.T) {
		conv, err := storage.Get(ctx, 1)
		require.NoError(t, err)
		require.Nil(t, conv)
	})

	t.Run("set and get", func(t *testing.T) {
		in := &Conversation{State: StateAwaitingContact, ReferralCode: "ABC12345"}
		require.NoError(t, storage.Set(ctx, 1, in))

		out, err := storage.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, out)
		require.Equal(t, StateAwaitingContact, out.State)
		require.Equal(t, "ABC12345", out.ReferralCode)
	})

	t.Run("returned conversation is a copy", func(t *testing.T) {
		out, err := storage.Get(ctx, 1)
		require.NoError(t, err)
		out.State = StateAwaitingName

		again, err := storage.Get(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, StateAwaitingContact, again.State)
	})

	t.Run("identities are independent", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, 2, &Conversation{State: StateAwaitingName}))

		one, err := storage.Get(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, StateAwaitingContact, one.State)

		two, err := storage.Get(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, StateAwaitingName, two.State)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, storage.Clear(ctx, 1))

		conv, err := storage.Get(ctx, 1)
		require.NoError(t, err)
		require.Nil(t, conv)

		// Clearing an absent conversation is fine.
		require.NoError(t, storage.Clear(ctx, 1))
	})
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = storage.Set(ctx, id, &Conversation{State: StateAwaitingContact})
			_, _ = storage.Get(ctx, id)
			_ = storage.Clear(ctx, id)
		}(int64(i))
	}
	wg.Wait()
}
