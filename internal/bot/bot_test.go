package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testToken = "1234567890:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// TestUsernameConcurrentFetch hammers the cold username cache from many
// goroutines: all callers must see the same value and the API must be hit
// exactly once.
func TestUsernameConcurrentFetch(t *testing.T) {
	var getMeCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getMe") {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&getMeCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"KiberCoin","username":"kibercoin_test_bot"}}`))
	}))
	defer srv.Close()

	tgBot, err := telego.NewBot(testToken, telego.WithAPIServer(srv.URL))
	require.NoError(t, err)

	b := &Bot{Instance: tgBot, Log: zap.NewNop()}

	const callers = 8
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- b.Username(context.Background())
		}()
	}
	wg.Wait()
	close(results)

	for name := range results {
		require.Equal(t, "kibercoin_test_bot", name)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&getMeCalls))

	require.Equal(t,
		"https://t.me/kibercoin_test_bot?start=ABC12345",
		b.referralLink(context.Background(), "ABC12345"))
}

func TestCommandArgs(t *testing.T) {
	require.Equal(t, "ABC12345", commandArgs("/start ABC12345"))
	require.Equal(t, "", commandArgs("/start"))
	require.Equal(t, "a b", commandArgs("/start a b"))
}
