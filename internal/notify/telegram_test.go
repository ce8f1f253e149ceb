package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"wanwatch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestTelegram(t *testing.T, handler http.HandlerFunc) (*TelegramNotifier, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier(&config.TelegramConfig{
		BotToken: "123:abc",
		ChatID:   "-10042",
		APIBase:  srv.URL,
		Timeout:  2 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return n, &calls
}

func TestTelegramSendSuccess(t *testing.T) {
	n, calls := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "-10042", body["chat_id"])
		assert.Equal(t, "hello", body["text"])
		assert.Equal(t, false, body["disable_notification"])

		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	assert.True(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestTelegramSendFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"ok false", http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`},
		{"ok false with 200", http.StatusOK, `{"ok":false}`},
		{"missing ok", http.StatusOK, `{"result":{}}`},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`},
		{"empty", http.StatusOK, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, calls := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			assert.False(t, n.Send(context.Background(), "hello"))
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "no internal retry")
		})
	}
}

func TestTelegramSendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	n, err := NewTelegramNotifier(&config.TelegramConfig{
		BotToken: "123:abc",
		ChatID:   "1",
		APIBase:  base,
		Timeout:  time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, n.Send(context.Background(), "hello"))
}

func TestTelegramSendTimeout(t *testing.T) {
	release := make(chan struct{})
	n, _ := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	n.client.Timeout = 100 * time.Millisecond

	start := time.Now()
	assert.False(t, n.Send(context.Background(), "hello"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewTelegramNotifierRequiresCredentials(t *testing.T) {
	_, err := NewTelegramNotifier(&config.TelegramConfig{ChatID: "1"}, nil)
	assert.Error(t, err)
	_, err = NewTelegramNotifier(&config.TelegramConfig{BotToken: "x"}, nil)
	assert.Error(t, err)
}

func TestRedactURLError(t *testing.T) {
	n, err := NewTelegramNotifier(&config.TelegramConfig{
		BotToken: "secret-token",
		ChatID:   "1",
		APIBase:  "http://127.0.0.1:1",
		Timeout:  time.Second,
	}, nil)
	require.NoError(t, err)

	err = n.sendMessage(context.Background(), "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}
