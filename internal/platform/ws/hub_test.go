package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", hub.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage("language.changed", map[string]string{"lang": "en-US"})
	require.NoError(t, err)
	assert.Equal(t, "language.changed", msg.Type)
	assert.JSONEq(t, `{"lang":"en-US"}`, string(msg.Payload))

	msg, err = NewMessage("ping", nil)
	require.NoError(t, err)
	assert.Nil(t, msg.Payload)

	_, err = NewMessage("bad", make(chan int))
	assert.Error(t, err)
}

func TestHub_BroadcastReachesListener(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		mu   sync.Mutex
		got  []Message
		done = make(chan error, 1)
	)
	go func() {
		done <- Listen(ctx, url, func(m Message) {
			mu.Lock()
			got = append(got, m)
			mu.Unlock()
			cancel()
		})
	}()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	hub.Publish("language.changed", map[string]string{"lang": "en-US"})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("listener did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "language.changed", got[0].Type)
	assert.JSONEq(t, `{"lang":"en-US"}`, string(got[0].Payload))
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Listen(ctx, url, func(Message) {}) }()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastAfterStopDoesNotBlock(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	for i := 0; i < 32; i++ {
		hub.Publish("language.changed", nil)
	}
	assert.Zero(t, hub.ClientCount())
}

func TestListen_DialFailure(t *testing.T) {
	t.Parallel()

	err := Listen(context.Background(), "ws://127.0.0.1:1/ws", func(Message) {})
	assert.Error(t, err)
}
