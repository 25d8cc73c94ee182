package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/internal/domain"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	ctx := WithCollector(context.Background(), c)

	Request{}.Notify(ctx, domain.Notice{Kind: domain.NoticeSuccess, Title: "a"})
	Multi{nil, Request{}}.Notify(ctx, domain.Notice{Kind: domain.NoticeError, Title: "b"})

	got := c.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
	assert.Empty(t, c.Drain())
}

func TestRequest_WithoutCollector(t *testing.T) {
	assert.NotPanics(t, func() {
		Request{}.Notify(context.Background(), domain.Notice{Title: "dropped"})
	})
}

func TestHub_BroadcastsToSessionSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("session"))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?session=s-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count("s-1") == 1 }, time.Second, 10*time.Millisecond)

	hub.For("other").Notify(context.Background(), domain.Notice{Title: "not for you"})
	hub.For("s-1").Notify(context.Background(), domain.Notice{Kind: domain.NoticeSuccess, Title: "Content generated"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notice", msg.Type)
	assert.Equal(t, "s-1", msg.SessionID)
	assert.Equal(t, "Content generated", msg.Notice.Title)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count("s-1") == 0 }, time.Second, 10*time.Millisecond)
}
