package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/gridiron/internal/store"
)

type slateMessage struct {
	Type    string           `json:"type"`
	Payload store.SlateEvent `json:"payload"`
}

func TestFilter_Matches(t *testing.T) {
	e := store.SlateEvent{Season: 2025, Week: 5}

	assert.True(t, Filter{}.Matches(e))
	assert.True(t, Filter{Season: 2025}.Matches(e))
	assert.True(t, Filter{Season: 2025, Week: 5}.Matches(e))
	assert.False(t, Filter{Season: 2024}.Matches(e))
	assert.False(t, Filter{Week: 6}.Matches(e))
}

func TestHub_PushesSubscribedSlates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(ctx, hub, nil))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageTypeSubscribe, Season: 2025, Week: 5}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageTypeHeartbeat}))

	var hb ServerMessage
	require.NoError(t, conn.ReadJSON(&hb))
	assert.Equal(t, MessageTypeHeartbeat, hb.Type)
	assert.Equal(t, 1, hub.ClientCount())

	require.NoError(t, hub.SlateUpdated(ctx, store.SlateEvent{Season: 2025, Week: 6, Games: 14}))
	require.NoError(t, hub.SlateUpdated(ctx, store.SlateEvent{Season: 2025, Week: 5, Games: 16, Source: store.SourceESPN}))

	var msg slateMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeSlateUpdated, msg.Type)
	assert.Equal(t, 5, msg.Payload.Week, "week 6 is filtered out")
	assert.Equal(t, 16, msg.Payload.Games)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "bogus"}))
	var errMsg ServerMessage
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, MessageTypeError, errMsg.Type)
}
