package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startStreamServer runs a websocket endpoint that pushes the given raw
// frames to the client and captures everything the client sends.
func startStreamServer(t *testing.T, push []string, sent chan<- wireFrame) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, raw := range push {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
				return
			}
		}

		for {
			var f wireFrame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if sent != nil {
				sent <- f
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialStream(t *testing.T, srv *httptest.Server, selfID string) *wsStream {
	t.Helper()

	wsURL, err := toWebsocketURL(srv.URL)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	s := newWSStream(conn, selfID)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func collectEvents(t *testing.T, s *wsStream, n int) []Event {
	t.Helper()

	events := make([]Event, 0, n)
	timeout := time.After(3 * time.Second)
	for len(events) < n {
		select {
		case ev, ok := <-s.Events():
			require.True(t, ok, "stream closed before %d events arrived", n)
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for %d events, got %d", n, len(events))
		}
	}
	return events
}

func TestStream_DeliversPresenceAndMessages(t *testing.T) {
	frames := []string{
		`{"type":"onlineUsers","data":[{"id":"u2","username":"bob"},{"username":"no-id"}]}`,
		`{"type":"message","data":{"id":"m1","senderId":"u2","receiverId":"u1","content":"hi","timestamp":1000,"isLocked":true,"price":5}}`,
	}
	srv := startStreamServer(t, frames, nil)
	s := dialStream(t, srv, "u1")

	events := collectEvents(t, s, 2)

	require.Len(t, events[0].Presence, 1)
	assert.Equal(t, "u2", events[0].Presence[0].ID)
	assert.True(t, events[0].Presence[0].Online)

	m := events[1].Message
	require.NotNil(t, m)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, models.DirectKey("u1", "u2"), m.ChannelID)
	assert.True(t, m.IsLocked)
}

func TestStream_DropsMalformedFrames(t *testing.T) {
	frames := []string{
		`this is not json`,
		`{"type":"message","data":{"senderId":"u2","receiverId":"u1","content":"missing id"}}`,
		`{"type":"unknown","data":{}}`,
		`{"type":"message","data":{"id":"m9","senderId":"u2","receiverId":"u1","content":"survivor","timestamp":9}}`,
	}
	srv := startStreamServer(t, frames, nil)
	s := dialStream(t, srv, "u1")

	events := collectEvents(t, s, 1)
	require.NotNil(t, events[0].Message)
	assert.Equal(t, "m9", events[0].Message.ID)
}

func TestStream_SendWritesMessageFrame(t *testing.T) {
	sent := make(chan wireFrame, 1)
	srv := startStreamServer(t, nil, sent)
	s := dialStream(t, srv, "u1")

	msg := models.Message{
		ID:        "local-1",
		ChannelID: models.DirectKey("u1", "u2"),
		Author:    models.Author{UID: "u1", Name: "alice"},
		Content:   "hello",
		Timestamp: 42,
		ClientTag: "tag-1",
	}
	require.NoError(t, s.Send(context.Background(), msg, "u2"))

	select {
	case f := <-sent:
		assert.Equal(t, frameMessage, f.Type)
		var w wireMessage
		require.NoError(t, json.Unmarshal(f.Data, &w))
		assert.Equal(t, "u1", w.SenderID)
		assert.Equal(t, "u2", w.ReceiverID)
		assert.Equal(t, "hello", w.Content)
		assert.Equal(t, "tag-1", w.ClientTag)
	case <-time.After(3 * time.Second):
		t.Fatal("server never received the frame")
	}
}

func TestStream_SendAfterCloseFails(t *testing.T) {
	srv := startStreamServer(t, nil, nil)
	s := dialStream(t, srv, "u1")

	require.NoError(t, s.Close())

	err := s.Send(context.Background(), models.Message{ID: "x"}, "u2")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestStream_EventsClosedWhenServerGoesAway(t *testing.T) {
	srv := startStreamServer(t, nil, nil)
	s := dialStream(t, srv, "u1")

	srv.CloseClientConnections()

	select {
	case _, ok := <-s.Events():
		assert.False(t, ok, "events channel should be closed")
	case <-time.After(3 * time.Second):
		t.Fatal("events channel never closed")
	}
}
