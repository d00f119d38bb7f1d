package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testToken(t *testing.T, sub string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestLogin_StoresTokenAndMapsUser(t *testing.T) {
	token := testToken(t, "u1", time.Hour)

	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		var p authPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "alice@example.com", p.Email)

		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id": "u1", "email": "alice@example.com", "username": "alice", "role": "user", "token": token,
		}})
	})
	mux.HandleFunc("GET /user/getuserdata", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewSecureChatClient(srv.URL)
	u, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "alice", u.Username)

	_, err = c.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, gotAuth, "token must ride on subsequent requests")
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewSecureChatClient(srv.URL)
	_, err := c.Login(context.Background(), "a@b.c", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCheckSession_ExpiredTokenShortCircuits(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(srv.Close)

	c := NewSecureChatClient(srv.URL)
	c.accessToken = testToken(t, "u1", -time.Hour)

	_, err := c.CheckSession(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, calls, "expired token must not hit the network")
}

func TestCheckSession_NoToken(t *testing.T) {
	c := NewSecureChatClient("http://127.0.0.1:0")
	_, err := c.CheckSession(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestDirectory_MapsOnlineStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": "u2", "username": "bob", "onlineStatus": "online"},
			{"id": "u3", "email": "carol@example.com", "onlineStatus": "offline"},
			{"username": "ghost"}, // no id: dropped
		}})
	}))
	t.Cleanup(srv.Close)

	c := NewSecureChatClient(srv.URL)
	people, err := c.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, "bob", people[0].Name)
	assert.True(t, people[0].Online)
	assert.Equal(t, "carol@example.com", people[1].Name, "email fallback when username is empty")
	assert.False(t, people[1].Online)
}

func TestHistory_DropsMalformedEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u2", r.URL.Query().Get("user"))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": "m1", "senderId": "u2", "receiverId": "u1", "content": "hi", "timestamp": 1000},
			{"senderId": "u2", "receiverId": "u1", "content": "no id"},
			{"id": "m2", "senderId": "u1", "receiverId": "u2", "content": "hello", "timestamp": 2000},
		}})
	}))
	t.Cleanup(srv.Close)

	c := NewSecureChatClient(srv.URL)
	c.selfID = "u1"

	msgs, err := c.History(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// Both directions land on the same normalized conversation key.
	assert.Equal(t, msgs[0].ChannelID, msgs[1].ChannelID)
	assert.Equal(t, "dm:u1:u2", msgs[0].ChannelID)
}

func TestHistory_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewSecureChatClient(srv.URL)
	_, err := c.History(context.Background(), "u2")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenStream_RequiresSession(t *testing.T) {
	c := NewSecureChatClient("http://127.0.0.1:0")
	_, err := c.OpenStream(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestToWebsocketURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"http://example.com:8080", "ws://example.com:8080", true},
		{"https://example.com", "wss://example.com", true},
		{"ws://example.com", "ws://example.com", true},
		{"ftp://example.com", "", false},
	}
	for _, tt := range tests {
		got, err := toWebsocketURL(tt.in)
		if tt.ok {
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err)
		}
	}
}
