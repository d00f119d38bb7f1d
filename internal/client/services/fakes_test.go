package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/securechat/securechat-cli/internal/client/client"
	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/securechat/securechat-cli/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---- fake stream ----

type sentMessage struct {
	Message  models.Message
	Receiver string
}

// fakeStream implements client.Stream for unit tests.
type fakeStream struct {
	mu     sync.Mutex
	events chan client.Event
	sent   []sentMessage
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan client.Event, 16)}
}

func (f *fakeStream) Events() <-chan client.Event { return f.events }

func (f *fakeStream) Send(ctx context.Context, m models.Message, receiverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Message: m, Receiver: receiverID})
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeStream) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeStream) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// ---- fake client ----

// fakeClient implements client.Client for unit tests of the services layer.
type fakeClient struct {
	mu sync.Mutex

	LoginUser *models.User
	LoginErr  error

	RegisterUser *models.User
	RegisterErr  error

	CheckUser *models.User
	CheckErr  error

	LogoutErr error

	DirectoryRet []models.Person
	DirectoryErr error

	HistoryRet   map[string][]models.Message
	HistoryErr   error
	historyCalls []string
	// HistoryGate, when set, is received from before History returns.
	HistoryGate chan struct{}

	Stream    *fakeStream
	StreamErr error
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	return f.LoginUser, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	return f.RegisterUser, f.RegisterErr
}

func (f *fakeClient) Logout(ctx context.Context) error { return f.LogoutErr }

func (f *fakeClient) CheckSession(ctx context.Context) (*models.User, error) {
	return f.CheckUser, f.CheckErr
}

func (f *fakeClient) Directory(ctx context.Context) ([]models.Person, error) {
	return f.DirectoryRet, f.DirectoryErr
}

func (f *fakeClient) History(ctx context.Context, peerID string) ([]models.Message, error) {
	f.mu.Lock()
	f.historyCalls = append(f.historyCalls, peerID)
	gate := f.HistoryGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	return f.HistoryRet[peerID], nil
}

func (f *fakeClient) HistoryCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.historyCalls))
	copy(out, f.historyCalls)
	return out
}

func (f *fakeClient) OpenStream(ctx context.Context) (client.Stream, error) {
	if f.StreamErr != nil {
		return nil, f.StreamErr
	}
	if f.Stream == nil {
		f.Stream = newFakeStream()
	}
	return f.Stream, nil
}

// ---- shared helpers ----

func testChannels() []models.Channel {
	return []models.Channel{
		{ID: "general", Name: "general"},
		{ID: "stock-tips", Name: "stock-tips"},
	}
}

func newTestChat(t *testing.T, api *fakeClient) *Chat {
	t.Helper()
	if api == nil {
		api = &fakeClient{}
	}
	return NewChat(api, testChannels(), testLogger())
}
