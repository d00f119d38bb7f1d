package client

import (
	"context"

	"github.com/securechat/securechat-cli/internal/client/models"
)

// Client is the backend API surface used by the services layer.
//
// Contract:
//   - CheckSession: return the current user for a still-valid session,
//     ErrUnauthorized otherwise.
//   - Login/Register: authenticate or create an account; on success the
//     client holds the session token for subsequent calls.
//   - Logout: invalidate the session server-side and drop the token.
//   - Directory: list all users with their online status.
//   - History: ordered direct-message history with the given peer.
//   - OpenStream: acquire the realtime feed for the authenticated session.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	Close() error
	Register(ctx context.Context, email, password, username string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	CheckSession(ctx context.Context) (*models.User, error)
	Directory(ctx context.Context) ([]models.Person, error)
	History(ctx context.Context, peerID string) ([]models.Message, error)
	OpenStream(ctx context.Context) (Stream, error)
}

// Event is a single realtime-feed item. Exactly one of the fields is set:
// Presence for an online-users snapshot, Message for an incoming chat message.
type Event struct {
	Presence []models.Person
	Message  *models.Message
}

// Stream is the realtime feed: one per authenticated session, acquired on
// login and released on logout or user change.
//
// Events is closed when the stream ends, for any reason. Send pushes a direct
// message to the peer identified by the message's conversation.
type Stream interface {
	Events() <-chan Event
	Send(ctx context.Context, m models.Message, receiverID string) error
	Close() error
}
