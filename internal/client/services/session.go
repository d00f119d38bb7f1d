package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/securechat/securechat-cli/internal/client/client"
	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/securechat/securechat-cli/internal/logging"
)

// State is the session gate state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
)

// Session is the auth gate: it owns the current user identity and drives the
// unauthenticated → loading → authenticated state machine. Entering
// authenticated scopes the wallet and chat state to the new user and acquires
// the realtime feed; every exit runs one teardown routine so no per-user
// state leaks into the next session.
type Session struct {
	api    client.Client
	wallet *Wallet
	chat   *Chat
	log    logging.Logger

	mu    sync.Mutex
	state State
	user  *models.User
}

func NewSession(api client.Client, wallet *Wallet, chat *Chat, log logging.Logger) *Session {
	return &Session{
		api:    api,
		wallet: wallet,
		chat:   chat,
		log:    log,
		state:  StateUnauthenticated,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the current user, or nil outside the authenticated state.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Restore checks for an existing server session and enters authenticated when
// one is present. On failure the gate returns to unauthenticated.
func (s *Session) Restore(ctx context.Context) error {
	s.setLoading()

	u, err := s.api.CheckSession(ctx)
	if err != nil {
		s.setUnauthenticated()
		return fmt.Errorf("session check: %w", err)
	}

	s.enterAuthenticated(ctx, u)
	return nil
}

// Login authenticates with the backend. A session already in progress is torn
// down first; login failure lands back in unauthenticated.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.logoutLocal()
	s.setLoading()

	u, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.setUnauthenticated()
		return nil, fmt.Errorf("login: %w", err)
	}

	s.enterAuthenticated(ctx, u)
	return u, nil
}

// Register creates an account and enters authenticated on success.
func (s *Session) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	s.logoutLocal()
	s.setLoading()

	u, err := s.api.Register(ctx, email, password, username)
	if err != nil {
		s.setUnauthenticated()
		return nil, fmt.Errorf("register: %w", err)
	}

	s.enterAuthenticated(ctx, u)
	return u, nil
}

// Logout invalidates the server session and tears down all session-scoped
// state. Teardown happens even when the server cannot be reached.
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		s.log.Warn(ctx, "server logout failed", "error", err)
	}
	s.logoutLocal()
	return err
}

func (s *Session) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoading
}

func (s *Session) setUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnauthenticated
	s.user = nil
}

// enterAuthenticated scopes wallet and chat state to the new user, acquires
// the realtime feed, and loads the user directory. Feed and directory
// failures degrade: the session is still authenticated, just without live
// updates or presence.
func (s *Session) enterAuthenticated(ctx context.Context, u *models.User) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = u
	s.mu.Unlock()

	s.wallet.Scope(u.ID)
	s.chat.SetUser(u)

	if err := s.chat.Connect(ctx); err != nil {
		s.log.Warn(ctx, "realtime feed unavailable", "error", err)
	}
	s.chat.LoadDirectory(ctx)

	s.log.Info(ctx, "session started", "user", u.ID, "name", u.DisplayName())
}

// logoutLocal is the single teardown routine for every exit from the
// authenticated state: stream released, store cleared, wallet reset.
func (s *Session) logoutLocal() {
	s.mu.Lock()
	wasAuthenticated := s.state == StateAuthenticated
	s.state = StateUnauthenticated
	s.user = nil
	s.mu.Unlock()

	if wasAuthenticated {
		s.chat.Clear()
		s.wallet.Reset()
	}
}
