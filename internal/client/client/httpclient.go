package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/securechat/securechat-cli/internal/common"
)

// HTTPClient implements Client against the SecureChat backend: JSON over HTTP
// for request/response calls and a websocket for the realtime feed. The
// session access token obtained on login is attached to every subsequent
// request.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	accessToken string
	selfID      string

	// now is a test seam for token expiry checks.
	now func() time.Time
}

func NewSecureChatClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// doJSON performs one request/response round trip. A transport-level failure
// maps to ErrUnavailable, a 401 to ErrUnauthorized, and an undecodable body
// to ErrBadPayload.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
	}
	return nil
}

type authPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

type authData struct {
	wireUser
	Token string `json:"token"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp struct {
		Data authData `json:"data"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/user/login", authPayload{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	c.accessToken = resp.Data.Token
	c.selfID = resp.Data.ID
	return resp.Data.toUser(), nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	var resp struct {
		Data authData `json:"data"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/user/register", authPayload{Email: email, Password: password, Username: username}, &resp)
	if err != nil {
		return nil, err
	}

	c.accessToken = resp.Data.Token
	c.selfID = resp.Data.ID
	return resp.Data.toUser(), nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/user/logout", nil, nil)
	// The token is dropped regardless: the session is over client-side even
	// if the server could not be told.
	c.accessToken = ""
	c.selfID = ""
	return err
}

func (c *HTTPClient) CheckSession(ctx context.Context) (*models.User, error) {
	if !tokenAlive(c.accessToken, c.now()) {
		return nil, ErrUnauthorized
	}

	var resp struct {
		Data wireUser `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/session", nil, &resp); err != nil {
		return nil, err
	}
	c.selfID = resp.Data.ID
	return resp.Data.toUser(), nil
}

func (c *HTTPClient) Directory(ctx context.Context) ([]models.Person, error) {
	var env envelope
	if err := c.doJSON(ctx, http.MethodGet, "/user/getuserdata", nil, &env); err != nil {
		return nil, err
	}

	var users []wireUser
	if err := json.Unmarshal(env.Data, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	people := make([]models.Person, 0, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		people = append(people, u.toPerson())
	}
	return people, nil
}

func (c *HTTPClient) History(ctx context.Context, peerID string) ([]models.Message, error) {
	var env envelope
	path := "/chat/history?user=" + url.QueryEscape(peerID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}

	var wires []wireMessage
	if err := json.Unmarshal(env.Data, &wires); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	msgs := make([]models.Message, 0, len(wires))
	for _, w := range wires {
		m, err := w.toMessage(c.selfID)
		if err != nil {
			// Malformed entries are dropped, not propagated.
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (c *HTTPClient) OpenStream(ctx context.Context) (Stream, error) {
	if c.selfID == "" {
		return nil, ErrUnauthorized
	}

	wsURL, err := toWebsocketURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if c.accessToken != "" {
		header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"/ws", header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return newWSStream(conn, c.selfID), nil
}

// toWebsocketURL rewrites an http(s) base URL to its ws(s) counterpart.
func toWebsocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}
