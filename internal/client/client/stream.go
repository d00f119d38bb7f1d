package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/securechat/securechat-cli/internal/client/models"
)

const (
	// writeWait is the time allowed to write a frame to the peer.
	writeWait = 10 * time.Second
	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxFrameSize accommodates inline image payloads.
	maxFrameSize = 4 << 20
)

// wireFrame is the typed envelope of every stream frame.
type wireFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	frameOnlineUsers = "onlineUsers"
	frameMessage     = "message"
)

// wsStream adapts a websocket connection to the Stream interface. A read pump
// translates inbound frames into Events; a write pump serializes outbound
// sends and keepalive pings (the connection allows one concurrent writer).
type wsStream struct {
	conn   *websocket.Conn
	selfID string

	events chan Event
	out    chan wireMessage

	done      chan struct{}
	closeOnce sync.Once
}

func newWSStream(conn *websocket.Conn, selfID string) *wsStream {
	s := &wsStream{
		conn:   conn,
		selfID: selfID,
		events: make(chan Event, 16),
		out:    make(chan wireMessage, 16),
		done:   make(chan struct{}),
	}
	go s.readPump()
	go s.writePump()
	return s
}

func (s *wsStream) Events() <-chan Event {
	return s.events
}

func (s *wsStream) Send(ctx context.Context, m models.Message, receiverID string) error {
	select {
	case s.out <- toWire(m, receiverID):
		return nil
	case <-s.done:
		return ErrUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
	return nil
}

// readPump reads frames until the connection dies or the stream is closed.
// Malformed frames and frames of unknown type are dropped; they must never
// reach the store. Events is closed on exit so consumers can drain and stop.
func (s *wsStream) readPump() {
	defer func() {
		s.Close()
		close(s.events)
	}()

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var f wireFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}

		var ev Event
		switch f.Type {
		case frameOnlineUsers:
			var users []wireUser
			if err := json.Unmarshal(f.Data, &users); err != nil {
				continue
			}
			people := make([]models.Person, 0, len(users))
			for _, u := range users {
				if u.ID == "" {
					continue
				}
				p := u.toPerson()
				p.Online = true
				people = append(people, p)
			}
			ev = Event{Presence: people}

		case frameMessage:
			var w wireMessage
			if err := json.Unmarshal(f.Data, &w); err != nil {
				continue
			}
			m, err := w.toMessage(s.selfID)
			if err != nil {
				continue
			}
			ev = Event{Message: &m}

		default:
			continue
		}

		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

// writePump owns all writes to the connection: outbound messages and
// keepalive pings.
func (s *wsStream) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case w := <-s.out:
			data, err := json.Marshal(w)
			if err != nil {
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(wireFrame{Type: frameMessage, Data: data}); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}
