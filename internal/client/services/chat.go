package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/securechat/securechat-cli/internal/client/client"
	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/securechat/securechat-cli/internal/common"
	"github.com/securechat/securechat-cli/internal/logging"
	"github.com/shopspring/decimal"
)

// Target is a resolved navigation target: a catalog channel or a direct
// conversation with a peer.
type Target struct {
	// Key is the canonical conversation key messages are filed under.
	Key string
	// PeerID is set when the target is a direct conversation.
	PeerID string
	// Name is the display name of the channel or peer.
	Name string
}

// Chat owns the message store, the user directory, the conversation resolver,
// and the realtime feed lifecycle.
//
// The store keeps messages in insertion order; conversation-level timestamp
// ordering is applied at read time. Everything here is session-scoped: Clear
// wipes the store and bumps the epoch so completions of in-flight loads and
// stale stream consumers mutate nothing.
type Chat struct {
	api      client.Client
	channels []models.Channel
	log      logging.Logger

	mu       sync.Mutex
	user     *models.User
	epoch    int64
	msgs     []models.Message
	index    map[string]int // message id -> position in msgs
	tagIndex map[string]int // client tag -> position in msgs
	people   []models.Person
	loaded   map[string]struct{} // peer ids with history already fetched
	stream   client.Stream
}

func NewChat(api client.Client, channels []models.Channel, log logging.Logger) *Chat {
	return &Chat{
		api:      api,
		channels: channels,
		log:      log,
		index:    map[string]int{},
		tagIndex: map[string]int{},
		loaded:   map[string]struct{}{},
	}
}

// SetUser scopes the chat service to a freshly authenticated user.
func (c *Chat) SetUser(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

// Clear tears down all session-scoped chat state. The epoch bump invalidates
// every async completion still in flight for the previous session.
func (c *Chat) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.epoch++
	c.msgs = nil
	c.index = map[string]int{}
	c.tagIndex = map[string]int{}
	c.people = nil
	c.loaded = map[string]struct{}{}
	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
}

func (c *Chat) currentEpoch() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Channels returns the static channel catalog.
func (c *Chat) Channels() []models.Channel {
	out := make([]models.Channel, len(c.channels))
	copy(out, c.channels)
	return out
}

// People returns the user directory with last known presence, excluding the
// current user.
func (c *Chat) People() []models.Person {
	c.mu.Lock()
	defer c.mu.Unlock()

	self := ""
	if c.user != nil {
		self = c.user.ID
	}
	out := make([]models.Person, 0, len(c.people))
	for _, p := range c.people {
		if p.ID == self {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Resolve maps navigation parameters to a conversation target. A user
// parameter wins over a channel parameter. An unknown channel id falls back
// to the first catalog channel; only an empty catalog resolves to nothing.
func (c *Chat) Resolve(channelParam, userParam string) (Target, bool) {
	if userParam != "" {
		c.mu.Lock()
		self := ""
		if c.user != nil {
			self = c.user.ID
		}
		name := userParam
		for _, p := range c.people {
			if p.ID == userParam {
				name = p.Name
				break
			}
		}
		c.mu.Unlock()
		return Target{Key: models.DirectKey(self, userParam), PeerID: userParam, Name: name}, true
	}

	if len(c.channels) == 0 {
		return Target{}, false
	}
	for _, ch := range c.channels {
		if ch.ID == channelParam {
			return Target{Key: ch.ID, Name: ch.Name}, true
		}
	}
	first := c.channels[0]
	return Target{Key: first.ID, Name: first.Name}, true
}

// Open resolves a target and, for a direct conversation seen for the first
// time this session, loads its history. Repeated opens merge rather than
// duplicate, so the load is idempotent.
func (c *Chat) Open(ctx context.Context, channelParam, userParam string) (Target, bool) {
	t, ok := c.Resolve(channelParam, userParam)
	if !ok {
		return t, false
	}
	if t.PeerID != "" {
		c.LoadConversation(ctx, t.PeerID)
	}
	return t, true
}

// LoadConversation fetches direct-message history with the peer and merges it
// into the store. A fetch failure degrades to an empty merge. A completion
// that arrives after the session changed is discarded.
func (c *Chat) LoadConversation(ctx context.Context, peerID string) {
	c.mu.Lock()
	if _, done := c.loaded[peerID]; done {
		c.mu.Unlock()
		return
	}
	epoch := c.epoch
	c.mu.Unlock()

	history, err := c.api.History(ctx, peerID)
	if err != nil {
		c.log.Warn(ctx, "history load failed", "peer", peerID, "error", err)
		return
	}

	if c.currentEpoch() != epoch {
		return
	}
	c.MergeIncoming(history)

	c.mu.Lock()
	if c.epoch == epoch {
		c.loaded[peerID] = struct{}{}
	}
	c.mu.Unlock()
}

// LoadDirectory fetches the user directory. Failure degrades to an empty
// list.
func (c *Chat) LoadDirectory(ctx context.Context) {
	epoch := c.currentEpoch()

	people, err := c.api.Directory(ctx)
	if err != nil {
		c.log.Warn(ctx, "directory load failed", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.people = people
}

// SendMessage constructs a message and inserts it optimistically, before any
// server acknowledgment. Direct messages are additionally pushed over the
// realtime stream; the optimistic entry is reconciled with the server echo by
// its client tag.
//
// Without an authenticated user this is a silent no-op. A message needs
// content or an image; a price on an unlocked message is discarded.
func (c *Chat) SendMessage(ctx context.Context, t Target, content string, locked bool, price decimal.Decimal, imageData string) (*models.Message, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, nil
	}
	if content == "" && imageData == "" {
		c.mu.Unlock()
		return nil, common.ErrEmptyMessage
	}

	if !locked {
		price = decimal.Zero
	}
	m := models.Message{
		ID:         uuid.NewString(),
		ChannelID:  t.Key,
		Author:     models.Author{UID: c.user.ID, Name: c.user.DisplayName()},
		Content:    content,
		Timestamp:  time.Now().UnixMilli(),
		IsLocked:   locked,
		Price:      price,
		ImageData:  imageData,
		UnlockedBy: []string{},
		ClientTag:  uuid.NewString(),
	}
	c.insertLocked(m)
	stream := c.stream
	c.mu.Unlock()

	if t.PeerID != "" && stream != nil {
		if err := stream.Send(ctx, m, t.PeerID); err != nil {
			// The optimistic entry stays; delivery is the transport's problem.
			c.log.Warn(ctx, "stream send failed", "message", m.ID, "error", err)
		}
	}
	return &m, nil
}

// MergeIncoming inserts server-delivered messages into the store.
//
// Dedup rules, in order: a record without an id is dropped; an id already
// present replaces that entry in place (UnlockedBy merged monotonically); a
// client tag already present reconciles the optimistic entry with its
// server-confirmed counterpart; anything else is appended. Unrelated entries
// are never reordered.
func (c *Chat) MergeIncoming(msgs []models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range msgs {
		if m.ID == "" {
			continue
		}

		if pos, ok := c.index[m.ID]; ok {
			c.replaceLocked(pos, m)
			continue
		}
		if m.ClientTag != "" {
			if pos, ok := c.tagIndex[m.ClientTag]; ok {
				c.replaceLocked(pos, m)
				continue
			}
		}
		c.insertLocked(m)
	}
}

// insertLocked appends a message and indexes it. Caller holds c.mu.
func (c *Chat) insertLocked(m models.Message) {
	c.msgs = append(c.msgs, m)
	pos := len(c.msgs) - 1
	c.index[m.ID] = pos
	if m.ClientTag != "" {
		c.tagIndex[m.ClientTag] = pos
	}
}

// replaceLocked overwrites the entry at pos, preserving unlock state
// monotonically: UnlockedBy never shrinks. Caller holds c.mu.
func (c *Chat) replaceLocked(pos int, m models.Message) {
	old := c.msgs[pos]

	for _, uid := range old.UnlockedBy {
		if !m.IsUnlockedBy(uid) {
			m.UnlockedBy = append(m.UnlockedBy, uid)
		}
	}

	delete(c.index, old.ID)
	if old.ClientTag != "" {
		delete(c.tagIndex, old.ClientTag)
	}
	c.msgs[pos] = m
	c.index[m.ID] = pos
	if m.ClientTag != "" {
		c.tagIndex[m.ClientTag] = pos
	}
}

// MessagesFor returns the conversation's messages ordered by timestamp
// ascending. Network delivery order is not trusted; the sort is re-applied on
// every read and is stable for equal timestamps.
func (c *Chat) MessagesFor(key string) []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Message, 0)
	for _, m := range c.msgs {
		if m.ChannelID == key {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Size returns the number of stored messages across all conversations.
func (c *Chat) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

// MarkUnlocked appends userID to the message's UnlockedBy set. Reports
// whether the message exists; the set never gains duplicates.
func (c *Chat) MarkUnlocked(messageID, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[messageID]
	if !ok {
		return false
	}
	if c.msgs[pos].IsUnlockedBy(userID) {
		return true
	}
	c.msgs[pos].UnlockedBy = append(c.msgs[pos].UnlockedBy, userID)
	return true
}

// IsUnlockedBy reports server-confirmed unlock state for the message.
func (c *Chat) IsUnlockedBy(messageID, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[messageID]
	if !ok {
		return false
	}
	return c.msgs[pos].IsUnlockedBy(userID)
}

// Get returns a copy of the stored message with the given id.
func (c *Chat) Get(messageID string) (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[messageID]
	if !ok {
		return models.Message{}, false
	}
	return c.msgs[pos], true
}

// Connect acquires the realtime feed for the current session and starts
// consuming it. One stream per session; a previous stream, if any, is
// released first.
func (c *Chat) Connect(ctx context.Context) error {
	stream, err := c.api.OpenStream(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.stream != nil {
		_ = c.stream.Close()
	}
	c.stream = stream
	epoch := c.epoch
	c.mu.Unlock()

	go c.consume(stream, epoch)
	return nil
}

// Disconnect releases the realtime feed.
func (c *Chat) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
}

// consume drains stream events into the store until the stream closes or the
// session it belongs to is gone.
func (c *Chat) consume(stream client.Stream, epoch int64) {
	for ev := range stream.Events() {
		if c.currentEpoch() != epoch {
			return
		}

		switch {
		case ev.Presence != nil:
			c.applyPresence(ev.Presence)
		case ev.Message != nil:
			c.MergeIncoming([]models.Message{*ev.Message})
		}
	}
}

// applyPresence folds an online-users snapshot into the directory: listed
// users are online, everyone else goes offline, and users not yet in the
// directory are added.
func (c *Chat) applyPresence(online []models.Person) {
	c.mu.Lock()
	defer c.mu.Unlock()

	onlineIDs := make(map[string]struct{}, len(online))
	for _, p := range online {
		onlineIDs[p.ID] = struct{}{}
	}

	known := make(map[string]struct{}, len(c.people))
	for i := range c.people {
		known[c.people[i].ID] = struct{}{}
		_, c.people[i].Online = onlineIDs[c.people[i].ID]
	}
	for _, p := range online {
		if _, ok := known[p.ID]; !ok {
			c.people = append(c.people, p)
		}
	}
}
