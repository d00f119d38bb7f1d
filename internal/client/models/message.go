package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Author identifies the sender of a message.
type Author struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Message is the central chat entity. ChannelID is either a catalog channel
// id or a direct-conversation key (see DirectKey). Price is economically
// meaningful only while IsLocked is true. UnlockedBy grows monotonically and
// never shrinks.
//
// ClientTag is a client-generated idempotency token attached to optimistic
// sends and echoed back by the server, so an optimistic entry can be merged
// with its server-confirmed counterpart even when the final id differs.
type Message struct {
	ID         string          `json:"id"`
	ChannelID  string          `json:"channelId"`
	Author     Author          `json:"author"`
	Content    string          `json:"content"`
	Timestamp  int64           `json:"timestamp"`
	IsLocked   bool            `json:"isLocked"`
	Price      decimal.Decimal `json:"price"`
	ImageData  string          `json:"imageData,omitempty"`
	UnlockedBy []string        `json:"unlockedBy"`
	ClientTag  string          `json:"clientTag,omitempty"`
}

// IsUnlockedBy reports whether the given user has purchased access to the
// message according to server-confirmed state.
func (m Message) IsUnlockedBy(uid string) bool {
	for _, id := range m.UnlockedBy {
		if id == uid {
			return true
		}
	}
	return false
}

// DirectKey computes the canonical conversation key for a direct conversation
// between two users. The key is order-insensitive so both participants compute
// the same value.
func DirectKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return "dm:" + a + ":" + b
}

// View is what a requesting user is allowed to see of a message: either the
// full content, or a locked placeholder that exposes only the price.
type View struct {
	Locked    bool
	Content   string
	ImageData string
	Price     decimal.Decimal
}

// Visibility resolves what requester sees of m.
//
// An unlocked message is visible to everyone. A locked message is visible to
// its author unconditionally, and to any other user iff they appear in
// UnlockedBy or the supplied local-registry predicate reports them unlocked.
// extraUnlocked may be nil.
func Visibility(m Message, requesterID string, extraUnlocked func(messageID string) bool) View {
	if !m.IsLocked {
		return View{Content: m.Content, ImageData: m.ImageData, Price: m.Price}
	}
	if requesterID != "" && requesterID == m.Author.UID {
		return View{Content: m.Content, ImageData: m.ImageData, Price: m.Price}
	}
	if requesterID != "" && m.IsUnlockedBy(requesterID) {
		return View{Content: m.Content, ImageData: m.ImageData, Price: m.Price}
	}
	if extraUnlocked != nil && extraUnlocked(m.ID) {
		return View{Content: m.Content, ImageData: m.ImageData, Price: m.Price}
	}
	return View{Locked: true, Price: m.Price}
}
