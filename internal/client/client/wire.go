package client

import (
	"encoding/json"

	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/shopspring/decimal"
)

// envelope is the JSON body wrapper the backend uses on every response.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type wireUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	OnlineStatus string `json:"onlineStatus,omitempty"`
}

func (u wireUser) toUser() *models.User {
	role := models.Role(u.Role)
	if role != models.RoleAdmin {
		role = models.RoleUser
	}
	return &models.User{ID: u.ID, Email: u.Email, Username: u.Username, Role: role}
}

func (u wireUser) toPerson() models.Person {
	name := u.Username
	if name == "" {
		name = u.Email
	}
	return models.Person{ID: u.ID, Name: name, Online: u.OnlineStatus == "online"}
}

// wireMessage is the message shape on the wire, for both the history endpoint
// and the realtime stream.
type wireMessage struct {
	ID         string          `json:"id"`
	SenderID   string          `json:"senderId"`
	SenderName string          `json:"senderName,omitempty"`
	ReceiverID string          `json:"receiverId"`
	Content    string          `json:"content"`
	Timestamp  int64           `json:"timestamp"`
	IsLocked   bool            `json:"isLocked"`
	Price      decimal.Decimal `json:"price"`
	ImageData  string          `json:"imageData,omitempty"`
	UnlockedBy []string        `json:"unlockedBy,omitempty"`
	ClientTag  string          `json:"clientTag,omitempty"`
}

// toMessage translates a wire message into the store model. selfID is the
// current user: when either endpoint of the message is the current user the
// conversation is direct and keyed order-insensitively; otherwise the receiver
// is a broadcast channel id.
//
// A message without an id is malformed and rejected, so it can never corrupt
// the store.
func (w wireMessage) toMessage(selfID string) (models.Message, error) {
	if w.ID == "" {
		return models.Message{}, ErrBadPayload
	}

	channelID := w.ReceiverID
	if w.SenderID == selfID || w.ReceiverID == selfID {
		channelID = models.DirectKey(w.SenderID, w.ReceiverID)
	}

	price := w.Price
	if !w.IsLocked {
		price = decimal.Zero
	}

	return models.Message{
		ID:         w.ID,
		ChannelID:  channelID,
		Author:     models.Author{UID: w.SenderID, Name: w.SenderName},
		Content:    w.Content,
		Timestamp:  w.Timestamp,
		IsLocked:   w.IsLocked,
		Price:      price,
		ImageData:  w.ImageData,
		UnlockedBy: w.UnlockedBy,
		ClientTag:  w.ClientTag,
	}, nil
}

// toWire translates an outgoing direct message for the stream send.
func toWire(m models.Message, receiverID string) wireMessage {
	return wireMessage{
		ID:         m.ID,
		SenderID:   m.Author.UID,
		SenderName: m.Author.Name,
		ReceiverID: receiverID,
		Content:    m.Content,
		Timestamp:  m.Timestamp,
		IsLocked:   m.IsLocked,
		Price:      m.Price,
		ImageData:  m.ImageData,
		ClientTag:  m.ClientTag,
	}
}
