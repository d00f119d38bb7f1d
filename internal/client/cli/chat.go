package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/securechat/securechat-cli/internal/filex"
	"github.com/shopspring/decimal"
)

// Channels prints the channel catalog.
func (a *App) Channels(ctx context.Context) error {
	for _, ch := range a.chat.Channels() {
		printlnFn("#" + ch.Name)
	}
	return nil
}

// People prints the user directory with live presence.
func (a *App) People(ctx context.Context) error {
	people := a.chat.People()
	if len(people) == 0 {
		printlnFn("Nobody here yet.")
		return nil
	}
	for _, p := range people {
		status := "offline"
		if p.Online {
			status = "online"
		}
		printlnFn(fmt.Sprintf("@%s (%s) [%s]", p.Name, p.ID, status))
	}
	return nil
}

// Open switches the current conversation: "#name" or a bare name opens a
// catalog channel, "@id" opens a direct conversation with that user. Direct
// conversations load their history on first open.
func (a *App) Open(ctx context.Context, target string) error {
	if target == "" {
		printlnFn("Usage: open <#channel|@user>")
		return nil
	}

	var channelParam, userParam string
	switch {
	case strings.HasPrefix(target, "@"):
		userParam = strings.TrimPrefix(target, "@")
	default:
		channelParam = strings.TrimPrefix(target, "#")
	}

	t, ok := a.chat.Open(ctx, channelParam, userParam)
	if !ok {
		printlnFn("No channels available.")
		return nil
	}

	a.current = t
	a.hasOpen = true
	printlnFn("Now in " + a.conversationLabel())
	return a.Read(ctx)
}

// Read prints the current conversation, oldest first, applying the
// visibility rules: locked messages the user has not purchased show only
// their price.
func (a *App) Read(ctx context.Context) error {
	if !a.hasOpen {
		printlnFn("Open a conversation first: open <#channel|@user>")
		return nil
	}

	user := a.session.User()
	if user == nil {
		return nil
	}

	msgs := a.chat.MessagesFor(a.current.Key)
	if len(msgs) == 0 {
		printlnFn("No messages yet.")
		return nil
	}
	for _, m := range msgs {
		printlnFn(a.renderMessage(m, user.ID))
	}
	return nil
}

func (a *App) renderMessage(m models.Message, userID string) string {
	ts := time.UnixMilli(m.Timestamp).Format("15:04")
	name := m.Author.Name
	if name == "" {
		name = m.Author.UID
	}

	v := models.Visibility(m, userID, a.wallet.IsUnlocked)
	if v.Locked {
		return fmt.Sprintf("[%s] %s %s: 🔒 locked ($%s), unlock %s", m.ID, ts, name, v.Price.StringFixed(2), m.ID)
	}

	body := v.Content
	if v.ImageData != "" {
		body = strings.TrimSpace(body + " [image]")
	}
	return fmt.Sprintf("[%s] %s %s: %s", m.ID, ts, name, body)
}

// Send posts a plain message to the current conversation.
func (a *App) Send(ctx context.Context, text string) error {
	return a.send(ctx, text, false, decimal.Zero, "")
}

// SendLocked posts a paid message: the first argument is the price, the rest
// is the content.
func (a *App) SendLocked(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: sendlocked <price> <text>")
		return nil
	}
	price, err := decimal.NewFromString(args[0])
	if err != nil || !price.IsPositive() {
		printlnFn("Price must be a positive number.")
		return nil
	}
	return a.send(ctx, strings.Join(args[1:], " "), true, price, "")
}

// SendImage posts a local image file as an attachment. An optional second
// argument prices it as a locked message.
func (a *App) SendImage(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: sendimage <path> [price]")
		return nil
	}

	locked := false
	price := decimal.Zero
	if len(args) > 1 {
		p, err := decimal.NewFromString(args[1])
		if err != nil || !p.IsPositive() {
			printlnFn("Price must be a positive number.")
			return nil
		}
		locked, price = true, p
	}

	imageData, err := filex.ImageDataURL(args[0])
	if err != nil {
		printlnFn("Not sent:", err.Error())
		return nil
	}
	return a.send(ctx, "", locked, price, imageData)
}

func (a *App) send(ctx context.Context, text string, locked bool, price decimal.Decimal, imageData string) error {
	if !a.hasOpen {
		printlnFn("Open a conversation first: open <#channel|@user>")
		return nil
	}

	m, err := a.chat.SendMessage(ctx, a.current, text, locked, price, imageData)
	if err != nil {
		printlnFn("Not sent:", err.Error())
		return err
	}
	if m == nil {
		return nil
	}
	printlnFn("Sent.")
	return nil
}

func (a *App) conversationLabel() string {
	if a.current.PeerID != "" {
		return "@" + a.current.Name
	}
	return "#" + a.current.Name
}
