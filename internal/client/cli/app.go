package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/securechat/securechat-cli/internal/client/client"
	"github.com/securechat/securechat-cli/internal/client/config"
	"github.com/securechat/securechat-cli/internal/client/services"
	"github.com/securechat/securechat-cli/internal/logging"
)

// App holds the wired client: API transport, services, and the interactive
// state of the REPL (the currently open conversation).
type App struct {
	config  *config.Config
	session *services.Session
	wallet  *services.Wallet
	chat    *services.Chat

	current services.Target
	hasOpen bool

	reader *bufio.Reader
	log    logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	apiClient := client.NewSecureChatClient(c.ServerURL)

	chat := services.NewChat(apiClient, c.Channels, log)
	wallet := services.NewWallet(chat, log)
	session := services.NewSession(apiClient, wallet, chat, log)

	return &App{
		config:  c,
		session: session,
		wallet:  wallet,
		chat:    chat,
		reader:  bufio.NewReader(os.Stdin),
		log:     log,
	}, nil
}

// Run starts the REPL. It first tries to restore an existing session; when
// none is available the user is prompted to log in or register.
func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == services.StateAuthenticated
}
