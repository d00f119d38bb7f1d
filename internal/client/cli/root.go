package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/securechat/securechat-cli/internal/client/services"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.session.User(); u != nil {
		s = u.DisplayName()
	}
	if a.hasOpen {
		s = s + " " + a.conversationLabel()
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores an existing session if one is available, then hands control
// to the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to SecureChat (type 'help' for commands)")

	if err := a.session.Restore(ctx); err == nil {
		if u := a.session.User(); u != nil {
			printlnFn(fmt.Sprintf("Welcome back, %s.", u.DisplayName()))
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	if a.session.State() == services.StateAuthenticated {
		_ = a.session.Logout(ctx)
	}
}
