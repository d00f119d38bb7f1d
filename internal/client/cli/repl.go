package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Channels(ctx context.Context) error
	People(ctx context.Context) error
	Open(ctx context.Context, target string) error
	Read(ctx context.Context) error
	Send(ctx context.Context, text string) error
	SendLocked(ctx context.Context, args []string) error
	SendImage(ctx context.Context, args []string) error
	Unlock(ctx context.Context, messageID string) error
	Deposit(ctx context.Context, amount string) error
	Balance(ctx context.Context) error
	History(ctx context.Context) error
}

// runREPL starts a read-eval-print loop for the SecureChat CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - login          authenticate
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - channels       list catalog channels
//	  - people         list users with presence
//	  - open <target>  open #channel or @user
//	  - read | r       show the current conversation
//	  - send <text>    post a message
//	  - sendlocked <price> <text>  post a paid message
//	  - sendimage <path> [price]   post an image attachment
//	  - unlock <id>    purchase access to a locked message
//	  - deposit <amt>  add funds
//	  - balance        show wallet balance
//	  - history        show transactions, newest first
//	  - logout         end the session
//	  - exit | quit    leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own failures. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sc %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: channels, people, open, (r)ead, send, sendlocked, sendimage, unlock, deposit, balance, history, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "channels":
			_ = a.Channels(ctx)

		case "people":
			_ = a.People(ctx)

		case "open":
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			_ = a.Open(ctx, target)

		case "r", "read":
			_ = a.Read(ctx)

		case "send":
			_ = a.Send(ctx, strings.Join(args, " "))

		case "sendlocked":
			_ = a.SendLocked(ctx, args)

		case "sendimage":
			_ = a.SendImage(ctx, args)

		case "unlock":
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			_ = a.Unlock(ctx, id)

		case "deposit":
			amount := ""
			if len(args) > 0 {
				amount = args[0]
			}
			_ = a.Deposit(ctx, amount)

		case "balance":
			_ = a.Balance(ctx)

		case "history":
			_ = a.History(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
