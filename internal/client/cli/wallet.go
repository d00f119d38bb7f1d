package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/shopspring/decimal"
)

// Balance prints the wallet balance.
func (a *App) Balance(ctx context.Context) error {
	printlnFn("Balance: $" + a.wallet.Balance().StringFixed(2))
	return nil
}

// Deposit adds funds to the wallet.
func (a *App) Deposit(ctx context.Context, amountArg string) error {
	amount, err := decimal.NewFromString(amountArg)
	if err != nil {
		printlnFn("Usage: deposit <amount>")
		return nil
	}

	if !a.wallet.AddFunds(amount) {
		printlnFn("Amount must be positive.")
		return nil
	}
	printlnFn(fmt.Sprintf("$%s added to your wallet. Balance: $%s",
		amount.StringFixed(2), a.wallet.Balance().StringFixed(2)))
	return nil
}

// History prints the transaction history, newest first.
func (a *App) History(ctx context.Context) error {
	txns := a.wallet.Transactions()
	if len(txns) == 0 {
		printlnFn("No transactions yet.")
		return nil
	}
	for _, tx := range txns {
		ts := time.UnixMilli(tx.Timestamp).Format("2006-01-02 15:04")
		printlnFn(fmt.Sprintf("%s  %-8s  %8s  %s", ts, tx.Type, "$"+tx.Amount.StringFixed(2), tx.Description))
	}
	return nil
}

// Unlock purchases access to a locked message after an interactive
// confirmation showing the price and the current balance. Insufficient funds
// fail locally; nothing is charged.
func (a *App) Unlock(ctx context.Context, messageID string) error {
	if messageID == "" {
		printlnFn("Usage: unlock <message-id>")
		return nil
	}

	user := a.session.User()
	if user == nil {
		return nil
	}

	m, ok := a.chat.Get(messageID)
	if !ok {
		printlnFn("No such message.")
		return nil
	}
	if v := models.Visibility(m, user.ID, a.wallet.IsUnlocked); !v.Locked {
		printlnFn("Already unlocked.")
		return nil
	}

	prompt := fmt.Sprintf("Unlock this message for $%s? Your balance is $%s. (y/n)",
		m.Price.StringFixed(2), a.wallet.Balance().StringFixed(2))
	answer, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled.")
		return nil
	}

	if !a.wallet.Unlock(m.ID, m.Price) {
		printlnFn("Insufficient funds. Please add more funds to your wallet.")
		return nil
	}

	printlnFn("Message unlocked! You can now view the message.")
	if got, ok := a.chat.Get(m.ID); ok {
		printlnFn(a.renderMessage(got, user.ID))
	}
	return nil
}
