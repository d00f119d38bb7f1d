package services

import (
	"context"
	"sync"

	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/securechat/securechat-cli/internal/logging"
	"github.com/shopspring/decimal"
)

// unlockStore is the slice of the message store the wallet needs: recording
// and querying per-message unlock state.
type unlockStore interface {
	MarkUnlocked(messageID, userID string) bool
	IsUnlockedBy(messageID, userID string) bool
}

// Wallet owns the session-scoped balance, the transaction history, and the
// unlock registry. The balance is mutated only by AddFunds and Unlock, and at
// any point equals the sum of all recorded transaction amounts.
//
// The unlock registry is advisory: it does not survive a restart, so a
// message whose UnlockedBy already contains the current user is treated as
// unlocked even when the registry was never populated.
type Wallet struct {
	mu       sync.Mutex
	store    unlockStore
	log      logging.Logger
	userID   string
	balance  decimal.Decimal
	txns     []models.Transaction // newest first
	unlocked map[string]struct{}
}

func NewWallet(store unlockStore, log logging.Logger) *Wallet {
	return &Wallet{
		store:    store,
		log:      log,
		balance:  decimal.Zero,
		unlocked: map[string]struct{}{},
	}
}

// Scope binds the wallet to a freshly authenticated user. Balance, history,
// and registry all start empty; nothing carries over from a previous session.
func (w *Wallet) Scope(userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.userID = userID
	w.balance = decimal.Zero
	w.txns = nil
	w.unlocked = map[string]struct{}{}
}

// Reset tears the wallet down on session exit.
func (w *Wallet) Reset() {
	w.Scope("")
}

func (w *Wallet) Balance() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Transactions returns the history, newest first.
func (w *Wallet) Transactions() []models.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Transaction, len(w.txns))
	copy(out, w.txns)
	return out
}

// AddFunds increases the balance and records a deposit transaction. Amounts
// that are not strictly positive are ignored: no mutation, no transaction.
// Returns whether the deposit was applied.
func (w *Wallet) AddFunds(amount decimal.Decimal) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.userID == "" || !amount.IsPositive() {
		return false
	}

	w.balance = w.balance.Add(amount)
	w.txns = append([]models.Transaction{models.NewDeposit(amount, "Manual deposit")}, w.txns...)

	w.log.Info(context.Background(), "funds added", "amount", amount.String(), "balance", w.balance.String())
	return true
}

// Unlock purchases access to a locked message. It fails without mutation when
// no user is authenticated or the balance does not cover the price. A message
// the user already unlocked (locally or per server state) succeeds immediately
// without charging again.
//
// On a real purchase, all four effects happen together under the lock:
// balance decremented, registry updated, the message's UnlockedBy extended,
// and a purchase transaction recorded.
func (w *Wallet) Unlock(messageID string, price decimal.Decimal) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.userID == "" {
		return false
	}

	if _, ok := w.unlocked[messageID]; ok {
		return true
	}
	if w.store.IsUnlockedBy(messageID, w.userID) {
		w.unlocked[messageID] = struct{}{}
		return true
	}

	if w.balance.LessThan(price) {
		w.log.Warn(context.Background(), "unlock rejected",
			"message", messageID, "price", price.String(), "balance", w.balance.String())
		return false
	}

	w.balance = w.balance.Sub(price)
	w.unlocked[messageID] = struct{}{}
	w.store.MarkUnlocked(messageID, w.userID)
	w.txns = append([]models.Transaction{models.NewPurchase(price, "Unlocked a message")}, w.txns...)

	w.log.Info(context.Background(), "message unlocked",
		"message", messageID, "price", price.String(), "balance", w.balance.String())
	return true
}

// IsUnlocked reports whether the current user has access to the message,
// consulting the local registry first and server-confirmed state second.
func (w *Wallet) IsUnlocked(messageID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.userID == "" {
		return false
	}
	if _, ok := w.unlocked[messageID]; ok {
		return true
	}
	return w.store.IsUnlockedBy(messageID, w.userID)
}
