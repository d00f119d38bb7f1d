// Package cli provides the interactive SecureChat command-line client.
//
// It wires configuration, the backend API client, and the application
// services (session gate, wallet ledger, chat store) into a REPL. Typical
// flow: restore or prompt for a session, open a channel or a direct
// conversation, then read, send, and unlock messages.
//
// Key features:
//   - Login / Register / Logout
//   - Channel catalog and user directory with live presence
//   - Optimistic sends, locked (paid) messages with inline images
//   - Wallet: deposits, unlock purchases, transaction history
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
