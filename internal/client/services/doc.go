// Package services contains the application services of the SecureChat
// client: the session gate, the wallet ledger with its unlock registry, and
// the chat service (message store, conversation resolver, realtime feed
// lifecycle). All session-scoped state lives here; the cli package renders it
// and the client package talks to the backend.
package services
