// Package client defines the backend API surface of the SecureChat client:
// the Client interface, its HTTP JSON implementation, and the websocket
// stream adapter that delivers presence updates and incoming chat messages.
package client
