// Package models defines the client-side data model: users, channels,
// messages, and wallet transactions.
package models

// Role classifies an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the authenticated account identity. Exactly one User is current at
// a time; all wallet and unlock state is scoped to it.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// DisplayName returns the best human-readable name for the user.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Person is a user-directory entry: another account that can be messaged,
// with its last known presence.
type Person struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
}
