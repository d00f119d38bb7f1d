package models

// Channel is a named broadcast topic visible to all users. The catalog is
// static in this client; channels are not created by users.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
