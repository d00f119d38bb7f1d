package config

import (
	"github.com/securechat/securechat-cli/internal/client/models"
)

// Config holds runtime settings for the SecureChat client.
//
// Fields:
//   - ServerURL: http(s) base URL of the backend API; the realtime feed is
//     dialed on the ws(s) counterpart of the same address.
//   - Channels: the static broadcast-channel catalog shown in the client.
type Config struct {
	ServerURL string
	Channels  []models.Channel
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:42007"
	c.Channels = []models.Channel{
		{ID: "general", Name: "general"},
		{ID: "payments", Name: "payments"},
		{ID: "stock-tips", Name: "stock-tips"},
		{ID: "crypto", Name: "crypto"},
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
