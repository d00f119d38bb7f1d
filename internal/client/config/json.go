package config

import (
	"encoding/json"
	"os"

	"github.com/securechat/securechat-cli/internal/client/models"
	"github.com/securechat/securechat-cli/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Parsed values
// are copied into the runtime Config.
type JsonConfig struct {
	ServerURL string           `json:"server_url"`
	Channels  []models.Channel `json:"channels"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flag; when neither is set, no JSON is
// loaded. Empty JSON fields leave the current value in place.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if len(jc.Channels) > 0 {
		cfg.Channels = jc.Channels
	}
}
