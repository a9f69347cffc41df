package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/apetrovs/databoard/internal/flagx"
	"github.com/apetrovs/databoard/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. Interval
// fields use timex.Duration, which accepts both string values such as
// "4h" and integer nanoseconds. After unmarshalling, its fields are
// copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr               string         `json:"endpoint_addr"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	TokenValidityDuration      timex.Duration `json:"token_validity_duration"`
	RememberMeValidityDuration timex.Duration `json:"remember_me_validity_duration"`
	BcryptCost                 int            `json:"bcrypt_cost"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When the flag is absent, no
// file is loaded. An unreadable or invalid file panics; config must be
// right at startup or not at all.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.RememberMeValidityDuration = time.Duration(c.RememberMeValidityDuration.Duration)
	config.BcryptCost = c.BcryptCost
}
