package config

import "github.com/spf13/viper"

// Version is set at build time via -ldflags.
var Version = "dev"

// Config holds all runtime configuration for quizhost.
type Config struct {
	Port int
}

// Load reads configuration from viper, which merges flag values, env vars,
// and defaults (set up by the cobra command in cmd/quizhost).
func Load() Config {
	return Config{
		Port: viper.GetInt("port"),
	}
}
