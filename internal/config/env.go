package config

import (
	"os"
	"strconv"
)

// EnvOrDefault returns the value of the environment variable if set, otherwise the fallback.
// Used for CLI flag defaults.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvBoolOrDefault returns the bool value of the environment variable if set and valid, otherwise the fallback.
func EnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
