package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotenv loads a .env file into the process environment if one exists.
// A missing file is not an error; shell environment variables still apply.
func LoadDotenv() {
	_ = godotenv.Load()
}

// EnvString returns the named environment variable and whether it was set to
// a non-empty value.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses the named environment variable as an integer. The boolean
// reports whether the variable was set; a set-but-unparsable value is an
// error so typos fail loudly instead of silently using a default.
func EnvInt(key string) (int, bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s=%q: %w", key, raw, err)
	}
	return value, true, nil
}
