package core

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvOrDefault returns the value of an environment variable or a default value.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// ParseIntEnv parses an environment variable as an integer.
// Returns the default value if the variable is not set, and an INVALID_VALUE
// ConfigError if it is set but not an integer.
func ParseIntEnv(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, ErrInvalidValue(key, value, "expected an integer")
	}
	return intValue, nil
}

// ParseBoolEnv parses an environment variable as a boolean.
// Accepts case-insensitive: "true", "1", "yes", "on" as true values.
// Accepts case-insensitive: "false", "0", "no", "off" as false values.
func ParseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return defaultValue, ErrInvalidValue(key, value, "expected true or false")
	}
}

// ParseDurationEnv parses an environment variable as a duration. Plain
// integers are seconds; Go duration strings such as "1m30s" are also accepted.
func ParseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, ErrInvalidValue(key, value, "expected seconds or a duration such as 30s")
	}
	return d, nil
}
