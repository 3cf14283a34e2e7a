package env

import "os"

// Get reads an environment variable, falling back when unset or empty. Used
// for settings needed before the typed config is loaded.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
