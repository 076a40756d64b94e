package env

import "os"

// Get returns the value of the given environment variable or a fallback,
// for reads that happen before the typed config is loaded (logger defaults).
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
