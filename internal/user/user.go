// Package user resolves the identity that owns every record a session
// touches. Records are partitioned per user, so this value ends up in
// every transaction and every ownership check.
package user

import (
	"os"
	"os/user"
)

// CurrentUserID returns the identity for this session.
// It tries multiple methods with fallbacks:
// 1. TABLERO_USER environment variable - explicit override, useful for tests
// 2. user.Current() - most reliable, gets username from OS
// 3. USER environment variable - fallback for restricted environments
// 4. "unknown" - final fallback to ensure a non-empty value
func CurrentUserID() string {
	if id := os.Getenv("TABLERO_USER"); id != "" {
		return id
	}

	currentUser, err := user.Current()
	if err != nil {
		// Fallback to USER environment variable
		username := os.Getenv("USER")
		if username == "" {
			// Final fallback
			return "unknown"
		}
		return username
	}
	return currentUser.Username
}
