// Package types holds identifier helpers shared across the engine.
package types

import "github.com/google/uuid"

// NewID generates a record identifier. IDs are minted on the client so an
// optimistically applied add already knows its identity before the store
// confirms the transaction.
func NewID() string {
	return uuid.NewString()
}

// IsID reports whether s looks like an identifier produced by NewID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
