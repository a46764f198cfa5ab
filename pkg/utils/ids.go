package utils

import "github.com/google/uuid"

var newV7 = uuid.NewV7

// NewID returns a time-ordered UUIDv7 so rows sort by creation in indexes.
// A random v4 is used if the v7 generator fails.
func NewID() uuid.UUID {
	if id, err := newV7(); err == nil {
		return id
	}
	return uuid.New()
}
