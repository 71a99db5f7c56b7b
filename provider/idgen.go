package provider

import "github.com/google/uuid"

// IDGenerator mints server-side resource ids. spec.md §4.6 requires a
// literal UUID v4 when no client id is supplied.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the default IDGenerator, producing random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
