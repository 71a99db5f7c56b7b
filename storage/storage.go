package storage

import "context"

// Key identifies a single stored resource document by the triple
// (tenant_id, resource_type, resource_id).
type Key struct {
	TenantID     string
	ResourceType string
	ResourceID   string
}

// Prefix identifies a tenant/resource-type scope used for listing,
// attribute search, and counting.
type Prefix struct {
	TenantID     string
	ResourceType string
}

// Record is one stored document returned from List/FindByAttribute.
type Record struct {
	Key   Key
	Value []byte
}

// Storage is the key/value abstraction the resource provider delegates
// all persistence to. It never interprets the value beyond treating it
// as an opaque JSON document; attribute search is implemented by each
// backend against its own indexing strategy.
//
// Every method is a suspension point: callers may be scheduled
// cooperatively or in parallel, and implementations guard their shared
// state internally.
type Storage interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	// Put stores value and returns the stored bytes, allowing the
	// backend to normalize or timestamp them before acknowledging.
	Put(ctx context.Context, key Key, value []byte) ([]byte, error)
	Delete(ctx context.Context, key Key) (bool, error)
	Exists(ctx context.Context, key Key) (bool, error)
	List(ctx context.Context, prefix Prefix, offset, limit int) ([]Record, error)
	FindByAttribute(ctx context.Context, prefix Prefix, attribute, value string) ([]Record, error)
	Count(ctx context.Context, prefix Prefix) (int, error)
}
