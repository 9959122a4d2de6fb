// Package cache defines the durable metadata cache contract used by the IGDB
// resolver, keyed by (numeric IGDB id, endpoint). Payloads are stored as
// opaque serialized records so fields unknown to this build survive a
// round-trip.
package cache

import "context"

// Entry is one (id, payload) pair written under an endpoint.
type Entry struct {
	ID      int64
	Payload []byte
}

// Store persists fetched IGDB records. Implementations must be safe for
// concurrent use. A missing id is never an error: Get reports presence with
// its second result and GetMany simply omits absent ids.
type Store interface {
	Get(ctx context.Context, endpoint string, id int64) ([]byte, bool, error)
	GetMany(ctx context.Context, endpoint string, ids []int64) (map[int64][]byte, error)
	Put(ctx context.Context, endpoint string, id int64, payload []byte) error
	// PutMany stores all entries as a single unit; on failure nothing from
	// the batch is guaranteed persisted.
	PutMany(ctx context.Context, endpoint string, entries []Entry) error
}

// Noop is a Store that never hits and discards writes. Useful when debugging
// the remote API without touching the local database.
type Noop struct{}

func (Noop) Get(ctx context.Context, endpoint string, id int64) ([]byte, bool, error) {
	return nil, false, nil
}

func (Noop) GetMany(ctx context.Context, endpoint string, ids []int64) (map[int64][]byte, error) {
	return map[int64][]byte{}, nil
}

func (Noop) Put(ctx context.Context, endpoint string, id int64, payload []byte) error {
	return nil
}

func (Noop) PutMany(ctx context.Context, endpoint string, entries []Entry) error {
	return nil
}
