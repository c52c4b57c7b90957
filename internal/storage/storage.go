// Package storage defines the key/value persistence contract the drill
// core writes results, history and statistics through, with Postgres,
// SQLite and in-memory implementations.
package storage

import "errors"

// ErrNotFound is returned by Load when no value exists for the key.
// Callers usually fall back to a default instead of failing.
var ErrNotFound = errors.New("storage: key not found")

// KV is the narrow store contract. Values are opaque JSON blobs; the
// core never asks the store to understand them.
type KV interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Remove(key string) error
}

// Well-known key prefixes. Per-user keys append the user id.
const (
	KeyHistoryPrefix = "history:"
	KeyStatsPrefix   = "stats:"
	KeyLeaderboard   = "leaderboard"
)
