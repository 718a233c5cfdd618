// Package storage persists the draw's participants, winners and settings
// on top of a plain string key-value store.
package storage

import "context"

// Record keys.
const (
	KeyParticipants = "participants"
	KeyWinners      = "winners"
	KeySettings     = "settings"
)

// KV is a string store keyed by name. Set overwrites a single key atomically;
// nothing spanning several keys is transactional.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
