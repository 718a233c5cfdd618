package storage

import (
	"context"
	"fmt"
	"io"
)

// Open returns the KV for driver ("memory" or "sqlite") and a closer for it.
func Open(ctx context.Context, driver, path string) (KV, io.Closer, error) {
	switch driver {
	case "", "memory":
		return NewMemoryKV(), io.NopCloser(nil), nil
	case "sqlite":
		kv, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
