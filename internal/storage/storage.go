package storage

import (
	"context"
	"errors"
)

// Logical keys used by the application.
const (
	KeyClipboardData = "clipboard_data"
	KeyDeviceID      = "device_id"
	KeySession       = "session"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value collaborator. Values must round-trip
// exactly; the encoding of what goes into them is the caller's business.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
