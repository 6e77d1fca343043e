package util

import (
	"strconv"
	"sync"
	"time"
)

var (
	idMu   sync.Mutex
	lastID int64
)

// NewID returns a unique, time-derived identifier. IDs are the current
// Unix-millisecond timestamp rendered as a decimal string; concurrent or
// same-millisecond calls are bumped forward so IDs stay strictly monotonic.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()

	now := time.Now().UnixMilli()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return strconv.FormatInt(now, 10)
}
