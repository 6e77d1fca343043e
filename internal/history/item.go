package history

import (
	"unicode/utf8"

	"github.com/Praveen2412/pastekeeper/internal/classifier"
)

// SyncStatus tracks whether an item is known to match its remote copy.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusConflict is reserved: the current merge policy never assigns
	// it, but it must survive round-trips for forward compatibility.
	SyncStatusConflict SyncStatus = "conflict"
)

// Item is a single clipboard history entry. Content is the identity key:
// two items with equal Content are the same logical item.
type Item struct {
	ID          string                 `json:"id"`
	Content     string                 `json:"content"`
	Type        classifier.ContentType `json:"type"`
	Subcategory string                 `json:"subcategory,omitempty"`
	Timestamp   int64                  `json:"timestamp"` // unix millis, last seen/updated
	IsFavorite  bool                   `json:"isFavorite"`
	CharCount   int                    `json:"charCount"`
	SyncStatus  SyncStatus             `json:"syncStatus,omitempty"` // empty means not yet synced
	DeviceID    string                 `json:"deviceId,omitempty"`
}

// NeedsSync reports whether the item has local state not yet acknowledged
// by the remote backend. An absent status counts as pending.
func (it Item) NeedsSync() bool {
	return it.SyncStatus != SyncStatusSynced
}

// Aggregate is the whole clipboard history treated as one persisted unit.
// Items are held newest-first; the canonical order is re-derived by
// timestamp descending wherever consumed.
type Aggregate struct {
	Items       []Item   `json:"items"`
	Favorites   []string `json:"favorites"`
	LastUpdated int64    `json:"lastUpdated"`
	Version     string   `json:"version"`
}

const currentVersion = "1.0.0"

// DefaultAggregate returns the empty aggregate used on first run and as the
// fallback when persisted data is malformed.
func DefaultAggregate(now int64) Aggregate {
	return Aggregate{
		Items:       []Item{},
		Favorites:   []string{},
		LastUpdated: now,
		Version:     currentVersion,
	}
}

// NewCandidate builds an unreconciled item from just-observed clipboard
// content. The store assigns the final identity when the candidate is added.
func NewCandidate(content, deviceID string) Item {
	result := classifier.Classify(content)
	return Item{
		Content:     content,
		Type:        result.Type,
		Subcategory: result.Subcategory,
		IsFavorite:  false,
		CharCount:   utf8.RuneCountInString(content),
		DeviceID:    deviceID,
	}
}
