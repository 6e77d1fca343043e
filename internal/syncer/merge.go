package syncer

import (
	"sort"
	"time"

	"github.com/Praveen2412/pastekeeper/internal/classifier"
	"github.com/Praveen2412/pastekeeper/internal/history"
	"github.com/Praveen2412/pastekeeper/internal/remote"
)

// mergeItems combines local and server items into one collection. Server
// records are the base result set: for any id present on both sides the
// server copy wins. Local items absent from the server are kept and
// re-marked pending, since they are creations the backend has not
// acknowledged yet. The result is ordered newest-first.
func mergeItems(local, server []history.Item) []history.Item {
	serverIDs := make(map[string]bool, len(server))
	for _, it := range server {
		serverIDs[it.ID] = true
	}

	merged := append([]history.Item(nil), server...)
	for _, it := range local {
		if !serverIDs[it.ID] {
			it.SyncStatus = history.SyncStatusPending
			merged = append(merged, it)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged
}

// recordFromItem maps a local item onto the backend wire shape.
func recordFromItem(it history.Item, userID, deviceID string, now time.Time) remote.Record {
	itemDevice := it.DeviceID
	if itemDevice == "" {
		itemDevice = deviceID
	}
	return remote.Record{
		ID:          it.ID,
		Content:     it.Content,
		Type:        string(it.Type),
		Subcategory: it.Subcategory,
		Timestamp:   time.UnixMilli(it.Timestamp).UTC(),
		IsFavorite:  it.IsFavorite,
		CharCount:   it.CharCount,
		DeviceID:    itemDevice,
		UserID:      userID,
		CreatedAt:   time.UnixMilli(it.Timestamp).UTC(),
		UpdatedAt:   now,
	}
}

// itemFromRecord maps a backend record to the local item shape. Downloaded
// records are by definition in sync with the server.
func itemFromRecord(r remote.Record) history.Item {
	return history.Item{
		ID:          r.ID,
		Content:     r.Content,
		Type:        classifier.ContentType(r.Type),
		Subcategory: r.Subcategory,
		Timestamp:   r.Timestamp.UnixMilli(),
		IsFavorite:  r.IsFavorite,
		CharCount:   r.CharCount,
		SyncStatus:  history.SyncStatusSynced,
		DeviceID:    r.DeviceID,
	}
}
