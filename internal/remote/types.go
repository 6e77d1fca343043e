package remote

import "time"

// Record is the wire shape of a clipboard item as stored by the backend.
// Field names and the snake_case casing are part of the protocol.
type Record struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	Subcategory string    `json:"subcategory,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsFavorite  bool      `json:"is_favorite"`
	CharCount   int       `json:"char_count"`
	DeviceID    string    `json:"device_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeviceInfo is the device registration payload, upserted by device id.
type DeviceInfo struct {
	DeviceID string    `json:"device_id"`
	Name     string    `json:"name,omitempty"`
	Platform string    `json:"platform,omitempty"`
	LastSync time.Time `json:"last_sync"`
}

// SyncEvent is one sync-history audit entry.
type SyncEvent struct {
	ID            string `json:"id"`
	DeviceID      string `json:"device_id"`
	ItemsSynced   int    `json:"items_synced"`
	ItemsReceived int    `json:"items_received"`
	SyncType      string `json:"sync_type"` // normal or force
	Platform      string `json:"platform"`
	Success       bool   `json:"success"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

type upsertRequest struct {
	Items []Record `json:"items"`
}

type fetchResponse struct {
	Items []Record `json:"items"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}
