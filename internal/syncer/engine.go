// Package syncer reconciles the local clipboard history with the remote
// record service: pending local changes go up, the remote collection comes
// down, and the merged result is persisted locally.
package syncer

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Praveen2412/pastekeeper/internal/history"
	"github.com/Praveen2412/pastekeeper/internal/identity"
	"github.com/Praveen2412/pastekeeper/internal/remote"
)

// RecordService is the remote collaborator the engine talks to.
type RecordService interface {
	Reachable(ctx context.Context) bool
	SetToken(token string)
	UpsertItems(ctx context.Context, records []remote.Record) error
	FetchItems(ctx context.Context, userID string) ([]remote.Record, error)
	DeleteItems(ctx context.Context, ids []string) error
	RegisterDevice(ctx context.Context, info remote.DeviceInfo) error
	LogSyncEvent(ctx context.Context, event remote.SyncEvent) error
}

// Options configures one sync attempt. All callbacks are optional.
type Options struct {
	ForceSync  bool
	OnProgress func(percent int, message string)
	OnComplete func(success bool, message string)
	OnError    func(err error)
}

func (o Options) progress(percent int, message string) {
	if o.OnProgress != nil {
		o.OnProgress(percent, message)
	}
}

func (o Options) syncType() string {
	if o.ForceSync {
		return "force"
	}
	return "normal"
}

// Engine runs the synchronization protocol against the record service.
type Engine struct {
	store    *history.Store
	service  RecordService
	identity identity.Provider
	deviceID string

	mu sync.Mutex // one sync attempt at a time
}

func NewEngine(store *history.Store, service RecordService, provider identity.Provider, deviceID string) *Engine {
	return &Engine{
		store:    store,
		service:  service,
		identity: provider,
		deviceID: deviceID,
	}
}

// Sync performs one full synchronization pass. It never panics or returns
// an error: every outcome is reported through the completion callbacks and
// the boolean result. Absence of a signed-in session is a successful no-op.
func (e *Engine) Sync(ctx context.Context, opts Options) (success bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	complete := func(ok bool, message string) bool {
		if ok {
			log.Printf("Sync: %s", message)
		} else {
			log.Printf("Sync failed: %s", message)
		}
		if opts.OnComplete != nil {
			opts.OnComplete(ok, message)
		}
		return ok
	}

	uploaded, received, err := e.run(ctx, opts)
	if err != nil {
		e.logEvent(ctx, remote.SyncEvent{
			ID:           uuid.NewString(),
			DeviceID:     e.deviceID,
			SyncType:     opts.syncType(),
			Platform:     runtime.GOOS,
			Success:      false,
			ErrorMessage: err.Error(),
		})
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return complete(false, fmt.Sprintf("Sync failed: %v", err))
	}

	if uploaded < 0 {
		// Sync was intentionally skipped; the message is already decided.
		return complete(true, skipMessages[-uploaded])
	}

	e.logEvent(ctx, remote.SyncEvent{
		ID:            uuid.NewString(),
		DeviceID:      e.deviceID,
		ItemsSynced:   uploaded,
		ItemsReceived: received,
		SyncType:      opts.syncType(),
		Platform:      runtime.GOOS,
		Success:       true,
	})

	return complete(true, fmt.Sprintf("Synced %d items. Received %d items.", uploaded, received))
}

// Negative "uploaded" values from run index into this table to signal a
// successful skip rather than a completed pass.
var skipMessages = []string{
	"",
	"Not signed in. Sync skipped.",
	"No clipboard items to sync.",
	"All items are already synced.",
	"No items on server. Local items marked synced.",
}

const (
	skipNotSignedIn = -1
	skipNoItems     = -2
	skipAllSynced   = -3
	skipEmptyServer = -4
)

func (e *Engine) run(ctx context.Context, opts Options) (uploaded, received int, err error) {
	session, err := e.identity.CurrentSession(ctx)
	if err != nil {
		// Treat an unreadable session like absence of one: sync is opt-in.
		log.Printf("Could not resolve session, skipping sync: %v", err)
		return skipNotSignedIn, 0, nil
	}
	if session == nil {
		return skipNotSignedIn, 0, nil
	}
	e.service.SetToken(session.AccessToken)

	if !e.service.Reachable(ctx) {
		return 0, 0, fmt.Errorf("no internet connection")
	}

	opts.progress(10, "Preparing to sync...")

	local := e.store.Snapshot()
	if len(local.Items) == 0 {
		return skipNoItems, 0, nil
	}

	var toUpload []history.Item
	for _, it := range local.Items {
		if opts.ForceSync || it.NeedsSync() {
			toUpload = append(toUpload, it)
		}
	}
	if len(toUpload) == 0 && !opts.ForceSync {
		return skipAllSynced, 0, nil
	}

	opts.progress(30, fmt.Sprintf("Syncing %d items...", len(toUpload)))

	records := make([]remote.Record, 0, len(toUpload))
	now := time.Now().UTC()
	for _, it := range toUpload {
		records = append(records, recordFromItem(it, session.UserID, e.deviceID, now))
	}
	if err := e.service.UpsertItems(ctx, records); err != nil {
		return 0, 0, fmt.Errorf("error syncing items: %w", err)
	}

	opts.progress(60, "Downloading latest data...")

	serverRecords, err := e.service.FetchItems(ctx, session.UserID)
	if err != nil {
		return 0, 0, fmt.Errorf("error fetching items: %w", err)
	}

	if len(serverRecords) == 0 {
		// Nothing on the server yet: the upload above is all there is.
		if err := e.store.MarkAllSynced(ctx); err != nil {
			return 0, 0, err
		}
		opts.progress(100, "Sync completed successfully")
		e.registerDevice(ctx)
		return skipEmptyServer, 0, nil
	}

	opts.progress(80, "Merging data...")

	serverItems := make([]history.Item, 0, len(serverRecords))
	for _, r := range serverRecords {
		serverItems = append(serverItems, itemFromRecord(r))
	}

	merged := mergeItems(local.Items, serverItems)
	if err := e.store.ReplaceItems(ctx, merged); err != nil {
		return 0, 0, err
	}

	e.registerDevice(ctx)

	opts.progress(100, "Sync completed successfully")
	return len(toUpload), len(serverRecords), nil
}

// registerDevice updates the device's last-sync timestamp. Best-effort: a
// failure here never fails the sync.
func (e *Engine) registerDevice(ctx context.Context) {
	info := remote.DeviceInfo{
		DeviceID: e.deviceID,
		Platform: runtime.GOOS,
		LastSync: time.Now().UTC(),
	}
	if err := e.service.RegisterDevice(ctx, info); err != nil {
		log.Printf("Failed to update device registration: %v", err)
	}
}

// logEvent records a sync-history audit entry. Best-effort.
func (e *Engine) logEvent(ctx context.Context, event remote.SyncEvent) {
	if err := e.service.LogSyncEvent(ctx, event); err != nil {
		log.Printf("Failed to log sync event: %v", err)
	}
}

// DeleteRemote removes the given item ids from the backend so locally
// deleted items do not resurrect on the next fetch. A no-op when not
// signed in.
func (e *Engine) DeleteRemote(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	session, err := e.identity.CurrentSession(ctx)
	if err != nil || session == nil {
		return nil
	}
	e.service.SetToken(session.AccessToken)
	return e.service.DeleteItems(ctx, ids)
}

// IsSyncNeeded reports whether the user is signed in and at least one local
// item is not yet acknowledged by the backend.
func (e *Engine) IsSyncNeeded(ctx context.Context) bool {
	session, err := e.identity.CurrentSession(ctx)
	if err != nil || session == nil {
		return false
	}
	for _, it := range e.store.Snapshot().Items {
		if it.NeedsSync() {
			return true
		}
	}
	return false
}

// Schedule runs silent background syncs every interval until the returned
// cancel function is called or the context ends. Unreachable networks are
// skipped quietly.
func (e *Engine) Schedule(ctx context.Context, interval time.Duration) func() {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !e.service.Reachable(ctx) {
					continue
				}
				e.Sync(ctx, Options{})
			}
		}
	}()

	return cancel
}
