package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Praveen2412/pastekeeper/internal/storage"
	"github.com/Praveen2412/pastekeeper/internal/util"
)

// Store owns the bounded, ordered clipboard history. A single authoritative
// in-memory aggregate is guarded by a mutex; every mutation updates it first
// and then persists the whole aggregate through the durable store, so
// concurrent rapid-fire mutations always operate on the latest committed
// state and writes for the aggregate key are never issued concurrently.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	agg      Aggregate
	maxItems int
}

const defaultMaxItems = 100

// NewStore loads the persisted aggregate (falling back to the default
// aggregate when nothing is stored or the data is malformed) and returns a
// ready store.
func NewStore(ctx context.Context, kv storage.Store, maxItems int) (*Store, error) {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	s := &Store{kv: kv, maxItems: maxItems}

	raw, err := kv.Get(ctx, storage.KeyClipboardData)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.agg = DefaultAggregate(time.Now().UnixMilli())
	case err != nil:
		return nil, fmt.Errorf("failed to load clipboard data: %w", err)
	default:
		var agg Aggregate
		if err := json.Unmarshal([]byte(raw), &agg); err != nil {
			log.Printf("Malformed clipboard data, resetting to defaults: %v", err)
			agg = DefaultAggregate(time.Now().UnixMilli())
		}
		if agg.Items == nil {
			agg.Items = []Item{}
		}
		if agg.Favorites == nil {
			agg.Favorites = []string{}
		}
		if agg.Version == "" {
			agg.Version = currentVersion
		}
		s.agg = agg
	}

	return s, nil
}

// SetMaxItems adjusts the history bound. The new bound applies from the
// next mutation; it does not evict retroactively.
func (s *Store) SetMaxItems(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.maxItems = n
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current aggregate.
func (s *Store) Snapshot() Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() Aggregate {
	out := s.agg
	out.Items = append([]Item(nil), s.agg.Items...)
	out.Favorites = append([]string(nil), s.agg.Favorites...)
	return out
}

// AddItem reconciles a candidate against existing history. If an item with
// equal content exists, only its timestamp is refreshed and it moves to the
// front; the candidate's other fields are discarded. Otherwise the candidate
// gets a fresh id and is inserted at the front. The history is then truncated
// to the configured bound and persisted. The stored item is returned.
func (s *Store) AddItem(ctx context.Context, candidate Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()

	existing := -1
	for i, it := range s.agg.Items {
		if it.Content == candidate.Content {
			existing = i
			break
		}
	}

	var stored Item
	if existing != -1 {
		// Re-observed content: refresh the timestamp, keep everything else
		// (favorite status in particular must survive).
		stored = s.agg.Items[existing]
		stored.Timestamp = now
		s.agg.Items = append(s.agg.Items[:existing], s.agg.Items[existing+1:]...)
		s.agg.Items = append([]Item{stored}, s.agg.Items...)
	} else {
		stored = candidate
		stored.ID = util.NewID()
		stored.Timestamp = now
		s.agg.Items = append([]Item{stored}, s.agg.Items...)
	}

	s.truncateLocked()
	s.agg.LastUpdated = now

	if err := s.persistLocked(ctx); err != nil {
		return stored, err
	}
	return stored, nil
}

// truncateLocked drops items beyond the bound from the tail, favorite or
// not, and keeps the favorites set consistent with the surviving items.
func (s *Store) truncateLocked() {
	if len(s.agg.Items) <= s.maxItems {
		return
	}
	evicted := s.agg.Items[s.maxItems:]
	s.agg.Items = s.agg.Items[:s.maxItems]

	if len(s.agg.Favorites) == 0 {
		return
	}
	dropped := make(map[string]bool, len(evicted))
	for _, it := range evicted {
		dropped[it.ID] = true
	}
	kept := s.agg.Favorites[:0]
	for _, id := range s.agg.Favorites {
		if !dropped[id] {
			kept = append(kept, id)
		}
	}
	s.agg.Favorites = kept
}

// DeleteItem removes the item with the given id. Unknown ids are a no-op.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes all items whose ids appear in ids, along with their
// favorites entries. Unknown ids are silently ignored.
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	items := s.agg.Items[:0]
	for _, it := range s.agg.Items {
		if !doomed[it.ID] {
			items = append(items, it)
		}
	}
	s.agg.Items = items

	favorites := s.agg.Favorites[:0]
	for _, id := range s.agg.Favorites {
		if !doomed[id] {
			favorites = append(favorites, id)
		}
	}
	s.agg.Favorites = favorites

	s.agg.LastUpdated = time.Now().UnixMilli()
	return s.persistLocked(ctx)
}

// ToggleFavorite flips the favorite flag on the matching item and keeps the
// favorites set symmetric with it. Unknown ids are a no-op.
func (s *Store) ToggleFavorite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.agg.Items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	s.agg.Items[idx].IsFavorite = !s.agg.Items[idx].IsFavorite

	if s.agg.Items[idx].IsFavorite {
		s.agg.Favorites = append(s.agg.Favorites, id)
	} else {
		favorites := s.agg.Favorites[:0]
		for _, favID := range s.agg.Favorites {
			if favID != id {
				favorites = append(favorites, favID)
			}
		}
		s.agg.Favorites = favorites
	}

	s.agg.LastUpdated = time.Now().UnixMilli()
	return s.persistLocked(ctx)
}

// ClearAll resets the aggregate to empty, preserving the schema version.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.agg.Version
	s.agg = DefaultAggregate(time.Now().UnixMilli())
	s.agg.Version = version

	return s.persistLocked(ctx)
}

// ReplaceItems swaps in a merged item set (used after a sync merge). The
// favorites set is rebuilt from the items' favorite flags.
func (s *Store) ReplaceItems(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})

	favorites := []string{}
	for _, it := range items {
		if it.IsFavorite {
			favorites = append(favorites, it.ID)
		}
	}

	s.agg.Items = items
	s.agg.Favorites = favorites
	s.agg.LastUpdated = time.Now().UnixMilli()

	return s.persistLocked(ctx)
}

// MarkAllSynced tags every item as synced. Used when the server reports no
// remote records after a successful upload.
func (s *Store) MarkAllSynced(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.agg.Items {
		s.agg.Items[i].SyncStatus = SyncStatusSynced
	}
	s.agg.LastUpdated = time.Now().UnixMilli()

	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.agg)
	if err != nil {
		return fmt.Errorf("failed to marshal clipboard data: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyClipboardData, string(data)); err != nil {
		return fmt.Errorf("failed to persist clipboard data: %w", err)
	}
	return nil
}
