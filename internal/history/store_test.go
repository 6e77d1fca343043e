package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Praveen2412/pastekeeper/internal/storage"
)

func newTestStore(t *testing.T, maxItems int) (*Store, *storage.MemoryStore) {
	t.Helper()
	kv := storage.NewMemoryStore()
	s, err := NewStore(context.Background(), kv, maxItems)
	require.NoError(t, err)
	return s, kv
}

func TestAddItemDedupByContent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	first, err := s.AddItem(ctx, NewCandidate("hello", "dev-1"))
	require.NoError(t, err)

	// Force a measurable timestamp difference.
	time.Sleep(2 * time.Millisecond)

	second, err := s.AddItem(ctx, NewCandidate("hello", "dev-2"))
	require.NoError(t, err)

	agg := s.Snapshot()
	require.Len(t, agg.Items, 1, "identical content must resolve to one logical item")
	assert.Equal(t, first.ID, second.ID, "re-adding must keep the original id")
	assert.Greater(t, second.Timestamp, first.Timestamp, "timestamp must reflect the most recent occurrence")
	assert.Equal(t, "dev-1", agg.Items[0].DeviceID, "candidate fields are discarded on refresh")
}

func TestAddItemMovesExistingToFront(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	for _, content := range []string{"a", "b", "c"} {
		_, err := s.AddItem(ctx, NewCandidate(content, ""))
		require.NoError(t, err)
	}

	_, err := s.AddItem(ctx, NewCandidate("a", ""))
	require.NoError(t, err)

	agg := s.Snapshot()
	require.Len(t, agg.Items, 3)
	assert.Equal(t, "a", agg.Items[0].Content)
	assert.Equal(t, "c", agg.Items[1].Content)
	assert.Equal(t, "b", agg.Items[2].Content)
}

func TestAddItemPreservesFavoriteOnRefresh(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	item, err := s.AddItem(ctx, NewCandidate("keep me", ""))
	require.NoError(t, err)
	require.NoError(t, s.ToggleFavorite(ctx, item.ID))

	// The candidate arrives with IsFavorite=false; the stored flag wins.
	_, err = s.AddItem(ctx, NewCandidate("keep me", ""))
	require.NoError(t, err)

	agg := s.Snapshot()
	require.Len(t, agg.Items, 1)
	assert.True(t, agg.Items[0].IsFavorite)
	assert.Equal(t, []string{item.ID}, agg.Favorites)
}

func TestAddItemEnforcesBound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 2)

	for _, content := range []string{"A", "B", "C"} {
		_, err := s.AddItem(ctx, NewCandidate(content, ""))
		require.NoError(t, err)
	}

	agg := s.Snapshot()
	require.Len(t, agg.Items, 2)
	assert.Equal(t, "C", agg.Items[0].Content)
	assert.Equal(t, "B", agg.Items[1].Content)
}

func TestEvictionDropsFavoritesToo(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 2)

	oldest, err := s.AddItem(ctx, NewCandidate("A", ""))
	require.NoError(t, err)
	require.NoError(t, s.ToggleFavorite(ctx, oldest.ID))

	for _, content := range []string{"B", "C"} {
		_, err := s.AddItem(ctx, NewCandidate(content, ""))
		require.NoError(t, err)
	}

	agg := s.Snapshot()
	require.Len(t, agg.Items, 2)
	for _, it := range agg.Items {
		assert.NotEqual(t, "A", it.Content)
	}
	assert.Empty(t, agg.Favorites, "favorites must not reference evicted items")
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	item, err := s.AddItem(ctx, NewCandidate("doomed", ""))
	require.NoError(t, err)
	require.NoError(t, s.ToggleFavorite(ctx, item.ID))

	require.NoError(t, s.DeleteItem(ctx, item.ID))

	agg := s.Snapshot()
	assert.Empty(t, agg.Items)
	assert.Empty(t, agg.Favorites)

	// Unknown ids are a silent no-op.
	require.NoError(t, s.DeleteItem(ctx, "no-such-id"))
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	a, _ := s.AddItem(ctx, NewCandidate("a", ""))
	b, _ := s.AddItem(ctx, NewCandidate("b", ""))
	_, err := s.AddItem(ctx, NewCandidate("c", ""))
	require.NoError(t, err)

	require.NoError(t, s.DeleteMany(ctx, []string{a.ID, b.ID, "missing"}))

	agg := s.Snapshot()
	require.Len(t, agg.Items, 1)
	assert.Equal(t, "c", agg.Items[0].Content)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	item, err := s.AddItem(ctx, NewCandidate("star", ""))
	require.NoError(t, err)

	require.NoError(t, s.ToggleFavorite(ctx, item.ID))
	agg := s.Snapshot()
	assert.True(t, agg.Items[0].IsFavorite)
	assert.Equal(t, []string{item.ID}, agg.Favorites)

	require.NoError(t, s.ToggleFavorite(ctx, item.ID))
	agg = s.Snapshot()
	assert.False(t, agg.Items[0].IsFavorite)
	assert.Empty(t, agg.Favorites)

	// Unknown id is a no-op, not an error.
	require.NoError(t, s.ToggleFavorite(ctx, "missing"))
}

func TestClearAllPreservesVersion(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	_, err := s.AddItem(ctx, NewCandidate("x", ""))
	require.NoError(t, err)

	before := s.Snapshot().Version
	require.NoError(t, s.ClearAll(ctx))

	agg := s.Snapshot()
	assert.Empty(t, agg.Items)
	assert.Empty(t, agg.Favorites)
	assert.Equal(t, before, agg.Version)
}

func TestReplaceItemsRebuildsFavorites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 100)

	items := []Item{
		{ID: "1", Content: "x", Timestamp: 100, IsFavorite: true, SyncStatus: SyncStatusSynced},
		{ID: "2", Content: "y", Timestamp: 300},
		{ID: "3", Content: "z", Timestamp: 200, IsFavorite: true},
	}
	require.NoError(t, s.ReplaceItems(ctx, items))

	agg := s.Snapshot()
	require.Len(t, agg.Items, 3)
	assert.Equal(t, "2", agg.Items[0].ID, "items must be re-sorted newest first")
	assert.Equal(t, "3", agg.Items[1].ID)
	assert.Equal(t, "1", agg.Items[2].ID)
	assert.ElementsMatch(t, []string{"1", "3"}, agg.Favorites)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t, 100)

	item, err := s.AddItem(ctx, NewCandidate("survivor", ""))
	require.NoError(t, err)
	require.NoError(t, s.ToggleFavorite(ctx, item.ID))

	reloaded, err := NewStore(ctx, kv, 100)
	require.NoError(t, err)

	agg := reloaded.Snapshot()
	require.Len(t, agg.Items, 1)
	assert.Equal(t, item.ID, agg.Items[0].ID)
	assert.True(t, agg.Items[0].IsFavorite)
	assert.Equal(t, []string{item.ID}, agg.Favorites)
}

func TestMalformedDataFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, storage.KeyClipboardData, "{not json"))

	s, err := NewStore(ctx, kv, 100)
	require.NoError(t, err, "malformed data must not propagate as a parse failure")

	agg := s.Snapshot()
	assert.Empty(t, agg.Items)
	assert.NotEmpty(t, agg.Version)
}

func TestSyncStatusSurvivesRoundTrip(t *testing.T) {
	// The conflict tag is never assigned by the merge but must not be
	// silently dropped by the codec.
	item := Item{ID: "1", Content: "x", SyncStatus: SyncStatusConflict}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	var back Item
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SyncStatusConflict, back.SyncStatus)
}

func TestConcurrentAddsLoseNoUpdates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 1000)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 25; i++ {
				_, err := s.AddItem(ctx, NewCandidate(fmt.Sprintf("g%d-i%d", g, i), ""))
				assert.NoError(t, err)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	// Every distinct content must have landed exactly once.
	agg := s.Snapshot()
	seen := make(map[string]bool, len(agg.Items))
	for _, it := range agg.Items {
		assert.False(t, seen[it.Content])
		seen[it.Content] = true
	}
	assert.Len(t, agg.Items, 100)
}
