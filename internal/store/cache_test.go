package store

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arkive-app/arkive/internal/domain"
)

func TestCheckModified(t *testing.T) {
	db := setupTestDB(t)

	// First call with any timestamp differs from the seeded empty value.
	changed, err := db.CheckModified("2026-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("CheckModified failed: %v", err)
	}
	if !changed {
		t.Error("Expected first check to report changed")
	}

	// Same timestamp twice in a row: unchanged.
	changed, err = db.CheckModified("2026-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("CheckModified failed: %v", err)
	}
	if changed {
		t.Error("Expected repeat check to report unchanged")
	}

	// A different timestamp always reports changed and persists.
	changed, err = db.CheckModified("2026-01-02T00:00:00Z")
	if err != nil {
		t.Fatalf("CheckModified failed: %v", err)
	}
	if !changed {
		t.Error("Expected new timestamp to report changed")
	}

	changed, err = db.CheckModified("2026-01-02T00:00:00Z")
	if err != nil {
		t.Fatalf("CheckModified failed: %v", err)
	}
	if changed {
		t.Error("Expected persisted timestamp to report unchanged")
	}
}

func TestCheckModifiedConcurrent(t *testing.T) {
	db := setupTestDB(t)

	// Callers racing on the same timestamp: exactly one may observe the
	// change, otherwise two reconciliations run at once.
	var changedCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := db.CheckModified("2026-08-28T00:00:00Z")
			if err != nil {
				t.Errorf("CheckModified failed: %v", err)
				return
			}
			if changed {
				changedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := changedCount.Load(); got != 1 {
		t.Errorf("Expected exactly 1 caller to observe the change, got %d", got)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	// Empty by default.
	cache, err := db.GetCache()
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if len(cache.Pages) != 0 || cache.Size != 0 {
		t.Errorf("Expected empty cache, got %+v", cache)
	}

	want := &domain.PageCache{
		Pages: []domain.Page{
			{ID: 1, Title: "One", Filename: "one.html", Size: 100, Tags: []string{"t"}},
			{ID: 2, Title: "Two", Filename: "two.mp4", Size: 200, IsMedia: true},
		},
		Size: 300,
	}
	if err := db.SetCache(want); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}

	got, err := db.GetCache()
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if got.Size != 300 || len(got.Pages) != 2 {
		t.Fatalf("Expected cache round trip, got %+v", got)
	}
	if got.Pages[0].Title != "One" || got.Pages[1].Filename != "two.mp4" {
		t.Errorf("Unexpected cache contents: %+v", got.Pages)
	}
	if !got.Pages[1].IsMedia {
		t.Error("Expected is_media to survive the round trip")
	}
}
