package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/arkive-app/arkive/internal/domain"
	"github.com/arkive-app/arkive/internal/logger"
	"github.com/arkive-app/arkive/internal/store"
)

func setupArchiveTest(t *testing.T) (*ArchiveService, *store.DB, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := store.NewSQLiteDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	archive := filepath.Join(dir, "archive")
	if err := os.MkdirAll(archive, 0o755); err != nil {
		t.Fatal(err)
	}

	return NewArchiveService(db, archive, logger.Default()), db, archive
}

func writeArtifact(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHomePageDataReconciles(t *testing.T) {
	svc, _, archive := setupArchiveTest(t)

	writeArtifact(t, archive, "1000-older.html", 100)
	writeArtifact(t, archive, "2000-newer.mp4", 200)
	writeArtifact(t, archive, "notes.txt", 50) // not an artifact

	cache, err := svc.HomePageData()
	if err != nil {
		t.Fatalf("HomePageData failed: %v", err)
	}
	if len(cache.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(cache.Pages))
	}
	if cache.Size != 300 {
		t.Errorf("Expected total size 300, got %d", cache.Size)
	}
	if cache.Pages[0].Filename != "2000-newer.mp4" {
		t.Errorf("Expected newest first, got %s", cache.Pages[0].Filename)
	}
	if !cache.Pages[0].IsMedia || cache.Pages[1].IsMedia {
		t.Error("Expected media flag on mp4 only")
	}
	// Orphans get the filename as placeholder title and no url.
	if cache.Pages[1].Title != "1000-older.html" || cache.Pages[1].URL != "" {
		t.Errorf("Unexpected placeholder metadata: %+v", cache.Pages[1])
	}
}

func TestHomePageDataConcurrentLoads(t *testing.T) {
	svc, _, archive := setupArchiveTest(t)

	writeArtifact(t, archive, "1000-one.html", 10)
	writeArtifact(t, archive, "2000-two.html", 10)

	// Concurrent first loads must not race the reconciliation: without
	// serialization, two walkers adopt the same orphan and collide on the
	// unique filename constraint.
	var wg sync.WaitGroup
	results := make([]*domain.PageCache, 16)
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.HomePageData()
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		if errs[i] != nil {
			t.Fatalf("HomePageData failed under concurrency: %v", errs[i])
		}
		if len(results[i].Pages) != 2 {
			t.Errorf("Expected every load to see 2 pages, got %d", len(results[i].Pages))
		}
	}
}

func TestHomePageDataServesCacheWhenUnchanged(t *testing.T) {
	svc, db, archive := setupArchiveTest(t)

	writeArtifact(t, archive, "1000-page.html", 10)
	if _, err := svc.HomePageData(); err != nil {
		t.Fatal(err)
	}

	// Plant a sentinel snapshot. With the directory untouched, the next load
	// must come from the cache, not a fresh walk.
	sentinel := &domain.PageCache{Pages: []domain.Page{{Filename: "sentinel"}}, Size: 42}
	if err := db.SetCache(sentinel); err != nil {
		t.Fatal(err)
	}

	cache, err := svc.HomePageData()
	if err != nil {
		t.Fatal(err)
	}
	if cache.Size != 42 || len(cache.Pages) != 1 || cache.Pages[0].Filename != "sentinel" {
		t.Errorf("Expected cached snapshot, got %+v", cache)
	}
}

func TestReconcilePrunesRemovedFiles(t *testing.T) {
	svc, db, archive := setupArchiveTest(t)

	writeArtifact(t, archive, "1000-keep.html", 10)
	writeArtifact(t, archive, "2000-gone.html", 10)
	if _, err := svc.HomePageData(); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(archive, "2000-gone.html")); err != nil {
		t.Fatal(err)
	}

	cache, err := svc.HomePageData()
	if err != nil {
		t.Fatal(err)
	}
	if len(cache.Pages) != 1 || cache.Pages[0].Filename != "1000-keep.html" {
		t.Fatalf("Expected only the surviving page, got %+v", cache.Pages)
	}

	page, err := db.GetPage("2000-gone.html")
	if err != nil {
		t.Fatal(err)
	}
	if page != nil {
		t.Error("Expected removed file's row to be pruned")
	}
}

func TestReconcileEmptyDirectoryClearsStore(t *testing.T) {
	svc, db, archive := setupArchiveTest(t)

	writeArtifact(t, archive, "1000-page.html", 10)
	if _, err := svc.HomePageData(); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(archive, "1000-page.html")); err != nil {
		t.Fatal(err)
	}

	cache, err := svc.HomePageData()
	if err != nil {
		t.Fatal(err)
	}
	if len(cache.Pages) != 0 || cache.Size != 0 {
		t.Errorf("Expected empty snapshot, got %+v", cache)
	}

	page, err := db.GetPage("1000-page.html")
	if err != nil {
		t.Fatal(err)
	}
	if page != nil {
		t.Error("Expected store to mirror the empty directory")
	}
}

func TestOrphanMediaTitleProbed(t *testing.T) {
	svc, _, archive := setupArchiveTest(t)
	svc.probeTitle = func(path string) (string, bool) {
		if filepath.Base(path) == "1000-song.mp3" {
			return "Embedded Song Title", true
		}
		return "", false
	}

	writeArtifact(t, archive, "1000-song.mp3", 10)
	writeArtifact(t, archive, "2000-video.mp4", 10)

	cache, err := svc.HomePageData()
	if err != nil {
		t.Fatal(err)
	}

	titles := map[string]string{}
	for _, p := range cache.Pages {
		titles[p.Filename] = p.Title
	}
	if titles["1000-song.mp3"] != "Embedded Song Title" {
		t.Errorf("Expected probed title, got %q", titles["1000-song.mp3"])
	}
	if titles["2000-video.mp4"] != "2000-video.mp4" {
		t.Errorf("Expected filename fallback, got %q", titles["2000-video.mp4"])
	}
}

func TestSearchParsesTagTokens(t *testing.T) {
	svc, db, _ := setupArchiveTest(t)

	id1, err := db.AddPage(domain.PartialPage{Title: "Hello Video", Filename: "v.mp4", Size: 1, IsMedia: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SetTags(id1, []string{"video"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.AddPage(domain.PartialPage{Title: "Hello Text", Filename: "t.html", Size: 1}); err != nil {
		t.Fatal(err)
	}

	pages, err := svc.Search("#video hello")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Filename != "v.mp4" {
		t.Errorf("Expected tagged match only, got %+v", pages)
	}

	pages, err = svc.Search("hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Errorf("Expected both matches without tag filter, got %+v", pages)
	}
}

func TestEditPage(t *testing.T) {
	svc, db, _ := setupArchiveTest(t)

	if _, err := db.AddPage(domain.PartialPage{Title: "Old", Filename: "p.html", Size: 1}); err != nil {
		t.Fatal(err)
	}

	if err := svc.EditPage("p.html", "New Title", "http://example.com", []string{"fixed"}); err != nil {
		t.Fatalf("EditPage failed: %v", err)
	}

	page, err := db.GetPage("p.html")
	if err != nil || page == nil {
		t.Fatalf("Expected page, got %+v err=%v", page, err)
	}
	if page.Title != "New Title" || page.URL != "http://example.com" {
		t.Errorf("Unexpected page after edit: %+v", page)
	}
	if len(page.Tags) != 1 || page.Tags[0] != "fixed" {
		t.Errorf("Expected updated tags, got %v", page.Tags)
	}

	if err := svc.EditPage("missing.html", "x", "", nil); err == nil {
		t.Error("Expected editing an unknown page to fail")
	}
}

func TestDeletePage(t *testing.T) {
	svc, db, archive := setupArchiveTest(t)

	writeArtifact(t, archive, "1000-doomed.html", 10)
	if _, err := db.AddPage(domain.PartialPage{Title: "Doomed", Filename: "1000-doomed.html", Size: 10}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeletePage("1000-doomed.html"); err != nil {
		t.Fatalf("DeletePage failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(archive, "1000-doomed.html")); !os.IsNotExist(err) {
		t.Error("Expected artifact to be removed from disk")
	}
	page, err := db.GetPage("1000-doomed.html")
	if err != nil {
		t.Fatal(err)
	}
	if page != nil {
		t.Error("Expected row to be removed")
	}

	if err := svc.DeletePage("never-existed.html"); err == nil {
		t.Error("Expected deleting an unknown page to fail")
	}
}
