package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arkive-app/arkive/internal/domain"
	"github.com/arkive-app/arkive/internal/filesystem"
	"github.com/arkive-app/arkive/internal/logger"
	"github.com/arkive-app/arkive/internal/probe"
	"github.com/arkive-app/arkive/internal/store"
)

// ArchiveService reconciles the archive directory with the store and serves
// page listings, search, edits, and deletions.
type ArchiveService struct {
	db         *store.DB
	archiveDir string
	log        *logger.Logger

	// mu serializes homepage loads: only one reconciliation walks the
	// directory and rewrites rows at a time.
	mu sync.Mutex

	// probeTitle reads an embedded title from a media file. Swappable in
	// tests; defaults to the id3v2/FLAC probe.
	probeTitle func(path string) (string, bool)
}

func NewArchiveService(db *store.DB, archiveDir string, log *logger.Logger) *ArchiveService {
	return &ArchiveService{
		db:         db,
		archiveDir: archiveDir,
		log:        log.WithComponent("archive"),
		probeTitle: probe.Title,
	}
}

// HomePageData returns the full page listing plus total archive size. The
// directory's modification time gates the work: unchanged since the last look
// means the cached snapshot is served; otherwise the directory is walked and
// the store reconciled against it.
func (s *ArchiveService) HomePageData() (*domain.PageCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.archiveDir)
	if err != nil {
		return nil, err
	}
	stamp := info.ModTime().UTC().Format(time.RFC3339Nano)

	changed, err := s.db.CheckModified(stamp)
	if err != nil {
		return nil, err
	}
	if !changed {
		return s.db.GetCache()
	}

	cache, err := s.reconcile()
	if err != nil {
		return nil, err
	}
	if err := s.db.SetCache(cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// reconcile walks the archive directory, synthesizes store rows for artifacts
// the store does not know, prunes rows whose files are gone, and assembles the
// fresh snapshot.
func (s *ArchiveService) reconcile() (*domain.PageCache, error) {
	entries, total, err := filesystem.ScanArchive(s.archiveDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}

	known, err := s.db.GetPagesData(names)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.Page, 0, len(entries))
	for _, e := range entries {
		if page, ok := known[e.Name]; ok {
			pages = append(pages, page)
			continue
		}

		// An artifact with no row: dropped into the directory by hand, or
		// left behind by a crash mid-job. Adopt it with placeholder metadata.
		partial := domain.PartialPage{
			Title:    s.orphanTitle(e.Name),
			Filename: e.Name,
			Size:     e.Size,
			IsMedia:  filesystem.IsMediaFile(e.Name),
		}
		id, err := s.db.AddPage(partial)
		if err != nil {
			return nil, err
		}
		s.log.Info("Adopted orphan artifact", "filename", e.Name)
		pages = append(pages, domain.Page{
			ID:       id,
			Title:    partial.Title,
			Filename: e.Name,
			Size:     e.Size,
			IsMedia:  partial.IsMedia,
		})
	}

	if err := s.db.DeleteRemovedPages(names); err != nil {
		return nil, err
	}

	// Filenames carry a millisecond timestamp prefix, so reverse-lexical
	// order is newest first.
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Filename > pages[j].Filename
	})

	return &domain.PageCache{Pages: pages, Size: total}, nil
}

// orphanTitle prefers a title embedded in the media file, then falls back to
// the bare filename.
func (s *ArchiveService) orphanTitle(name string) string {
	if filesystem.IsMediaFile(name) {
		if title, ok := s.probeTitle(filepath.Join(s.archiveDir, name)); ok {
			return title
		}
	}
	return name
}

// Search splits the query into #tag tokens and free text, then returns the
// matching pages in relevance order.
func (s *ArchiveService) Search(query string) ([]domain.Page, error) {
	var tags []string
	var words []string
	for _, token := range strings.Fields(query) {
		if tag, ok := strings.CutPrefix(token, "#"); ok {
			if slug := domain.Slugify(tag); slug != "" {
				tags = append(tags, slug)
			}
			continue
		}
		words = append(words, token)
	}

	filenames, err := s.db.SearchPages(strings.Join(words, " "), tags)
	if err != nil {
		return nil, err
	}
	if len(filenames) == 0 {
		return nil, nil
	}

	data, err := s.db.GetPagesData(filenames)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.Page, 0, len(filenames))
	for _, f := range filenames {
		if page, ok := data[f]; ok {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

// GetPage returns one page by filename, or (nil, nil) when absent.
func (s *ArchiveService) GetPage(filename string) (*domain.Page, error) {
	return s.db.GetPage(filename)
}

// ListTags returns every tag currently attached to at least one page.
func (s *ArchiveService) ListTags() ([]string, error) {
	return s.db.ListTags()
}

// EditPage updates a page's title, url, and tag set.
func (s *ArchiveService) EditPage(filename, title, url string, tags []string) error {
	page, err := s.db.GetPage(filename)
	if err != nil {
		return err
	}
	if page == nil {
		return store.ErrPageNotFound
	}
	return s.db.EditPage(page.ID, filename, title, url, tags)
}

// DeletePage removes the artifact from disk and its row from the store. A
// file already gone is fine; the row still goes away.
func (s *ArchiveService) DeletePage(filename string) error {
	path := filepath.Join(s.archiveDir, filename)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return s.db.DeletePage(filename)
}
