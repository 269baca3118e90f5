package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arkive-app/arkive/internal/app"
	"github.com/arkive-app/arkive/internal/constants"
	"github.com/arkive-app/arkive/internal/domain"
	"github.com/arkive-app/arkive/internal/filesystem"
	"github.com/arkive-app/arkive/internal/store"
)

type homeData struct {
	Pages     []domain.Page
	TotalSize string
	Query     string
	Tags      []string
}

func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	cache, err := h.Archive.HomePageData()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	tags, err := h.Archive.ListTags()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.RenderPage(w, "index.html", homeData{
		Pages:     cache.Pages,
		TotalSize: filesystem.FormatBytes(cache.Size),
		Tags:      tags,
	})
}

func (h *Handler) SearchPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	pages, err := h.Archive.Search(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var total int64
	for _, p := range pages {
		total += p.Size
	}

	h.RenderPage(w, "index.html", homeData{
		Pages:     pages,
		TotalSize: filesystem.FormatBytes(total),
		Query:     query,
	})
}

type addPageData struct {
	Options       map[string]constants.CaptureOption
	DefaultMaxRes string
}

func (h *Handler) AddPage(w http.ResponseWriter, r *http.Request) {
	h.RenderPage(w, "add.html", addPageData{
		Options:       constants.MonolithOptions,
		DefaultMaxRes: constants.DefaultMaxResolution,
	})
}

type deletePageData struct {
	Page *domain.Page
}

func (h *Handler) DeleteConfirmPage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	page, err := h.Archive.GetPage(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}
	h.RenderPage(w, "delete.html", deletePageData{Page: page})
}

func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode := domain.JobMode(r.PostForm.Get("mode"))
	if mode == "" {
		mode = domain.JobModeWebpage
	}

	id, err := h.Jobs.Submit(app.SubmitParams{
		Mode:    mode,
		URL:     r.PostForm.Get("url"),
		Title:   r.PostForm.Get("title"),
		Options: r.PostForm["options"],
		Tags:    domain.ParseTagList(r.PostForm.Get("tags")),
		MaxRes:  r.PostForm.Get("max_res"),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, app.ErrInvalidURL) || errors.Is(err, app.ErrUnknownJobMode) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]domain.Job{
		"jobs":   h.Registry.List(),
		"failed": h.Registry.FailedJobs(),
	})
}

func (h *Handler) RetryJob(w http.ResponseWriter, r *http.Request) {
	id, err := h.Jobs.Retry(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, app.ErrJobNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *Handler) ClearJob(w http.ResponseWriter, r *http.Request) {
	h.Jobs.Clear(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BulkImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var urls []string
	for _, line := range strings.Split(r.PostForm.Get("urls"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	if len(urls) == 0 {
		http.Error(w, "no urls given", http.StatusBadRequest)
		return
	}

	submitted, skipped := h.Jobs.BulkImport(urls, domain.ParseTagList(r.PostForm.Get("tags")))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string][]string{
		"submitted": submitted,
		"skipped":   skipped,
	})
}

func (h *Handler) EditPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := chi.URLParam(r, "filename")
	err := h.Archive.EditPage(filename,
		r.PostForm.Get("title"),
		r.PostForm.Get("url"),
		domain.ParseTagList(r.PostForm.Get("tags")))
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if err := h.Archive.DeletePage(filename); err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ServeArtifact serves captured files straight from the archive directory.
// The cleaned path must stay inside it.
func (h *Handler) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	name = path.Clean("/" + name)[1:]
	if name == "" || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.ArchiveDir, filepath.FromSlash(name)))
}
