package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arkive-app/arkive/internal/domain"
)

type statusEvent struct {
	ID     string           `json:"id"`
	Status domain.JobStatus `json:"status"`
}

// StreamJobStatus streams a job's status transitions as server-sent events.
// The current status is pushed immediately, then every change until the job
// reaches a terminal state or the client goes away.
func (h *Handler) StreamJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Subscribe first, then read the snapshot: a transition landing between
	// the two shows up on the channel, so nothing falls into the gap.
	sub := h.Registry.Subscribe(id)
	defer sub.Cancel()

	job, ok := h.Registry.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(status domain.JobStatus) {
		payload, _ := json.Marshal(statusEvent{ID: id, Status: status})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	writeEvent(job.Status)
	if job.Status.Terminal() {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case update, open := <-sub.C:
			if !open {
				return
			}
			writeEvent(update.Status)
			if update.Status.Terminal() {
				return
			}
		}
	}
}
