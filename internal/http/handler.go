// Package http is the chi boundary: server-rendered pages, the job API with
// SSE status streaming, and session auth.
package http

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arkive-app/arkive/internal/app"
	"github.com/arkive-app/arkive/internal/jobs"
	"github.com/arkive-app/arkive/internal/logger"
	"github.com/arkive-app/arkive/web"
)

type Handler struct {
	Jobs       *app.JobService
	Archive    *app.ArchiveService
	Auth       *app.AuthService
	Registry   *jobs.Registry
	ArchiveDir string

	log *logger.Logger
}

func NewHandler(
	jobSvc *app.JobService,
	archiveSvc *app.ArchiveService,
	authSvc *app.AuthService,
	registry *jobs.Registry,
	archiveDir string,
	log *logger.Logger,
) *Handler {
	return &Handler{
		Jobs:       jobSvc,
		Archive:    archiveSvc,
		Auth:       authSvc,
		Registry:   registry,
		ArchiveDir: archiveDir,
		log:        log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/init", h.InitPage)
	r.Post("/init", h.InitSubmit)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginSubmit)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Get("/", h.HomePage)
		r.Get("/add", h.AddPage)
		r.Get("/search", h.SearchPage)
		r.Get("/delete/{filename}", h.DeleteConfirmPage)
		r.Post("/logout", h.Logout)

		r.Post("/api/jobs", h.SubmitJob)
		r.Get("/api/jobs", h.ListJobs)
		r.Get("/api/jobs/{id}/status", h.StreamJobStatus)
		r.Post("/api/jobs/{id}/retry", h.RetryJob)
		r.Post("/api/jobs/{id}/clear", h.ClearJob)
		r.Post("/api/import", h.BulkImport)
		r.Post("/api/pages/{filename}", h.EditPage)
		r.Post("/api/pages/{filename}/delete", h.DeletePage)

		r.Get("/archive/*", h.ServeArtifact)
	})
}

// RenderPage executes pageTmpl inside the base layout.
func (h *Handler) RenderPage(w http.ResponseWriter, pageTmpl string, data interface{}) {
	tmpl, err := template.ParseFS(web.Files, "templates/base.html", "templates/"+pageTmpl)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.log.Error("Template execution failed", "template", pageTmpl, "error", err)
	}
}
