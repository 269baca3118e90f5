package http

import (
	"errors"
	"net/http"

	"github.com/arkive-app/arkive/internal/app"
)

type authPageData struct {
	Error string
}

func (h *Handler) InitPage(w http.ResponseWriter, r *http.Request) {
	initialized, err := h.Auth.Initialized()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if initialized {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.RenderPage(w, "init.html", authPageData{})
}

func (h *Handler) InitSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	password := r.PostForm.Get("password")
	if password != r.PostForm.Get("confirm") {
		h.RenderPage(w, "init.html", authPageData{Error: "Passwords do not match"})
		return
	}

	if err := h.Auth.Setup(password); err != nil {
		switch {
		case errors.Is(err, app.ErrAlreadyInitialized):
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		case errors.Is(err, app.ErrInvalidCredentials):
			h.RenderPage(w, "init.html", authPageData{Error: "Password must not be empty"})
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// First run flows straight into a session.
	token, err := h.Auth.Login(password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.RenderPage(w, "login.html", authPageData{})
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.Auth.Login(r.PostForm.Get("password"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotInitialized):
			http.Redirect(w, r, "/init", http.StatusSeeOther)
		case errors.Is(err, app.ErrInvalidCredentials):
			w.WriteHeader(http.StatusUnauthorized)
			h.RenderPage(w, "login.html", authPageData{Error: "Wrong password"})
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.Auth.Logout(token); err != nil {
			h.log.Error("Logout failed", "error", err)
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
