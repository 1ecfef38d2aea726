package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alextreichler/portfolio/internal/contact"
	"github.com/gorilla/sessions"
)

type ContactHandler struct {
	Flow         *contact.Flow
	SessionStore *sessions.CookieStore
	// Home renders the result in place when it does not fit in the
	// session cookie.
	Home *HomeHandler
}

type contactResponse struct {
	OK       bool              `json:"ok"`
	Banner   string            `json:"banner,omitempty"`
	BannerMs int64             `json:"banner_ms,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Submit handles the contact form. The outcome is parked in the public
// session and shown once on the redirected page.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := contact.Form{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("message"),
	}

	res, err := h.Flow.Submit(r.Context(), form)

	if wantsJSON(r) {
		resp := contactResponse{OK: err == nil, Banner: res.Banner.Text, Errors: res.Errors}
		status := http.StatusOK
		switch {
		case errors.Is(err, contact.ErrInvalid):
			status = http.StatusUnprocessableEntity
		case err != nil:
			status = http.StatusBadGateway
		default:
			resp.BannerMs = contact.BannerDuration.Milliseconds()
		}
		writeJSON(w, status, resp)
		return
	}

	session, _ := h.SessionStore.Get(r, "public-session")
	if res.Form != (contact.Form{}) {
		session.Values["contact_form"] = res.Form
	}
	if len(res.Errors) > 0 {
		session.Values["contact_errors"] = res.Errors
	}
	if res.Banner.Text != "" {
		session.Values["contact_banner"] = res.Banner
	}
	if err := session.Save(r, w); err != nil {
		// Long messages overflow the cookie; answer with the page itself so
		// the banner shows and the form is kept.
		slog.Warn("Contact result not stored in session, rendering inline", "error", err)
		if h.Home == nil {
			http.Error(w, "Message too long", http.StatusRequestEntityTooLarge)
			return
		}
		status := http.StatusOK
		switch {
		case len(res.Errors) > 0:
			status = http.StatusUnprocessableEntity
		case res.Banner.Failed:
			status = http.StatusBadGateway
		}
		h.Home.render(w, r, status, newContactView(res.Form, res.Errors, res.Banner, time.Now()), nil)
		return
	}
	http.Redirect(w, r, "/#contact", http.StatusSeeOther)
}
