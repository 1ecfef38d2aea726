package handlers

import (
	"net/http"
	"net/url"

	"github.com/alextreichler/portfolio/internal/theme"
)

type ThemeHandler struct {
	CookieSecure bool
}

// Toggle stores the mode the page asked for in the "theme" field. Without
// one it flips the mode resolved for this request.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	next, ok := theme.Parse(r.FormValue("theme"))
	if !ok {
		next = theme.FromRequest(r).Toggle()
	}
	theme.Persist(w, next, h.CookieSecure)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"theme": string(next)})
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the same-site path the request came from, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
