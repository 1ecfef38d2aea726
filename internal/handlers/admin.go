package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alextreichler/portfolio/internal/projects"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const accessDenied = "ACCESS DENIED"

// SiteConfigWriter stores key/value site settings.
type SiteConfigWriter interface {
	SetSiteConfig(ctx context.Context, key, value string) error
}

// AdminHandler serves the project manager. The passcode is a deployment
// setting, so this gate only keeps casual visitors out.
type AdminHandler struct {
	Password     string
	Projects     *projects.View
	SiteConfig   SiteConfigWriter
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

// checkPasscode accepts either the configured plain passcode or, when the
// setting holds a bcrypt hash, anything matching it.
func (h *AdminHandler) checkPasscode(input string) bool {
	if h.Password == "" || input == "" {
		return false
	}
	if strings.HasPrefix(h.Password, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(h.Password), []byte(input)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(h.Password), []byte(input)) == 1
}

func (h *AdminHandler) authenticated(r *http.Request) (*sessions.Session, bool) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	auth, ok := session.Values["authenticated"].(bool)
	return session, ok && auth
}

// Panel shows the passcode prompt or, once unlocked, the project manager.
func (h *AdminHandler) Panel(w http.ResponseWriter, r *http.Request) {
	session, ok := h.authenticated(r)
	if !ok {
		tmpl := h.Templates.Get("admin_login.html")
		if tmpl == nil {
			http.Error(w, "Template not found", http.StatusInternalServerError)
			return
		}
		data := map[string]interface{}{
			"CsrfField":  csrf.TemplateField(r),
			"AuthError":  session.Values["auth_error"] == true,
			"DeniedText": accessDenied,
		}
		delete(session.Values, "auth_error")
		session.Save(r, w)
		tmpl.Execute(w, data)
		return
	}

	tmpl := h.Templates.Get("admin.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	list := h.Projects.Projects()
	data := map[string]interface{}{
		"Projects":  list,
		"Count":     len(list),
		"CsrfField": csrf.TemplateField(r),
		"CsrfToken": csrf.Token(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")

	if !h.checkPasscode(r.FormValue("password")) {
		slog.Info("Admin passcode rejected", "ip", r.RemoteAddr)
		session.Values["auth_error"] = true
		session.Save(r, w)
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	// Browser-session cookie: the unlock ends with the browser session or
	// when the panel is closed.
	session.Options.MaxAge = 0
	session.Values["authenticated"] = true
	delete(session.Values, "auth_error")
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Admin panel unlocked")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Close locks the panel again.
func (h *AdminHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	session.Values["authenticated"] = false
	session.Options.MaxAge = -1 // Expire immediately
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AuthMiddleware ensures the panel is unlocked
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.authenticated(r); !ok {
			slog.Info("AuthMiddleware: panel locked", "path", r.URL.Path)
			if wantsJSON(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": accessDenied})
				return
			}
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
