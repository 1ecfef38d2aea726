package handlers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alextreichler/portfolio/internal/carousel"
	"github.com/alextreichler/portfolio/internal/contact"
	"github.com/alextreichler/portfolio/internal/models"
	"github.com/alextreichler/portfolio/internal/projects"
	"github.com/alextreichler/portfolio/internal/store"
	"github.com/alextreichler/portfolio/internal/theme"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const DefaultHeroImage = "/static/hero.svg"

// SiteConfigReader reads key/value site settings.
type SiteConfigReader interface {
	GetSiteConfig(ctx context.Context, key string) (*models.SiteConfig, error)
}

type HomeHandler struct {
	Projects         *projects.View
	SiteConfig       SiteConfigReader
	Templates        *TemplateCache
	SessionStore     *sessions.CookieStore
	CarouselInterval time.Duration
	Now              func() time.Time
}

// Card is one carousel slot as rendered.
type Card struct {
	carousel.Item
	Index       int
	Position    string
	Interactive bool
}

// contactView is the contact section state restored from the session.
type contactView struct {
	Form     contact.Form
	Errors   map[string]string
	Banner   contact.Banner
	ShowIt   bool
	BannerMs int64
}

func (h *HomeHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// heroImage returns the configured hero artwork, or the bundled default.
func (h *HomeHandler) heroImage(ctx context.Context) string {
	c, err := h.SiteConfig.GetSiteConfig(ctx, models.HeroImageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("Error fetching hero image", "error", err)
		}
		return DefaultHeroImage
	}
	if c.Value == "" {
		return DefaultHeroImage
	}
	return c.Value
}

// Cards lays out items with the carousel positioned at active.
func Cards(items []carousel.Item, active int) ([]Card, *carousel.Engine) {
	e := carousel.New(len(items))
	e.Select(active)
	cards := make([]Card, len(items))
	for i, item := range items {
		cards[i] = Card{
			Item:        item,
			Index:       i,
			Position:    e.Position(i).String(),
			Interactive: e.Interactive(i),
		}
	}
	return cards, e
}

// newContactView shapes a contact result for the template at time now.
func newContactView(form contact.Form, errs map[string]string, banner contact.Banner, now time.Time) contactView {
	cv := contactView{Form: form, Errors: errs, Banner: banner}
	if banner.Text != "" {
		cv.ShowIt = banner.Visible(now)
		if !banner.ExpiresAt.IsZero() {
			cv.BannerMs = banner.ExpiresAt.Sub(now).Milliseconds()
		}
	}
	return cv
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	publicSession, _ := h.SessionStore.Get(r, "public-session")

	form, _ := publicSession.Values["contact_form"].(contact.Form)
	errs, _ := publicSession.Values["contact_errors"].(map[string]string)
	banner, _ := publicSession.Values["contact_banner"].(contact.Banner)
	delete(publicSession.Values, "contact_form")
	delete(publicSession.Values, "contact_errors")
	delete(publicSession.Values, "contact_banner")

	flashes := GetFlash(publicSession)
	publicSession.Save(r, w)

	h.render(w, r, http.StatusOK, newContactView(form, errs, banner, h.now()), flashes)
}

// render writes the landing page with the given contact section state.
func (h *HomeHandler) render(w http.ResponseWriter, r *http.Request, status int, cv contactView, flashes []FlashMessage) {
	tmpl := h.Templates.Get("home.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	items := carousel.Items(h.Projects.Projects())
	slide, _ := strconv.Atoi(r.URL.Query().Get("slide"))
	cards, engine := Cards(items, slide)
	prev := carousel.New(engine.Len())
	prev.Select(engine.Active())
	prev.Prev()
	next := carousel.New(engine.Len())
	next.Select(engine.Active())
	next.Next()

	adminSession, _ := h.SessionStore.Get(r, "admin-session")
	isAdmin := false
	if auth, ok := adminSession.Values["authenticated"].(bool); ok && auth {
		isAdmin = true
	}

	interval := h.CarouselInterval
	if interval <= 0 {
		interval = carousel.DefaultInterval
	}
	mode := theme.FromRequest(r)

	data := map[string]interface{}{
		"Theme":          mode,
		"ThemeStored":    theme.Stored(r),
		"RevealMs":       theme.DefaultRevealDuration.Milliseconds(),
		"HeroImage":      h.heroImage(r.Context()),
		"Cards":          cards,
		"Active":         engine.Active(),
		"PrevSlide":      prev.Active(),
		"NextSlide":      next.Active(),
		"IntervalMs":     interval.Milliseconds(),
		"SwipeThreshold": carousel.SwipeThreshold,
		"Contact":        cv,
		"IsAdmin":        isAdmin,
		"Flashes":        flashes,
		"CsrfField":      csrf.TemplateField(r),
		"CsrfToken":      csrf.Token(r),
		"Year":           h.now().Year(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render home page", "error", err)
	}
}

// cardJSON is a display item with its description already rendered.
type cardJSON struct {
	carousel.Item
	DescriptionHTML template.HTML `json:"descriptionHtml"`
}

// ProjectsJSON serves the current display items for the page script, which
// rebuilds the carousel from them after a change notification.
func (h *HomeHandler) ProjectsJSON(w http.ResponseWriter, r *http.Request) {
	items := carousel.Items(h.Projects.Projects())
	out := make([]cardJSON, len(items))
	for i, item := range items {
		out[i] = cardJSON{Item: item, DescriptionHTML: renderMarkdown(item.Description)}
	}
	writeJSON(w, http.StatusOK, out)
}
