package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alextreichler/portfolio/internal/carousel"
	"github.com/alextreichler/portfolio/internal/contact"
	"github.com/alextreichler/portfolio/internal/projects"
	"github.com/alextreichler/portfolio/internal/realtime"
	"github.com/alextreichler/portfolio/internal/store"
	"github.com/alextreichler/portfolio/web"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	err    error
	params []map[string]string
}

func (f *fakeSender) Send(ctx context.Context, params map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	return f.err
}

type testEnv struct {
	store    *store.Store
	broker   *realtime.Broker
	view     *projects.View
	sessions *sessions.CookieStore
	sender   *fakeSender

	home    *HomeHandler
	admin   *AdminHandler
	contact *ContactHandler
	theme   *ThemeHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewStore(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	broker := realtime.NewBroker()
	db.Changes = broker
	view := projects.NewView(db, broker)
	require.NoError(t, view.Refresh(context.Background()))

	templates := NewTemplateCache()
	require.NoError(t, templates.Load(web.FS, "templates"))

	sessionStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	sender := &fakeSender{}

	home := &HomeHandler{
		Projects:     view,
		SiteConfig:   db,
		Templates:    templates,
		SessionStore: sessionStore,
	}

	return &testEnv{
		store:    db,
		broker:   broker,
		view:     view,
		sessions: sessionStore,
		sender:   sender,
		home: home,
		admin: &AdminHandler{
			Password:     "letmein",
			Projects:     view,
			SiteConfig:   db,
			SessionStore: sessionStore,
			Templates:    templates,
		},
		contact: &ContactHandler{
			Flow:         contact.NewFlow(sender, db),
			SessionStore: sessionStore,
			Home:         home,
		},
		theme: &ThemeHandler{},
	}
}

// carryCookies copies the cookies set by a previous response onto req.
func carryCookies(req *http.Request, prev *httptest.ResponseRecorder) *http.Request {
	for _, c := range prev.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHomeIndex(t *testing.T) {
	t.Run("empty table shows the showcase set", func(t *testing.T) {
		env := newTestEnv(t)
		rec := httptest.NewRecorder()
		env.home.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "System UI Kit")
		assert.Contains(t, body, "Neural Dashboard")
		assert.Contains(t, body, "Hardware Control")
		assert.Contains(t, body, "card-active")
		assert.Contains(t, body, DefaultHeroImage)
	})

	t.Run("stored projects replace the showcase set", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.view.Add(context.Background(), projects.Draft{Title: "Orbit", Brand: "Space", Description: "**bold** move", Tags: "Go, Maps"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		env.home.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		body := rec.Body.String()
		assert.Contains(t, body, "Orbit")
		assert.Contains(t, body, "<strong>bold</strong>")
		assert.NotContains(t, body, "System UI Kit")
	})

	t.Run("slide query selects the active card", func(t *testing.T) {
		env := newTestEnv(t)
		rec := httptest.NewRecorder()
		env.home.Index(rec, httptest.NewRequest(http.MethodGet, "/?slide=2", nil))

		body := rec.Body.String()
		assert.Contains(t, body, `data-active="2"`)
		assert.Contains(t, body, `href="/?slide=1#projects" data-action="prev"`)
		assert.Contains(t, body, `href="/?slide=0#projects" data-action="next"`)
	})

	t.Run("configured hero image is used", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.store.SetSiteConfig(context.Background(), "hero_image", "https://cdn.example.com/me.jpg"))

		rec := httptest.NewRecorder()
		env.home.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Contains(t, rec.Body.String(), "https://cdn.example.com/me.jpg")
	})

	t.Run("dark theme cookie sets the root class", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
		rec := httptest.NewRecorder()
		env.home.Index(rec, req)
		assert.Contains(t, rec.Body.String(), `<html lang="en" class="dark"`)
	})

	t.Run("unknown path is not found", func(t *testing.T) {
		env := newTestEnv(t)
		rec := httptest.NewRecorder()
		env.home.Index(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProjectsJSON(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.view.Add(context.Background(), projects.Draft{Title: "Orbit", Description: "*new* maps"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.home.ProjectsJSON(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Orbit", items[0]["title"])
	assert.Equal(t, "#", items[0]["link"])
	assert.Equal(t, []any{}, items[0]["tags"])
	assert.Equal(t, "*new* maps", items[0]["description"])
	assert.Contains(t, items[0]["descriptionHtml"], "<em>new</em>")
}

func TestCards(t *testing.T) {
	cards, engine := Cards(make([]carousel.Item, 4), 5)

	assert.Equal(t, 1, engine.Active())
	assert.Equal(t, "previous", cards[0].Position)
	assert.Equal(t, "active", cards[1].Position)
	assert.Equal(t, "next", cards[2].Position)
	assert.Equal(t, "hidden", cards[3].Position)
	assert.True(t, cards[1].Interactive)
	assert.False(t, cards[0].Interactive)
}

func TestContactSubmit(t *testing.T) {
	valid := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"Hello"}}

	t.Run("success shows the banner once and logs the message", func(t *testing.T) {
		env := newTestEnv(t)
		rec := httptest.NewRecorder()
		env.contact.Submit(rec, postForm("/contact", valid))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/#contact", rec.Header().Get("Location"))
		require.Len(t, env.sender.params, 1)
		assert.Equal(t, "Ada", env.sender.params[0]["name"])

		msgs, err := env.store.ListContactMessages(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "ada@example.com", msgs[0].Email)

		page := httptest.NewRecorder()
		env.home.Index(page, carryCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec))
		body := page.Body.String()
		assert.Contains(t, body, contact.SuccessMessage)
		assert.Contains(t, body, "banner-ok")
		assert.NotContains(t, body, `value="Ada"`)

		again := httptest.NewRecorder()
		env.home.Index(again, carryCookies(httptest.NewRequest(http.MethodGet, "/", nil), page))
		assert.NotContains(t, again.Body.String(), contact.SuccessMessage)
	})

	t.Run("email failure keeps the form", func(t *testing.T) {
		env := newTestEnv(t)
		env.sender.err = errors.New("service down")
		rec := httptest.NewRecorder()
		env.contact.Submit(rec, postForm("/contact", valid))

		page := httptest.NewRecorder()
		env.home.Index(page, carryCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec))
		body := page.Body.String()
		assert.Contains(t, body, contact.FailureMessage)
		assert.Contains(t, body, "banner-failed")
		assert.Contains(t, body, `value="Ada"`)

		msgs, err := env.store.ListContactMessages(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("json caller gets a status code", func(t *testing.T) {
		env := newTestEnv(t)
		env.sender.err = errors.New("service down")
		req := postForm("/contact", valid)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		env.contact.Submit(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		var resp contactResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.OK)
		assert.Equal(t, contact.FailureMessage, resp.Banner)
	})

	t.Run("invalid submission never reaches the sender", func(t *testing.T) {
		env := newTestEnv(t)
		req := postForm("/contact", url.Values{"name": {"Ada"}, "email": {"nope"}})
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		env.contact.Submit(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Empty(t, env.sender.params)
		var resp contactResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "email")
		assert.Contains(t, resp.Errors, "message")
	})
}

func TestContactLongMessageRendersInline(t *testing.T) {
	env := newTestEnv(t)
	env.sender.err = errors.New("service down")
	long := strings.Repeat("lorem ipsum ", 300)

	rec := httptest.NewRecorder()
	env.contact.Submit(rec, postForm("/contact", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {long}}))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, contact.FailureMessage)
	assert.Contains(t, body, `value="Ada"`)
	assert.Contains(t, body, strings.TrimSpace(long))
	assert.NotRegexp(t, `id="contact-banner"[^>]*\s+hidden`, body)
}

func TestContactBannerExpires(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.contact.Submit(rec, postForm("/contact", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"Hi"}}))

	env.home.Now = func() time.Time { return time.Now().Add(contact.BannerDuration + time.Second) }
	page := httptest.NewRecorder()
	env.home.Index(page, carryCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	assert.Regexp(t, `id="contact-banner"[^>]*\s+hidden`, page.Body.String())
}

func TestThemeToggle(t *testing.T) {
	t.Run("flips the stored mode", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/theme", nil)
		req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
		req.Header.Set("Referer", "http://example.com/?slide=2")
		req.Host = "example.com"
		rec := httptest.NewRecorder()
		env.theme.Toggle(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?slide=2", rec.Header().Get("Location"))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "theme", cookies[0].Name)
		assert.Equal(t, "light", cookies[0].Value)
	})

	t.Run("falls back to the OS preference", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/theme", nil)
		req.Header.Set("Sec-CH-Prefers-Color-Scheme", "dark")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		env.theme.Toggle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())
	})

	t.Run("stores the mode the page shows", func(t *testing.T) {
		env := newTestEnv(t)
		// The hint says dark but the page rendered light and asks for dark.
		req := postForm("/theme", url.Values{"theme": {"dark"}})
		req.Header.Set("Sec-CH-Prefers-Color-Scheme", "dark")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		env.theme.Toggle(rec, req)

		assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "dark", cookies[0].Value)
	})

	t.Run("foreign referer goes home", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/theme", nil)
		req.Header.Set("Referer", "https://evil.example.net/phish")
		rec := httptest.NewRecorder()
		env.theme.Toggle(rec, req)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})
}

func TestSecurityHeadersRequestColorScheme(t *testing.T) {
	h := SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "Sec-CH-Prefers-Color-Scheme", rec.Header().Get("Accept-CH"))
	assert.Equal(t, "Sec-CH-Prefers-Color-Scheme", rec.Header().Get("Critical-CH"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data:")
}

func TestHomeMarksUnstoredTheme(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.home.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `data-theme-stored="false"`)
	assert.Contains(t, body, `<script src="/static/theme.js"></script>`)
}
