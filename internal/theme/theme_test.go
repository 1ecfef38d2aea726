package theme

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		stored      string
		prefersDark bool
		want        Mode
	}{
		{"stored dark beats light os", "dark", false, Dark},
		{"stored light beats dark os", "light", true, Light},
		{"no stored, os dark", "", true, Dark},
		{"no stored, os light", "", false, Light},
		{"garbage stored falls through", "purple", true, Dark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.stored, tt.prefersDark))
		})
	}
}

func TestFromRequest(t *testing.T) {
	t.Run("cookie wins over client hint", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "dark"})
		r.Header.Set("Sec-CH-Prefers-Color-Scheme", "light")
		assert.Equal(t, Dark, FromRequest(r))
		assert.True(t, Stored(r))
	})

	t.Run("client hint without cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Sec-CH-Prefers-Color-Scheme", "dark")
		assert.Equal(t, Dark, FromRequest(r))
		assert.False(t, Stored(r))
	})

	t.Run("nothing means light", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, Light, FromRequest(r))
	})
}

func TestToggleAndClass(t *testing.T) {
	assert.Equal(t, Dark, Light.Toggle())
	assert.Equal(t, Light, Dark.Toggle())
	assert.Equal(t, "dark", Dark.Class())
	assert.Equal(t, "", Light.Class())
}

func TestPersist(t *testing.T) {
	rec := httptest.NewRecorder()
	Persist(rec, Dark, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "dark", cookies[0].Value)
	assert.Equal(t, "/", cookies[0].Path)
}

func TestRevealRadius(t *testing.T) {
	// toggle in the top-right corner: farthest corner is bottom-left
	assert.InDelta(t, 500.0, RevealRadius(400, 0, 400, 300), 1e-9)
	// centre of a 600x800 viewport
	assert.InDelta(t, 500.0, RevealRadius(300, 400, 600, 800), 1e-9)
}
