package theme

import (
	"math"
	"net/http"
	"time"
)

// CookieName is where the visitor's explicit choice is kept.
const CookieName = "theme"

// DefaultRevealDuration is how long the circular reveal animation runs.
const DefaultRevealDuration = 400 * time.Millisecond

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

func (m Mode) Dark() bool { return m == Dark }

// Class is the root element class for the mode.
func (m Mode) Class() string {
	if m == Dark {
		return "dark"
	}
	return ""
}

func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Parse accepts only the two persisted values.
func Parse(v string) (Mode, bool) {
	switch Mode(v) {
	case Dark:
		return Dark, true
	case Light:
		return Light, true
	}
	return "", false
}

// Resolve picks the mode: an explicit stored value wins, then the OS
// preference, then light.
func Resolve(stored string, prefersDark bool) Mode {
	if m, ok := Parse(stored); ok {
		return m
	}
	if prefersDark {
		return Dark
	}
	return Light
}

// FromRequest resolves the mode for r from the theme cookie and the
// Sec-CH-Prefers-Color-Scheme client hint.
func FromRequest(r *http.Request) Mode {
	stored := ""
	if c, err := r.Cookie(CookieName); err == nil {
		stored = c.Value
	}
	return Resolve(stored, r.Header.Get("Sec-CH-Prefers-Color-Scheme") == "dark")
}

// Stored reports whether r carries an explicit choice.
func Stored(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	_, ok := Parse(c.Value)
	return ok
}

// Persist writes m to the theme cookie.
func Persist(w http.ResponseWriter, m Mode, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(m),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RevealRadius is the distance from (x, y) to the farthest corner of a w×h
// viewport: the final radius of the circular reveal.
func RevealRadius(x, y, w, h float64) float64 {
	return math.Hypot(math.Max(x, w-x), math.Max(y, h-y))
}
