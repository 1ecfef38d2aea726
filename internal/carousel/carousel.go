// Package carousel holds the project showcase rotation: a circular active
// index over display items, advanced by a timer, swipes, and explicit
// controls.
package carousel

import (
	"github.com/alextreichler/portfolio/internal/models"
)

// SwipeThreshold is the horizontal drag, in pixels, a swipe must exceed.
const SwipeThreshold = 50

// Item is the display projection of a project.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl"`
	Link        string   `json:"link"`
}

var fallbackItems = []Item{
	{ID: "1", Title: "System UI Kit", Brand: "Interface", Description: "Comprehensive design system for next-gen OS.", Tags: []string{"React", "Figma"}, Link: "#"},
	{ID: "2", Title: "Neural Dashboard", Brand: "Analytics", Description: "AI-driven data visualization platform.", Tags: []string{"Python", "D3.js"}, Link: "#"},
	{ID: "3", Title: "Hardware Control", Brand: "IoT", Description: "Mobile interface for smart home devices.", Tags: []string{"Flutter", "IoT"}, Link: "#"},
}

// Items projects stored projects into display items. An empty input yields
// the static showcase set so the carousel never renders empty.
func Items(projects []models.Project) []Item {
	if len(projects) == 0 {
		out := make([]Item, len(fallbackItems))
		copy(out, fallbackItems)
		return out
	}
	items := make([]Item, 0, len(projects))
	for _, p := range projects {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		link := p.Link
		if link == "" {
			link = "#"
		}
		items = append(items, Item{
			ID:          p.ID,
			Title:       p.Title,
			Brand:       p.Brand,
			Description: p.Description,
			Tags:        tags,
			ImageURL:    p.ImageURL,
			Link:        link,
		})
	}
	return items
}

// Position classifies a card by its distance from the active one.
type Position int

const (
	Hidden Position = iota
	Active
	Next
	Previous
)

func (p Position) String() string {
	switch p {
	case Active:
		return "active"
	case Next:
		return "next"
	case Previous:
		return "previous"
	default:
		return "hidden"
	}
}

// Engine is the rotation state. The zero value is unusable; use New.
type Engine struct {
	active   int
	n        int
	InView   bool
	Hovering bool
}

func New(n int) *Engine {
	if n < 1 {
		n = 1
	}
	return &Engine{n: n}
}

func (e *Engine) Len() int    { return e.n }
func (e *Engine) Active() int { return e.active }

// Resize changes the item count, clamping the active index into range.
func (e *Engine) Resize(n int) {
	if n < 1 {
		n = 1
	}
	e.n = n
	e.active = mod(e.active, n)
}

func (e *Engine) Next() { e.active = mod(e.active+1, e.n) }
func (e *Engine) Prev() { e.active = mod(e.active-1, e.n) }

// Select jumps straight to index i (taken modulo the length).
func (e *Engine) Select(i int) { e.active = mod(i, e.n) }

// Tick is the auto-advance step. It only moves while the carousel is on
// screen and not hovered, and reports whether it moved.
func (e *Engine) Tick() bool {
	if !e.InView || e.Hovering {
		return false
	}
	e.Next()
	return true
}

// Swipe handles a completed horizontal drag where distance is start minus
// end. Leftward drags past the threshold advance, rightward ones go back.
func (e *Engine) Swipe(distance int) bool {
	switch {
	case distance > SwipeThreshold:
		e.Next()
		return true
	case distance < -SwipeThreshold:
		e.Prev()
		return true
	}
	return false
}

func (e *Engine) Position(i int) Position {
	i = mod(i, e.n)
	switch {
	case i == e.active:
		return Active
	case i == mod(e.active+1, e.n):
		return Next
	case i == mod(e.active-1, e.n):
		return Previous
	}
	return Hidden
}

// Interactive reports whether card i accepts pointer input.
func (e *Engine) Interactive(i int) bool {
	return e.Position(i) == Active
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
