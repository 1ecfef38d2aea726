// Package projects keeps a locally cached, eventually consistent copy of the
// portfolio_projects table for rendering, and applies admin edits to it.
package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alextreichler/portfolio/internal/models"
	"github.com/alextreichler/portfolio/internal/realtime"
	"github.com/alextreichler/portfolio/internal/store"
)

// Backend is the subset of the store the view talks to.
type Backend interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	InsertProject(ctx context.Context, p *models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// Feed hands out change subscriptions.
type Feed interface {
	Subscribe(table string) *realtime.Subscription
}

var ErrInvalid = errors.New("projects: invalid entry")

// Draft is the admin form as submitted.
type Draft struct {
	Title       string
	Brand       string
	Description string
	Tags        string // comma separated
	Link        string
	ImageURL    string
}

// SplitTags turns "a, b,,c " into [a b c].
func SplitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Record builds the row to insert.
func (d Draft) Record() (*models.Project, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	link := strings.TrimSpace(d.Link)
	if link == "" {
		link = "#"
	}
	return &models.Project{
		Title:       strings.TrimSpace(d.Title),
		Brand:       strings.TrimSpace(d.Brand),
		Description: d.Description,
		Tags:        SplitTags(d.Tags),
		ImageURL:    d.ImageURL,
		Link:        link,
	}, nil
}

// View is the cached project list. Overlapping refreshes are not ordered:
// whichever read finishes last wins.
type View struct {
	backend Backend
	feed    Feed

	mu       sync.RWMutex
	projects []models.Project
}

func NewView(backend Backend, feed Feed) *View {
	return &View{backend: backend, feed: feed, projects: []models.Project{}}
}

// Projects returns a copy of the cached list.
func (v *View) Projects() []models.Project {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Project, len(v.projects))
	copy(out, v.projects)
	return out
}

func (v *View) set(projects []models.Project) {
	if projects == nil {
		projects = []models.Project{}
	}
	v.mu.Lock()
	v.projects = projects
	v.mu.Unlock()
}

// Refresh re-reads the full table. On failure the cache is left as it was.
func (v *View) Refresh(ctx context.Context) error {
	projects, err := v.backend.ListProjects(ctx)
	if err != nil {
		slog.Error("Error fetching projects", "error", err)
		return err
	}
	v.set(projects)
	return nil
}

// Watch refreshes on every change to the projects table until ctx ends.
// onChange, if set, runs after each refresh attempt.
func (v *View) Watch(ctx context.Context, onChange func()) {
	sub := v.feed.Subscribe(realtime.TableProjects)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			slog.Debug("Projects changed, refetching", "event", ev.Type)
			v.Refresh(ctx)
			if onChange != nil {
				onChange()
			}
		}
	}
}

// Add inserts the draft and, once the backend confirms, puts the stored row
// at the top of the cache.
func (v *View) Add(ctx context.Context, d Draft) (*models.Project, error) {
	record, err := d.Record()
	if err != nil {
		return nil, err
	}

	stored, err := v.backend.InsertProject(ctx, record)
	if err != nil {
		slog.Error("Error adding project", "error", err)
		return nil, err
	}

	v.mu.Lock()
	// The insert notification may already have refetched the row.
	if !containsID(v.projects, stored.ID) {
		v.projects = append([]models.Project{*stored}, v.projects...)
	}
	v.mu.Unlock()
	return stored, nil
}

// Delete drops id from the cache first, then asks the backend. If the
// backend refuses, the error is returned and the cache is rebuilt from a
// full read.
func (v *View) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	kept := make([]models.Project, 0, len(v.projects))
	for _, p := range v.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	v.projects = kept
	v.mu.Unlock()

	err := v.backend.DeleteProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// already gone on the server
		return nil
	}
	if err != nil {
		slog.Error("Error deleting project", "id", id, "error", err)
		v.Refresh(ctx)
		return err
	}
	return nil
}

func containsID(projects []models.Project, id string) bool {
	for _, p := range projects {
		if p.ID == id {
			return true
		}
	}
	return false
}
