package handlers

import (
	"bytes"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// renderMarkdown turns a project description into HTML. Raw HTML in the
// source is dropped by goldmark's default renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		slog.Warn("Failed to render markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// imageSrc admits stored image references into src attributes. Data URIs
// must be images; anything else must be an http(s) URL or a site path.
func imageSrc(v string) template.URL {
	switch {
	case strings.HasPrefix(v, "data:image/"),
		strings.HasPrefix(v, "https://"),
		strings.HasPrefix(v, "http://"),
		strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//"):
		return template.URL(v)
	}
	return ""
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"markdown": renderMarkdown,
			"imgsrc":   imageSrc,
			"join":     strings.Join,
			"upper":    strings.ToUpper,
			"first": func(n int, tags []string) []string {
				if len(tags) > n {
					return tags[:n]
				}
				return tags
			},
		},
	}
}

func (tc *TemplateCache) AddFunc(name string, fn interface{}) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load parses every page in dir of fsys together with the shared partials
// in dir/partials.
func (tc *TemplateCache) Load(fsys fs.FS, dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	pages, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	partials, err := fs.Glob(fsys, path.Join(dir, "partials", "*.html"))
	if err != nil {
		return err
	}

	for _, page := range pages {
		name := path.Base(page)
		files := append([]string{page}, partials...)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, files...)
		if err != nil {
			slog.Error("Failed to parse template", "file", page, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}
