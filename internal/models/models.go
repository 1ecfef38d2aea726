package models

import (
	"time"
)

type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Brand       string    `json:"brand"` // category or client
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"image_url"` // data URI or external URL
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// SiteConfig is a single key/value row of site-wide settings.
type SiteConfig struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

const HeroImageKey = "hero_image"
