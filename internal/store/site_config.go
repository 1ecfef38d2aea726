package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alextreichler/portfolio/internal/models"
	"github.com/alextreichler/portfolio/internal/realtime"
)

func (s *Store) GetSiteConfig(ctx context.Context, key string) (*models.SiteConfig, error) {
	var (
		c         models.SiteConfig
		updatedAt string
	)
	query := `SELECT key, value, updated_at FROM site_config WHERE key = ?`
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&c.Key, &c.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// SetSiteConfig upserts key and publishes the new value with the change.
func (s *Store) SetSiteConfig(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO site_config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.DB.ExecContext(ctx, query, key, value, formatTime(time.Now())); err != nil {
		return err
	}
	s.publish(realtime.Event{Table: realtime.TableSiteConfig, Type: realtime.EventUpdate, Key: key, Value: value})
	return nil
}
