package store

import (
	"context"
	"time"

	"github.com/alextreichler/portfolio/internal/models"
	"github.com/google/uuid"
)

// InsertContactMessage appends m to the contact log.
func (s *Store) InsertContactMessage(ctx context.Context, m *models.ContactMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `INSERT INTO contact_messages (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, m.ID, m.Name, m.Email, m.Message, formatTime(m.CreatedAt))
	return err
}

func (s *Store) ListContactMessages(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if limit < 1 {
		limit = 50
	}
	query := `SELECT id, name, email, message, created_at FROM contact_messages ORDER BY created_at DESC LIMIT ?`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ContactMessage
	for rows.Next() {
		var (
			m         models.ContactMessage
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
