package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alextreichler/portfolio/internal/models"
	"github.com/alextreichler/portfolio/internal/realtime"
	"github.com/google/uuid"
)

const projectColumns = `id, title, brand, description, tags, image_url, link, created_at`

// ListProjects returns every project, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM portfolio_projects ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM portfolio_projects WHERE id = ?`
	p, err := scanProject(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// InsertProject stores p and returns the row as read back from the table.
// ID and CreatedAt are assigned when empty.
func (s *Store) InsertProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	row := *p
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if row.Tags == nil {
		row.Tags = []string{}
	}
	tags, err := json.Marshal(row.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	query := `
		INSERT INTO portfolio_projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.DB.ExecContext(ctx, query, row.ID, row.Title, row.Brand, row.Description, string(tags), row.ImageURL, row.Link, formatTime(row.CreatedAt))
	if err != nil {
		return nil, err
	}

	stored, err := s.GetProject(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	s.publish(realtime.Event{Table: realtime.TableProjects, Type: realtime.EventInsert})
	return stored, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM portfolio_projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.publish(realtime.Event{Table: realtime.TableProjects, Type: realtime.EventDelete})
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*models.Project, error) {
	var (
		p         models.Project
		tags      string
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Brand, &p.Description, &tags, &p.ImageURL, &p.Link, &createdAt); err != nil {
		return nil, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for project %s: %w", p.ID, err)
		}
	}
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}
