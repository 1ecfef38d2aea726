package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/alextreichler/portfolio/internal/realtime"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var ErrNotFound = errors.New("store: not found")

// Timestamps are stored as fixed-width UTC text so ORDER BY created_at sorts
// chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	DB *sql.DB
	// Changes receives an event after every successful write. May be nil.
	Changes realtime.Publisher
}

func NewStore(dataSourceName string) (*Store, error) {
	if !strings.Contains(dataSourceName, "_pragma=") {
		sep := "?"
		if strings.Contains(dataSourceName, "?") {
			sep = "&"
		}
		dataSourceName += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) publish(ev realtime.Event) {
	if s.Changes != nil {
		s.Changes.Publish(ev)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	if t, err := time.Parse(timeLayout, v); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t
	}
	return time.Time{}
}
