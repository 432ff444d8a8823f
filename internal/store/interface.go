package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("summary not found")

// Record is one stored summary.
type Record struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	Mode      string    `json:"mode"`
	Source    string    `json:"source"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists finished summaries.
type Store interface {
	// Save assigns ID and CreatedAt when empty and returns the stored record.
	Save(ctx context.Context, r Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	// List returns the most recent records first.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
