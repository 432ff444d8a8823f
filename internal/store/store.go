package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// Fixed width so created_at sorts correctly as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

func (s *implStore) Save(ctx context.Context, r Record) (Record, error) {
	if r.VideoID == "" {
		return Record{}, errors.New("store: video id is required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, video_id, title, content, language, mode, source, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.VideoID, r.Title, r.Content, r.Language, r.Mode, r.Source, r.Model,
		r.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Record{}, fmt.Errorf("store: insert: %w", err)
	}
	return r, nil
}

func (s *implStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, title, content, language, mode, source, model, created_at
		 FROM summaries WHERE id = ?`, id)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: get: %w", err)
	}
	return r, nil
}

func (s *implStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, title, content, language, mode, source, model, created_at
		 FROM summaries ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r                                    Record
		title, content, lang, mode, src, mdl sql.NullString
		createdAt                            string
	)
	if err := sc.Scan(&r.ID, &r.VideoID, &title, &content, &lang, &mode, &src, &mdl, &createdAt); err != nil {
		return Record{}, err
	}
	r.Title = title.String
	r.Content = content.String
	r.Language = lang.String
	r.Mode = mode.String
	r.Source = src.String
	r.Model = mdl.String

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	return r, nil
}
