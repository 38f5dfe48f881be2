// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// EventStore reads and writes the operator event log.
type EventStore struct {
	db     *sql.DB
	schema *Schema
}

// CreateEvent appends an event. It does not trigger schema initialization:
// events logged before the schema is ready fail with ErrUnavailable, which
// keeps a failing migration from recursing through the log handler.
func (s *EventStore) CreateEvent(ctx context.Context, e model.Event) error {
	const op = "events.create"
	if !s.schema.Ready() {
		return &Error{Op: op, Kind: ErrUnavailable}
	}
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_log (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Level, e.Category, e.Message, e.Metadata, e.CreatedAt.UTC())
	return classify(op, err)
}

// ListEvents returns the most recent events, newest first.
func (s *EventStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	const op = "events.list"
	if err := s.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, category, message, metadata, created_at
		 FROM event_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, classify(op, err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, classify(op, err)
		}
		events = append(events, e)
	}
	return events, classify(op, rows.Err())
}

// DeleteEventsBefore removes events older than cutoff and returns how many were removed.
func (s *EventStore) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "events.prune"
	if err := s.schema.Ensure(ctx); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM event_log WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, classify(op, err)
	}
	n, err := res.RowsAffected()
	return n, classify(op, err)
}
