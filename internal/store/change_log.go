// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// change_log.go records category change events in the database for audit
// and debugging purposes. Each entry captures the kind of mutation, the
// affected ids and the process that made it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wecamp/internal/events"
)

// ChangeLogStore handles category change log operations.
type ChangeLogStore struct {
	db *sql.DB
}

// NewChangeLogStore creates a new ChangeLogStore.
func NewChangeLogStore(db *sql.DB) *ChangeLogStore {
	return &ChangeLogStore{db: db}
}

// Log records a change event. Failures are logged, never returned.
func (s *ChangeLogStore) Log(ctx context.Context, e events.Event) {
	query, args, err := psql.Insert("category_change_log").
		Columns("kind", "category_ids", "origin").
		Values(string(e.Kind), strings.Join(e.IDs, ","), e.Origin).
		ToSql()
	if err == nil {
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Warn("failed to log category change",
			"kind", e.Kind,
			"ids", len(e.IDs),
			"error", err,
		)
		return
	}
	slog.Debug("category change logged", "kind", e.Kind, "ids", len(e.IDs))
}

// Run logs every event produced by origin until sub closes or ctx ends.
// Events relayed from other processes are skipped; their origin logs them.
func (s *ChangeLogStore) Run(ctx context.Context, sub <-chan events.Event, origin string) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if e.Origin == origin {
				s.Log(ctx, e)
			}
		}
	}
}

// Recent returns the most recent change entries, newest first.
func (s *ChangeLogStore) Recent(ctx context.Context, limit int) ([]ChangeLogEntry, error) {
	query, args, err := psql.Select("id", "kind", "category_ids", "origin", "created_at").
		From("category_change_log").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build change log query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var entries []ChangeLogEntry
	for rows.Next() {
		var e ChangeLogEntry
		var ids string
		if err := rows.Scan(&e.ID, &e.Kind, &ids, &e.Origin, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan change log: %w", err)
		}
		if ids != "" {
			e.CategoryIDs = strings.Split(ids, ",")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ChangeLogEntry is a single recorded change.
type ChangeLogEntry struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	CategoryIDs []string  `json:"categoryIds"`
	Origin      string    `json:"origin"`
	CreatedAt   time.Time `json:"createdAt"`
}
