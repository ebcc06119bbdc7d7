// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// memory.go is the offline/demo category store: the collection lives in
// process memory and, when a path is given, is mirrored to a JSON file
// after every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"wecamp/internal/category"
	"wecamp/internal/models"
	"wecamp/internal/tree"
)

// MemoryStore keeps categories in insertion order behind a RWMutex.
type MemoryStore struct {
	mu    sync.RWMutex
	items []models.Category
	path  string
}

// NewMemoryStore returns an empty store. When path is non-empty the file is
// loaded if it exists, and rewritten after each mutation.
func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read category file: %w", err)
	}

	var items []models.Category
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse category file %s: %w", path, err)
	}
	if err := tree.CheckForest(items); err != nil {
		return nil, fmt.Errorf("category file %s: %w", path, err)
	}
	s.items = items
	slog.Info("category file loaded", "path", path, "count", len(items))
	return s, nil
}

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the collection to disk. Callers hold the write lock.
func (s *MemoryStore) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".categories-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace category file: %w", err)
	}
	return nil
}

// List returns a copy of every category in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, len(s.items))
	copy(out, s.items)
	return out, nil
}

// FindByID returns the category with the given id.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, category.ErrNotFound
	}
	c := s.items[i]
	return &c, nil
}

// Create appends a category. An empty ID is replaced by a fresh UUID.
func (s *MemoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *c
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if s.indexOf(created.ID) >= 0 {
		return nil, fmt.Errorf("create category: %w: %s", tree.ErrDuplicateID, created.ID)
	}
	if created.ParentID != nil && s.indexOf(*created.ParentID) < 0 {
		return nil, fmt.Errorf("create category: %w: %s", tree.ErrDanglingParent, *created.ParentID)
	}
	now := time.Now().UTC()
	created.CreatedAt, created.UpdatedAt = now, now

	s.items = append(s.items, created)
	if err := s.persist(); err != nil {
		s.items = s.items[:len(s.items)-1]
		return nil, err
	}
	return &created, nil
}

// Update overwrites the editable fields of an existing category. The
// parent link is not editable.
func (s *MemoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(c.ID)
	if i < 0 {
		return nil, category.ErrNotFound
	}
	prev := s.items[i]
	next := prev
	next.Name = c.Name
	next.Slug = c.Slug
	next.Icon = c.Icon
	next.Order = c.Order
	next.Description = c.Description
	next.UpdatedAt = time.Now().UTC()

	s.items[i] = next
	if err := s.persist(); err != nil {
		s.items[i] = prev
		return nil, err
	}
	return &next, nil
}

// SwapOrder exchanges the order values of two categories.
func (s *MemoryStore) SwapOrder(ctx context.Context, a, b string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ia, ib := s.indexOf(a), s.indexOf(b)
	if ia < 0 || ib < 0 {
		return category.ErrNotFound
	}
	now := time.Now().UTC()
	s.items[ia].Order, s.items[ib].Order = s.items[ib].Order, s.items[ia].Order
	s.items[ia].UpdatedAt, s.items[ib].UpdatedAt = now, now
	if err := s.persist(); err != nil {
		s.items[ia].Order, s.items[ib].Order = s.items[ib].Order, s.items[ia].Order
		return err
	}
	return nil
}

// DeleteMany removes the given categories in order. Nothing is removed if
// any id is unknown or if a removal would orphan a remaining child.
func (s *MemoryStore) DeleteMany(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	items := make([]models.Category, len(s.items))
	copy(items, s.items)

	for _, id := range ids {
		idx := -1
		for i := range items {
			if items[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("delete category %s: %w", id, category.ErrNotFound)
		}
		for i := range items {
			if items[i].HasParent(id) {
				return fmt.Errorf("delete category %s: %w", id, category.ErrHasChildren)
			}
		}
		items = append(items[:idx], items[idx+1:]...)
	}

	s.items = items
	if err := s.persist(); err != nil {
		s.items = prev
		return err
	}
	return nil
}
