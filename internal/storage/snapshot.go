// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"wecamp/internal/events"
	"wecamp/internal/models"
	"wecamp/internal/navbar"
	"wecamp/internal/tree"
)

// Snapshot object names.
const (
	NavbarObject     = "navbar.json"
	CategoriesObject = "categories.json"
)

// Uploader stores a named object. *Client implements it.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body []byte) error
}

// Source provides the data a snapshot is built from.
type Source interface {
	All(ctx context.Context) ([]models.Category, error)
}

// NavbarSnapshot is the body of navbar.json.
type NavbarSnapshot struct {
	Menus       []navbar.Menu `json:"menus"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// CategoriesSnapshot is the body of categories.json.
type CategoriesSnapshot struct {
	Categories  []models.Category `json:"categories"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// SnapshotPublisher uploads the navbar and the flat category list after
// changes so the storefront can boot from the CDN alone.
type SnapshotPublisher struct {
	up      Uploader
	src     Source
	timeout time.Duration
	now     func() time.Time
}

// NewSnapshotPublisher creates a publisher. timeout bounds one upload
// round; zero means 30 seconds.
func NewSnapshotPublisher(up Uploader, src Source, timeout time.Duration) *SnapshotPublisher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SnapshotPublisher{up: up, src: src, timeout: timeout, now: time.Now}
}

// Publish builds and uploads both snapshots.
func (p *SnapshotPublisher) Publish(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	all, err := p.src.All(ctx)
	if err != nil {
		return fmt.Errorf("snapshot source: %w", err)
	}
	if err := tree.CheckForest(all); err != nil {
		return fmt.Errorf("snapshot source: %w", err)
	}
	at := p.now().UTC()

	nav, err := json.Marshal(NavbarSnapshot{Menus: navbar.Build(tree.Forest(all)), GeneratedAt: at})
	if err != nil {
		return fmt.Errorf("encode navbar snapshot: %w", err)
	}
	cats, err := json.Marshal(CategoriesSnapshot{Categories: all, GeneratedAt: at})
	if err != nil {
		return fmt.Errorf("encode categories snapshot: %w", err)
	}

	if err := p.up.Upload(ctx, NavbarObject, "application/json", nav); err != nil {
		return err
	}
	if err := p.up.Upload(ctx, CategoriesObject, "application/json", cats); err != nil {
		return err
	}
	slog.Info("category snapshot published", "categories", len(all))
	return nil
}

// Run publishes once per burst of events on sub until ctx ends or sub
// closes. Failures are logged; the next change retries naturally.
func (p *SnapshotPublisher) Run(ctx context.Context, sub <-chan events.Event, cfg events.DebounceConfig) {
	d := events.NewDebouncer(cfg, func(e events.Event) {
		if err := p.Publish(context.WithoutCancel(ctx)); err != nil {
			slog.Error("category snapshot failed", "kind", e.Kind, "error", err)
		}
	})
	d.Run(ctx, sub)
}
