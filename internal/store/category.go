// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"wecamp/internal/category"
	"wecamp/internal/models"
)

// psql builds Postgres-flavoured statements ($1, $2, ...).
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var categoryColumns = []string{
	"id", "name", "slug", "parent_id", "icon", "sort_order", "description",
	"created_at", "updated_at",
}

// CategoryStore manages categories in PostgreSQL.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Icon,
		&c.Order, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories in insertion order.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, category.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. An empty ID is replaced by
// a fresh UUID.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	query, args, err := psql.Insert("categories").
		Columns("id", "name", "slug", "parent_id", "icon", "sort_order", "description").
		Values(id, c.Name, c.Slug, c.ParentID, c.Icon, c.Order, c.Description).
		Suffix("RETURNING " + strings.Join(categoryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	result, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update overwrites the editable fields of an existing category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	query, args, err := psql.Update("categories").
		Set("name", c.Name).
		Set("slug", c.Slug).
		Set("icon", c.Icon).
		Set("sort_order", c.Order).
		Set("description", c.Description).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": c.ID}).
		Suffix("RETURNING " + strings.Join(categoryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	result, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, category.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// SwapOrder exchanges the sort_order of two categories in a transaction.
func (s *CategoryStore) SwapOrder(ctx context.Context, a, b string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args, err := psql.Select("id", "sort_order").From("categories").
		Where(sq.Eq{"id": []string{a, b}}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("build swap query: %w", err)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("lock categories: %w", err)
	}
	orders := make(map[string]int, 2)
	for rows.Next() {
		var id string
		var order int
		if err := rows.Scan(&id, &order); err != nil {
			rows.Close()
			return fmt.Errorf("scan sort order: %w", err)
		}
		orders[id] = order
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read sort orders: %w", err)
	}
	if len(orders) != 2 {
		return category.ErrNotFound
	}

	for _, p := range [][2]string{{a, b}, {b, a}} {
		id, other := p[0], p[1]
		query, args, err := psql.Update("categories").
			Set("sort_order", orders[other]).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build swap update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("swap category %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// DeleteMany removes categories in the given order within one transaction.
// Callers pass children before parents; the parent_id foreign key rejects
// anything that would leave an orphan.
func (s *CategoryStore) DeleteMany(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		query, args, err := psql.Delete("categories").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete category %s: %w", id, category.ErrNotFound)
		}
	}

	return tx.Commit()
}
