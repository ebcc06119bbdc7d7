// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category is the single source of truth for the WeCamp category
// collection. The Service validates mutations, enforces the tree rules
// (depth, guarded deletes, sibling swaps) and publishes a change event
// after every successful write.
package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"wecamp/internal/events"
	"wecamp/internal/models"
	"wecamp/internal/slug"
	"wecamp/internal/tree"
)

// Repository persists the flat category collection. List returns records
// in insertion order. FindByID and Update return ErrNotFound for unknown
// ids. SwapOrder and DeleteMany are atomic.
type Repository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	SwapOrder(ctx context.Context, a, b string) error
	DeleteMany(ctx context.Context, ids []string) error
}

// Fields are the inputs of a new category. A nil Order means "after the
// last sibling"; an empty Slug is generated from Name.
type Fields struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	ParentID    *string `json:"parentId"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Order       *int    `json:"order"`
}

// Patch holds an inline edit. Nil fields are left unchanged.
type Patch struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

// DeleteOptions controls Delete. Confirm must be set to delete a root
// category together with its subtree.
type DeleteOptions struct {
	Confirm bool
}

// Service implements the category operations on top of a Repository.
type Service struct {
	repo   Repository
	events events.Publisher
}

// NewService creates a Service. pub may be nil, in which case mutations
// are not announced.
func NewService(repo Repository, pub events.Publisher) *Service {
	return &Service{repo: repo, events: pub}
}

func (s *Service) publish(ctx context.Context, kind events.Kind, ids ...string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.New(kind, ids...))
}

// All returns every category in insertion order.
func (s *Service) All(ctx context.Context) ([]models.Category, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Get returns one category or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

// Roots returns the root categories sorted by order.
func (s *Service) Roots(ctx context.Context) ([]models.Category, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Siblings(all, nil), nil
}

// Children returns the direct children of parentID sorted by order.
func (s *Service) Children(ctx context.Context, parentID string) ([]models.Category, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Siblings(all, &parentID), nil
}

// Create validates f and stores a new category.
func (s *Service) Create(ctx context.Context, f Fields) (*models.Category, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	c := &models.Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(f.Name),
		Slug:        strings.TrimSpace(f.Slug),
		ParentID:    f.ParentID,
		Icon:        strings.TrimSpace(f.Icon),
		Description: strings.TrimSpace(f.Description),
	}
	if c.ParentID != nil && *c.ParentID == "" {
		c.ParentID = nil
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
	if err := validateFields(c.Name, c.Slug, c.Icon, c.Description); err != nil {
		return nil, err
	}

	role, err := roleUnder(all, c.ParentID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleLeaf {
		if err := checkLeafSlug(all, c.Slug, ""); err != nil {
			return nil, err
		}
	}

	if f.Order != nil {
		c.Order = *f.Order
	} else {
		c.Order = nextOrder(tree.Siblings(all, c.ParentID))
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	slog.Info("category created", "id", created.ID, "slug", created.Slug, "role", role)
	s.publish(ctx, events.KindCreated, created.ID)
	return created, nil
}

// roleUnder returns the role a new child of parentID would have. Nesting
// below a leaf is rejected so the tree never grows a fourth level.
func roleUnder(all []models.Category, parentID *string) (models.Role, error) {
	if parentID == nil {
		return models.RoleRoot, nil
	}
	parentRole, err := tree.Classify(all, *parentID)
	if errors.Is(err, tree.ErrUnknownCategory) {
		return "", invalid("parentId", "Parent category does not exist.")
	}
	if err != nil {
		return "", err
	}
	switch parentRole {
	case models.RoleRoot:
		return models.RoleColumn, nil
	case models.RoleColumn:
		return models.RoleLeaf, nil
	default:
		return "", ErrTooDeep
	}
}

// checkLeafSlug fails when another leaf (other than exceptID) uses slug.
func checkLeafSlug(all []models.Category, categorySlug, exceptID string) error {
	for _, leaf := range tree.Leaves(all) {
		if leaf.Slug == categorySlug && leaf.ID != exceptID {
			return ErrSlugTaken
		}
	}
	return nil
}

func nextOrder(siblings []models.Category) int {
	if len(siblings) == 0 {
		return 0
	}
	max := siblings[0].Order
	for _, sib := range siblings[1:] {
		if sib.Order > max {
			max = sib.Order
		}
	}
	return max + 1
}

// Update merges p into the category and stores it.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*models.Category, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c := *current
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Slug != nil {
		c.Slug = strings.TrimSpace(*p.Slug)
	}
	if p.Icon != nil {
		c.Icon = strings.TrimSpace(*p.Icon)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
	if err := validateFields(c.Name, c.Slug, c.Icon, c.Description); err != nil {
		return nil, err
	}

	if c.Slug != current.Slug {
		role, err := tree.Classify(all, c.ID)
		if err != nil {
			return nil, err
		}
		if role == models.RoleLeaf {
			if err := checkLeafSlug(all, c.Slug, c.ID); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.repo.Update(ctx, &c)
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	s.publish(ctx, events.KindUpdated, updated.ID)
	return updated, nil
}

// Delete removes a category. A non-root category with children is never
// deleted. A root with children is deleted together with its whole
// subtree, deepest first, but only when opts.Confirm is set. The removed
// ids are returned in deletion order.
func (s *Service) Delete(ctx context.Context, id string, opts DeleteOptions) ([]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	kids := tree.Siblings(all, &c.ID)
	if len(kids) > 0 {
		if !c.IsRoot() {
			return nil, ErrHasChildren
		}
		if !opts.Confirm {
			return nil, ErrConfirmRequired
		}
	}

	ids := append(tree.Descendants(all, c.ID), c.ID)
	if err := s.repo.DeleteMany(ctx, ids); err != nil {
		return nil, fmt.Errorf("delete category %s: %w", id, err)
	}
	slog.Info("category deleted", "id", id, "removed", len(ids))
	s.publish(ctx, events.KindDeleted, ids...)
	return ids, nil
}

// Swap exchanges the order values of two siblings. Swapping twice restores
// the original order; no other sibling is touched.
func (s *Service) Swap(ctx context.Context, aID, bID string) error {
	a, err := s.Get(ctx, aID)
	if err != nil {
		return err
	}
	b, err := s.Get(ctx, bID)
	if err != nil {
		return err
	}
	if !sameParent(a, b) {
		return ErrNotSiblings
	}
	if a.ID == b.ID {
		return nil
	}
	if err := s.repo.SwapOrder(ctx, a.ID, b.ID); err != nil {
		return fmt.Errorf("swap %s and %s: %w", a.ID, b.ID, err)
	}
	s.publish(ctx, events.KindReordered, a.ID, b.ID)
	return nil
}

func sameParent(a, b *models.Category) bool {
	if a.ParentID == nil || b.ParentID == nil {
		return a.ParentID == nil && b.ParentID == nil
	}
	return *a.ParentID == *b.ParentID
}

// MoveUp swaps the category with its previous sibling.
func (s *Service) MoveUp(ctx context.Context, id string) error {
	return s.move(ctx, id, -1)
}

// MoveDown swaps the category with its next sibling.
func (s *Service) MoveDown(ctx context.Context, id string) error {
	return s.move(ctx, id, +1)
}

func (s *Service) move(ctx context.Context, id string, step int) error {
	all, err := s.All(ctx)
	if err != nil {
		return err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	siblings := tree.Siblings(all, c.ParentID)
	pos := -1
	for i := range siblings {
		if siblings[i].ID == id {
			pos = i
			break
		}
	}
	target := pos + step
	if pos < 0 || target < 0 || target >= len(siblings) {
		return ErrCannotMove
	}

	// Swapping two order values only moves one place when every sibling
	// has a distinct order; spread ties out first.
	if !strictlyIncreasing(siblings) {
		if err := s.renumber(ctx, siblings); err != nil {
			return err
		}
	}
	return s.Swap(ctx, id, siblings[target].ID)
}

func strictlyIncreasing(siblings []models.Category) bool {
	for i := 1; i < len(siblings); i++ {
		if siblings[i].Order <= siblings[i-1].Order {
			return false
		}
	}
	return true
}

// renumber assigns 0..n-1 to siblings in their current display order.
func (s *Service) renumber(ctx context.Context, siblings []models.Category) error {
	for i := range siblings {
		if siblings[i].Order == i {
			continue
		}
		c := siblings[i]
		c.Order = i
		if _, err := s.repo.Update(ctx, &c); err != nil {
			return fmt.Errorf("renumber %s: %w", c.ID, err)
		}
	}
	return nil
}

// Search returns categories matching query, flattened and flagged with
// their root status. A non-empty role keeps only hits of that role.
func (s *Service) Search(ctx context.Context, query string, role models.Role) ([]tree.SearchHit, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	hits := tree.Search(all, query)
	if role == "" {
		return hits, nil
	}
	filtered := hits[:0]
	for _, h := range hits {
		if h.Role == role {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

// Project returns the nested view rooted at id.
func (s *Service) Project(ctx context.Context, id string) (tree.Node, error) {
	all, err := s.All(ctx)
	if err != nil {
		return tree.Node{}, err
	}
	n, err := tree.Project(id, all)
	if errors.Is(err, tree.ErrUnknownCategory) {
		return tree.Node{}, ErrNotFound
	}
	return n, err
}

// Forest returns every root projected.
func (s *Service) Forest(ctx context.Context) ([]tree.Node, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Forest(all), nil
}

// Leaves returns the flat leaf list used by the gear filter sidebar.
func (s *Service) Leaves(ctx context.Context) ([]tree.Leaf, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Leaves(all), nil
}

// AdminTree returns the editor view with the given nodes expanded.
func (s *Service) AdminTree(ctx context.Context, expanded map[string]bool) ([]tree.AdminNode, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return tree.AdminTree(all, expanded), nil
}

// Wizard returns the add-column/add-leaf helper state for editedID.
func (s *Service) Wizard(ctx context.Context, editedID, columnID string) (tree.Wizard, error) {
	all, err := s.All(ctx)
	if err != nil {
		return tree.Wizard{}, err
	}
	w, err := tree.WizardFor(all, editedID, columnID)
	if errors.Is(err, tree.ErrUnknownCategory) {
		return tree.Wizard{}, ErrNotFound
	}
	return w, err
}

// CreateColumn is wizard step 1: a column directly under root rootID.
func (s *Service) CreateColumn(ctx context.Context, rootID string, f Fields) (*models.Category, error) {
	w, err := s.Wizard(ctx, rootID, "")
	if err != nil {
		return nil, err
	}
	if !w.Step1Enabled {
		return nil, invalid("parentId", "Columns can only be added to a root category.")
	}
	f.ParentID = &rootID
	return s.Create(ctx, f)
}

// CreateLeaf is wizard step 2: a leaf under column columnID of root rootID.
func (s *Service) CreateLeaf(ctx context.Context, rootID, columnID string, f Fields) (*models.Category, error) {
	w, err := s.Wizard(ctx, rootID, columnID)
	if err != nil {
		return nil, err
	}
	if !w.Step2Enabled {
		return nil, invalid("parentId", "Select a column of this root category first.")
	}
	f.ParentID = &columnID
	return s.Create(ctx, f)
}

// LeafPage is a resolved /category/{slug} page.
type LeafPage struct {
	Category   models.Category `json:"category"`
	Path       string          `json:"path"`
	Breadcrumb []Crumb         `json:"breadcrumb"`
}

// Crumb is one breadcrumb entry. Only the leaf carries a path.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// LeafBySlug resolves a browsing slug. Only leaf categories are
// navigable; root and column slugs return ErrNotFound.
func (s *Service) LeafBySlug(ctx context.Context, leafSlug string) (*LeafPage, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, leaf := range tree.Leaves(all) {
		if leaf.Slug != leafSlug {
			continue
		}
		chain, err := tree.Ancestors(all, leaf.ID)
		if err != nil {
			return nil, err
		}
		page := &LeafPage{
			Category: chain[len(chain)-1],
			Path:     leaf.Path,
		}
		for i, c := range chain {
			crumb := Crumb{ID: c.ID, Name: c.Name}
			if i == len(chain)-1 {
				crumb.Path = leaf.Path
			}
			page.Breadcrumb = append(page.Breadcrumb, crumb)
		}
		return page, nil
	}
	return nil, ErrNotFound
}
