// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree projects the flat category collection into the nested,
// role-annotated view models used by the navbar, the admin editor and the
// gear filter sidebar. Everything here is pure: no I/O, no shared state.
//
// Input lists must form a forest. The projector does not detect cycles;
// CheckForest does, and the stores run it on anything loaded from outside.
package tree

import (
	"errors"
	"sort"

	"wecamp/internal/models"
)

// PathPrefix is the browsing path prefix of leaf categories.
const PathPrefix = "/category/"

// ErrUnknownCategory is returned when a projection starts from an id that
// is not in the list.
var ErrUnknownCategory = errors.New("unknown category")

// Node is one category in a projected tree. Path is only set on leaves.
// Children is nil (and omitted from JSON) when the node has none, so
// clients can tell "no children" apart from "children not computed".
type Node struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Icon        string      `json:"icon,omitempty"`
	Description string      `json:"description,omitempty"`
	Role        models.Role `json:"role"`
	Path        string      `json:"path,omitempty"`
	Children    []Node      `json:"children,omitempty"`
}

// Path returns the browsing path of a leaf category.
func Path(slug string) string {
	return PathPrefix + slug
}

// index is a lookup structure over a flat list. Children are kept in
// input order and then stable-sorted by Order, so equal orders keep their
// insertion order.
type index struct {
	byID     map[string]*models.Category
	children map[string][]*models.Category
	roots    []*models.Category
}

func newIndex(flat []models.Category) *index {
	ix := &index{
		byID:     make(map[string]*models.Category, len(flat)),
		children: make(map[string][]*models.Category),
	}
	for i := range flat {
		c := &flat[i]
		ix.byID[c.ID] = c
		if c.ParentID == nil {
			ix.roots = append(ix.roots, c)
			continue
		}
		ix.children[*c.ParentID] = append(ix.children[*c.ParentID], c)
	}
	sortByOrder(ix.roots)
	for _, kids := range ix.children {
		sortByOrder(kids)
	}
	return ix
}

func sortByOrder(cats []*models.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Order < cats[j].Order
	})
}

// role classifies c by looking only at its immediate parent.
func (ix *index) role(c *models.Category) models.Role {
	if c.ParentID == nil {
		return models.RoleRoot
	}
	parent, ok := ix.byID[*c.ParentID]
	if ok && parent.ParentID == nil {
		return models.RoleColumn
	}
	return models.RoleLeaf
}

func (ix *index) project(c *models.Category) Node {
	n := Node{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Icon:        c.Icon,
		Description: c.Description,
		Role:        ix.role(c),
	}
	if n.Role == models.RoleLeaf {
		n.Path = Path(c.Slug)
		return n
	}
	for _, child := range ix.children[c.ID] {
		n.Children = append(n.Children, ix.project(child))
	}
	return n
}

// Classify returns the role of the category with the given id.
// A category whose parent is missing from the list is classified as a
// leaf, the same as anything below a column.
func Classify(flat []models.Category, id string) (models.Role, error) {
	ix := newIndex(flat)
	c, ok := ix.byID[id]
	if !ok {
		return "", ErrUnknownCategory
	}
	return ix.role(c), nil
}

// Project builds the nested view rooted at the category with the given id.
// Recursion stops at leaves, so the result is at most three levels deep
// even when the stored tree is deeper.
func Project(id string, flat []models.Category) (Node, error) {
	ix := newIndex(flat)
	c, ok := ix.byID[id]
	if !ok {
		return Node{}, ErrUnknownCategory
	}
	return ix.project(c), nil
}

// Forest projects every root category, in sibling order.
func Forest(flat []models.Category) []Node {
	ix := newIndex(flat)
	nodes := make([]Node, 0, len(ix.roots))
	for _, r := range ix.roots {
		nodes = append(nodes, ix.project(r))
	}
	return nodes
}

// Leaf is one navigable category in the flat filter list, labelled with
// the names of the root and column it sits under.
type Leaf struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Path   string `json:"path"`
	Root   string `json:"root"`
	Column string `json:"column"`
}

// Leaves returns every leaf reachable from a root, in navbar order.
func Leaves(flat []models.Category) []Leaf {
	var leaves []Leaf
	for _, root := range Forest(flat) {
		for _, col := range root.Children {
			for _, leaf := range col.Children {
				leaves = append(leaves, Leaf{
					ID:     leaf.ID,
					Name:   leaf.Name,
					Slug:   leaf.Slug,
					Path:   leaf.Path,
					Root:   root.Name,
					Column: col.Name,
				})
			}
		}
	}
	return leaves
}

// Ancestors returns the chain from the root down to (and including) the
// category with the given id. Missing parents end the walk.
func Ancestors(flat []models.Category, id string) ([]models.Category, error) {
	ix := newIndex(flat)
	c, ok := ix.byID[id]
	if !ok {
		return nil, ErrUnknownCategory
	}
	chain := []models.Category{*c}
	seen := map[string]bool{c.ID: true}
	for c.ParentID != nil {
		parent, ok := ix.byID[*c.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append([]models.Category{*parent}, chain...)
		c = parent
	}
	return chain, nil
}

// Descendants returns every category below id, deepest first, so that
// deleting them in order never leaves a child without its parent.
func Descendants(flat []models.Category, id string) []string {
	ix := newIndex(flat)
	var out []string
	seen := map[string]bool{id: true}
	var walk func(parent string)
	walk = func(parent string) {
		for _, child := range ix.children[parent] {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			walk(child.ID)
			out = append(out, child.ID)
		}
	}
	walk(id)
	return out
}

// Siblings returns the categories sharing parentID (nil for roots), sorted
// by order with ties in input order.
func Siblings(flat []models.Category, parentID *string) []models.Category {
	ix := newIndex(flat)
	var kids []*models.Category
	if parentID == nil {
		kids = ix.roots
	} else {
		kids = ix.children[*parentID]
	}
	out := make([]models.Category, 0, len(kids))
	for _, c := range kids {
		out = append(out, *c)
	}
	return out
}
