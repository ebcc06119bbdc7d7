// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package navbar turns the projected category forest into the mega-menu
// view model: one top-level entry per root, each opening a grid with one
// column per column category listing its leaves as links.
package navbar

import (
	"wecamp/internal/models"
	"wecamp/internal/tree"
)

// Link is a navigable leaf entry.
type Link struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Column is one grid column of an open menu, headed by a column category.
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Links []Link `json:"links"`
}

// Menu is a top-level navbar entry. Exactly one of Columns and Flat is
// set for a root with content: Flat is used when the header of a lone
// column would only repeat information.
type Menu struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Slug    string   `json:"slug"`
	Icon    string   `json:"icon,omitempty"`
	Columns []Column `json:"columns,omitempty"`
	Flat    []Link   `json:"flat,omitempty"`
}

// Empty reports whether opening the menu would show nothing.
func (m Menu) Empty() bool {
	return len(m.Columns) == 0 && len(m.Flat) == 0
}

// Build lays out one Menu per root, in sibling order. A root with exactly
// one column whose children are all leaves is collapsed into a flat list.
func Build(forest []tree.Node) []Menu {
	menus := make([]Menu, 0, len(forest))
	for _, root := range forest {
		m := Menu{ID: root.ID, Name: root.Name, Slug: root.Slug, Icon: root.Icon}
		if collapsible(root) {
			m.Flat = links(root.Children[0].Children)
		} else {
			for _, col := range root.Children {
				m.Columns = append(m.Columns, Column{
					ID:    col.ID,
					Name:  col.Name,
					Links: links(col.Children),
				})
			}
		}
		menus = append(menus, m)
	}
	return menus
}

func collapsible(root tree.Node) bool {
	if len(root.Children) != 1 {
		return false
	}
	col := root.Children[0]
	if len(col.Children) == 0 {
		return false
	}
	for _, c := range col.Children {
		if c.Role != models.RoleLeaf {
			return false
		}
	}
	return true
}

func links(nodes []tree.Node) []Link {
	out := make([]Link, 0, len(nodes))
	for _, n := range nodes {
		if n.Path == "" {
			continue
		}
		out = append(out, Link{ID: n.ID, Name: n.Name, Path: n.Path})
	}
	return out
}

// Find returns the menu with the given root id.
func Find(menus []Menu, rootID string) (Menu, bool) {
	for _, m := range menus {
		if m.ID == rootID {
			return m, true
		}
	}
	return Menu{}, false
}
