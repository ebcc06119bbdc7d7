// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"strings"

	"golang.org/x/text/cases"

	"wecamp/internal/models"
)

// AdminNode is one row of the admin category editor. Unlike Node it walks
// the full stored hierarchy and carries the flags the editor needs to
// enable or disable its controls.
type AdminNode struct {
	models.Category
	Role               models.Role `json:"role"`
	Path               string      `json:"path,omitempty"`
	ChildCount         int         `json:"childCount"`
	Expanded           bool        `json:"expanded"`
	CanMoveUp          bool        `json:"canMoveUp"`
	CanMoveDown        bool        `json:"canMoveDown"`
	DeleteBlocked      bool        `json:"deleteBlocked"`
	DeleteNeedsConfirm bool        `json:"deleteNeedsConfirm"`
	Children           []AdminNode `json:"children,omitempty"`
}

// AdminTree returns the editor tree. Children are only included for nodes
// whose id is in expanded; collapsed nodes still report ChildCount.
func AdminTree(flat []models.Category, expanded map[string]bool) []AdminNode {
	ix := newIndex(flat)
	return ix.adminLevel(ix.roots, expanded)
}

func (ix *index) adminLevel(siblings []*models.Category, expanded map[string]bool) []AdminNode {
	nodes := make([]AdminNode, 0, len(siblings))
	for i, c := range siblings {
		kids := ix.children[c.ID]
		n := AdminNode{
			Category:    *c,
			Role:        ix.role(c),
			ChildCount:  len(kids),
			Expanded:    expanded[c.ID],
			CanMoveUp:   i > 0,
			CanMoveDown: i < len(siblings)-1,
		}
		if n.Role == models.RoleLeaf {
			n.Path = Path(c.Slug)
		}
		if len(kids) > 0 {
			n.DeleteBlocked = !c.IsRoot()
			n.DeleteNeedsConfirm = c.IsRoot()
		}
		if n.Expanded && len(kids) > 0 {
			n.Children = ix.adminLevel(kids, expanded)
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// SearchHit is one flattened search result.
type SearchHit struct {
	models.Category
	Role   models.Role `json:"role"`
	IsRoot bool        `json:"isRoot"`
}

// Search matches query case-insensitively as a substring of the name, slug
// or description, ignoring the hierarchy. Results keep the input order.
// An empty query matches nothing; the editor shows the tree instead.
func Search(flat []models.Category, query string) []SearchHit {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	fold := cases.Fold()
	needle := fold.String(query)

	ix := newIndex(flat)
	var hits []SearchHit
	for i := range flat {
		c := &flat[i]
		if !containsFolded(fold, needle, c.Name, c.Slug, c.Description) {
			continue
		}
		hits = append(hits, SearchHit{
			Category: *c,
			Role:     ix.role(c),
			IsRoot:   c.IsRoot(),
		})
	}
	return hits
}

func containsFolded(fold cases.Caser, needle string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

// Wizard is the state of the two-step "add column, then add leaf" helper
// attached to the category being edited.
type Wizard struct {
	EditedID       string            `json:"editedId"`
	SelectedColumn string            `json:"selectedColumn,omitempty"`
	Step1Enabled   bool              `json:"step1Enabled"`
	Step2Enabled   bool              `json:"step2Enabled"`
	Columns        []models.Category `json:"columns"`
}

// WizardFor computes the wizard state. Step 1 (add a column) is only
// enabled when the edited category is a root; step 2 (add a leaf) only once
// one of that root's columns is selected.
func WizardFor(flat []models.Category, editedID, columnID string) (Wizard, error) {
	ix := newIndex(flat)
	edited, ok := ix.byID[editedID]
	if !ok {
		return Wizard{}, ErrUnknownCategory
	}

	w := Wizard{EditedID: editedID, Columns: []models.Category{}}
	if !edited.IsRoot() {
		return w, nil
	}
	w.Step1Enabled = true
	for _, col := range ix.children[edited.ID] {
		w.Columns = append(w.Columns, *col)
		if col.ID == columnID {
			w.SelectedColumn = columnID
			w.Step2Enabled = true
		}
	}
	return w, nil
}
