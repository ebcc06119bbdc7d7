// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Role is the depth-derived role of a category inside the navigation tree.
type Role string

const (
	RoleRoot   Role = "root"
	RoleColumn Role = "column"
	RoleLeaf   Role = "leaf"
)

// Category is a node of the root → column → leaf gear/blog category tree.
// The JSON field names are shared with the storefront client and must not
// change.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	ParentID    *string   `json:"parentId"`
	Icon        string    `json:"icon,omitempty"`
	Order       int       `json:"order"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// HasParent reports whether the category's parent is id.
func (c *Category) HasParent(id string) bool {
	return c.ParentID != nil && *c.ParentID == id
}

// StringPtr returns a pointer to s. Handy for ParentID literals.
func StringPtr(s string) *string {
	return &s
}
