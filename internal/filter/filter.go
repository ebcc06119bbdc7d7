// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package filter holds the typed gear and category filters accepted by the
// public and admin listing endpoints. Every field is optional; a zero
// value means "no constraint".
package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"wecamp/internal/models"
	"wecamp/internal/slug"
	"wecamp/internal/tree"
)

// Sort is a gear listing order.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
	SortName      Sort = "name"
)

var sorts = []Sort{SortNewest, SortPriceAsc, SortPriceDesc, SortName}

// Error reports an invalid filter parameter.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

// GearFilter narrows a gear listing. Categories holds leaf slugs.
type GearFilter struct {
	Query      string   `json:"query,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Brands     []string `json:"brands,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	InStock    *bool    `json:"inStock,omitempty"`
	Sort       Sort     `json:"sort,omitempty"`
}

// IsZero reports whether no constraint is set.
func (g GearFilter) IsZero() bool {
	return g.Query == "" && len(g.Categories) == 0 && len(g.Brands) == 0 &&
		len(g.Colors) == 0 && g.MinPrice == nil && g.MaxPrice == nil &&
		g.InStock == nil && g.Sort == ""
}

// ParseGear reads a GearFilter from query parameters. List parameters may
// be repeated or comma separated. Empty values are ignored.
func ParseGear(v url.Values) (GearFilter, error) {
	g := GearFilter{
		Query:      strings.TrimSpace(v.Get("q")),
		Categories: list(v["category"], true),
		Brands:     list(v["brand"], false),
		Colors:     list(v["color"], false),
		Sort:       Sort(strings.TrimSpace(v.Get("sort"))),
	}

	var err error
	if g.MinPrice, err = price(v.Get("min_price"), "min_price"); err != nil {
		return GearFilter{}, err
	}
	if g.MaxPrice, err = price(v.Get("max_price"), "max_price"); err != nil {
		return GearFilter{}, err
	}
	if s := strings.TrimSpace(v.Get("in_stock")); s != "" {
		b, perr := strconv.ParseBool(s)
		if perr != nil {
			return GearFilter{}, &Error{Field: "in_stock", Message: "must be true or false"}
		}
		g.InStock = &b
	}
	return g, nil
}

func price(raw, field string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &Error{Field: field, Message: "must be a number"}
	}
	return &f, nil
}

// list splits, trims and de-duplicates list values, keeping first-seen
// order. Slug lists are lowercased.
func list(raw []string, slugs bool) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			if slugs {
				part = strings.ToLower(part)
			}
			if part == "" || slices.Contains(out, part) {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// Validate checks ranges, the sort key and that every category is a known
// leaf slug.
func (g GearFilter) Validate(leaves []tree.Leaf) error {
	if g.MinPrice != nil && *g.MinPrice < 0 {
		return &Error{Field: "min_price", Message: "must not be negative"}
	}
	if g.MaxPrice != nil && *g.MaxPrice < 0 {
		return &Error{Field: "max_price", Message: "must not be negative"}
	}
	if g.MinPrice != nil && g.MaxPrice != nil && *g.MinPrice > *g.MaxPrice {
		return &Error{Field: "min_price", Message: "must not exceed max_price"}
	}
	if g.Sort != "" && !slices.Contains(sorts, g.Sort) {
		return &Error{Field: "sort", Message: fmt.Sprintf("unknown sort %q", g.Sort)}
	}
	for _, s := range g.Categories {
		if !slug.Valid(s) || !slices.ContainsFunc(leaves, func(l tree.Leaf) bool { return l.Slug == s }) {
			return &Error{Field: "category", Message: fmt.Sprintf("unknown category %q", s)}
		}
	}
	return nil
}

// Merge applies update on top of base: every field set in update replaces
// the base value; unset fields keep it.
func Merge(base, update GearFilter) GearFilter {
	out := base
	if update.Query != "" {
		out.Query = update.Query
	}
	if len(update.Categories) > 0 {
		out.Categories = slices.Clone(update.Categories)
	}
	if len(update.Brands) > 0 {
		out.Brands = slices.Clone(update.Brands)
	}
	if len(update.Colors) > 0 {
		out.Colors = slices.Clone(update.Colors)
	}
	if update.MinPrice != nil {
		out.MinPrice = update.MinPrice
	}
	if update.MaxPrice != nil {
		out.MaxPrice = update.MaxPrice
	}
	if update.InStock != nil {
		out.InStock = update.InStock
	}
	if update.Sort != "" {
		out.Sort = update.Sort
	}
	return out
}

// Values encodes the filter back to query parameters, omitting unset
// fields, so a filter round-trips through a shareable URL.
func (g GearFilter) Values() url.Values {
	v := url.Values{}
	if g.Query != "" {
		v.Set("q", g.Query)
	}
	if len(g.Categories) > 0 {
		v.Set("category", strings.Join(g.Categories, ","))
	}
	if len(g.Brands) > 0 {
		v.Set("brand", strings.Join(g.Brands, ","))
	}
	if len(g.Colors) > 0 {
		v.Set("color", strings.Join(g.Colors, ","))
	}
	if g.MinPrice != nil {
		v.Set("min_price", strconv.FormatFloat(*g.MinPrice, 'f', -1, 64))
	}
	if g.MaxPrice != nil {
		v.Set("max_price", strconv.FormatFloat(*g.MaxPrice, 'f', -1, 64))
	}
	if g.InStock != nil {
		v.Set("in_stock", strconv.FormatBool(*g.InStock))
	}
	if g.Sort != "" {
		v.Set("sort", string(g.Sort))
	}
	return v
}

// FacetItem is one entry of the category sidebar.
type FacetItem struct {
	tree.Leaf
	Selected bool `json:"selected"`
}

// Facet lists every leaf, flagging the ones selected by g.
func (g GearFilter) Facet(leaves []tree.Leaf) []FacetItem {
	items := make([]FacetItem, 0, len(leaves))
	for _, l := range leaves {
		items = append(items, FacetItem{Leaf: l, Selected: slices.Contains(g.Categories, l.Slug)})
	}
	return items
}

// CategoryFilter narrows the admin category search.
type CategoryFilter struct {
	Query string      `json:"query,omitempty"`
	Role  models.Role `json:"role,omitempty"`
}

// ParseCategory reads a CategoryFilter from query parameters.
func ParseCategory(v url.Values) (CategoryFilter, error) {
	f := CategoryFilter{
		Query: strings.TrimSpace(v.Get("q")),
		Role:  models.Role(strings.ToLower(strings.TrimSpace(v.Get("role")))),
	}
	switch f.Role {
	case "", models.RoleRoot, models.RoleColumn, models.RoleLeaf:
		return f, nil
	default:
		return CategoryFilter{}, &Error{Field: "role", Message: fmt.Sprintf("unknown role %q", f.Role)}
	}
}
