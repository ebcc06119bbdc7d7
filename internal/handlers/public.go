// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wecamp/internal/cache"
	"wecamp/internal/category"
	"wecamp/internal/filter"
	"wecamp/internal/markdown"
	"wecamp/internal/navbar"
	"wecamp/internal/tree"
)

// Public groups the read-only storefront endpoints. Projections are served
// from the Valkey tree cache when warm and stored there on miss.
type Public struct {
	categories *category.Service
	treeCache  *cache.TreeCache
}

// NewPublic creates a new Public handler group. treeCache may be nil if
// Valkey is not configured.
func NewPublic(categories *category.Service, treeCache *cache.TreeCache) *Public {
	return &Public{categories: categories, treeCache: treeCache}
}

// navbarResponse is the body of GET /api/navbar. Fallback is true when the
// store was unreachable and the static tree was served instead.
type navbarResponse struct {
	Menus    []navbar.Menu `json:"menus"`
	Fallback bool          `json:"fallback"`
}

// gearFilterResponse is the body of GET /api/filters/gear.
type gearFilterResponse struct {
	Filter filter.GearFilter  `json:"filter"`
	Query  string             `json:"query"`
	Facet  []filter.FacetItem `json:"facet"`
}

// leafPageResponse is the body of GET /category/{slug}.
type leafPageResponse struct {
	*category.LeafPage
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
}

// cached returns the encoded projection under key, computing and storing
// it on a miss. The generation is read before computing so a view built
// from data older than a concurrent change is never served again.
func (p *Public) cached(ctx context.Context, key string, compute func() (any, error)) ([]byte, error) {
	gen, useCache := p.treeCache.Generation(ctx)
	if useCache {
		if body, ok := p.treeCache.Get(ctx, gen, key); ok {
			return body, nil
		}
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if useCache {
		p.treeCache.Set(ctx, gen, key, body)
	}
	return body, nil
}

// List returns the flat category collection.
func (p *Public) List(w http.ResponseWriter, r *http.Request) {
	all, err := p.categories.All(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(all))
}

// Roots returns the root categories in display order.
func (p *Public) Roots(w http.ResponseWriter, r *http.Request) {
	roots, err := p.categories.Roots(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(roots))
}

// Get returns one category by id.
func (p *Public) Get(w http.ResponseWriter, r *http.Request) {
	c, err := p.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Children returns the direct children of a category in display order.
func (p *Public) Children(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := p.categories.Get(ctx, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	children, err := p.categories.Children(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(children))
}

// Tree returns the projection rooted at a category.
func (p *Public) Tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	body, err := p.cached(ctx, cache.RootKey(id), func() (any, error) {
		return p.categories.Project(ctx, id)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// Forest returns the projection of every root.
func (p *Public) Forest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := p.cached(ctx, cache.ForestKey, func() (any, error) {
		forest, err := p.categories.Forest(ctx)
		return nonNil(forest), err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// Navbar returns the mega-menu model. When the store fails the static
// fallback tree is served so the storefront header never goes blank.
func (p *Public) Navbar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := p.cached(ctx, cache.NavbarKey, func() (any, error) {
		forest, err := p.categories.Forest(ctx)
		if err != nil {
			return nil, err
		}
		return navbarResponse{Menus: nonNil(navbar.Build(forest))}, nil
	})
	if err == nil {
		writeRaw(w, http.StatusOK, body)
		return
	}
	if ctx.Err() != nil {
		return
	}

	slog.Warn("navbar falling back to static tree", "error", err)
	flat, ferr := category.Fallback()
	if ferr != nil {
		slog.Error("load fallback tree failed", "error", ferr)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, navbarResponse{
		Menus:    navbar.Build(tree.Forest(flat)),
		Fallback: true,
	})
}

// leaves returns the leaf list, through the tree cache.
func (p *Public) leaves(ctx context.Context) ([]tree.Leaf, error) {
	body, err := p.cached(ctx, cache.LeavesKey, func() (any, error) {
		leaves, err := p.categories.Leaves(ctx)
		return nonNil(leaves), err
	})
	if err != nil {
		return nil, err
	}
	var leaves []tree.Leaf
	if err := json.Unmarshal(body, &leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

// GearFilter validates the gear listing query and returns the normalised
// filter with the category sidebar facet.
func (p *Public) GearFilter(w http.ResponseWriter, r *http.Request) {
	g, err := filter.ParseGear(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	leaves, err := p.leaves(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := g.Validate(leaves); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gearFilterResponse{
		Filter: g,
		Query:  g.Values().Encode(),
		Facet:  g.Facet(leaves),
	})
}

// LeafPage resolves a browsing slug. Only leaves are navigable.
func (p *Public) LeafPage(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	page, err := p.categories.LeafBySlug(r.Context(), slugParam)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := leafPageResponse{LeafPage: page}
	if page.Category.Description != "" {
		html, err := markdown.ToHTML(page.Category.Description)
		if err != nil {
			slog.Error("render description failed", "error", err, "slug", slugParam)
		} else {
			resp.DescriptionHTML = html
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
