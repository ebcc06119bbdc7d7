// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the WeCamp category API.
// Handlers are grouped by concern (admin, public, event stream) and
// receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"wecamp/internal/category"
	"wecamp/internal/filter"
	"wecamp/internal/store"
	"wecamp/internal/tree"
)

// ChangeLog is the read side of the category audit log.
type ChangeLog interface {
	Recent(ctx context.Context, limit int) ([]store.ChangeLogEntry, error)
}

// Admin groups the category editor endpoints.
type Admin struct {
	categories *category.Service
	changeLog  ChangeLog
}

// NewAdmin creates a new Admin handler group. changeLog may be nil when the
// audit log is not available (memory store).
func NewAdmin(categories *category.Service, changeLog ChangeLog) *Admin {
	return &Admin{categories: categories, changeLog: changeLog}
}

// swapRequest is the body of POST /api/admin/categories/swap.
type swapRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// deleteResponse lists every id removed by a delete, the target last.
type deleteResponse struct {
	Deleted []string `json:"deleted"`
}

// Tree renders the editor tree. Expanded node ids come from ?expanded=,
// repeated or comma separated.
func (a *Admin) Tree(w http.ResponseWriter, r *http.Request) {
	expanded := map[string]bool{}
	for _, raw := range r.URL.Query()["expanded"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				expanded[id] = true
			}
		}
	}

	nodes, err := a.categories.AdminTree(r.Context(), expanded)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Search returns the flattened matches for ?q=, optionally narrowed by
// ?role=.
func (a *Admin) Search(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseCategory(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	hits, err := a.categories.Search(r.Context(), f.Query, f.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil[tree.SearchHit](hits))
}

// Create adds a category anywhere in the tree.
func (a *Admin) Create(w http.ResponseWriter, r *http.Request) {
	var f category.Fields
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.categories.Create(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update applies an inline edit.
func (a *Admin) Update(w http.ResponseWriter, r *http.Request) {
	var p category.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.categories.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a category. Roots with children need ?confirm=true.
func (a *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	var opts category.DeleteOptions
	if raw := r.URL.Query().Get("confirm"); raw != "" {
		confirm, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "confirm must be a boolean")
			return
		}
		opts.Confirm = confirm
	}

	ids, err := a.categories.Delete(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: ids})
}

// Swap exchanges the order of two siblings.
func (a *Admin) Swap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.A == "" || req.B == "" {
		writeError(w, http.StatusBadRequest, "both a and b are required")
		return
	}
	if err := a.categories.Swap(r.Context(), req.A, req.B); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveUp swaps a category with its previous sibling.
func (a *Admin) MoveUp(w http.ResponseWriter, r *http.Request) {
	if err := a.categories.MoveUp(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveDown swaps a category with its next sibling.
func (a *Admin) MoveDown(w http.ResponseWriter, r *http.Request) {
	if err := a.categories.MoveDown(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Wizard returns the add-column/add-leaf state for the edited category;
// ?column= selects a column for step 2.
func (a *Admin) Wizard(w http.ResponseWriter, r *http.Request) {
	wiz, err := a.categories.Wizard(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("column"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wiz)
}

// CreateColumn is wizard step 1.
func (a *Admin) CreateColumn(w http.ResponseWriter, r *http.Request) {
	var f category.Fields
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.categories.CreateColumn(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CreateLeaf is wizard step 2.
func (a *Admin) CreateLeaf(w http.ResponseWriter, r *http.Request) {
	var f category.Fields
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.categories.CreateLeaf(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "columnID"), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Changes lists the most recent audit log entries (?limit=, default 50,
// max 500).
func (a *Admin) Changes(w http.ResponseWriter, r *http.Request) {
	if a.changeLog == nil {
		writeError(w, http.StatusNotFound, "change log is not enabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := a.changeLog.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}
