// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"appforge/internal/store"
)

// Menus groups the navigation tree HTTP handlers.
type Menus struct {
	store *store.MenuStore
}

// NewMenus creates a new Menus handler group.
func NewMenus(s *store.MenuStore) *Menus {
	return &Menus{store: s}
}

// List returns menu nodes as a flat list. ?trash= selects live, all or
// deleted-only rows.
func (h *Menus) List(w http.ResponseWriter, r *http.Request) {
	trash, ok := trashMode(w, r)
	if !ok {
		return
	}
	nodes, err := h.store.List(trash)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Tree returns root menu nodes with descendants recursively loaded,
// ordered by sort order at every level.
func (h *Menus) Tree(w http.ResponseWriter, r *http.Request) {
	trash, ok := trashMode(w, r)
	if !ok {
		return
	}
	nodes, err := h.store.Tree(trash)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Get returns one menu node.
func (h *Menus) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	node, err := h.store.FindByID(id)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// Create adds a menu node under the given parent, at the end of the
// sibling list unless an explicit sort order is supplied.
func (h *Menus) Create(w http.ResponseWriter, r *http.Request) {
	var in store.CreateMenuInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	node, err := h.store.Create(in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// menuPatch is the partial-update body of a menu node.
type menuPatch struct {
	Title     *string    `json:"title"`
	Icon      *string    `json:"icon"`
	Route     *string    `json:"route"`
	IsActive  *bool      `json:"is_active"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder *int       `json:"sort_order"`
}

// Update applies a partial update. An explicit "parent_id": null moves
// the node to the root level; an absent key leaves the parent alone.
func (h *Menus) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var patch menuPatch
	b, ok := decodeBody(w, r, &patch)
	if !ok {
		return
	}
	node, err := h.store.Update(id, store.UpdateMenuInput{
		Title:     patch.Title,
		Icon:      patch.Icon,
		Route:     patch.Route,
		IsActive:  patch.IsActive,
		SetParent: b.Has("parent_id"),
		ParentID:  patch.ParentID,
		SortOrder: patch.SortOrder,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// Delete soft-deletes a menu node and its live descendants.
func (h *Menus) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.SoftDelete(id, nil); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore brings a soft-deleted menu node and its deleted descendants back.
func (h *Menus) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.Restore(id); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restored": true})
}

// ForceDelete permanently removes a menu node and all its descendants.
func (h *Menus) ForceDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.ForceDelete(id); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder applies a bulk move: every item gets its new parent and sort
// order in one transaction.
func (h *Menus) Reorder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Items []store.ReorderItem `json:"items"`
	}
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	if len(in.Items) == 0 {
		errorJSON(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	if err := h.store.Reorder(in.Items); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reordered": len(in.Items)})
}
