// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"appforge/internal/store"
)

// Packages groups the subscription package HTTP handlers.
type Packages struct {
	store *store.PackageStore
}

// NewPackages creates a new Packages handler group.
func NewPackages(s *store.PackageStore) *Packages {
	return &Packages{store: s}
}

// List returns packages with their feature and menu grants.
func (h *Packages) List(w http.ResponseWriter, r *http.Request) {
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

// Tree returns the package hierarchy with descendants loaded.
func (h *Packages) Tree(w http.ResponseWriter, r *http.Request) {
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

// Get returns one package with its grants.
func (h *Packages) Get(w http.ResponseWriter, r *http.Request) {
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

// Create adds a package together with its feature and menu grants.
// Unknown grant ids reject the whole request.
func (h *Packages) Create(w http.ResponseWriter, r *http.Request) {
	var in store.CreatePackageInput
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

// packagePatch is the partial-update body of a package.
type packagePatch struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Price       *int        `json:"price"`
	MaxUsers    *int        `json:"max_users"`
	Status      *string     `json:"status"`
	FeatureIDs  []uuid.UUID `json:"feature_ids"`
	MenuIDs     []uuid.UUID `json:"menu_ids"`
	IsActive    *bool       `json:"is_active"`
	ParentID    *uuid.UUID  `json:"parent_id"`
	SortOrder   *int        `json:"sort_order"`
}

// Update applies a partial update. Supplying "feature_ids" or "menu_ids"
// replaces that grant set wholesale; an absent key leaves it alone.
func (h *Packages) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var patch packagePatch
	b, ok := decodeBody(w, r, &patch)
	if !ok {
		return
	}
	node, err := h.store.Update(id, store.UpdatePackageInput{
		Name:        patch.Name,
		Description: patch.Description,
		Price:       patch.Price,
		MaxUsers:    patch.MaxUsers,
		Status:      patch.Status,
		SetFeatures: b.Has("feature_ids"),
		FeatureIDs:  patch.FeatureIDs,
		SetMenus:    b.Has("menu_ids"),
		MenuIDs:     patch.MenuIDs,
		IsActive:    patch.IsActive,
		SetParent:   b.Has("parent_id"),
		ParentID:    patch.ParentID,
		SortOrder:   patch.SortOrder,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// Delete soft-deletes a package and its live descendants. Grants stay
// in place so a restore brings the package back intact.
func (h *Packages) Delete(w http.ResponseWriter, r *http.Request) {
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

// Restore brings a soft-deleted package and its descendants back.
func (h *Packages) Restore(w http.ResponseWriter, r *http.Request) {
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

// ForceDelete permanently removes a package, its descendants and their
// grant rows.
func (h *Packages) ForceDelete(w http.ResponseWriter, r *http.Request) {
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

// Reorder applies a bulk move within the package tree.
func (h *Packages) Reorder(w http.ResponseWriter, r *http.Request) {
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
