// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"appforge/internal/store"
)

// Features groups the entitlement catalog HTTP handlers. Every route is
// scoped to a product via the ?product_id query parameter.
type Features struct {
	store *store.FeatureStore
}

// NewFeatures creates a new Features handler group.
func NewFeatures(s *store.FeatureStore) *Features {
	return &Features{store: s}
}

// productID parses the required ?product_id parameter. A false return
// means the response has already been written.
func productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("product_id")
	if raw == "" {
		errorJSON(w, http.StatusBadRequest, "product_id is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid product_id")
		return uuid.Nil, false
	}
	return id, true
}

// List returns a product's features as a flat list.
func (h *Features) List(w http.ResponseWriter, r *http.Request) {
	product, ok := productID(w, r)
	if !ok {
		return
	}
	trash, ok := trashMode(w, r)
	if !ok {
		return
	}
	nodes, err := h.store.List(product, trash)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Tree returns the product's feature forest.
func (h *Features) Tree(w http.ResponseWriter, r *http.Request) {
	product, ok := productID(w, r)
	if !ok {
		return
	}
	trash, ok := trashMode(w, r)
	if !ok {
		return
	}
	nodes, err := h.store.Tree(product, trash)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Get returns one feature node.
func (h *Features) Get(w http.ResponseWriter, r *http.Request) {
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

// Create adds a feature node. The feature code must be unique within the
// product, soft-deleted rows included.
func (h *Features) Create(w http.ResponseWriter, r *http.Request) {
	var in store.CreateFeatureInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	if in.ProductID == uuid.Nil {
		errorJSON(w, http.StatusBadRequest, "product_id is required")
		return
	}
	node, err := h.store.Create(in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// featurePatch is the partial-update body of a feature node.
type featurePatch struct {
	FeatureCode    *string    `json:"feature_code"`
	Name           *string    `json:"name"`
	Type           *string    `json:"type"`
	Color          *string    `json:"color"`
	PriceAddon     *int       `json:"price_addon"`
	TrialAvailable *bool      `json:"trial_available"`
	TrialDays      *int       `json:"trial_days"`
	IsActive       *bool      `json:"is_active"`
	ParentID       *uuid.UUID `json:"parent_id"`
	SortOrder      *int       `json:"sort_order"`
}

// Update applies a partial update. "trial_days": null clears the trial
// window; an absent key leaves it alone.
func (h *Features) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var patch featurePatch
	b, ok := decodeBody(w, r, &patch)
	if !ok {
		return
	}
	node, err := h.store.Update(id, store.UpdateFeatureInput{
		FeatureCode:    patch.FeatureCode,
		Name:           patch.Name,
		Type:           patch.Type,
		Color:          patch.Color,
		PriceAddon:     patch.PriceAddon,
		TrialAvailable: patch.TrialAvailable,
		TrialDays:      patch.TrialDays,
		SetTrialDays:   b.Has("trial_days"),
		IsActive:       patch.IsActive,
		SetParent:      b.Has("parent_id"),
		ParentID:       patch.ParentID,
		SortOrder:      patch.SortOrder,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// Delete soft-deletes a feature node and its live descendants.
func (h *Features) Delete(w http.ResponseWriter, r *http.Request) {
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

// Restore brings a soft-deleted feature node and its descendants back.
func (h *Features) Restore(w http.ResponseWriter, r *http.Request) {
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

// ForceDelete permanently removes a feature node and all its descendants.
func (h *Features) ForceDelete(w http.ResponseWriter, r *http.Request) {
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

// Reorder applies a bulk move within the product's feature tree.
func (h *Features) Reorder(w http.ResponseWriter, r *http.Request) {
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

// TrashBox reports the product's soft-deleted features bucketed by type.
// All three buckets are always present, empty ones included.
func (h *Features) TrashBox(w http.ResponseWriter, r *http.Request) {
	product, ok := productID(w, r)
	if !ok {
		return
	}
	groups, err := h.store.TrashBox(product)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Generate seeds the product's default feature catalog. Features whose
// code already exists are left untouched, so the call is idempotent.
func (h *Features) Generate(w http.ResponseWriter, r *http.Request) {
	product, ok := productID(w, r)
	if !ok {
		return
	}
	created, err := h.store.Generate(product, store.DefaultCatalog, nil)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}
