// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"appforge/internal/cache"
	"appforge/internal/models"
	"appforge/internal/store"
)

// Schema groups the schema registry HTTP handlers: entries plus their
// field categories, field specs, layouts and statistics.
type Schema struct {
	entries   *store.SchemaEntryStore
	fields    *store.FieldStore
	layouts   *store.LayoutStore
	artifacts *cache.ArtifactCache
}

// NewSchema creates a new Schema handler group.
func NewSchema(entries *store.SchemaEntryStore, fields *store.FieldStore, layouts *store.LayoutStore, artifacts *cache.ArtifactCache) *Schema {
	return &Schema{entries: entries, fields: fields, layouts: layouts, artifacts: artifacts}
}

// List returns schema entries, optionally scoped with ?product_id.
func (h *Schema) List(w http.ResponseWriter, r *http.Request) {
	trash, ok := trashMode(w, r)
	if !ok {
		return
	}
	var product *uuid.UUID
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		product = &id
	}
	entries, err := h.entries.List(product, trash)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Get returns one entry with its categories, fields, layouts and
// statistics fully loaded.
func (h *Schema) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	entry, err := h.loadEntry(id)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// loadEntry assembles the full aggregate of one schema entry.
func (h *Schema) loadEntry(id uuid.UUID) (*models.SchemaEntry, error) {
	entry, err := h.entries.FindByID(id)
	if err != nil {
		return nil, err
	}
	entry.Categories, err = h.fields.ListCategories(id)
	if err != nil {
		return nil, err
	}
	entry.Table, err = h.layouts.FindTableLayout(id)
	if err != nil {
		return nil, err
	}
	entry.Card, err = h.layouts.FindCardLayout(id)
	if err != nil {
		return nil, err
	}
	entry.Statistics, err = h.layouts.ListStatistics(id)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Create registers a new generatable entity. The table name must be
// globally unique and a valid SQL identifier.
func (h *Schema) Create(w http.ResponseWriter, r *http.Request) {
	var in store.CreateEntryInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	if in.ProductID == uuid.Nil {
		errorJSON(w, http.StatusBadRequest, "product_id is required")
		return
	}
	entry, err := h.entries.Create(in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// entryPatch is the partial-update body of a schema entry.
type entryPatch struct {
	Category   *string    `json:"category"`
	TitleEN    *string    `json:"title_en"`
	TitleLocal *string    `json:"title_local"`
	TableName  *string    `json:"table_name"`
	Status     *string    `json:"status"`
	MenuID     *uuid.UUID `json:"menu_id"`
}

// Update applies a partial update. "menu_id": null detaches the entry
// from its menu node; an absent key leaves the binding alone.
func (h *Schema) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var patch entryPatch
	b, ok := decodeBody(w, r, &patch)
	if !ok {
		return
	}
	entry, err := h.entries.Update(id, store.UpdateEntryInput{
		Category:   patch.Category,
		TitleEN:    patch.TitleEN,
		TitleLocal: patch.TitleLocal,
		TableName:  patch.TableName,
		Status:     patch.Status,
		SetMenu:    b.Has("menu_id"),
		MenuID:     patch.MenuID,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete soft-deletes a schema entry. Its table name stays reserved
// until a force delete.
func (h *Schema) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.entries.SoftDelete(id, nil); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore brings a soft-deleted schema entry back.
func (h *Schema) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.entries.Restore(id); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restored": true})
}

// ForceDelete permanently removes a schema entry with its categories,
// fields, layouts and statistics.
func (h *Schema) ForceDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.entries.ForceDelete(id); err != nil {
		storeError(w, err)
		return
	}
	h.artifacts.InvalidateEntry(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
