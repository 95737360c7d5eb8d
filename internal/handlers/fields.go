// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"appforge/internal/store"
)

// Fields groups the field category and field spec HTTP handlers, nested
// under a schema entry.
type Fields struct {
	store *store.FieldStore
}

// NewFields creates a new Fields handler group.
func NewFields(s *store.FieldStore) *Fields {
	return &Fields{store: s}
}

// ListCategories returns an entry's field categories with their fields.
func (h *Fields) ListCategories(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	cats, err := h.store.ListCategories(entryID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CreateCategory adds a field category to an entry, at the end of the
// category list unless an explicit sort order is supplied.
func (h *Fields) CreateCategory(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	var in store.CategoryInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	cat, err := h.store.CreateCategory(entryID, in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory renames or reorders a field category. Omitted fields
// keep their stored value.
func (h *Fields) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	catID, ok := urlID(w, r, "categoryID")
	if !ok {
		return
	}
	var in store.CategoryPatch
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	cat, err := h.store.UpdateCategory(entryID, catID, in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory removes a category and every field spec inside it.
func (h *Fields) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	catID, ok := urlID(w, r, "categoryID")
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(entryID, catID); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateField adds a field spec to a category. The column name must be
// unique within the entry across all categories.
func (h *Fields) CreateField(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	catID, ok := urlID(w, r, "categoryID")
	if !ok {
		return
	}
	var in store.FieldInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	field, err := h.store.CreateField(entryID, catID, in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, field)
}

// UpdateField replaces a field spec wholesale.
func (h *Fields) UpdateField(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	catID, ok := urlID(w, r, "categoryID")
	if !ok {
		return
	}
	fieldID, ok := urlID(w, r, "fieldID")
	if !ok {
		return
	}
	var in store.FieldInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	field, err := h.store.UpdateField(entryID, catID, fieldID, in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, field)
}

// DeleteField removes one field spec.
func (h *Fields) DeleteField(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	catID, ok := urlID(w, r, "categoryID")
	if !ok {
		return
	}
	fieldID, ok := urlID(w, r, "fieldID")
	if !ok {
		return
	}
	if err := h.store.DeleteField(entryID, catID, fieldID); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
