// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"appforge/internal/store"
)

// Layouts groups the presentation HTTP handlers of a schema entry: its
// table layout, card layout and dashboard statistics.
type Layouts struct {
	store *store.LayoutStore
}

// NewLayouts creates a new Layouts handler group.
func NewLayouts(s *store.LayoutStore) *Layouts {
	return &Layouts{store: s}
}

// GetTableLayout returns the entry's table layout, or null when none is
// configured and the generated list view falls back to field defaults.
func (h *Layouts) GetTableLayout(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	layout, err := h.store.FindTableLayout(entryID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

// PutTableLayout replaces the entry's table layout wholesale, columns
// and cell contents included.
func (h *Layouts) PutTableLayout(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	var in store.TableLayoutInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	layout, err := h.store.UpsertTableLayout(entryID, in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

// GetCardLayout returns the entry's card layout document.
func (h *Layouts) GetCardLayout(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	layout, err := h.store.FindCardLayout(entryID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

// PutCardLayout replaces the entry's card layout document.
func (h *Layouts) PutCardLayout(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	var in struct {
		Document json.RawMessage `json:"document"`
	}
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	layout, err := h.store.UpsertCardLayout(entryID, in.Document)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

// ListStatistics returns the entry's dashboard statistics in sort order.
func (h *Layouts) ListStatistics(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	stats, err := h.store.ListStatistics(entryID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CreateStatistic adds a dashboard statistic to the entry.
func (h *Layouts) CreateStatistic(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	var in store.StatisticInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	stat, err := h.store.CreateStatistic(entryID, in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stat)
}

// UpdateStatistic replaces one statistic wholesale.
func (h *Layouts) UpdateStatistic(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	statID, ok := urlID(w, r, "statisticID")
	if !ok {
		return
	}
	var in store.StatisticInput
	if _, ok := decodeBody(w, r, &in); !ok {
		return
	}
	stat, err := h.store.UpdateStatistic(entryID, statID, in)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

// DeleteStatistic removes one statistic.
func (h *Layouts) DeleteStatistic(w http.ResponseWriter, r *http.Request) {
	entryID, ok := urlID(w, r, "entryID")
	if !ok {
		return
	}
	statID, ok := urlID(w, r, "statisticID")
	if !ok {
		return
	}
	if err := h.store.DeleteStatistic(entryID, statID); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
