// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"appforge/internal/cache"
	"appforge/internal/generator"
	"appforge/internal/store"
)

// Generate runs the artifact pipeline for schema entries. Concurrent
// requests for the same entry serialize on a per-entry lock; different
// entries run in parallel.
type Generate struct {
	schema    *Schema
	entries   *store.SchemaEntryStore
	menus     *store.MenuStore
	gen       *generator.Generator
	artifacts *cache.ArtifactCache

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewGenerate creates a new Generate handler. artifacts may be nil when
// caching is disabled.
func NewGenerate(schema *Schema, entries *store.SchemaEntryStore, menus *store.MenuStore, gen *generator.Generator, artifacts *cache.ArtifactCache) *Generate {
	return &Generate{
		schema:    schema,
		entries:   entries,
		menus:     menus,
		gen:       gen,
		artifacts: artifacts,
		locks:     map[uuid.UUID]*sync.Mutex{},
	}
}

// entryLock returns the mutex serializing generation runs for one entry.
func (h *Generate) entryLock(id uuid.UUID) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[id]
	if !ok {
		l = &sync.Mutex{}
		h.locks[id] = l
	}
	return l
}

// Run serves POST /schema-entries/{id}/generate. Deterministic output
// lets cached sets be replayed until the entry changes; a re-run against
// an already-materialized table skips the migration artifact.
func (h *Generate) Run(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	l := h.entryLock(id)
	l.Lock()
	defer l.Unlock()

	entry, err := h.schema.loadEntry(id)
	if err != nil {
		storeError(w, err)
		return
	}
	if entry.DeletedAt != nil {
		errorJSON(w, http.StatusConflict, "cannot generate from a deleted schema entry")
		return
	}

	key := cache.EntryKey(entry.ID, entry.UpdatedAt)
	if set := h.artifacts.Get(r.Context(), key); set != nil {
		writeJSON(w, http.StatusOK, set)
		return
	}

	in := generator.Input{Entry: entry}
	if entry.MenuID != nil {
		menu, err := h.menus.FindByID(*entry.MenuID)
		if err != nil && !store.IsNotFound(err) {
			storeError(w, err)
			return
		}
		in.Menu = menu
	}
	in.TableExists, err = h.entries.TableExists(entry.TableName)
	if err != nil {
		storeError(w, err)
		return
	}

	set, err := h.gen.Generate(r.Context(), in)
	if err != nil {
		storeError(w, err)
		return
	}
	h.artifacts.Set(r.Context(), key, set)
	writeJSON(w, http.StatusOK, set)
}
