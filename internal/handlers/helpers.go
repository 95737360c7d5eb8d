// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the AppForge API.
// Handlers are grouped by concern (menus, features, packages, schema,
// generation) and receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"appforge/internal/generator"
	"appforge/internal/store"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// errorJSON writes a bare error message body.
func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": message},
	})
}

// storeError maps the store and generator error taxonomy onto HTTP
// statuses. Unrecognized errors are logged and become opaque 500s.
func storeError(w http.ResponseWriter, err error) {
	var vErr *store.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]any{
				"message": vErr.Message,
				"fields":  vErr.Fields,
			},
		})
		return
	}
	var nfErr *store.NotFoundError
	if errors.As(err, &nfErr) {
		errorJSON(w, http.StatusNotFound, nfErr.Error())
		return
	}
	var cErr *store.ConflictError
	if errors.As(err, &cErr) {
		errorJSON(w, http.StatusConflict, cErr.Message)
		return
	}
	var gErr *generator.GenerationError
	if errors.As(err, &gErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]any{
				"message": gErr.Message,
				"hint":    gErr.Hint,
			},
		})
		return
	}
	slog.Error("request failed", "error", err)
	errorJSON(w, http.StatusInternalServerError, "internal server error")
}

// urlID parses the {id} route parameter. A false return means the
// response has already been written.
func urlID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// trashMode parses the ?trash= query parameter, defaulting to live rows.
func trashMode(w http.ResponseWriter, r *http.Request) (store.TrashMode, bool) {
	mode, err := store.ParseTrashMode(r.URL.Query().Get("trash"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return mode, true
}

// pageParams resolves ?page and ?per_page onto a LIMIT/OFFSET pair.
// Generated handler scaffolds call this too, so its shape is stable.
func pageParams(r *http.Request) (limit, offset int) {
	limit = 25
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 1 {
		page = v
	}
	return limit, (page - 1) * limit
}

// body holds a decoded JSON request body together with its raw key set,
// so handlers can tell an explicit null apart from an absent key.
type body struct {
	keys map[string]json.RawMessage
}

// decodeBody unmarshals the request body into dst and records which
// top-level keys were present. A false return means the response has
// already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) (*body, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return &body{keys: keys}, true
}

// Has reports whether the request body carried the key, even as null.
func (b *body) Has(key string) bool {
	_, ok := b.keys[key]
	return ok
}
