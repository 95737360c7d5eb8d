// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"appforge/internal/database"
	"appforge/internal/generator"
	"appforge/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "appforge")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "appforge")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB           *sql.DB
	MenuStore    *store.MenuStore
	FeatureStore *store.FeatureStore
	PackageStore *store.PackageStore
	EntryStore   *store.SchemaEntryStore
	FieldStore   *store.FieldStore
	LayoutStore  *store.LayoutStore

	Menus    *Menus
	Features *Features
	Packages *Packages
	Schema   *Schema
	Fields   *Fields
	Layouts  *Layouts
	Generate *Generate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	menuStore := store.NewMenuStore(db)
	featureStore := store.NewFeatureStore(db)
	packageStore := store.NewPackageStore(db)
	entryStore := store.NewSchemaEntryStore(db)
	fieldStore := store.NewFieldStore(db)
	layoutStore := store.NewLayoutStore(db)

	schemaHandlers := NewSchema(entryStore, fieldStore, layoutStore, nil)

	return &testEnv{
		DB:           db,
		MenuStore:    menuStore,
		FeatureStore: featureStore,
		PackageStore: packageStore,
		EntryStore:   entryStore,
		FieldStore:   fieldStore,
		LayoutStore:  layoutStore,
		Menus:        NewMenus(menuStore),
		Features:     NewFeatures(featureStore),
		Packages:     NewPackages(packageStore),
		Schema:       schemaHandlers,
		Fields:       NewFields(fieldStore),
		Layouts:      NewLayouts(layoutStore),
		Generate:     NewGenerate(schemaHandlers, entryStore, menuStore, generator.New(), nil),
	}
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// withChiURLParams adds chi URL parameters to a request.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decode unmarshals a response body, failing the test on bad JSON.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// cleanTreeRows force-deletes tree rows registered during a test.
func cleanTreeRows(t *testing.T, db *sql.DB, table string, ids ...uuid.UUID) {
	t.Helper()
	ts := store.NewTreeStore(db, table)
	for _, id := range ids {
		if err := ts.ForceDelete(id); err != nil && !store.IsNotFound(err) {
			t.Logf("cleanup %s %s: %v", table, id, err)
		}
	}
}

func cleanEntryRows(t *testing.T, db *sql.DB, ids ...uuid.UUID) {
	t.Helper()
	for _, id := range ids {
		if _, err := db.Exec(`DELETE FROM schema_entries WHERE id = $1`, id); err != nil {
			t.Logf("cleanup schema entry %s: %v", id, err)
		}
	}
}
