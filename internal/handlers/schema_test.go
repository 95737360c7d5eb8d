// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"appforge/internal/generator"
	"appforge/internal/models"
	"appforge/internal/store"
)

func testTableName() string {
	return "test_" + strings.ReplaceAll(uuid.NewString()[:13], "-", "_")
}

// createEntryViaHandler creates a schema entry through the handler and
// registers cleanup.
func createEntryViaHandler(t *testing.T, env *testEnv, payload map[string]any) models.SchemaEntry {
	t.Helper()

	req := jsonRequest(t, http.MethodPost, "/api/v1/schema-entries", payload)
	rec := httptest.NewRecorder()
	env.Schema.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("entry create: got status %d, body %s", rec.Code, rec.Body.String())
	}

	var entry models.SchemaEntry
	decode(t, rec, &entry)
	t.Cleanup(func() { cleanEntryRows(t, env.DB, entry.ID) })
	return entry
}

func TestSchemaEntryCreate_MissingProduct_Returns400(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/schema-entries", map[string]any{
		"title_en":   "Orphan",
		"table_name": testTableName(),
	})
	rec := httptest.NewRecorder()
	env.Schema.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}
}

func TestSchemaEntryGet_LoadsAggregate(t *testing.T) {
	env := newTestEnv(t)

	entry := createEntryViaHandler(t, env, map[string]any{
		"product_id": uuid.New(),
		"title_en":   "Products",
		"table_name": testTableName(),
	})

	cat, err := env.FieldStore.CreateCategory(entry.ID, store.CategoryInput{NameEN: "General"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err = env.FieldStore.CreateField(entry.ID, cat.ID, store.FieldInput{
		ColumnName: "title",
		LabelEN:    "Title",
		DataType:   models.DataTypeString,
		InputType:  models.InputTypeText,
		Required:   true,
	})
	if err != nil {
		t.Fatalf("CreateField: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schema-entries/"+entry.ID.String(), nil)
	req = withChiURLParams(req, map[string]string{"id": entry.ID.String()})
	rec := httptest.NewRecorder()
	env.Schema.Get(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got status %d, body %s", rec.Code, rec.Body.String())
	}

	var got models.SchemaEntry
	decode(t, rec, &got)
	if len(got.Categories) != 1 || len(got.Categories[0].Fields) != 1 {
		t.Errorf("aggregate: got %d categories", len(got.Categories))
	}
	if got.Categories[0].Fields[0].ColumnName != "title" {
		t.Errorf("field: got %q", got.Categories[0].Fields[0].ColumnName)
	}
}

func TestSchemaEntryUpdate_MenuNullDetaches(t *testing.T) {
	env := newTestEnv(t)

	menu := createMenuViaHandler(t, env, map[string]any{"title": "Catalog " + uuid.NewString()[:8]})
	entry := createEntryViaHandler(t, env, map[string]any{
		"product_id": uuid.New(),
		"menu_id":    menu.ID,
		"title_en":   "Products",
		"table_name": testTableName(),
	})

	req := jsonRequest(t, http.MethodPut, "/api/v1/schema-entries/"+entry.ID.String(), map[string]any{"menu_id": nil})
	req = withChiURLParams(req, map[string]string{"id": entry.ID.String()})
	rec := httptest.NewRecorder()
	env.Schema.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got status %d, body %s", rec.Code, rec.Body.String())
	}

	var got models.SchemaEntry
	decode(t, rec, &got)
	if got.MenuID != nil {
		t.Error("expected explicit null to detach the menu")
	}
}

func TestSchemaEntryForceDelete_Returns204(t *testing.T) {
	env := newTestEnv(t)

	entry := createEntryViaHandler(t, env, map[string]any{
		"product_id": uuid.New(),
		"title_en":   "Disposable",
		"table_name": testTableName(),
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/schema-entries/"+entry.ID.String()+"/force", nil)
	req = withChiURLParams(req, map[string]string{"id": entry.ID.String()})
	rec := httptest.NewRecorder()
	env.Schema.ForceDelete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("force delete: got status %d, body %s", rec.Code, rec.Body.String())
	}

	var exists bool
	if err := env.DB.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_entries WHERE id = $1)`, entry.ID).Scan(&exists); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if exists {
		t.Error("expected the entry row to be gone")
	}
}

func TestGenerateRun_EmitsArtifacts(t *testing.T) {
	env := newTestEnv(t)

	entry := createEntryViaHandler(t, env, map[string]any{
		"product_id": uuid.New(),
		"title_en":   "Products",
		"table_name": testTableName(),
	})
	cat, err := env.FieldStore.CreateCategory(entry.ID, store.CategoryInput{NameEN: "General"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err = env.FieldStore.CreateField(entry.ID, cat.ID, store.FieldInput{
		ColumnName: "title",
		LabelEN:    "Title",
		DataType:   models.DataTypeString,
		InputType:  models.InputTypeText,
		Required:   true,
	})
	if err != nil {
		t.Fatalf("CreateField: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schema-entries/"+entry.ID.String()+"/generate", nil)
	req = withChiURLParams(req, map[string]string{"id": entry.ID.String()})
	rec := httptest.NewRecorder()
	env.Generate.Run(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: got status %d, body %s", rec.Code, rec.Body.String())
	}

	var set generator.ArtifactSet
	decode(t, rec, &set)
	if len(set.Artifacts) != 6 {
		t.Fatalf("expected 6 artifacts, got %d", len(set.Artifacts))
	}
	if set.SkippedMigration {
		t.Error("migration must run for a fresh table name")
	}
	if set.Artifacts[0].Path != "migrations/"+entry.TableName+".sql" {
		t.Errorf("first artifact: got %q", set.Artifacts[0].Path)
	}
}

func TestGenerateRun_NoFields_Returns422WithHint(t *testing.T) {
	env := newTestEnv(t)

	entry := createEntryViaHandler(t, env, map[string]any{
		"product_id": uuid.New(),
		"title_en":   "Empty",
		"table_name": testTableName(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schema-entries/"+entry.ID.String()+"/generate", nil)
	req = withChiURLParams(req, map[string]string{"id": entry.ID.String()})
	rec := httptest.NewRecorder()
	env.Generate.Run(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", rec.Code)
	}
	var resp struct {
		Error struct {
			Message string `json:"message"`
			Hint    string `json:"hint"`
		} `json:"error"`
	}
	decode(t, rec, &resp)
	if resp.Error.Hint == "" {
		t.Errorf("expected a remediation hint, got %+v", resp.Error)
	}
}

func TestGenerateRun_DeletedEntry_Returns409(t *testing.T) {
	env := newTestEnv(t)

	entry := createEntryViaHandler(t, env, map[string]any{
		"product_id": uuid.New(),
		"title_en":   "Gone",
		"table_name": testTableName(),
	})
	if err := env.EntryStore.SoftDelete(entry.ID, nil); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schema-entries/"+entry.ID.String()+"/generate", nil)
	req = withChiURLParams(req, map[string]string{"id": entry.ID.String()})
	rec := httptest.NewRecorder()
	env.Generate.Run(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("got status %d, want 409", rec.Code)
	}
}
