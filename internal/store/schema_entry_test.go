// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"appforge/internal/models"
)

// testTableName returns a unique, valid registry table name.
func testTableName() string {
	return "test_" + strings.ReplaceAll(uuid.NewString()[:13], "-", "_")
}

func makeEntry(t *testing.T, db *sql.DB, s *SchemaEntryStore, product uuid.UUID) *models.SchemaEntry {
	t.Helper()
	entry, err := s.Create(CreateEntryInput{
		ProductID: product,
		TitleEN:   "Test Entry",
		TableName: testTableName(),
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	t.Cleanup(func() { cleanEntries(t, db, entry.ID) })
	return entry
}

func TestSchemaEntryCreateDefaults(t *testing.T) {
	db := testDB(t)
	s := NewSchemaEntryStore(db)

	entry := makeEntry(t, db, s, testProduct())
	if entry.Status != models.SchemaStatusDraft {
		t.Errorf("status: got %q, want draft", entry.Status)
	}
	if entry.Category != models.SchemaCategoryPrimary {
		t.Errorf("category: got %q, want primary", entry.Category)
	}
}

func TestSchemaEntryTableNameValidation(t *testing.T) {
	db := testDB(t)
	s := NewSchemaEntryStore(db)
	product := testProduct()

	var vErr *ValidationError
	bad := []string{"", "Products", "1items", "order-items", "a b", strings.Repeat("x", 64)}
	for _, name := range bad {
		_, err := s.Create(CreateEntryInput{ProductID: product, TitleEN: "X", TableName: name})
		if !errors.As(err, &vErr) {
			t.Errorf("table name %q: expected ValidationError, got %v", name, err)
		}
	}
}

func TestSchemaEntryTableNameGloballyUnique(t *testing.T) {
	db := testDB(t)
	s := NewSchemaEntryStore(db)

	entry := makeEntry(t, db, s, testProduct())

	// The same name conflicts even in a different product scope.
	var cErr *ConflictError
	_, err := s.Create(CreateEntryInput{
		ProductID: testProduct(),
		TitleEN:   "Clash",
		TableName: entry.TableName,
	})
	if !errors.As(err, &cErr) {
		t.Errorf("duplicate table name: expected ConflictError, got %v", err)
	}

	// Soft delete keeps the name reserved.
	if err := s.SoftDelete(entry.ID, nil); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	_, err = s.Create(CreateEntryInput{
		ProductID: testProduct(),
		TitleEN:   "Clash",
		TableName: entry.TableName,
	})
	if !errors.As(err, &cErr) {
		t.Errorf("trashed table name: expected ConflictError, got %v", err)
	}

	// Force delete frees it.
	if err := s.ForceDelete(entry.ID); err != nil {
		t.Fatalf("ForceDelete: %v", err)
	}
	freed, err := s.Create(CreateEntryInput{
		ProductID: testProduct(),
		TitleEN:   "Clash",
		TableName: entry.TableName,
	})
	if err != nil {
		t.Fatalf("reuse after force delete: %v", err)
	}
	cleanEntries(t, db, freed.ID)
}

func TestSchemaEntryMenuBinding(t *testing.T) {
	db := testDB(t)
	s := NewSchemaEntryStore(db)
	menus := NewMenuStore(db)

	menuID := makeMenu(t, db, menus, nil, "test-entry-menu-"+uuid.NewString()[:8])

	// An unknown menu id rejects the create.
	ghost := uuid.New()
	var vErr *ValidationError
	_, err := s.Create(CreateEntryInput{
		ProductID: testProduct(),
		MenuID:    &ghost,
		TitleEN:   "X",
		TableName: testTableName(),
	})
	if !errors.As(err, &vErr) {
		t.Errorf("unknown menu: expected ValidationError, got %v", err)
	}

	entry, err := s.Create(CreateEntryInput{
		ProductID: testProduct(),
		MenuID:    &menuID,
		TitleEN:   "Bound",
		TableName: testTableName(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanEntries(t, db, entry.ID) })
	if entry.MenuID == nil || *entry.MenuID != menuID {
		t.Error("expected entry to be bound to the menu")
	}

	// "menu_id": null detaches; an update without the flag keeps it.
	title := "Still Bound"
	updated, err := s.Update(entry.ID, UpdateEntryInput{TitleEN: &title})
	if err != nil {
		t.Fatalf("Update title: %v", err)
	}
	if updated.MenuID == nil {
		t.Error("title-only update must not detach the menu")
	}

	updated, err = s.Update(entry.ID, UpdateEntryInput{SetMenu: true, MenuID: nil})
	if err != nil {
		t.Fatalf("Update detach: %v", err)
	}
	if updated.MenuID != nil {
		t.Error("expected explicit null to detach the menu")
	}
}

func TestSchemaEntryListScoping(t *testing.T) {
	db := testDB(t)
	s := NewSchemaEntryStore(db)
	product := testProduct()

	entry := makeEntry(t, db, s, product)
	makeEntry(t, db, s, testProduct())

	scoped, err := s.List(&product, TrashNone)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != entry.ID {
		t.Errorf("scoped listing: got %d entries", len(scoped))
	}
}

func TestSchemaEntryRestore(t *testing.T) {
	db := testDB(t)
	s := NewSchemaEntryStore(db)

	entry := makeEntry(t, db, s, testProduct())
	if err := s.SoftDelete(entry.ID, nil); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := s.Restore(entry.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	found, err := s.FindByID(entry.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.DeletedAt != nil {
		t.Error("expected restored entry to be live")
	}

	if err := s.Restore(uuid.New()); !IsNotFound(err) {
		t.Errorf("restore unknown: expected NotFoundError, got %v", err)
	}
}

func TestSchemaEntryTableExists(t *testing.T) {
	db := testDB(t)
	s := NewSchemaEntryStore(db)

	exists, err := s.TableExists("schema_entries")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if !exists {
		t.Error("schema_entries should exist")
	}

	exists, err = s.TableExists(testTableName())
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if exists {
		t.Error("random table should not exist")
	}
}
