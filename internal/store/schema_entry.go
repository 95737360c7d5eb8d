// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"appforge/internal/models"
)

// SchemaEntryStore manages schema registry entries: the stored
// descriptions the Generation Pipeline consumes.
type SchemaEntryStore struct {
	db *sql.DB
}

// NewSchemaEntryStore returns a new SchemaEntryStore.
func NewSchemaEntryStore(db *sql.DB) *SchemaEntryStore {
	return &SchemaEntryStore{db: db}
}

const entryColumns = `id, product_id, menu_id, category, title_en, title_local, table_name, status,
	created_by, updated_by, deleted_by, created_at, updated_at, deleted_at`

// tableNamePattern matches the snake_case identifiers accepted as target
// table names.
var tableNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// scanEntry scans a row into a SchemaEntry struct.
func scanEntry(scanner interface{ Scan(...any) error }) (*models.SchemaEntry, error) {
	var e models.SchemaEntry
	err := scanner.Scan(
		&e.ID, &e.ProductID, &e.MenuID, &e.Category, &e.TitleEN, &e.TitleLocal,
		&e.TableName, &e.Status,
		&e.CreatedBy, &e.UpdatedBy, &e.DeletedBy,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntryInput carries the writable fields for a new schema entry.
type CreateEntryInput struct {
	ProductID  uuid.UUID  `json:"product_id"`
	MenuID     *uuid.UUID `json:"menu_id"`
	Category   string     `json:"category"`
	TitleEN    string     `json:"title_en"`
	TitleLocal string     `json:"title_local"`
	TableName  string     `json:"table_name"`
	Status     string     `json:"status"`
	CreatedBy  *uuid.UUID `json:"-"`
}

// validateEntry checks the rules shared by create and update.
func validateEntry(category, titleEN, tableName, status string) error {
	fields := map[string]string{}
	if !models.ValidSchemaCategory(category) {
		fields["category"] = "must be one of primary, supporting"
	}
	if strings.TrimSpace(titleEN) == "" {
		fields["title_en"] = "title is required"
	}
	if !tableNamePattern.MatchString(tableName) {
		fields["table_name"] = "must be a snake_case identifier"
	}
	if !models.ValidSchemaStatus(status) {
		fields["status"] = "must be one of draft, published"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "validation failed", Fields: fields}
	}
	return nil
}

// tableNameTaken reports whether another entry already claims the table name.
// Table names are unique globally, soft-deleted entries included.
func (s *SchemaEntryStore) tableNameTaken(q querier, name string, excludeID *uuid.UUID) (bool, error) {
	var taken bool
	var err error
	if excludeID != nil {
		err = q.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_entries WHERE table_name = $1 AND id <> $2)`,
			name, *excludeID).Scan(&taken)
	} else {
		err = q.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_entries WHERE table_name = $1)`,
			name).Scan(&taken)
	}
	if err != nil {
		return false, fmt.Errorf("table name lookup: %w", err)
	}
	return taken, nil
}

// checkMenuRef validates an optional menu binding.
func checkMenuRef(q querier, menuID *uuid.UUID) error {
	if menuID == nil {
		return nil
	}
	var exists bool
	if err := q.QueryRow(`SELECT EXISTS (SELECT 1 FROM menu_nodes WHERE id = $1)`, *menuID).Scan(&exists); err != nil {
		return fmt.Errorf("menu reference lookup: %w", err)
	}
	if !exists {
		return NewValidationError("menu_id", "menu node does not exist")
	}
	return nil
}

// Create inserts a new schema entry.
func (s *SchemaEntryStore) Create(in CreateEntryInput) (*models.SchemaEntry, error) {
	if in.Status == "" {
		in.Status = models.SchemaStatusDraft
	}
	if in.Category == "" {
		in.Category = models.SchemaCategoryPrimary
	}
	if in.ProductID == uuid.Nil {
		return nil, NewValidationError("product_id", "product id is required")
	}
	if err := validateEntry(in.Category, in.TitleEN, in.TableName, in.Status); err != nil {
		return nil, err
	}
	if err := checkMenuRef(s.db, in.MenuID); err != nil {
		return nil, err
	}
	taken, err := s.tableNameTaken(s.db, in.TableName, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: fmt.Sprintf("table name %q is already registered", in.TableName)}
	}

	row := s.db.QueryRow(`
		INSERT INTO schema_entries (product_id, menu_id, category, title_en, title_local, table_name, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+entryColumns,
		in.ProductID, in.MenuID, in.Category, strings.TrimSpace(in.TitleEN), in.TitleLocal,
		in.TableName, in.Status, in.CreatedBy,
	)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("create schema entry: %w", err)
	}
	return entry, nil
}

// FindByID retrieves a schema entry by id, including soft-deleted ones.
func (s *SchemaEntryStore) FindByID(id uuid.UUID) (*models.SchemaEntry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM schema_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "schema entry", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find schema entry: %w", err)
	}
	return entry, nil
}

// List returns schema entries, optionally filtered by product.
func (s *SchemaEntryStore) List(productID *uuid.UUID, trash TrashMode) ([]models.SchemaEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM schema_entries WHERE TRUE` + trash.Condition()
	var args []any
	if productID != nil {
		query += ` AND product_id = $1`
		args = append(args, *productID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schema entries: %w", err)
	}
	defer rows.Close()

	var items []models.SchemaEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schema entry: %w", err)
		}
		items = append(items, *entry)
	}
	return items, rows.Err()
}

// UpdateEntryInput carries a partial schema entry update. SetMenu marks
// that MenuID was present in the request (including explicit null).
type UpdateEntryInput struct {
	Category   *string
	TitleEN    *string
	TitleLocal *string
	TableName  *string
	Status     *string
	SetMenu    bool
	MenuID     *uuid.UUID
	UpdatedBy  *uuid.UUID
}

// Update applies a partial update, re-validating the merged row.
func (s *SchemaEntryStore) Update(id uuid.UUID, in UpdateEntryInput) (*models.SchemaEntry, error) {
	current, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	if in.Category != nil {
		current.Category = *in.Category
	}
	if in.TitleEN != nil {
		current.TitleEN = strings.TrimSpace(*in.TitleEN)
	}
	if in.TitleLocal != nil {
		current.TitleLocal = *in.TitleLocal
	}
	if in.TableName != nil {
		current.TableName = *in.TableName
	}
	if in.Status != nil {
		current.Status = *in.Status
	}
	if in.SetMenu {
		current.MenuID = in.MenuID
	}

	if err := validateEntry(current.Category, current.TitleEN, current.TableName, current.Status); err != nil {
		return nil, err
	}
	if in.SetMenu {
		if err := checkMenuRef(s.db, current.MenuID); err != nil {
			return nil, err
		}
	}
	if in.TableName != nil {
		taken, err := s.tableNameTaken(s.db, current.TableName, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Message: fmt.Sprintf("table name %q is already registered", current.TableName)}
		}
	}

	row := s.db.QueryRow(`
		UPDATE schema_entries SET category = $1, title_en = $2, title_local = $3, table_name = $4,
			status = $5, menu_id = $6, updated_by = $7, updated_at = $8
		WHERE id = $9
		RETURNING `+entryColumns,
		current.Category, current.TitleEN, current.TitleLocal, current.TableName,
		current.Status, current.MenuID, in.UpdatedBy, time.Now().UTC(), id,
	)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("update schema entry: %w", err)
	}
	return entry, nil
}

// SoftDelete marks the entry deleted. Nested categories, fields and
// layouts stay attached and come back on restore.
func (s *SchemaEntryStore) SoftDelete(id uuid.UUID, by *uuid.UUID) error {
	res, err := s.db.Exec(
		`UPDATE schema_entries SET deleted_at = $1, deleted_by = $2, updated_at = $1 WHERE id = $3 AND deleted_at IS NULL`,
		time.Now().UTC(), by, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete schema entry: %w", err)
	}
	return requireAffectedOrExists(s.db, res, "schema_entries", "schema entry", id)
}

// Restore clears the entry's deletion mark.
func (s *SchemaEntryStore) Restore(id uuid.UUID) error {
	res, err := s.db.Exec(
		`UPDATE schema_entries SET deleted_at = NULL, deleted_by = NULL, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("restore schema entry: %w", err)
	}
	return requireAffectedOrExists(s.db, res, "schema_entries", "schema entry", id)
}

// ForceDelete permanently removes the entry. Categories, fields, layouts
// and statistics follow via ON DELETE CASCADE.
func (s *SchemaEntryStore) ForceDelete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM schema_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("force delete schema entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("force delete schema entry: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "schema entry", ID: id.String()}
	}
	return nil
}

// TableExists reports whether the entry's target table is already
// materialized in the database. Used by the generate endpoint to switch
// into re-generation mode.
func (s *SchemaEntryStore) TableExists(name string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("table exists lookup: %w", err)
	}
	return exists, nil
}

// requireAffectedOrExists distinguishes a no-op update from a missing row.
func requireAffectedOrExists(q querier, res sql.Result, table, entity string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := q.QueryRow(fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table), id).Scan(&exists); err != nil {
		return fmt.Errorf("%s lookup: %w", table, err)
	}
	if !exists {
		return &NotFoundError{Entity: entity, ID: id.String()}
	}
	return nil
}
