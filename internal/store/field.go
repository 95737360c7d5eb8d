// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"appforge/internal/models"
)

// FieldStore manages the ordered field categories and field specs nested
// under a schema entry.
type FieldStore struct {
	db *sql.DB
}

// NewFieldStore returns a new FieldStore.
func NewFieldStore(db *sql.DB) *FieldStore {
	return &FieldStore{db: db}
}

const categoryColumns = `id, entry_id, name_en, name_local, sort_order`

const fieldColumns = `id, category_id, column_name, label_en, label_local, placeholder_en, placeholder_local,
	data_type, length, input_type, enum_options, required, nullable, is_unique, readonly, hidden,
	align, default_value, sort_order, relation_type, related_table, related_column`

var columnNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// scanFieldCategory scans a row into a FieldCategory struct.
func scanFieldCategory(scanner interface{ Scan(...any) error }) (*models.FieldCategory, error) {
	var c models.FieldCategory
	if err := scanner.Scan(&c.ID, &c.EntryID, &c.NameEN, &c.NameLocal, &c.SortOrder); err != nil {
		return nil, err
	}
	return &c, nil
}

// scanFieldSpec scans a row into a FieldSpec, decoding the enum option
// list and folding the relation columns into a Relation value.
func scanFieldSpec(scanner interface{ Scan(...any) error }) (*models.FieldSpec, error) {
	var f models.FieldSpec
	var enumRaw []byte
	var relType, relTable, relColumn *string
	err := scanner.Scan(
		&f.ID, &f.CategoryID, &f.ColumnName, &f.LabelEN, &f.LabelLocal,
		&f.PlaceholderEN, &f.PlaceholderLocal,
		&f.DataType, &f.Length, &f.InputType, &enumRaw,
		&f.Required, &f.Nullable, &f.Unique, &f.Readonly, &f.Hidden,
		&f.Align, &f.DefaultValue, &f.SortOrder,
		&relType, &relTable, &relColumn,
	)
	if err != nil {
		return nil, err
	}
	if len(enumRaw) > 0 {
		if err := json.Unmarshal(enumRaw, &f.EnumOptions); err != nil {
			return nil, fmt.Errorf("decode enum options: %w", err)
		}
	}
	if relType != nil && relTable != nil && relColumn != nil {
		f.Relation = &models.Relation{Type: *relType, RelatedTable: *relTable, RelatedColumn: *relColumn}
	}
	return &f, nil
}

// --- Field categories ---

// CategoryInput carries the writable fields of a field category.
type CategoryInput struct {
	NameEN    string `json:"name_en"`
	NameLocal string `json:"name_local"`
	SortOrder *int   `json:"sort_order"`
}

// CreateCategory adds a category to the entry, ordered last by default.
func (s *FieldStore) CreateCategory(entryID uuid.UUID, in CategoryInput) (*models.FieldCategory, error) {
	if strings.TrimSpace(in.NameEN) == "" {
		return nil, NewValidationError("name_en", "name is required")
	}
	if err := requireEntry(s.db, entryID); err != nil {
		return nil, err
	}

	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else {
		err := s.db.QueryRow(
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM field_categories WHERE entry_id = $1`, entryID,
		).Scan(&order)
		if err != nil {
			return nil, fmt.Errorf("next category order: %w", err)
		}
	}

	row := s.db.QueryRow(`
		INSERT INTO field_categories (entry_id, name_en, name_local, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		entryID, strings.TrimSpace(in.NameEN), in.NameLocal, order,
	)
	cat, err := scanFieldCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create field category: %w", err)
	}
	if err := touchEntry(s.db, entryID); err != nil {
		return nil, err
	}
	return cat, nil
}

// CategoryPatch carries a partial category update. Nil fields keep the
// stored value; an explicit empty name_local clears the localized name.
type CategoryPatch struct {
	NameEN    *string `json:"name_en"`
	NameLocal *string `json:"name_local"`
	SortOrder *int    `json:"sort_order"`
}

// UpdateCategory modifies a category's names and order.
func (s *FieldStore) UpdateCategory(entryID, catID uuid.UUID, in CategoryPatch) (*models.FieldCategory, error) {
	current, err := s.findCategory(entryID, catID)
	if err != nil {
		return nil, err
	}
	if in.NameEN != nil {
		name := strings.TrimSpace(*in.NameEN)
		if name == "" {
			return nil, NewValidationError("name_en", "name is required")
		}
		current.NameEN = name
	}
	if in.NameLocal != nil {
		current.NameLocal = *in.NameLocal
	}
	if in.SortOrder != nil {
		current.SortOrder = *in.SortOrder
	}

	row := s.db.QueryRow(`
		UPDATE field_categories SET name_en = $1, name_local = $2, sort_order = $3
		WHERE id = $4
		RETURNING `+categoryColumns,
		current.NameEN, current.NameLocal, current.SortOrder, catID,
	)
	cat, err := scanFieldCategory(row)
	if err != nil {
		return nil, fmt.Errorf("update field category: %w", err)
	}
	if err := touchEntry(s.db, entryID); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category and its fields (ON DELETE CASCADE).
func (s *FieldStore) DeleteCategory(entryID, catID uuid.UUID) error {
	if _, err := s.findCategory(entryID, catID); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM field_categories WHERE id = $1`, catID); err != nil {
		return fmt.Errorf("delete field category: %w", err)
	}
	return touchEntry(s.db, entryID)
}

// ListCategories returns the entry's categories in order, each with its
// fields loaded in order.
func (s *FieldStore) ListCategories(entryID uuid.UUID) ([]models.FieldCategory, error) {
	rows, err := s.db.Query(
		`SELECT `+categoryColumns+` FROM field_categories WHERE entry_id = $1 ORDER BY sort_order, name_en`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list field categories: %w", err)
	}
	defer rows.Close()

	var cats []models.FieldCategory
	for rows.Next() {
		cat, err := scanFieldCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field category: %w", err)
		}
		cats = append(cats, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range cats {
		fields, err := s.ListFields(cats[i].ID)
		if err != nil {
			return nil, err
		}
		cats[i].Fields = fields
	}
	return cats, nil
}

func (s *FieldStore) findCategory(entryID, catID uuid.UUID) (*models.FieldCategory, error) {
	row := s.db.QueryRow(
		`SELECT `+categoryColumns+` FROM field_categories WHERE id = $1 AND entry_id = $2`, catID, entryID,
	)
	cat, err := scanFieldCategory(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "field category", ID: catID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find field category: %w", err)
	}
	return cat, nil
}

// --- Field specs ---

// FieldInput carries the writable fields of a field spec.
type FieldInput struct {
	ColumnName       string           `json:"column_name"`
	LabelEN          string           `json:"label_en"`
	LabelLocal       string           `json:"label_local"`
	PlaceholderEN    string           `json:"placeholder_en"`
	PlaceholderLocal string           `json:"placeholder_local"`
	DataType         string           `json:"data_type"`
	Length           *int             `json:"length"`
	InputType        string           `json:"input_type"`
	EnumOptions      []string         `json:"enum_options"`
	Required         bool             `json:"required"`
	Nullable         bool             `json:"nullable"`
	Unique           bool             `json:"unique"`
	Readonly         bool             `json:"readonly"`
	Hidden           bool             `json:"hidden"`
	Align            string           `json:"align"`
	DefaultValue     *string          `json:"default_value"`
	SortOrder        *int             `json:"sort_order"`
	Relation         *models.Relation `json:"relation"`
}

// validateField checks a merged field spec against the registry rules.
func validateField(in FieldInput) error {
	fields := map[string]string{}
	if !columnNamePattern.MatchString(in.ColumnName) {
		fields["column_name"] = "must be a snake_case identifier"
	}
	if !models.ValidDataType(in.DataType) {
		fields["data_type"] = "unknown data type"
	}
	if !models.ValidInputType(in.InputType) {
		fields["input_type"] = "unknown input type"
	}
	if in.Required && in.Nullable {
		fields["nullable"] = "a field cannot be both required and nullable"
	}
	if models.ClosedChoiceInput(in.InputType) && len(in.EnumOptions) == 0 {
		fields["enum_options"] = "option list is required for closed-choice inputs"
	}
	if in.Length != nil && *in.Length <= 0 {
		fields["length"] = "must be positive"
	}
	if in.Relation != nil {
		if in.Relation.Type == "" || in.Relation.RelatedTable == "" || in.Relation.RelatedColumn == "" {
			fields["relation"] = "relation requires type, related_table and related_column together"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "validation failed", Fields: fields}
	}
	return nil
}

// columnNameTaken reports whether the entry already has a field with the
// column name, across all of its categories.
func (s *FieldStore) columnNameTaken(entryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM field_specs f
			JOIN field_categories c ON c.id = f.category_id
			WHERE c.entry_id = $1 AND f.column_name = $2`
	args := []any{entryID, name}
	if excludeID != nil {
		query += ` AND f.id <> $3`
		args = append(args, *excludeID)
	}
	query += `)`

	var taken bool
	if err := s.db.QueryRow(query, args...).Scan(&taken); err != nil {
		return false, fmt.Errorf("column name lookup: %w", err)
	}
	return taken, nil
}

// CreateField adds a field spec to a category, ordered last by default.
func (s *FieldStore) CreateField(entryID, catID uuid.UUID, in FieldInput) (*models.FieldSpec, error) {
	if _, err := s.findCategory(entryID, catID); err != nil {
		return nil, err
	}
	if err := validateField(in); err != nil {
		return nil, err
	}
	taken, err := s.columnNameTaken(entryID, in.ColumnName, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: fmt.Sprintf("column %q already exists on this entry", in.ColumnName)}
	}

	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else {
		err := s.db.QueryRow(
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM field_specs WHERE category_id = $1`, catID,
		).Scan(&order)
		if err != nil {
			return nil, fmt.Errorf("next field order: %w", err)
		}
	}

	enumJSON, relType, relTable, relColumn := fieldStorageValues(in)
	row := s.db.QueryRow(`
		INSERT INTO field_specs (category_id, column_name, label_en, label_local, placeholder_en, placeholder_local,
			data_type, length, input_type, enum_options, required, nullable, is_unique, readonly, hidden,
			align, default_value, sort_order, relation_type, related_table, related_column)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING `+fieldColumns,
		catID, in.ColumnName, in.LabelEN, in.LabelLocal, in.PlaceholderEN, in.PlaceholderLocal,
		in.DataType, in.Length, in.InputType, enumJSON, in.Required, in.Nullable, in.Unique, in.Readonly, in.Hidden,
		in.Align, in.DefaultValue, order, relType, relTable, relColumn,
	)
	field, err := scanFieldSpec(row)
	if err != nil {
		return nil, fmt.Errorf("create field spec: %w", err)
	}
	if err := touchEntry(s.db, entryID); err != nil {
		return nil, err
	}
	return field, nil
}

// UpdateField replaces a field spec's definition. The sort order is kept
// unless the input carries a new one.
func (s *FieldStore) UpdateField(entryID, catID, fieldID uuid.UUID, in FieldInput) (*models.FieldSpec, error) {
	current, err := s.findField(entryID, catID, fieldID)
	if err != nil {
		return nil, err
	}
	if err := validateField(in); err != nil {
		return nil, err
	}
	taken, err := s.columnNameTaken(entryID, in.ColumnName, &fieldID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: fmt.Sprintf("column %q already exists on this entry", in.ColumnName)}
	}

	enumJSON, relType, relTable, relColumn := fieldStorageValues(in)
	order := current.SortOrder
	if in.SortOrder != nil {
		order = *in.SortOrder
	}
	row := s.db.QueryRow(`
		UPDATE field_specs SET column_name = $1, label_en = $2, label_local = $3,
			placeholder_en = $4, placeholder_local = $5, data_type = $6, length = $7, input_type = $8,
			enum_options = $9, required = $10, nullable = $11, is_unique = $12, readonly = $13, hidden = $14,
			align = $15, default_value = $16, sort_order = $17,
			relation_type = $18, related_table = $19, related_column = $20
		WHERE id = $21
		RETURNING `+fieldColumns,
		in.ColumnName, in.LabelEN, in.LabelLocal,
		in.PlaceholderEN, in.PlaceholderLocal, in.DataType, in.Length, in.InputType,
		enumJSON, in.Required, in.Nullable, in.Unique, in.Readonly, in.Hidden,
		in.Align, in.DefaultValue, order,
		relType, relTable, relColumn, fieldID,
	)
	field, err := scanFieldSpec(row)
	if err != nil {
		return nil, fmt.Errorf("update field spec: %w", err)
	}
	if err := touchEntry(s.db, entryID); err != nil {
		return nil, err
	}
	return field, nil
}

// DeleteField removes a field spec.
func (s *FieldStore) DeleteField(entryID, catID, fieldID uuid.UUID) error {
	if _, err := s.findField(entryID, catID, fieldID); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM field_specs WHERE id = $1`, fieldID); err != nil {
		return fmt.Errorf("delete field spec: %w", err)
	}
	return touchEntry(s.db, entryID)
}

// ListFields returns a category's field specs in order.
func (s *FieldStore) ListFields(catID uuid.UUID) ([]models.FieldSpec, error) {
	rows, err := s.db.Query(
		`SELECT `+fieldColumns+` FROM field_specs WHERE category_id = $1 ORDER BY sort_order, column_name`,
		catID,
	)
	if err != nil {
		return nil, fmt.Errorf("list field specs: %w", err)
	}
	defer rows.Close()

	var fields []models.FieldSpec
	for rows.Next() {
		field, err := scanFieldSpec(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field spec: %w", err)
		}
		fields = append(fields, *field)
	}
	return fields, rows.Err()
}

func (s *FieldStore) findField(entryID, catID, fieldID uuid.UUID) (*models.FieldSpec, error) {
	row := s.db.QueryRow(`
		SELECT `+fieldColumns+` FROM field_specs f
		WHERE f.id = $1 AND f.category_id = $2
			AND EXISTS (SELECT 1 FROM field_categories c WHERE c.id = $2 AND c.entry_id = $3)`,
		fieldID, catID, entryID,
	)
	field, err := scanFieldSpec(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "field spec", ID: fieldID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find field spec: %w", err)
	}
	return field, nil
}

// fieldStorageValues maps a FieldInput onto its nullable storage columns.
func fieldStorageValues(in FieldInput) (enumJSON any, relType, relTable, relColumn *string) {
	if len(in.EnumOptions) > 0 {
		raw, _ := json.Marshal(in.EnumOptions)
		enumJSON = raw
	}
	if in.Relation != nil {
		relType = &in.Relation.Type
		relTable = &in.Relation.RelatedTable
		relColumn = &in.Relation.RelatedColumn
	}
	return enumJSON, relType, relTable, relColumn
}

// touchEntry bumps the entry's updated_at so consumers of the timestamp,
// the artifact cache key among them, see every nested mutation.
func touchEntry(q querier, entryID uuid.UUID) error {
	if _, err := q.Exec(`UPDATE schema_entries SET updated_at = now() WHERE id = $1`, entryID); err != nil {
		return fmt.Errorf("touch schema entry: %w", err)
	}
	return nil
}

// requireEntry returns a NotFoundError unless the schema entry exists.
func requireEntry(q querier, entryID uuid.UUID) error {
	var exists bool
	if err := q.QueryRow(`SELECT EXISTS (SELECT 1 FROM schema_entries WHERE id = $1)`, entryID).Scan(&exists); err != nil {
		return fmt.Errorf("schema entry lookup: %w", err)
	}
	if !exists {
		return &NotFoundError{Entity: "schema entry", ID: entryID.String()}
	}
	return nil
}
