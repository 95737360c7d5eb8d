// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Schema entry categories and lifecycle states.
const (
	SchemaCategoryPrimary    = "primary"
	SchemaCategorySupporting = "supporting"

	SchemaStatusDraft     = "draft"
	SchemaStatusPublished = "published"
)

// ValidSchemaCategory reports whether c is a known schema entry category.
func ValidSchemaCategory(c string) bool {
	return c == SchemaCategoryPrimary || c == SchemaCategorySupporting
}

// ValidSchemaStatus reports whether s is a known schema entry status.
func ValidSchemaStatus(s string) bool {
	return s == SchemaStatusDraft || s == SchemaStatusPublished
}

// SchemaEntry describes one generatable entity: its target table, field
// groups, layouts and statistics. The Generation Pipeline consumes a fully
// loaded entry and emits the application artifacts for it.
type SchemaEntry struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	// MenuID optionally binds the entry to a navigation menu node.
	MenuID *uuid.UUID `json:"menu_id"`

	Category   string `json:"category"`
	TitleEN    string `json:"title_en"`
	TitleLocal string `json:"title_local"`
	// TableName is the generated table's name, globally unique, snake_case.
	TableName string `json:"table_name"`
	Status    string `json:"status"`

	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Loaded relations, populated on demand.
	Categories []FieldCategory `json:"categories,omitempty"`
	Table      *TableLayout    `json:"table_layout,omitempty"`
	Card       *CardLayout     `json:"card_layout,omitempty"`
	Statistics []StatisticSpec `json:"statistics,omitempty"`
}

// Deleted reports whether the entry is currently soft-deleted.
func (e *SchemaEntry) Deleted() bool {
	return e.DeletedAt != nil
}

// Fields returns every field spec of the entry across all categories,
// in category order then field order.
func (e *SchemaEntry) Fields() []FieldSpec {
	var out []FieldSpec
	for _, c := range e.Categories {
		out = append(out, c.Fields...)
	}
	return out
}

// FieldCategory is an ordered, named grouping of field specs inside a
// schema entry. Generated forms render one section per category.
type FieldCategory struct {
	ID        uuid.UUID `json:"id"`
	EntryID   uuid.UUID `json:"entry_id"`
	NameEN    string    `json:"name_en"`
	NameLocal string    `json:"name_local"`
	SortOrder int       `json:"sort_order"`

	Fields []FieldSpec `json:"fields,omitempty"`
}
