// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Column content render types for generated list views.
const (
	RenderTypeText  = "text"
	RenderTypeImage = "image"
	RenderTypeBadge = "badge"
	RenderTypeIcon  = "icon"
)

// ValidRenderType reports whether t is a known column render type.
func ValidRenderType(t string) bool {
	return t == RenderTypeText || t == RenderTypeImage || t == RenderTypeBadge || t == RenderTypeIcon
}

// TableLayout configures the generated list view of a schema entry.
// One layout per entry.
type TableLayout struct {
	ID      uuid.UUID `json:"id"`
	EntryID uuid.UUID `json:"entry_id"`

	ShowActions    bool   `json:"show_actions"`
	ActionPosition string `json:"action_position"` // "start" or "end"
	RowDensity     string `json:"row_density"`     // "compact", "normal", "relaxed"
	Bordered       bool   `json:"bordered"`
	Striped        bool   `json:"striped"`

	Columns []TableColumn `json:"columns,omitempty"`
}

// TableColumn is one ordered column of a table layout.
type TableColumn struct {
	ID       uuid.UUID `json:"id"`
	LayoutID uuid.UUID `json:"layout_id"`

	HeaderEN    string `json:"header_en"`
	HeaderLocal string `json:"header_local"`
	Width       string `json:"width"`
	SortOrder   int    `json:"sort_order"`

	Contents []ColumnContent `json:"contents,omitempty"`
}

// ColumnContent renders one field inside a table column. Style and
// BadgeRules are opaque JSON documents passed through to the UI scaffold.
type ColumnContent struct {
	ID       uuid.UUID `json:"id"`
	ColumnID uuid.UUID `json:"column_id"`

	FieldName  string          `json:"field_name"`
	RenderType string          `json:"render_type"`
	Style      json.RawMessage `json:"style,omitempty"`
	BadgeRules json.RawMessage `json:"badge_rules,omitempty"`
	SortOrder  int             `json:"sort_order"`
}

// CardLayout stores the entry's default card layout as an opaque
// structured document. One per entry.
type CardLayout struct {
	ID       uuid.UUID       `json:"id"`
	EntryID  uuid.UUID       `json:"entry_id"`
	Document json.RawMessage `json:"document"`
}

// StatisticSpec describes one dashboard statistic of a generated entity:
// a scalar query plus a period-over-period trend query.
type StatisticSpec struct {
	ID      uuid.UUID `json:"id"`
	EntryID uuid.UUID `json:"entry_id"`

	TitleEN    string `json:"title_en"`
	TitleLocal string `json:"title_local"`
	Icon       string `json:"icon"`
	ValueQuery string `json:"value_query"`
	TrendQuery string `json:"trend_query"`
	SortOrder  int    `json:"sort_order"`
}
