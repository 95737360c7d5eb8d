// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"appforge/internal/models"
)

// LayoutStore manages the per-entry table layout, card layout and
// statistic specs of the schema registry.
type LayoutStore struct {
	db *sql.DB
}

// NewLayoutStore returns a new LayoutStore.
func NewLayoutStore(db *sql.DB) *LayoutStore {
	return &LayoutStore{db: db}
}

// TableLayoutInput carries a full table layout replacement: the layout
// row plus its ordered columns and contents.
type TableLayoutInput struct {
	ShowActions    bool               `json:"show_actions"`
	ActionPosition string             `json:"action_position"`
	RowDensity     string             `json:"row_density"`
	Bordered       bool               `json:"bordered"`
	Striped        bool               `json:"striped"`
	Columns        []TableColumnInput `json:"columns"`
}

// TableColumnInput is one column of a table layout replacement.
type TableColumnInput struct {
	HeaderEN    string               `json:"header_en"`
	HeaderLocal string               `json:"header_local"`
	Width       string               `json:"width"`
	Contents    []ColumnContentInput `json:"contents"`
}

// ColumnContentInput is one rendered field of a table column.
type ColumnContentInput struct {
	FieldName  string          `json:"field_name"`
	RenderType string          `json:"render_type"`
	Style      json.RawMessage `json:"style"`
	BadgeRules json.RawMessage `json:"badge_rules"`
}

func validateTableLayout(in TableLayoutInput) error {
	fields := map[string]string{}
	switch in.ActionPosition {
	case "", "start", "end":
	default:
		fields["action_position"] = "must be start or end"
	}
	switch in.RowDensity {
	case "", "compact", "normal", "relaxed":
	default:
		fields["row_density"] = "must be one of compact, normal, relaxed"
	}
	for i, col := range in.Columns {
		if strings.TrimSpace(col.HeaderEN) == "" {
			fields[fmt.Sprintf("columns[%d].header_en", i)] = "header is required"
		}
		for j, content := range col.Contents {
			if strings.TrimSpace(content.FieldName) == "" {
				fields[fmt.Sprintf("columns[%d].contents[%d].field_name", i, j)] = "field name is required"
			}
			if !models.ValidRenderType(content.RenderType) {
				fields[fmt.Sprintf("columns[%d].contents[%d].render_type", i, j)] = "must be one of text, image, badge, icon"
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "validation failed", Fields: fields}
	}
	return nil
}

// UpsertTableLayout replaces the entry's table layout wholesale (the
// layout is a singleton per entry), in one transaction.
func (s *LayoutStore) UpsertTableLayout(entryID uuid.UUID, in TableLayoutInput) (*models.TableLayout, error) {
	if err := requireEntry(s.db, entryID); err != nil {
		return nil, err
	}
	if err := validateTableLayout(in); err != nil {
		return nil, err
	}
	if in.ActionPosition == "" {
		in.ActionPosition = "end"
	}
	if in.RowDensity == "" {
		in.RowDensity = "normal"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Singleton per entry: drop and recreate. Columns and contents follow
	// via ON DELETE CASCADE.
	if _, err := tx.Exec(`DELETE FROM table_layouts WHERE entry_id = $1`, entryID); err != nil {
		return nil, fmt.Errorf("clear table layout: %w", err)
	}

	layout := &models.TableLayout{}
	err = tx.QueryRow(`
		INSERT INTO table_layouts (entry_id, show_actions, action_position, row_density, bordered, striped)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, entry_id, show_actions, action_position, row_density, bordered, striped`,
		entryID, in.ShowActions, in.ActionPosition, in.RowDensity, in.Bordered, in.Striped,
	).Scan(&layout.ID, &layout.EntryID, &layout.ShowActions, &layout.ActionPosition,
		&layout.RowDensity, &layout.Bordered, &layout.Striped)
	if err != nil {
		return nil, fmt.Errorf("create table layout: %w", err)
	}

	for i, colIn := range in.Columns {
		col := models.TableColumn{}
		err := tx.QueryRow(`
			INSERT INTO table_columns (layout_id, header_en, header_local, width, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, layout_id, header_en, header_local, width, sort_order`,
			layout.ID, colIn.HeaderEN, colIn.HeaderLocal, colIn.Width, i+1,
		).Scan(&col.ID, &col.LayoutID, &col.HeaderEN, &col.HeaderLocal, &col.Width, &col.SortOrder)
		if err != nil {
			return nil, fmt.Errorf("create table column: %w", err)
		}
		for j, contentIn := range colIn.Contents {
			content := models.ColumnContent{}
			var style, badgeRules []byte
			err := tx.QueryRow(`
				INSERT INTO column_contents (column_id, field_name, render_type, style, badge_rules, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, column_id, field_name, render_type, style, badge_rules, sort_order`,
				col.ID, contentIn.FieldName, contentIn.RenderType,
				nullableJSON(contentIn.Style), nullableJSON(contentIn.BadgeRules), j+1,
			).Scan(&content.ID, &content.ColumnID, &content.FieldName, &content.RenderType,
				&style, &badgeRules, &content.SortOrder)
			if err != nil {
				return nil, fmt.Errorf("create column content: %w", err)
			}
			content.Style = style
			content.BadgeRules = badgeRules
			col.Contents = append(col.Contents, content)
		}
		layout.Columns = append(layout.Columns, col)
	}

	if err := touchEntry(tx, entryID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return layout, nil
}

// FindTableLayout loads the entry's table layout with columns and
// contents, or nil when none is configured.
func (s *LayoutStore) FindTableLayout(entryID uuid.UUID) (*models.TableLayout, error) {
	layout := &models.TableLayout{}
	err := s.db.QueryRow(`
		SELECT id, entry_id, show_actions, action_position, row_density, bordered, striped
		FROM table_layouts WHERE entry_id = $1`, entryID,
	).Scan(&layout.ID, &layout.EntryID, &layout.ShowActions, &layout.ActionPosition,
		&layout.RowDensity, &layout.Bordered, &layout.Striped)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find table layout: %w", err)
	}

	colRows, err := s.db.Query(`
		SELECT id, layout_id, header_en, header_local, width, sort_order
		FROM table_columns WHERE layout_id = $1 ORDER BY sort_order`, layout.ID)
	if err != nil {
		return nil, fmt.Errorf("load table columns: %w", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var col models.TableColumn
		if err := colRows.Scan(&col.ID, &col.LayoutID, &col.HeaderEN, &col.HeaderLocal, &col.Width, &col.SortOrder); err != nil {
			return nil, fmt.Errorf("scan table column: %w", err)
		}
		layout.Columns = append(layout.Columns, col)
	}
	if err := colRows.Err(); err != nil {
		return nil, err
	}

	for i := range layout.Columns {
		rows, err := s.db.Query(`
			SELECT id, column_id, field_name, render_type, style, badge_rules, sort_order
			FROM column_contents WHERE column_id = $1 ORDER BY sort_order`, layout.Columns[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load column contents: %w", err)
		}
		for rows.Next() {
			var content models.ColumnContent
			var style, badgeRules []byte
			if err := rows.Scan(&content.ID, &content.ColumnID, &content.FieldName, &content.RenderType,
				&style, &badgeRules, &content.SortOrder); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan column content: %w", err)
			}
			content.Style = style
			content.BadgeRules = badgeRules
			layout.Columns[i].Contents = append(layout.Columns[i].Contents, content)
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("load column contents: %w", err)
		}
	}
	return layout, nil
}

// UpsertCardLayout stores the entry's card layout document (singleton).
func (s *LayoutStore) UpsertCardLayout(entryID uuid.UUID, document json.RawMessage) (*models.CardLayout, error) {
	if err := requireEntry(s.db, entryID); err != nil {
		return nil, err
	}
	if len(document) == 0 || !json.Valid(document) {
		return nil, NewValidationError("document", "must be a valid JSON document")
	}

	card := &models.CardLayout{}
	var doc []byte
	err := s.db.QueryRow(`
		INSERT INTO card_layouts (entry_id, document)
		VALUES ($1, $2)
		ON CONFLICT (entry_id) DO UPDATE SET document = EXCLUDED.document
		RETURNING id, entry_id, document`,
		entryID, []byte(document),
	).Scan(&card.ID, &card.EntryID, &doc)
	if err != nil {
		return nil, fmt.Errorf("upsert card layout: %w", err)
	}
	card.Document = doc
	if err := touchEntry(s.db, entryID); err != nil {
		return nil, err
	}
	return card, nil
}

// FindCardLayout loads the entry's card layout, or nil when none exists.
func (s *LayoutStore) FindCardLayout(entryID uuid.UUID) (*models.CardLayout, error) {
	card := &models.CardLayout{}
	var doc []byte
	err := s.db.QueryRow(
		`SELECT id, entry_id, document FROM card_layouts WHERE entry_id = $1`, entryID,
	).Scan(&card.ID, &card.EntryID, &doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find card layout: %w", err)
	}
	card.Document = doc
	return card, nil
}

// StatisticInput carries the writable fields of a statistic spec.
type StatisticInput struct {
	TitleEN    string `json:"title_en"`
	TitleLocal string `json:"title_local"`
	Icon       string `json:"icon"`
	ValueQuery string `json:"value_query"`
	TrendQuery string `json:"trend_query"`
	SortOrder  *int   `json:"sort_order"`
}

func validateStatistic(in StatisticInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.TitleEN) == "" {
		fields["title_en"] = "title is required"
	}
	if strings.TrimSpace(in.ValueQuery) == "" {
		fields["value_query"] = "value query is required"
	}
	if strings.TrimSpace(in.TrendQuery) == "" {
		fields["trend_query"] = "trend query is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "validation failed", Fields: fields}
	}
	return nil
}

const statisticColumns = `id, entry_id, title_en, title_local, icon, value_query, trend_query, sort_order`

func scanStatistic(scanner interface{ Scan(...any) error }) (*models.StatisticSpec, error) {
	var st models.StatisticSpec
	err := scanner.Scan(&st.ID, &st.EntryID, &st.TitleEN, &st.TitleLocal, &st.Icon,
		&st.ValueQuery, &st.TrendQuery, &st.SortOrder)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateStatistic adds a statistic spec to the entry.
func (s *LayoutStore) CreateStatistic(entryID uuid.UUID, in StatisticInput) (*models.StatisticSpec, error) {
	if err := requireEntry(s.db, entryID); err != nil {
		return nil, err
	}
	if err := validateStatistic(in); err != nil {
		return nil, err
	}

	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else {
		err := s.db.QueryRow(
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM statistic_specs WHERE entry_id = $1`, entryID,
		).Scan(&order)
		if err != nil {
			return nil, fmt.Errorf("next statistic order: %w", err)
		}
	}

	row := s.db.QueryRow(`
		INSERT INTO statistic_specs (entry_id, title_en, title_local, icon, value_query, trend_query, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+statisticColumns,
		entryID, strings.TrimSpace(in.TitleEN), in.TitleLocal, in.Icon, in.ValueQuery, in.TrendQuery, order,
	)
	st, err := scanStatistic(row)
	if err != nil {
		return nil, fmt.Errorf("create statistic spec: %w", err)
	}
	if err := touchEntry(s.db, entryID); err != nil {
		return nil, err
	}
	return st, nil
}

// UpdateStatistic replaces one statistic spec's definition. The sort
// order is kept unless the input carries a new one.
func (s *LayoutStore) UpdateStatistic(entryID, statID uuid.UUID, in StatisticInput) (*models.StatisticSpec, error) {
	if err := validateStatistic(in); err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`
		UPDATE statistic_specs SET title_en = $1, title_local = $2, icon = $3,
			value_query = $4, trend_query = $5, sort_order = COALESCE($6, sort_order)
		WHERE id = $7 AND entry_id = $8
		RETURNING `+statisticColumns,
		strings.TrimSpace(in.TitleEN), in.TitleLocal, in.Icon, in.ValueQuery, in.TrendQuery, in.SortOrder,
		statID, entryID,
	)
	st, err := scanStatistic(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "statistic spec", ID: statID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("update statistic spec: %w", err)
	}
	if err := touchEntry(s.db, entryID); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteStatistic removes one statistic spec.
func (s *LayoutStore) DeleteStatistic(entryID, statID uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM statistic_specs WHERE id = $1 AND entry_id = $2`, statID, entryID)
	if err != nil {
		return fmt.Errorf("delete statistic spec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete statistic spec: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "statistic spec", ID: statID.String()}
	}
	return touchEntry(s.db, entryID)
}

// ListStatistics returns the entry's statistic specs in order.
func (s *LayoutStore) ListStatistics(entryID uuid.UUID) ([]models.StatisticSpec, error) {
	rows, err := s.db.Query(
		`SELECT `+statisticColumns+` FROM statistic_specs WHERE entry_id = $1 ORDER BY sort_order, title_en`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list statistic specs: %w", err)
	}
	defer rows.Close()

	var stats []models.StatisticSpec
	for rows.Next() {
		st, err := scanStatistic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statistic spec: %w", err)
		}
		stats = append(stats, *st)
	}
	return stats, rows.Err()
}

// nullableJSON passes raw JSON through, mapping empty to NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
