// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func sampleTableLayout() TableLayoutInput {
	return TableLayoutInput{
		ShowActions:    true,
		ActionPosition: "end",
		RowDensity:     "normal",
		Striped:        true,
		Columns: []TableColumnInput{
			{
				HeaderEN: "Title",
				Width:    "40%",
				Contents: []ColumnContentInput{{FieldName: "title", RenderType: "text"}},
			},
			{
				HeaderEN: "Status",
				Contents: []ColumnContentInput{{FieldName: "status", RenderType: "badge"}},
			},
		},
	}
}

func TestTableLayoutUpsertReplacesWholesale(t *testing.T) {
	db := testDB(t)
	entries := NewSchemaEntryStore(db)
	s := NewLayoutStore(db)

	entry := makeEntry(t, db, entries, testProduct())

	layout, err := s.UpsertTableLayout(entry.ID, sampleTableLayout())
	if err != nil {
		t.Fatalf("UpsertTableLayout: %v", err)
	}
	if len(layout.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(layout.Columns))
	}
	if layout.Columns[1].Contents[0].RenderType != "badge" {
		t.Errorf("render type: got %q", layout.Columns[1].Contents[0].RenderType)
	}

	// A second upsert replaces the column set, not appends to it.
	replacement := sampleTableLayout()
	replacement.Columns = replacement.Columns[:1]
	replacement.Columns[0].HeaderEN = "Name"
	layout, err = s.UpsertTableLayout(entry.ID, replacement)
	if err != nil {
		t.Fatalf("UpsertTableLayout replace: %v", err)
	}
	if len(layout.Columns) != 1 || layout.Columns[0].HeaderEN != "Name" {
		t.Errorf("replacement: got %d columns, header %q", len(layout.Columns), layout.Columns[0].HeaderEN)
	}

	found, err := s.FindTableLayout(entry.ID)
	if err != nil {
		t.Fatalf("FindTableLayout: %v", err)
	}
	if found == nil || len(found.Columns) != 1 {
		t.Error("expected the stored layout to match the replacement")
	}
}

func TestTableLayoutValidation(t *testing.T) {
	db := testDB(t)
	entries := NewSchemaEntryStore(db)
	s := NewLayoutStore(db)

	entry := makeEntry(t, db, entries, testProduct())

	var vErr *ValidationError
	in := sampleTableLayout()
	in.ActionPosition = "middle"
	if _, err := s.UpsertTableLayout(entry.ID, in); !errors.As(err, &vErr) {
		t.Errorf("bad action position: expected ValidationError, got %v", err)
	}

	in = sampleTableLayout()
	in.Columns[0].Contents[0].RenderType = "sparkline"
	if _, err := s.UpsertTableLayout(entry.ID, in); !errors.As(err, &vErr) {
		t.Errorf("bad render type: expected ValidationError, got %v", err)
	}

	in = sampleTableLayout()
	in.Columns[1].HeaderEN = ""
	if _, err := s.UpsertTableLayout(entry.ID, in); !errors.As(err, &vErr) {
		t.Errorf("blank header: expected ValidationError, got %v", err)
	}

	if _, err := s.UpsertTableLayout(uuid.New(), sampleTableLayout()); !IsNotFound(err) {
		t.Errorf("unknown entry: expected NotFoundError, got %v", err)
	}
}

func TestCardLayoutUpsert(t *testing.T) {
	db := testDB(t)
	entries := NewSchemaEntryStore(db)
	s := NewLayoutStore(db)

	entry := makeEntry(t, db, entries, testProduct())

	if found, err := s.FindCardLayout(entry.ID); err != nil || found != nil {
		t.Fatalf("expected no card layout yet, got %v, %v", found, err)
	}

	doc := json.RawMessage(`{"header":{"field":"title"},"body":[{"field":"price"}]}`)
	card, err := s.UpsertCardLayout(entry.ID, doc)
	if err != nil {
		t.Fatalf("UpsertCardLayout: %v", err)
	}

	doc = json.RawMessage(`{"header":{"field":"name"}}`)
	updated, err := s.UpsertCardLayout(entry.ID, doc)
	if err != nil {
		t.Fatalf("UpsertCardLayout update: %v", err)
	}
	if updated.ID != card.ID {
		t.Error("expected the singleton row to be updated in place")
	}

	found, err := s.FindCardLayout(entry.ID)
	if err != nil {
		t.Fatalf("FindCardLayout: %v", err)
	}
	var decoded struct {
		Header struct {
			Field string `json:"field"`
		} `json:"header"`
	}
	if err := json.Unmarshal(found.Document, &decoded); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if decoded.Header.Field != "name" {
		t.Errorf("document: got header field %q", decoded.Header.Field)
	}

	var vErr *ValidationError
	if _, err := s.UpsertCardLayout(entry.ID, json.RawMessage(`{broken`)); !errors.As(err, &vErr) {
		t.Errorf("invalid JSON: expected ValidationError, got %v", err)
	}
}

func TestStatisticsLifecycle(t *testing.T) {
	db := testDB(t)
	entries := NewSchemaEntryStore(db)
	s := NewLayoutStore(db)

	entry := makeEntry(t, db, entries, testProduct())

	var vErr *ValidationError
	if _, err := s.CreateStatistic(entry.ID, StatisticInput{TitleEN: "Orders"}); !errors.As(err, &vErr) {
		t.Fatalf("missing queries: expected ValidationError, got %v", err)
	}

	first, err := s.CreateStatistic(entry.ID, StatisticInput{
		TitleEN:    "Orders",
		ValueQuery: "SELECT COUNT(*) FROM orders",
		TrendQuery: "SELECT COUNT(*) FROM orders WHERE created_at > now() - interval '30 days'",
	})
	if err != nil {
		t.Fatalf("CreateStatistic: %v", err)
	}
	second, err := s.CreateStatistic(entry.ID, StatisticInput{
		TitleEN:    "Revenue",
		Icon:       "banknotes",
		ValueQuery: "SELECT COALESCE(SUM(total), 0) FROM orders",
		TrendQuery: "SELECT COALESCE(SUM(total), 0) FROM orders WHERE created_at > now() - interval '30 days'",
	})
	if err != nil {
		t.Fatalf("CreateStatistic: %v", err)
	}
	if second.SortOrder <= first.SortOrder {
		t.Errorf("sort orders not increasing: %d, %d", first.SortOrder, second.SortOrder)
	}

	title := "Net Revenue"
	updated, err := s.UpdateStatistic(entry.ID, second.ID, StatisticInput{
		TitleEN:    title,
		ValueQuery: second.ValueQuery,
		TrendQuery: second.TrendQuery,
	})
	if err != nil {
		t.Fatalf("UpdateStatistic: %v", err)
	}
	if updated.TitleEN != title {
		t.Errorf("title: got %q", updated.TitleEN)
	}

	if err := s.DeleteStatistic(entry.ID, first.ID); err != nil {
		t.Fatalf("DeleteStatistic: %v", err)
	}
	stats, err := s.ListStatistics(entry.ID)
	if err != nil {
		t.Fatalf("ListStatistics: %v", err)
	}
	if len(stats) != 1 || stats[0].ID != second.ID {
		t.Errorf("expected a single remaining statistic, got %d", len(stats))
	}

	if err := s.DeleteStatistic(entry.ID, first.ID); !IsNotFound(err) {
		t.Errorf("double delete: expected NotFoundError, got %v", err)
	}
}

func TestStatisticUpdateKeepsSortOrder(t *testing.T) {
	db := testDB(t)
	entries := NewSchemaEntryStore(db)
	s := NewLayoutStore(db)

	entry := makeEntry(t, db, entries, testProduct())
	st, err := s.CreateStatistic(entry.ID, StatisticInput{
		TitleEN:    "Orders",
		ValueQuery: "SELECT COUNT(*) FROM orders",
		TrendQuery: "SELECT COUNT(*) FROM orders WHERE created_at > now() - interval '30 days'",
	})
	if err != nil {
		t.Fatalf("CreateStatistic: %v", err)
	}

	// A body without sort_order keeps the statistic where it is.
	updated, err := s.UpdateStatistic(entry.ID, st.ID, StatisticInput{
		TitleEN:    "Order Count",
		ValueQuery: st.ValueQuery,
		TrendQuery: st.TrendQuery,
	})
	if err != nil {
		t.Fatalf("UpdateStatistic: %v", err)
	}
	if updated.SortOrder != st.SortOrder {
		t.Errorf("sort order: got %d, want %d", updated.SortOrder, st.SortOrder)
	}

	// An explicit sort_order still moves it.
	seven := 7
	updated, err = s.UpdateStatistic(entry.ID, st.ID, StatisticInput{
		TitleEN:    "Order Count",
		ValueQuery: st.ValueQuery,
		TrendQuery: st.TrendQuery,
		SortOrder:  &seven,
	})
	if err != nil {
		t.Fatalf("UpdateStatistic: %v", err)
	}
	if updated.SortOrder != 7 {
		t.Errorf("sort order: got %d, want 7", updated.SortOrder)
	}
}

func TestLayoutMutationsBumpEntryTimestamp(t *testing.T) {
	db := testDB(t)
	entries := NewSchemaEntryStore(db)
	s := NewLayoutStore(db)

	entry := makeEntry(t, db, entries, testProduct())
	before, err := entries.FindByID(entry.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	if _, err := s.UpsertTableLayout(entry.ID, sampleTableLayout()); err != nil {
		t.Fatalf("UpsertTableLayout: %v", err)
	}
	after, err := entries.FindByID(entry.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("table layout upsert did not bump updated_at: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}

	doc := json.RawMessage(`{"header":{"field":"title"}}`)
	if _, err := s.UpsertCardLayout(entry.ID, doc); err != nil {
		t.Fatalf("UpsertCardLayout: %v", err)
	}
	final, err := entries.FindByID(entry.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !final.UpdatedAt.After(after.UpdatedAt) {
		t.Errorf("card layout upsert did not bump updated_at: %v -> %v", after.UpdatedAt, final.UpdatedAt)
	}
}
