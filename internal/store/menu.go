// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"appforge/internal/models"
)

// MenuStore manages navigation-menu nodes in the database.
type MenuStore struct {
	db   *sql.DB
	tree *TreeStore
}

// NewMenuStore returns a new MenuStore.
func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db, tree: NewTreeStore(db, "menu_nodes")}
}

const menuColumns = `id, parent_id, level, sort_order, is_active, title, icon, route,
	created_by, updated_by, deleted_by, created_at, updated_at, deleted_at`

// scanMenu scans a row into a MenuNode struct.
func scanMenu(scanner interface{ Scan(...any) error }) (*models.MenuNode, error) {
	var m models.MenuNode
	err := scanner.Scan(
		&m.ID, &m.ParentID, &m.Level, &m.SortOrder, &m.IsActive,
		&m.Title, &m.Icon, &m.Route,
		&m.CreatedBy, &m.UpdatedBy, &m.DeletedBy,
		&m.CreatedAt, &m.UpdatedAt, &m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMenuInput carries the writable fields for a new menu node.
type CreateMenuInput struct {
	ParentID  *uuid.UUID `json:"parent_id"`
	Title     string     `json:"title"`
	Icon      string     `json:"icon"`
	Route     string     `json:"route"`
	SortOrder *int       `json:"sort_order"`
	IsActive  *bool      `json:"is_active"`
	CreatedBy *uuid.UUID `json:"-"`
}

// Create inserts a new menu node, computing level from the parent and
// sort order as max+1 among live siblings when not supplied.
func (s *MenuStore) Create(in CreateMenuInput) (*models.MenuNode, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError("title", "title is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	level, order, err := s.tree.Place(tx, in.ParentID, in.SortOrder)
	if err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	row := tx.QueryRow(`
		INSERT INTO menu_nodes (parent_id, level, sort_order, is_active, title, icon, route, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+menuColumns,
		in.ParentID, level, order, active, strings.TrimSpace(in.Title), in.Icon, in.Route, in.CreatedBy,
	)
	node, err := scanMenu(row)
	if err != nil {
		return nil, fmt.Errorf("create menu node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return node, nil
}

// FindByID retrieves a menu node by id, including soft-deleted ones.
func (s *MenuStore) FindByID(id uuid.UUID) (*models.MenuNode, error) {
	row := s.db.QueryRow(`SELECT `+menuColumns+` FROM menu_nodes WHERE id = $1`, id)
	node, err := scanMenu(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "menu node", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find menu node: %w", err)
	}
	return node, nil
}

// List returns menu nodes as a flat list ordered by level then sort order.
func (s *MenuStore) List(trash TrashMode) ([]models.MenuNode, error) {
	rows, err := s.db.Query(
		`SELECT ` + menuColumns + ` FROM menu_nodes WHERE TRUE` + trash.Condition() +
			` ORDER BY level, sort_order, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list menu nodes: %w", err)
	}
	defer rows.Close()

	var items []models.MenuNode
	for rows.Next() {
		node, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu node: %w", err)
		}
		items = append(items, *node)
	}
	return items, rows.Err()
}

// Tree returns root menu nodes with recursively loaded, order-sorted children.
func (s *MenuStore) Tree(trash TrashMode) ([]models.MenuNode, error) {
	flat, err := s.List(trash)
	if err != nil {
		return nil, err
	}
	return BuildTree[models.MenuNode](flat)
}

// UpdateMenuInput carries a partial update. Nil fields are left unchanged;
// SetParent marks that ParentID was present in the request (including an
// explicit null for moving to the root).
type UpdateMenuInput struct {
	Title     *string
	Icon      *string
	Route     *string
	IsActive  *bool
	SetParent bool
	ParentID  *uuid.UUID
	SortOrder *int
	UpdatedBy *uuid.UUID
}

// Update applies a partial update. A parent change recomputes level (and
// sort order, unless one is supplied) and rebases descendant levels; other
// field changes leave the hierarchy columns untouched.
func (s *MenuStore) Update(id uuid.UUID, in UpdateMenuInput) (*models.MenuNode, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, NewValidationError("title", "title cannot be empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := scanMenu(tx.QueryRow(`SELECT `+menuColumns+` FROM menu_nodes WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "menu node", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find menu node: %w", err)
	}

	now := time.Now().UTC()
	if in.Title != nil {
		current.Title = strings.TrimSpace(*in.Title)
	}
	if in.Icon != nil {
		current.Icon = *in.Icon
	}
	if in.Route != nil {
		current.Route = *in.Route
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}
	_, err = tx.Exec(`
		UPDATE menu_nodes SET title = $1, icon = $2, route = $3, is_active = $4, updated_by = $5, updated_at = $6
		WHERE id = $7`,
		current.Title, current.Icon, current.Route, current.IsActive, in.UpdatedBy, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update menu node: %w", err)
	}

	if in.SetParent && !ptrEqual(in.ParentID, current.ParentID) {
		if err := s.tree.Move(tx, id, in.ParentID, in.SortOrder, now); err != nil {
			return nil, err
		}
	} else if in.SortOrder != nil {
		_, err = tx.Exec(`UPDATE menu_nodes SET sort_order = $1, updated_at = $2 WHERE id = $3`, *in.SortOrder, now, id)
		if err != nil {
			return nil, fmt.Errorf("update menu sort order: %w", err)
		}
	}

	updated, err := scanMenu(tx.QueryRow(`SELECT `+menuColumns+` FROM menu_nodes WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload menu node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// SoftDelete marks the node and all live descendants deleted.
func (s *MenuStore) SoftDelete(id uuid.UUID, by *uuid.UUID) error {
	return s.tree.SoftDelete(id, by)
}

// Restore un-deletes the node and all currently soft-deleted descendants.
func (s *MenuStore) Restore(id uuid.UUID) error {
	return s.tree.Restore(id)
}

// ForceDelete permanently removes the node and its subtree.
func (s *MenuStore) ForceDelete(id uuid.UUID) error {
	return s.tree.ForceDelete(id)
}

// Reorder applies an atomic batch of order/parent changes.
func (s *MenuStore) Reorder(items []ReorderItem) error {
	return s.tree.Reorder(items)
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
