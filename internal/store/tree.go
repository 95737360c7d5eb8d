// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go implements the generic tree lifecycle engine shared by the
// menu, feature and package stores. It owns the hierarchy columns
// (parent_id, level, sort_order, deleted_at) of one table and maintains
// their invariants: level 1 at the root and parent.level+1 below it,
// sort_order assigned max+1 among live siblings, and cascading soft
// delete / restore / force delete applied in one transaction.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"appforge/internal/models"
)

// MaxTreeDepth bounds every descendant walk. Deeper trees abort with a
// DepthExceededError and the enclosing transaction rolls back.
const MaxTreeDepth = 64

// TrashMode selects how listings treat soft-deleted rows.
type TrashMode string

const (
	TrashNone TrashMode = "none"
	TrashWith TrashMode = "with"
	TrashOnly TrashMode = "only"
)

// ParseTrashMode validates a trash query parameter. Empty means TrashNone.
func ParseTrashMode(s string) (TrashMode, error) {
	switch TrashMode(s) {
	case "", TrashNone:
		return TrashNone, nil
	case TrashWith:
		return TrashWith, nil
	case TrashOnly:
		return TrashOnly, nil
	}
	return "", NewValidationError("trash", "must be one of none, with, only")
}

// Condition returns the SQL predicate for the mode, prefixed with AND.
func (m TrashMode) Condition() string {
	switch m {
	case TrashWith:
		return ""
	case TrashOnly:
		return " AND deleted_at IS NOT NULL"
	default:
		return " AND deleted_at IS NULL"
	}
}

// querier abstracts *sql.DB and *sql.Tx so tree helpers can run inside a
// caller's transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// TreeStore manages the hierarchy columns of one self-referencing table.
// The table name is a compile-time constant supplied by the owning store,
// never user input.
type TreeStore struct {
	db    *sql.DB
	table string
}

// NewTreeStore returns a TreeStore over the given table.
func NewTreeStore(db *sql.DB, table string) *TreeStore {
	return &TreeStore{db: db, table: table}
}

// treeRef is one row touched by a descendant walk.
type treeRef struct {
	ID      uuid.UUID
	Deleted bool
}

// Exists reports whether a row with the given id exists, regardless of
// soft-delete state.
func (s *TreeStore) Exists(id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, s.table), id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s exists: %w", s.table, err)
	}
	return exists, nil
}

// parentLevel resolves the level a node gets under the given parent.
// A nil parent means root (level 1). A missing or soft-deleted parent is
// a ValidationError.
func (s *TreeStore) parentLevel(q querier, parentID *uuid.UUID) (int, error) {
	if parentID == nil {
		return 1, nil
	}
	var level int
	var deletedAt *time.Time
	err := q.QueryRow(
		fmt.Sprintf(`SELECT level, deleted_at FROM %s WHERE id = $1`, s.table), *parentID,
	).Scan(&level, &deletedAt)
	if err == sql.ErrNoRows {
		return 0, NewValidationError("parent_id", "parent does not exist")
	}
	if err != nil {
		return 0, fmt.Errorf("%s parent level: %w", s.table, err)
	}
	if deletedAt != nil {
		return 0, NewValidationError("parent_id", "parent is deleted")
	}
	if level >= MaxTreeDepth {
		return 0, &DepthExceededError{Limit: MaxTreeDepth}
	}
	return level + 1, nil
}

// nextSortOrder returns max(sort_order)+1 among live siblings that share
// the given parent.
func (s *TreeStore) nextSortOrder(q querier, parentID *uuid.UUID) (int, error) {
	var next int
	err := q.QueryRow(
		fmt.Sprintf(`
			SELECT COALESCE(MAX(sort_order), 0) + 1 FROM %s
			WHERE parent_id IS NOT DISTINCT FROM $1 AND deleted_at IS NULL`, s.table),
		parentID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("%s next sort order: %w", s.table, err)
	}
	return next, nil
}

// Place computes the level and sort order for a node joining the sibling
// set under parentID. A non-nil explicitOrder is used verbatim.
func (s *TreeStore) Place(q querier, parentID *uuid.UUID, explicitOrder *int) (level, order int, err error) {
	level, err = s.parentLevel(q, parentID)
	if err != nil {
		return 0, 0, err
	}
	if explicitOrder != nil {
		return level, *explicitOrder, nil
	}
	order, err = s.nextSortOrder(q, parentID)
	if err != nil {
		return 0, 0, err
	}
	return level, order, nil
}

// wouldCycle reports whether attaching node under newParent would create a
// cycle, by walking from newParent up to the root.
func (s *TreeStore) wouldCycle(q querier, node uuid.UUID, newParent *uuid.UUID) (bool, error) {
	current := newParent
	for depth := 0; current != nil; depth++ {
		if depth > MaxTreeDepth {
			return false, &DepthExceededError{Limit: MaxTreeDepth}
		}
		if *current == node {
			return true, nil
		}
		var next *uuid.UUID
		err := q.QueryRow(
			fmt.Sprintf(`SELECT parent_id FROM %s WHERE id = $1`, s.table), *current,
		).Scan(&next)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%s cycle walk: %w", s.table, err)
		}
		current = next
	}
	return false, nil
}

// Move re-parents a node inside the caller's transaction: validates the
// new parent, refuses cycles, recomputes level (and sort order unless one
// is supplied) and rebases every descendant's level onto the new position.
func (s *TreeStore) Move(q querier, id uuid.UUID, parentID *uuid.UUID, explicitOrder *int, now time.Time) error {
	if parentID != nil && *parentID == id {
		return NewValidationError("parent_id", "node cannot be its own parent")
	}
	cycle, err := s.wouldCycle(q, id, parentID)
	if err != nil {
		return err
	}
	if cycle {
		return NewValidationError("parent_id", "new parent is a descendant of the node")
	}

	level, order, err := s.Place(q, parentID, explicitOrder)
	if err != nil {
		return err
	}
	_, err = q.Exec(
		fmt.Sprintf(`UPDATE %s SET parent_id = $1, level = $2, sort_order = $3, updated_at = $4 WHERE id = $5`, s.table),
		parentID, level, order, now, id,
	)
	if err != nil {
		return fmt.Errorf("%s move: %w", s.table, err)
	}
	return s.rebaseDescendants(q, id, level, now)
}

// rebaseDescendants rewrites the level of every descendant so the whole
// subtree again satisfies level == parent.level + 1.
func (s *TreeStore) rebaseDescendants(q querier, id uuid.UUID, level int, now time.Time) error {
	frontier := []uuid.UUID{id}
	childLevel := level + 1
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= MaxTreeDepth {
			return &DepthExceededError{Limit: MaxTreeDepth}
		}
		var next []uuid.UUID
		for _, pid := range frontier {
			rows, err := q.Query(
				fmt.Sprintf(`SELECT id FROM %s WHERE parent_id = $1`, s.table), pid,
			)
			if err != nil {
				return fmt.Errorf("%s rebase children: %w", s.table, err)
			}
			ids, err := scanIDs(rows)
			if err != nil {
				return fmt.Errorf("%s rebase children: %w", s.table, err)
			}
			next = append(next, ids...)
		}
		for _, cid := range next {
			_, err := q.Exec(
				fmt.Sprintf(`UPDATE %s SET level = $1, updated_at = $2 WHERE id = $3`, s.table),
				childLevel, now, cid,
			)
			if err != nil {
				return fmt.Errorf("%s rebase level: %w", s.table, err)
			}
		}
		frontier = next
		childLevel++
	}
	return nil
}

// descendants walks the subtree below id breadth-first and returns every
// row in visit order (shallow before deep), excluding id itself.
func (s *TreeStore) descendants(q querier, id uuid.UUID) ([]treeRef, error) {
	var out []treeRef
	frontier := []uuid.UUID{id}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= MaxTreeDepth {
			return nil, &DepthExceededError{Limit: MaxTreeDepth}
		}
		var next []uuid.UUID
		for _, pid := range frontier {
			rows, err := q.Query(
				fmt.Sprintf(`SELECT id, deleted_at IS NOT NULL FROM %s WHERE parent_id = $1 ORDER BY sort_order`, s.table), pid,
			)
			if err != nil {
				return nil, fmt.Errorf("%s descendants: %w", s.table, err)
			}
			for rows.Next() {
				var ref treeRef
				if err := rows.Scan(&ref.ID, &ref.Deleted); err != nil {
					rows.Close()
					return nil, fmt.Errorf("%s scan descendant: %w", s.table, err)
				}
				out = append(out, ref)
				next = append(next, ref.ID)
			}
			if err := rows.Close(); err != nil {
				return nil, fmt.Errorf("%s descendants: %w", s.table, err)
			}
		}
		frontier = next
	}
	return out, nil
}

// SoftDelete marks the node and every live descendant deleted, in one
// transaction. Already-deleted rows are left untouched.
func (s *TreeStore) SoftDelete(id uuid.UUID, by *uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.require(tx, id); err != nil {
		return err
	}
	refs, err := s.descendants(tx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	targets := []uuid.UUID{id}
	for _, ref := range refs {
		if !ref.Deleted {
			targets = append(targets, ref.ID)
		}
	}
	for _, tid := range targets {
		_, err := tx.Exec(
			fmt.Sprintf(`UPDATE %s SET deleted_at = $1, deleted_by = $2, updated_at = $1 WHERE id = $3 AND deleted_at IS NULL`, s.table),
			now, by, tid,
		)
		if err != nil {
			return fmt.Errorf("%s soft delete: %w", s.table, err)
		}
	}
	return tx.Commit()
}

// Restore clears the deletion mark on the node and on every descendant
// that is currently soft-deleted, in one transaction.
//
// The cascade intentionally covers descendants that were deleted on their
// own before the parent's cascade: restore brings back the entire subtree
// as it stands, not only the rows of one earlier delete.
func (s *TreeStore) Restore(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.require(tx, id); err != nil {
		return err
	}
	refs, err := s.descendants(tx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	targets := []uuid.UUID{id}
	for _, ref := range refs {
		if ref.Deleted {
			targets = append(targets, ref.ID)
		}
	}
	for _, tid := range targets {
		_, err := tx.Exec(
			fmt.Sprintf(`UPDATE %s SET deleted_at = NULL, deleted_by = NULL, updated_at = $1 WHERE id = $2`, s.table),
			now, tid,
		)
		if err != nil {
			return fmt.Errorf("%s restore: %w", s.table, err)
		}
	}
	return tx.Commit()
}

// ForceDelete permanently removes the node and its whole subtree,
// deepest rows first, in one transaction. Not reversible.
func (s *TreeStore) ForceDelete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.require(tx, id); err != nil {
		return err
	}
	refs, err := s.descendants(tx, id)
	if err != nil {
		return err
	}

	// Children before parents: reverse of the breadth-first visit order.
	for i := len(refs) - 1; i >= 0; i-- {
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), refs[i].ID); err != nil {
			return fmt.Errorf("%s force delete: %w", s.table, err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id); err != nil {
		return fmt.Errorf("%s force delete: %w", s.table, err)
	}
	return tx.Commit()
}

// ReorderItem is one entry of a reorder batch.
type ReorderItem struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order"`
}

// Reorder applies sort order and parent changes for every item in one
// transaction. Any invalid item aborts the whole batch.
func (s *TreeStore) Reorder(items []ReorderItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, item := range items {
		var exists bool
		err := tx.QueryRow(
			fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, s.table), item.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%s reorder lookup: %w", s.table, err)
		}
		if !exists {
			return NewValidationError(fmt.Sprintf("items[%d].id", i), "node does not exist")
		}
		order := item.Order
		if err := s.Move(tx, item.ID, item.ParentID, &order, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// require returns a NotFoundError unless a row with the id exists.
func (s *TreeStore) require(q querier, id uuid.UUID) error {
	var exists bool
	err := q.QueryRow(
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, s.table), id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s lookup: %w", s.table, err)
	}
	if !exists {
		return &NotFoundError{Entity: s.table, ID: id.String()}
	}
	return nil
}

// scanIDs drains a single-column id result set.
func scanIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// treeItem constrains the node types that can be assembled into a tree.
type treeItem[T any] interface {
	*T
	Meta() *models.TreeNode
	SetChildren([]T)
}

// BuildTree assembles a flat, sort-ordered node list into a forest. Nodes
// whose parent is absent from the list become roots, so a trash=only
// listing yields the deleted subtrees as their own forest.
func BuildTree[T any, PT treeItem[T]](flat []T) ([]T, error) {
	present := make(map[uuid.UUID]bool, len(flat))
	for i := range flat {
		present[PT(&flat[i]).Meta().ID] = true
	}

	children := make(map[uuid.UUID][]int)
	var roots []int
	for i := range flat {
		m := PT(&flat[i]).Meta()
		if m.ParentID == nil || !present[*m.ParentID] {
			roots = append(roots, i)
		} else {
			children[*m.ParentID] = append(children[*m.ParentID], i)
		}
	}

	var build func(idx, depth int) (T, error)
	build = func(idx, depth int) (T, error) {
		var zero T
		if depth > MaxTreeDepth {
			return zero, &DepthExceededError{Limit: MaxTreeDepth}
		}
		node := flat[idx]
		kidIdx := children[PT(&node).Meta().ID]
		if len(kidIdx) > 0 {
			kids := make([]T, 0, len(kidIdx))
			for _, ci := range kidIdx {
				kid, err := build(ci, depth+1)
				if err != nil {
					return zero, err
				}
				kids = append(kids, kid)
			}
			PT(&node).SetChildren(kids)
		}
		return node, nil
	}

	out := make([]T, 0, len(roots))
	for _, ri := range roots {
		node, err := build(ri, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}
