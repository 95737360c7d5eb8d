// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the entity structs shared by the store and
// handler layers. Structs carry JSON tags matching the REST representations.
package models

import (
	"time"

	"github.com/google/uuid"
)

// TreeNode holds the hierarchy and lifecycle columns shared by every
// self-referencing entity (menus, features, packages). It is embedded by
// the concrete node types, never persisted on its own.
//
// Invariants maintained by the store layer:
//   - Level == 1 exactly when ParentID is nil, otherwise parent.Level + 1.
//   - SortOrder is unique among live siblings of the same parent.
//   - DeletedAt set/cleared only through cascading soft delete and restore.
type TreeNode struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Level     int        `json:"level"`
	SortOrder int        `json:"sort_order"`
	IsActive  bool       `json:"is_active"`

	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the node is currently soft-deleted.
func (n *TreeNode) Deleted() bool {
	return n.DeletedAt != nil
}
