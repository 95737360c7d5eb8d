// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Package lifecycle states.
const (
	PackageStatusDraft    = "draft"
	PackageStatusActive   = "active"
	PackageStatusInactive = "inactive"
)

// ValidPackageStatus reports whether s is a known package status.
func ValidPackageStatus(s string) bool {
	return s == PackageStatusDraft || s == PackageStatusActive || s == PackageStatusInactive
}

// UnlimitedUsers is the MaxUsers sentinel for packages without a seat limit.
const UnlimitedUsers = -1

// PackageNode is one subscription package. Packages form their own tree
// (tiers), bundle a set of features, and grant access to a subset of the
// menu tree.
type PackageNode struct {
	TreeNode

	Name        string `json:"name"`
	Description string `json:"description"`

	// Price is in minor currency units (cents).
	Price           int    `json:"price"`
	MaxUsers        int    `json:"max_users"`
	Status          string `json:"status"`
	SubscriberCount int    `json:"subscriber_count"`

	// FeatureIDs and MenuIDs are the granted feature and menu node sets,
	// stored in join tables and loaded with the package.
	FeatureIDs []uuid.UUID `json:"feature_ids"`
	MenuIDs    []uuid.UUID `json:"menu_ids"`

	Children []PackageNode `json:"children,omitempty"`
}

// Meta exposes the embedded tree columns to the generic tree store.
func (p *PackageNode) Meta() *TreeNode { return &p.TreeNode }

// SetChildren attaches loaded child nodes during tree assembly.
func (p *PackageNode) SetChildren(children []PackageNode) { p.Children = children }
