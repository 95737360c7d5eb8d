// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Feature type discriminators. Categories group features, features may
// carry subfeatures; all three live in the same tree.
const (
	FeatureTypeCategory   = "category"
	FeatureTypeFeature    = "feature"
	FeatureTypeSubfeature = "subfeature"
)

// ValidFeatureType reports whether t is one of the known feature types.
func ValidFeatureType(t string) bool {
	return t == FeatureTypeCategory || t == FeatureTypeFeature || t == FeatureTypeSubfeature
}

// FeatureNode is one entry in a product's feature/entitlement tree.
// FeatureCode is unique within one product, not globally.
type FeatureNode struct {
	TreeNode

	ProductID   uuid.UUID `json:"product_id"`
	FeatureCode string    `json:"feature_code"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Color       string    `json:"color"`

	// PriceAddon is in minor currency units (cents).
	PriceAddon     int  `json:"price_addon"`
	TrialAvailable bool `json:"trial_available"`
	// TrialDays is required when TrialAvailable is true and normalized to
	// nil when it is false.
	TrialDays *int `json:"trial_days,omitempty"`

	Children []FeatureNode `json:"children,omitempty"`
}

// Meta exposes the embedded tree columns to the generic tree store.
func (f *FeatureNode) Meta() *TreeNode { return &f.TreeNode }

// SetChildren attaches loaded child nodes during tree assembly.
func (f *FeatureNode) SetChildren(children []FeatureNode) { f.Children = children }

// FeatureTrashGroup is one per-type bucket in the trash-box report:
// currently soft-deleted features of one type plus their count.
type FeatureTrashGroup struct {
	Type  string        `json:"type"`
	Count int           `json:"count"`
	Items []FeatureNode `json:"items"`
}
