// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// MenuNode is one entry in the navigation-menu tree. Schema entries may
// bind to a menu node as their navigation anchor.
type MenuNode struct {
	TreeNode

	Title string `json:"title"`
	Icon  string `json:"icon"`
	Route string `json:"route"`

	// Children is populated by tree reads, not persisted.
	Children []MenuNode `json:"children,omitempty"`
}

// Meta exposes the embedded tree columns to the generic tree store.
func (m *MenuNode) Meta() *TreeNode { return &m.TreeNode }

// SetChildren attaches loaded child nodes during tree assembly.
func (m *MenuNode) SetChildren(children []MenuNode) { m.Children = children }
