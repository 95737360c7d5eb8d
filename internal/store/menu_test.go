// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// makeMenu creates a menu node and registers subtree cleanup for roots.
func makeMenu(t *testing.T, db *sql.DB, s *MenuStore, parent *uuid.UUID, title string) uuid.UUID {
	t.Helper()
	node, err := s.Create(CreateMenuInput{ParentID: parent, Title: title})
	if err != nil {
		t.Fatalf("create menu %q: %v", title, err)
	}
	if parent == nil {
		id := node.ID
		t.Cleanup(func() { cleanTree(t, db, "menu_nodes", id) })
	}
	return node.ID
}

func TestMenuCreateLevels(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-root-"+uuid.NewString()[:8])
	root, err := s.FindByID(rootID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if root.Level != 1 {
		t.Errorf("root level: got %d, want 1", root.Level)
	}
	if !root.IsActive {
		t.Error("expected is_active to default to true")
	}

	childID := makeMenu(t, db, s, &rootID, "test-child")
	child, err := s.FindByID(childID)
	if err != nil {
		t.Fatalf("FindByID child: %v", err)
	}
	if child.Level != 2 {
		t.Errorf("child level: got %d, want 2", child.Level)
	}
	if child.SortOrder != 1 {
		t.Errorf("first child sort order: got %d, want 1", child.SortOrder)
	}

	secondID := makeMenu(t, db, s, &rootID, "test-child-2")
	second, err := s.FindByID(secondID)
	if err != nil {
		t.Fatalf("FindByID second child: %v", err)
	}
	if second.SortOrder != 2 {
		t.Errorf("second child sort order: got %d, want 2", second.SortOrder)
	}
}

func TestMenuCreateValidation(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	var vErr *ValidationError
	if _, err := s.Create(CreateMenuInput{Title: "   "}); !errors.As(err, &vErr) {
		t.Errorf("blank title: expected ValidationError, got %v", err)
	}

	ghost := uuid.New()
	if _, err := s.Create(CreateMenuInput{ParentID: &ghost, Title: "test-orphan"}); !errors.As(err, &vErr) {
		t.Errorf("missing parent: expected ValidationError, got %v", err)
	}
}

func TestMenuCreateUnderDeletedParent(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-del-parent-"+uuid.NewString()[:8])
	if err := s.SoftDelete(rootID, nil); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	var vErr *ValidationError
	if _, err := s.Create(CreateMenuInput{ParentID: &rootID, Title: "test-under-deleted"}); !errors.As(err, &vErr) {
		t.Errorf("deleted parent: expected ValidationError, got %v", err)
	}
}

func TestMenuMoveRebasesLevels(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootA := makeMenu(t, db, s, nil, "test-move-a-"+uuid.NewString()[:8])
	rootB := makeMenu(t, db, s, nil, "test-move-b-"+uuid.NewString()[:8])
	mid := makeMenu(t, db, s, &rootA, "test-mid")
	leaf := makeMenu(t, db, s, &mid, "test-leaf")

	// Move mid under rootB: mid 1→2 stays 2, leaf follows to 3.
	if _, err := s.Update(mid, UpdateMenuInput{SetParent: true, ParentID: &rootB}); err != nil {
		t.Fatalf("Update move: %v", err)
	}

	moved, _ := s.FindByID(mid)
	if moved.Level != 2 {
		t.Errorf("moved level: got %d, want 2", moved.Level)
	}
	if moved.ParentID == nil || *moved.ParentID != rootB {
		t.Error("expected parent to be rootB")
	}

	kid, _ := s.FindByID(leaf)
	if kid.Level != 3 {
		t.Errorf("descendant level after move: got %d, want 3", kid.Level)
	}

	// Move mid to the root level with an explicit null parent.
	if _, err := s.Update(mid, UpdateMenuInput{SetParent: true, ParentID: nil}); err != nil {
		t.Fatalf("Update move to root: %v", err)
	}
	moved, _ = s.FindByID(mid)
	if moved.Level != 1 || moved.ParentID != nil {
		t.Errorf("root move: got level %d parent %v, want level 1 parent nil", moved.Level, moved.ParentID)
	}
	kid, _ = s.FindByID(leaf)
	if kid.Level != 2 {
		t.Errorf("descendant level after root move: got %d, want 2", kid.Level)
	}
	cleanTree(t, db, "menu_nodes", mid)
}

func TestMenuMoveRejectsCycle(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-cycle-"+uuid.NewString()[:8])
	childID := makeMenu(t, db, s, &rootID, "test-cycle-child")

	var vErr *ValidationError
	if _, err := s.Update(rootID, UpdateMenuInput{SetParent: true, ParentID: &childID}); !errors.As(err, &vErr) {
		t.Errorf("cycle: expected ValidationError, got %v", err)
	}
	if _, err := s.Update(rootID, UpdateMenuInput{SetParent: true, ParentID: &rootID}); !errors.As(err, &vErr) {
		t.Errorf("self-parent: expected ValidationError, got %v", err)
	}
}

func TestMenuPartialUpdateKeepsHierarchy(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-patch-"+uuid.NewString()[:8])
	childID := makeMenu(t, db, s, &rootID, "test-patch-child")

	title := "renamed child"
	updated, err := s.Update(childID, UpdateMenuInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "renamed child" {
		t.Errorf("title: got %q", updated.Title)
	}
	if updated.ParentID == nil || *updated.ParentID != rootID {
		t.Error("title-only update must not change the parent")
	}
	if updated.Level != 2 {
		t.Errorf("level: got %d, want 2", updated.Level)
	}
}

func TestMenuSoftDeleteCascades(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-softdel-"+uuid.NewString()[:8])
	childID := makeMenu(t, db, s, &rootID, "test-softdel-child")
	grandID := makeMenu(t, db, s, &childID, "test-softdel-grand")

	if err := s.SoftDelete(rootID, nil); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	for _, id := range []uuid.UUID{rootID, childID, grandID} {
		node, err := s.FindByID(id)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if node.DeletedAt == nil {
			t.Errorf("node %s: expected deleted_at to be set", id)
		}
	}

	// Deleted rows disappear from the default listing but show in trash.
	live, err := s.List(TrashNone)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, n := range live {
		if n.ID == rootID {
			t.Error("deleted root still in live listing")
		}
	}
}

func TestMenuRestoreCascades(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-restore-"+uuid.NewString()[:8])
	childID := makeMenu(t, db, s, &rootID, "test-restore-child")
	grandID := makeMenu(t, db, s, &childID, "test-restore-grand")

	// Delete the grandchild on its own, then the whole subtree.
	if err := s.SoftDelete(grandID, nil); err != nil {
		t.Fatalf("SoftDelete grand: %v", err)
	}
	if err := s.SoftDelete(rootID, nil); err != nil {
		t.Fatalf("SoftDelete root: %v", err)
	}

	// Restore brings back every currently deleted node in the subtree,
	// the independently deleted grandchild included.
	if err := s.Restore(rootID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for _, id := range []uuid.UUID{rootID, childID, grandID} {
		node, _ := s.FindByID(id)
		if node.DeletedAt != nil {
			t.Errorf("node %s: expected restore to clear deleted_at", id)
		}
	}
}

func TestMenuForceDeleteRemovesSubtree(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-force-"+uuid.NewString()[:8])
	childID := makeMenu(t, db, s, &rootID, "test-force-child")

	if err := s.ForceDelete(rootID); err != nil {
		t.Fatalf("ForceDelete: %v", err)
	}

	for _, id := range []uuid.UUID{rootID, childID} {
		if _, err := s.FindByID(id); !IsNotFound(err) {
			t.Errorf("node %s: expected NotFoundError, got %v", id, err)
		}
	}
}

func TestMenuReorder(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-reorder-"+uuid.NewString()[:8])
	a := makeMenu(t, db, s, &rootID, "test-reorder-a")
	b := makeMenu(t, db, s, &rootID, "test-reorder-b")

	// Swap the two children.
	err := s.Reorder([]ReorderItem{
		{ID: a, ParentID: &rootID, Order: 2},
		{ID: b, ParentID: &rootID, Order: 1},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	nodeA, _ := s.FindByID(a)
	nodeB, _ := s.FindByID(b)
	if nodeA.SortOrder != 2 || nodeB.SortOrder != 1 {
		t.Errorf("orders after swap: a=%d b=%d, want a=2 b=1", nodeA.SortOrder, nodeB.SortOrder)
	}
}

func TestMenuReorderAbortsOnUnknownID(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-reorder-bad-"+uuid.NewString()[:8])
	a := makeMenu(t, db, s, &rootID, "test-reorder-bad-a")

	before, _ := s.FindByID(a)

	var vErr *ValidationError
	err := s.Reorder([]ReorderItem{
		{ID: a, ParentID: &rootID, Order: 7},
		{ID: uuid.New(), ParentID: &rootID, Order: 1},
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The whole batch rolls back, the first item included.
	after, _ := s.FindByID(a)
	if after.SortOrder != before.SortOrder {
		t.Errorf("sort order changed despite failed batch: %d → %d", before.SortOrder, after.SortOrder)
	}
}

func TestMenuTreeAssembly(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-tree-"+uuid.NewString()[:8])
	childID := makeMenu(t, db, s, &rootID, "test-tree-child")
	makeMenu(t, db, s, &childID, "test-tree-grand")

	forest, err := s.Tree(TrashNone)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	var found bool
	for _, root := range forest {
		if root.ID != rootID {
			continue
		}
		found = true
		if len(root.Children) != 1 {
			t.Fatalf("root children: got %d, want 1", len(root.Children))
		}
		if len(root.Children[0].Children) != 1 {
			t.Errorf("grandchildren: got %d, want 1", len(root.Children[0].Children))
		}
	}
	if !found {
		t.Error("created root missing from tree")
	}
}

func TestMenuTrashOnlyForest(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	rootID := makeMenu(t, db, s, nil, "test-trash-"+uuid.NewString()[:8])
	childID := makeMenu(t, db, s, &rootID, "test-trash-child")

	// Delete only the child; in the trash forest it becomes a root since
	// its live parent is not part of the listing.
	if err := s.SoftDelete(childID, nil); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	forest, err := s.Tree(TrashOnly)
	if err != nil {
		t.Fatalf("Tree trash: %v", err)
	}
	var found bool
	for _, root := range forest {
		if root.ID == childID {
			found = true
		}
	}
	if !found {
		t.Error("deleted child should surface as a trash forest root")
	}
}
