// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"appforge/internal/models"
)

func TestPackageCreateDefaults(t *testing.T) {
	db := testDB(t)
	s := NewPackageStore(db)

	pkg, err := s.Create(CreatePackageInput{Name: "test-pkg-" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanTree(t, db, "package_nodes", pkg.ID) })

	if pkg.Status != models.PackageStatusDraft {
		t.Errorf("status: got %q, want draft", pkg.Status)
	}
	if pkg.MaxUsers != models.UnlimitedUsers {
		t.Errorf("max users: got %d, want %d (unlimited)", pkg.MaxUsers, models.UnlimitedUsers)
	}
	if pkg.FeatureIDs == nil || pkg.MenuIDs == nil {
		t.Error("grant slices must be non-nil")
	}
}

func TestPackageValidation(t *testing.T) {
	db := testDB(t)
	s := NewPackageStore(db)

	var vErr *ValidationError
	if _, err := s.Create(CreatePackageInput{Name: ""}); !errors.As(err, &vErr) {
		t.Errorf("blank name: expected ValidationError, got %v", err)
	}
	if _, err := s.Create(CreatePackageInput{Name: "x", Price: -5}); !errors.As(err, &vErr) {
		t.Errorf("negative price: expected ValidationError, got %v", err)
	}
	if _, err := s.Create(CreatePackageInput{Name: "x", MaxUsers: -3}); !errors.As(err, &vErr) {
		t.Errorf("invalid max users: expected ValidationError, got %v", err)
	}
	if _, err := s.Create(CreatePackageInput{Name: "x", Status: "live"}); !errors.As(err, &vErr) {
		t.Errorf("invalid status: expected ValidationError, got %v", err)
	}
}

func TestPackageGrantsRoundTrip(t *testing.T) {
	db := testDB(t)
	menus := NewMenuStore(db)
	features := NewFeatureStore(db)
	s := NewPackageStore(db)
	product := testProduct()
	cleanProductFeatures(t, db, product)

	menuID := makeMenu(t, db, menus, nil, "test-grant-menu-"+uuid.NewString()[:8])
	feat, err := features.Create(CreateFeatureInput{
		ProductID:   product,
		FeatureCode: "grant-feat",
		Name:        "Granted",
		Type:        models.FeatureTypeFeature,
	})
	if err != nil {
		t.Fatalf("create feature: %v", err)
	}

	pkg, err := s.Create(CreatePackageInput{
		Name:       "test-grants-" + uuid.NewString()[:8],
		Price:      4900,
		MaxUsers:   25,
		Status:     models.PackageStatusActive,
		FeatureIDs: []uuid.UUID{feat.ID},
		MenuIDs:    []uuid.UUID{menuID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanTree(t, db, "package_nodes", pkg.ID) })

	found, err := s.FindByID(pkg.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(found.FeatureIDs) != 1 || found.FeatureIDs[0] != feat.ID {
		t.Errorf("feature grants: got %v", found.FeatureIDs)
	}
	if len(found.MenuIDs) != 1 || found.MenuIDs[0] != menuID {
		t.Errorf("menu grants: got %v", found.MenuIDs)
	}
}

func TestPackageRejectsUnknownGrants(t *testing.T) {
	db := testDB(t)
	s := NewPackageStore(db)

	var vErr *ValidationError
	_, err := s.Create(CreatePackageInput{
		Name:       "test-bad-grants",
		FeatureIDs: []uuid.UUID{uuid.New()},
	})
	if !errors.As(err, &vErr) {
		t.Errorf("unknown feature grant: expected ValidationError, got %v", err)
	}

	_, err = s.Create(CreatePackageInput{
		Name:    "test-bad-grants",
		MenuIDs: []uuid.UUID{uuid.New()},
	})
	if !errors.As(err, &vErr) {
		t.Errorf("unknown menu grant: expected ValidationError, got %v", err)
	}
}

func TestPackageUpdateReplacesGrants(t *testing.T) {
	db := testDB(t)
	menus := NewMenuStore(db)
	s := NewPackageStore(db)

	menuA := makeMenu(t, db, menus, nil, "test-swap-a-"+uuid.NewString()[:8])
	menuB := makeMenu(t, db, menus, nil, "test-swap-b-"+uuid.NewString()[:8])

	pkg, err := s.Create(CreatePackageInput{
		Name:    "test-swap-" + uuid.NewString()[:8],
		MenuIDs: []uuid.UUID{menuA},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanTree(t, db, "package_nodes", pkg.ID) })

	// Replacing the menu set drops menuA and grants menuB.
	updated, err := s.Update(pkg.ID, UpdatePackageInput{
		SetMenus: true,
		MenuIDs:  []uuid.UUID{menuB},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.MenuIDs) != 1 || updated.MenuIDs[0] != menuB {
		t.Errorf("menu grants after swap: got %v, want [%s]", updated.MenuIDs, menuB)
	}

	// An update without the set flags leaves grants alone.
	name := "renamed package"
	updated, err = s.Update(pkg.ID, UpdatePackageInput{Name: &name})
	if err != nil {
		t.Fatalf("Update name: %v", err)
	}
	if len(updated.MenuIDs) != 1 || updated.MenuIDs[0] != menuB {
		t.Errorf("grants changed by unrelated update: %v", updated.MenuIDs)
	}

	// An explicit empty set clears the grants.
	updated, err = s.Update(pkg.ID, UpdatePackageInput{SetMenus: true, MenuIDs: []uuid.UUID{}})
	if err != nil {
		t.Fatalf("Update clear: %v", err)
	}
	if len(updated.MenuIDs) != 0 {
		t.Errorf("grants after clear: got %v, want empty", updated.MenuIDs)
	}
}

func TestPackageSoftDeleteKeepsGrants(t *testing.T) {
	db := testDB(t)
	menus := NewMenuStore(db)
	s := NewPackageStore(db)

	menuID := makeMenu(t, db, menus, nil, "test-keep-"+uuid.NewString()[:8])
	pkg, err := s.Create(CreatePackageInput{
		Name:    "test-keep-" + uuid.NewString()[:8],
		MenuIDs: []uuid.UUID{menuID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanTree(t, db, "package_nodes", pkg.ID) })

	if err := s.SoftDelete(pkg.ID, nil); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := s.Restore(pkg.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	found, err := s.FindByID(pkg.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.DeletedAt != nil {
		t.Error("expected restored package to be live")
	}
	if len(found.MenuIDs) != 1 {
		t.Errorf("grants after restore: got %v", found.MenuIDs)
	}
}
