// Package seed populates the database with initial development data
// through the store layer, so seeded rows satisfy the same invariants as
// operator-created ones.
package seed

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"appforge/internal/models"
	"appforge/internal/store"
)

// DefaultProductID is the fixed id of the development product every seed
// run attaches to. Fixed so re-runs and local tooling can reference it.
var DefaultProductID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Run populates the database with initial development data: a sample
// menu tree, the baseline feature catalog for the default product and one
// draft package. No-op if menu nodes already exist.
func Run(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM menu_nodes").Scan(&count); err != nil {
		return fmt.Errorf("seed check menus: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	menus := store.NewMenuStore(db)
	root, err := menus.Create(store.CreateMenuInput{Title: "Dashboard", Icon: "home", Route: "/dashboard"})
	if err != nil {
		return fmt.Errorf("seed root menu: %w", err)
	}
	settings, err := menus.Create(store.CreateMenuInput{Title: "Settings", Icon: "cog", Route: "/settings"})
	if err != nil {
		return fmt.Errorf("seed settings menu: %w", err)
	}
	if _, err := menus.Create(store.CreateMenuInput{
		ParentID: &settings.ID, Title: "App Builder", Icon: "wrench", Route: "/settings/builder",
	}); err != nil {
		return fmt.Errorf("seed builder menu: %w", err)
	}

	features := store.NewFeatureStore(db)
	created, err := features.Generate(DefaultProductID, store.DefaultCatalog, nil)
	if err != nil {
		return fmt.Errorf("seed feature catalog: %w", err)
	}

	packages := store.NewPackageStore(db)
	if _, err := packages.Create(store.CreatePackageInput{
		Name:        "Starter",
		Description: "Entry tier for evaluation",
		Price:       0,
		MaxUsers:    5,
		Status:      models.PackageStatusDraft,
		MenuIDs:     []uuid.UUID{root.ID},
	}); err != nil {
		return fmt.Errorf("seed starter package: %w", err)
	}

	slog.Info("database seeded",
		"product_id", DefaultProductID.String(),
		"features_created", created,
	)
	return nil
}
