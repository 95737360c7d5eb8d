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

// PackageStore manages subscription packages: a tree of tiers, each
// bundling feature nodes and granting a subset of the menu tree.
type PackageStore struct {
	db   *sql.DB
	tree *TreeStore
}

// NewPackageStore returns a new PackageStore.
func NewPackageStore(db *sql.DB) *PackageStore {
	return &PackageStore{db: db, tree: NewTreeStore(db, "package_nodes")}
}

const packageColumns = `id, parent_id, level, sort_order, is_active, name, description,
	price, max_users, status, subscriber_count,
	created_by, updated_by, deleted_by, created_at, updated_at, deleted_at`

// scanPackage scans a row into a PackageNode struct.
func scanPackage(scanner interface{ Scan(...any) error }) (*models.PackageNode, error) {
	var p models.PackageNode
	err := scanner.Scan(
		&p.ID, &p.ParentID, &p.Level, &p.SortOrder, &p.IsActive,
		&p.Name, &p.Description, &p.Price, &p.MaxUsers, &p.Status, &p.SubscriberCount,
		&p.CreatedBy, &p.UpdatedBy, &p.DeletedBy,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePackageInput carries the writable fields for a new package.
type CreatePackageInput struct {
	ParentID    *uuid.UUID  `json:"parent_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       int         `json:"price"`
	MaxUsers    int         `json:"max_users"`
	Status      string      `json:"status"`
	FeatureIDs  []uuid.UUID `json:"feature_ids"`
	MenuIDs     []uuid.UUID `json:"menu_ids"`
	SortOrder   *int        `json:"sort_order"`
	IsActive    *bool       `json:"is_active"`
	CreatedBy   *uuid.UUID  `json:"-"`
}

// validatePackage checks the entity-specific rules shared by create and update.
func validatePackage(name, status string, price, maxUsers int) error {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if !models.ValidPackageStatus(status) {
		fields["status"] = "must be one of draft, active, inactive"
	}
	if price < 0 {
		fields["price"] = "must not be negative"
	}
	if maxUsers < models.UnlimitedUsers || maxUsers == 0 {
		fields["max_users"] = "must be positive, or -1 for unlimited"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "validation failed", Fields: fields}
	}
	return nil
}

// missingIDs returns the ids from the list that do not resolve in the
// given table.
func missingIDs(q querier, table string, ids []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		var exists bool
		err := q.QueryRow(
			fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table), id,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("%s reference lookup: %w", table, err)
		}
		if !exists {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// checkGrants validates that every referenced feature and menu id resolves.
func checkGrants(q querier, featureIDs, menuIDs []uuid.UUID) error {
	fields := map[string]string{}
	if missing, err := missingIDs(q, "feature_nodes", featureIDs); err != nil {
		return err
	} else if len(missing) > 0 {
		fields["feature_ids"] = "unknown feature ids: " + joinIDs(missing)
	}
	if missing, err := missingIDs(q, "menu_nodes", menuIDs); err != nil {
		return err
	} else if len(missing) > 0 {
		fields["menu_ids"] = "unknown menu ids: " + joinIDs(missing)
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "validation failed", Fields: fields}
	}
	return nil
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

// replaceGrants rewrites the package's join rows inside the transaction.
func replaceGrants(tx *sql.Tx, packageID uuid.UUID, featureIDs, menuIDs []uuid.UUID) error {
	if _, err := tx.Exec(`DELETE FROM package_features WHERE package_id = $1`, packageID); err != nil {
		return fmt.Errorf("clear package features: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM package_menus WHERE package_id = $1`, packageID); err != nil {
		return fmt.Errorf("clear package menus: %w", err)
	}
	seen := map[uuid.UUID]bool{}
	for _, fid := range featureIDs {
		if seen[fid] {
			continue
		}
		seen[fid] = true
		if _, err := tx.Exec(`INSERT INTO package_features (package_id, feature_id) VALUES ($1, $2)`, packageID, fid); err != nil {
			return fmt.Errorf("grant package feature: %w", err)
		}
	}
	seen = map[uuid.UUID]bool{}
	for _, mid := range menuIDs {
		if seen[mid] {
			continue
		}
		seen[mid] = true
		if _, err := tx.Exec(`INSERT INTO package_menus (package_id, menu_id) VALUES ($1, $2)`, packageID, mid); err != nil {
			return fmt.Errorf("grant package menu: %w", err)
		}
	}
	return nil
}

// loadGrants attaches the package's feature and menu id sets.
func (s *PackageStore) loadGrants(q querier, p *models.PackageNode) error {
	rows, err := q.Query(`SELECT feature_id FROM package_features WHERE package_id = $1 ORDER BY feature_id`, p.ID)
	if err != nil {
		return fmt.Errorf("load package features: %w", err)
	}
	p.FeatureIDs, err = scanIDs(rows)
	if err != nil {
		return fmt.Errorf("load package features: %w", err)
	}
	rows, err = q.Query(`SELECT menu_id FROM package_menus WHERE package_id = $1 ORDER BY menu_id`, p.ID)
	if err != nil {
		return fmt.Errorf("load package menus: %w", err)
	}
	p.MenuIDs, err = scanIDs(rows)
	if err != nil {
		return fmt.Errorf("load package menus: %w", err)
	}
	// Grant sets marshal as [] rather than null.
	if p.FeatureIDs == nil {
		p.FeatureIDs = []uuid.UUID{}
	}
	if p.MenuIDs == nil {
		p.MenuIDs = []uuid.UUID{}
	}
	return nil
}

// Create inserts a new package tier with its feature and menu grants.
func (s *PackageStore) Create(in CreatePackageInput) (*models.PackageNode, error) {
	if in.Status == "" {
		in.Status = models.PackageStatusDraft
	}
	if in.MaxUsers == 0 {
		in.MaxUsers = models.UnlimitedUsers
	}
	if err := validatePackage(in.Name, in.Status, in.Price, in.MaxUsers); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkGrants(tx, in.FeatureIDs, in.MenuIDs); err != nil {
		return nil, err
	}
	level, order, err := s.tree.Place(tx, in.ParentID, in.SortOrder)
	if err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	row := tx.QueryRow(`
		INSERT INTO package_nodes (parent_id, level, sort_order, is_active, name, description,
			price, max_users, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+packageColumns,
		in.ParentID, level, order, active, strings.TrimSpace(in.Name), in.Description,
		in.Price, in.MaxUsers, in.Status, in.CreatedBy,
	)
	node, err := scanPackage(row)
	if err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}
	if err := replaceGrants(tx, node.ID, in.FeatureIDs, in.MenuIDs); err != nil {
		return nil, err
	}
	if err := s.loadGrants(tx, node); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return node, nil
}

// FindByID retrieves a package by id with its grants, including
// soft-deleted packages.
func (s *PackageStore) FindByID(id uuid.UUID) (*models.PackageNode, error) {
	row := s.db.QueryRow(`SELECT `+packageColumns+` FROM package_nodes WHERE id = $1`, id)
	node, err := scanPackage(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "package", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	if err := s.loadGrants(s.db, node); err != nil {
		return nil, err
	}
	return node, nil
}

// List returns packages ordered by level then sort order, with grants loaded.
func (s *PackageStore) List(trash TrashMode) ([]models.PackageNode, error) {
	rows, err := s.db.Query(
		`SELECT ` + packageColumns + ` FROM package_nodes WHERE TRUE` + trash.Condition() +
			` ORDER BY level, sort_order, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var items []models.PackageNode
	for rows.Next() {
		node, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		items = append(items, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if err := s.loadGrants(s.db, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Tree returns root packages with recursively loaded tiers.
func (s *PackageStore) Tree(trash TrashMode) ([]models.PackageNode, error) {
	flat, err := s.List(trash)
	if err != nil {
		return nil, err
	}
	return BuildTree[models.PackageNode](flat)
}

// UpdatePackageInput carries a partial package update. SetFeatures and
// SetMenus mark that the grant sets were present in the request and should
// be replaced wholesale.
type UpdatePackageInput struct {
	Name        *string
	Description *string
	Price       *int
	MaxUsers    *int
	Status      *string
	SetFeatures bool
	FeatureIDs  []uuid.UUID
	SetMenus    bool
	MenuIDs     []uuid.UUID
	IsActive    *bool
	SetParent   bool
	ParentID    *uuid.UUID
	SortOrder   *int
	UpdatedBy   *uuid.UUID
}

// Update applies a partial update, re-validating the merged row and
// replacing the grant sets when supplied.
func (s *PackageStore) Update(id uuid.UUID, in UpdatePackageInput) (*models.PackageNode, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := scanPackage(tx.QueryRow(`SELECT `+packageColumns+` FROM package_nodes WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "package", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}

	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		current.Description = *in.Description
	}
	if in.Price != nil {
		current.Price = *in.Price
	}
	if in.MaxUsers != nil {
		current.MaxUsers = *in.MaxUsers
	}
	if in.Status != nil {
		current.Status = *in.Status
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}
	if err := validatePackage(current.Name, current.Status, current.Price, current.MaxUsers); err != nil {
		return nil, err
	}

	var wantFeatures, wantMenus []uuid.UUID
	if in.SetFeatures {
		wantFeatures = in.FeatureIDs
	}
	if in.SetMenus {
		wantMenus = in.MenuIDs
	}
	if err := checkGrants(tx, wantFeatures, wantMenus); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
		UPDATE package_nodes SET name = $1, description = $2, price = $3, max_users = $4,
			status = $5, is_active = $6, updated_by = $7, updated_at = $8
		WHERE id = $9`,
		current.Name, current.Description, current.Price, current.MaxUsers,
		current.Status, current.IsActive, in.UpdatedBy, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}

	if in.SetFeatures || in.SetMenus {
		if err := s.loadGrants(tx, current); err != nil {
			return nil, err
		}
		features := current.FeatureIDs
		menus := current.MenuIDs
		if in.SetFeatures {
			features = in.FeatureIDs
		}
		if in.SetMenus {
			menus = in.MenuIDs
		}
		if err := replaceGrants(tx, id, features, menus); err != nil {
			return nil, err
		}
	}

	if in.SetParent && !ptrEqual(in.ParentID, current.ParentID) {
		if err := s.tree.Move(tx, id, in.ParentID, in.SortOrder, now); err != nil {
			return nil, err
		}
	} else if in.SortOrder != nil {
		_, err = tx.Exec(`UPDATE package_nodes SET sort_order = $1, updated_at = $2 WHERE id = $3`, *in.SortOrder, now, id)
		if err != nil {
			return nil, fmt.Errorf("update package sort order: %w", err)
		}
	}

	updated, err := scanPackage(tx.QueryRow(`SELECT `+packageColumns+` FROM package_nodes WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload package: %w", err)
	}
	if err := s.loadGrants(tx, updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// SoftDelete marks the package and all live descendant tiers deleted.
func (s *PackageStore) SoftDelete(id uuid.UUID, by *uuid.UUID) error {
	return s.tree.SoftDelete(id, by)
}

// Restore un-deletes the package and all currently soft-deleted tiers.
func (s *PackageStore) Restore(id uuid.UUID) error {
	return s.tree.Restore(id)
}

// ForceDelete permanently removes the package and its subtree. Join rows
// follow via ON DELETE CASCADE.
func (s *PackageStore) ForceDelete(id uuid.UUID) error {
	return s.tree.ForceDelete(id)
}

// Reorder applies an atomic batch of order/parent changes.
func (s *PackageStore) Reorder(items []ReorderItem) error {
	return s.tree.Reorder(items)
}
