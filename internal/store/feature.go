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

// FeatureStore manages product-scoped feature nodes in the database.
type FeatureStore struct {
	db   *sql.DB
	tree *TreeStore
}

// NewFeatureStore returns a new FeatureStore.
func NewFeatureStore(db *sql.DB) *FeatureStore {
	return &FeatureStore{db: db, tree: NewTreeStore(db, "feature_nodes")}
}

const featureColumns = `id, parent_id, level, sort_order, is_active, product_id, feature_code,
	name, type, color, price_addon, trial_available, trial_days,
	created_by, updated_by, deleted_by, created_at, updated_at, deleted_at`

// scanFeature scans a row into a FeatureNode struct.
func scanFeature(scanner interface{ Scan(...any) error }) (*models.FeatureNode, error) {
	var f models.FeatureNode
	err := scanner.Scan(
		&f.ID, &f.ParentID, &f.Level, &f.SortOrder, &f.IsActive,
		&f.ProductID, &f.FeatureCode, &f.Name, &f.Type, &f.Color,
		&f.PriceAddon, &f.TrialAvailable, &f.TrialDays,
		&f.CreatedBy, &f.UpdatedBy, &f.DeletedBy,
		&f.CreatedAt, &f.UpdatedAt, &f.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFeatureInput carries the writable fields for a new feature node.
type CreateFeatureInput struct {
	ProductID      uuid.UUID  `json:"product_id"`
	ParentID       *uuid.UUID `json:"parent_id"`
	FeatureCode    string     `json:"feature_code"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Color          string     `json:"color"`
	PriceAddon     int        `json:"price_addon"`
	TrialAvailable bool       `json:"trial_available"`
	TrialDays      *int       `json:"trial_days"`
	SortOrder      *int       `json:"sort_order"`
	IsActive       *bool      `json:"is_active"`
	CreatedBy      *uuid.UUID `json:"-"`
}

// validateFeature checks the entity-specific rules shared by create and
// update. It returns the normalized trial days value.
func validateFeature(code, name, typ string, priceAddon int, trialAvailable bool, trialDays *int) (*int, error) {
	fields := map[string]string{}
	if strings.TrimSpace(code) == "" {
		fields["feature_code"] = "feature code is required"
	}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if !models.ValidFeatureType(typ) {
		fields["type"] = "must be one of category, feature, subfeature"
	}
	if priceAddon < 0 {
		fields["price_addon"] = "must not be negative"
	}
	if trialAvailable {
		if trialDays == nil || *trialDays <= 0 {
			fields["trial_days"] = "required and positive when trial is available"
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "validation failed", Fields: fields}
	}
	// Trial days without an available trial are dropped rather than rejected.
	if !trialAvailable {
		return nil, nil
	}
	return trialDays, nil
}

// codeTaken reports whether another live-or-deleted feature of the same
// product already uses the code.
func (s *FeatureStore) codeTaken(q querier, productID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	var taken bool
	var err error
	if excludeID != nil {
		err = q.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM feature_nodes WHERE product_id = $1 AND feature_code = $2 AND id <> $3)`,
			productID, code, *excludeID,
		).Scan(&taken)
	} else {
		err = q.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM feature_nodes WHERE product_id = $1 AND feature_code = $2)`,
			productID, code,
		).Scan(&taken)
	}
	if err != nil {
		return false, fmt.Errorf("feature code lookup: %w", err)
	}
	return taken, nil
}

// Create inserts a new feature node. The feature code must be unique
// within the product; the same code under another product is fine.
func (s *FeatureStore) Create(in CreateFeatureInput) (*models.FeatureNode, error) {
	if in.ProductID == uuid.Nil {
		return nil, NewValidationError("product_id", "product id is required")
	}
	trialDays, err := validateFeature(in.FeatureCode, in.Name, in.Type, in.PriceAddon, in.TrialAvailable, in.TrialDays)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	code := strings.TrimSpace(in.FeatureCode)
	taken, err := s.codeTaken(tx, in.ProductID, code, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: fmt.Sprintf("feature code %q already exists for this product", code)}
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
		INSERT INTO feature_nodes (parent_id, level, sort_order, is_active, product_id, feature_code,
			name, type, color, price_addon, trial_available, trial_days, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING `+featureColumns,
		in.ParentID, level, order, active, in.ProductID, code,
		strings.TrimSpace(in.Name), in.Type, in.Color, in.PriceAddon, in.TrialAvailable, trialDays, in.CreatedBy,
	)
	node, err := scanFeature(row)
	if err != nil {
		return nil, fmt.Errorf("create feature node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return node, nil
}

// FindByID retrieves a feature node by id, including soft-deleted ones.
func (s *FeatureStore) FindByID(id uuid.UUID) (*models.FeatureNode, error) {
	row := s.db.QueryRow(`SELECT `+featureColumns+` FROM feature_nodes WHERE id = $1`, id)
	node, err := scanFeature(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "feature node", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find feature node: %w", err)
	}
	return node, nil
}

// List returns the product's feature nodes ordered by level then sort order.
func (s *FeatureStore) List(productID uuid.UUID, trash TrashMode) ([]models.FeatureNode, error) {
	rows, err := s.db.Query(
		`SELECT `+featureColumns+` FROM feature_nodes WHERE product_id = $1`+trash.Condition()+
			` ORDER BY level, sort_order, created_at`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list feature nodes: %w", err)
	}
	defer rows.Close()

	var items []models.FeatureNode
	for rows.Next() {
		node, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature node: %w", err)
		}
		items = append(items, *node)
	}
	return items, rows.Err()
}

// Tree returns the product's root features with recursively loaded children.
func (s *FeatureStore) Tree(productID uuid.UUID, trash TrashMode) ([]models.FeatureNode, error) {
	flat, err := s.List(productID, trash)
	if err != nil {
		return nil, err
	}
	return BuildTree[models.FeatureNode](flat)
}

// UpdateFeatureInput carries a partial feature update.
type UpdateFeatureInput struct {
	FeatureCode    *string
	Name           *string
	Type           *string
	Color          *string
	PriceAddon     *int
	TrialAvailable *bool
	TrialDays      *int
	SetTrialDays   bool
	IsActive       *bool
	SetParent      bool
	ParentID       *uuid.UUID
	SortOrder      *int
	UpdatedBy      *uuid.UUID
}

// Update applies a partial update, re-validating the merged row.
func (s *FeatureStore) Update(id uuid.UUID, in UpdateFeatureInput) (*models.FeatureNode, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := scanFeature(tx.QueryRow(`SELECT `+featureColumns+` FROM feature_nodes WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "feature node", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("find feature node: %w", err)
	}

	if in.FeatureCode != nil {
		current.FeatureCode = strings.TrimSpace(*in.FeatureCode)
	}
	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		current.Type = *in.Type
	}
	if in.Color != nil {
		current.Color = *in.Color
	}
	if in.PriceAddon != nil {
		current.PriceAddon = *in.PriceAddon
	}
	if in.TrialAvailable != nil {
		current.TrialAvailable = *in.TrialAvailable
	}
	if in.SetTrialDays {
		current.TrialDays = in.TrialDays
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}

	trialDays, err := validateFeature(current.FeatureCode, current.Name, current.Type,
		current.PriceAddon, current.TrialAvailable, current.TrialDays)
	if err != nil {
		return nil, err
	}

	if in.FeatureCode != nil {
		taken, err := s.codeTaken(tx, current.ProductID, current.FeatureCode, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Message: fmt.Sprintf("feature code %q already exists for this product", current.FeatureCode)}
		}
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
		UPDATE feature_nodes SET feature_code = $1, name = $2, type = $3, color = $4,
			price_addon = $5, trial_available = $6, trial_days = $7, is_active = $8,
			updated_by = $9, updated_at = $10
		WHERE id = $11`,
		current.FeatureCode, current.Name, current.Type, current.Color,
		current.PriceAddon, current.TrialAvailable, trialDays, current.IsActive,
		in.UpdatedBy, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update feature node: %w", err)
	}

	if in.SetParent && !ptrEqual(in.ParentID, current.ParentID) {
		if err := s.tree.Move(tx, id, in.ParentID, in.SortOrder, now); err != nil {
			return nil, err
		}
	} else if in.SortOrder != nil {
		_, err = tx.Exec(`UPDATE feature_nodes SET sort_order = $1, updated_at = $2 WHERE id = $3`, *in.SortOrder, now, id)
		if err != nil {
			return nil, fmt.Errorf("update feature sort order: %w", err)
		}
	}

	updated, err := scanFeature(tx.QueryRow(`SELECT `+featureColumns+` FROM feature_nodes WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload feature node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// SoftDelete marks the node and all live descendants deleted.
func (s *FeatureStore) SoftDelete(id uuid.UUID, by *uuid.UUID) error {
	return s.tree.SoftDelete(id, by)
}

// Restore un-deletes the node and all currently soft-deleted descendants.
func (s *FeatureStore) Restore(id uuid.UUID) error {
	return s.tree.Restore(id)
}

// ForceDelete permanently removes the node and its subtree.
func (s *FeatureStore) ForceDelete(id uuid.UUID) error {
	return s.tree.ForceDelete(id)
}

// Reorder applies an atomic batch of order/parent changes.
func (s *FeatureStore) Reorder(items []ReorderItem) error {
	return s.tree.Reorder(items)
}

// TrashBox groups the product's currently soft-deleted features by type.
// Reporting only; it mutates nothing. All three types are always present
// so the UI can render stable buckets.
func (s *FeatureStore) TrashBox(productID uuid.UUID) ([]models.FeatureTrashGroup, error) {
	deleted, err := s.List(productID, TrashOnly)
	if err != nil {
		return nil, err
	}

	groups := []models.FeatureTrashGroup{
		{Type: models.FeatureTypeCategory, Items: []models.FeatureNode{}},
		{Type: models.FeatureTypeFeature, Items: []models.FeatureNode{}},
		{Type: models.FeatureTypeSubfeature, Items: []models.FeatureNode{}},
	}
	for _, node := range deleted {
		for i := range groups {
			if groups[i].Type == node.Type {
				groups[i].Items = append(groups[i].Items, node)
				groups[i].Count++
			}
		}
	}
	return groups, nil
}

// SeedFeature describes one node of a baseline feature catalog.
type SeedFeature struct {
	Code       string
	Name       string
	Type       string
	Color      string
	PriceAddon int
	Children   []SeedFeature
}

// DefaultCatalog is the baseline catalog seeded for a product with no
// features yet.
var DefaultCatalog = []SeedFeature{
	{Code: "core", Name: "Core", Type: models.FeatureTypeCategory, Children: []SeedFeature{
		{Code: "core.dashboard", Name: "Dashboard", Type: models.FeatureTypeFeature},
		{Code: "core.users", Name: "User Management", Type: models.FeatureTypeFeature, Children: []SeedFeature{
			{Code: "core.users.roles", Name: "Role Assignment", Type: models.FeatureTypeSubfeature},
		}},
		{Code: "core.settings", Name: "Settings", Type: models.FeatureTypeFeature},
	}},
	{Code: "builder", Name: "App Builder", Type: models.FeatureTypeCategory, Children: []SeedFeature{
		{Code: "builder.schemas", Name: "Schema Designer", Type: models.FeatureTypeFeature},
		{Code: "builder.generate", Name: "Code Generation", Type: models.FeatureTypeFeature},
	}},
	{Code: "reports", Name: "Reports", Type: models.FeatureTypeCategory, Children: []SeedFeature{
		{Code: "reports.statistics", Name: "Statistics", Type: models.FeatureTypeFeature},
	}},
}

// Generate seeds the catalog for a product. Idempotent: nodes whose
// feature code already exists for the product are skipped (their children
// are still visited). Returns the number of nodes created.
func (s *FeatureStore) Generate(productID uuid.UUID, catalog []SeedFeature, by *uuid.UUID) (int, error) {
	if productID == uuid.Nil {
		return 0, NewValidationError("product_id", "product id is required")
	}
	return s.seed(productID, nil, catalog, by)
}

func (s *FeatureStore) seed(productID uuid.UUID, parentID *uuid.UUID, nodes []SeedFeature, by *uuid.UUID) (int, error) {
	created := 0
	for _, n := range nodes {
		id, existed, err := s.seedOne(productID, parentID, n, by)
		if err != nil {
			return created, err
		}
		if !existed {
			created++
		}
		childCount, err := s.seed(productID, &id, n.Children, by)
		created += childCount
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// seedOne creates one catalog node unless its code already exists for the
// product, returning the node's id either way.
func (s *FeatureStore) seedOne(productID uuid.UUID, parentID *uuid.UUID, n SeedFeature, by *uuid.UUID) (uuid.UUID, bool, error) {
	var existing uuid.UUID
	err := s.db.QueryRow(
		`SELECT id FROM feature_nodes WHERE product_id = $1 AND feature_code = $2`,
		productID, n.Code,
	).Scan(&existing)
	if err == nil {
		return existing, true, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, false, fmt.Errorf("seed feature lookup: %w", err)
	}

	node, err := s.Create(CreateFeatureInput{
		ProductID:   productID,
		ParentID:    parentID,
		FeatureCode: n.Code,
		Name:        n.Name,
		Type:        n.Type,
		Color:       n.Color,
		PriceAddon:  n.PriceAddon,
		CreatedBy:   by,
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	return node.ID, false, nil
}
