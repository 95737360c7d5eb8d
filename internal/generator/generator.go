// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generator implements the Generation Pipeline: it turns one
// fully loaded schema registry entry into a deterministic set of textual
// artifacts (migration script, data-access model, REST handler scaffold,
// route registration and UI scaffolds). Generation is a pure function of
// its input: the same entry always produces byte-identical output.
package generator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"appforge/internal/models"
)

// GenerationError reports an entry that cannot be generated, with a
// remediation hint for the operator.
type GenerationError struct {
	Message string
	Hint    string
}

func (e *GenerationError) Error() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + ": " + e.Hint
}

// Input is the aggregate the pipeline consumes: the entry with its
// categories, fields, layouts and statistics loaded, the bound menu node
// if any, and whether the target table is already materialized.
type Input struct {
	Entry       *models.SchemaEntry
	Menu        *models.MenuNode
	TableExists bool
}

// Artifact is one emitted file: a repository-relative path and its text.
type Artifact struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ArtifactSet is the complete, ordered output of one generation run.
type ArtifactSet struct {
	EntryID          string     `json:"entry_id"`
	TableName        string     `json:"table_name"`
	SkippedMigration bool       `json:"skipped_migration"`
	Artifacts        []Artifact `json:"artifacts"`
}

// Generator emits artifact sets from schema registry entries. It is
// stateless and safe for concurrent use on different entries; callers
// serialize runs for the same entry.
type Generator struct{}

// New returns a Generator.
func New() *Generator {
	return &Generator{}
}

// Generate runs the pipeline. The artifact builders are independent and
// fan out on an errgroup; results are assembled in a fixed order so the
// output is deterministic regardless of completion order.
//
// Re-generation: when the target table already exists the migration step
// is skipped and every other artifact is rebuilt (overwrite semantics).
func (g *Generator) Generate(ctx context.Context, in Input) (*ArtifactSet, error) {
	if in.Entry == nil {
		return nil, &GenerationError{Message: "no schema entry supplied"}
	}
	cols := deriveColumns(in.Entry)
	if len(cols) == 0 {
		return nil, &GenerationError{
			Message: fmt.Sprintf("schema entry %q has no fields", in.Entry.TableName),
			Hint:    "add at least one field spec before generating",
		}
	}
	names := deriveNaming(in.Entry.TableName)

	type step struct {
		path  string
		build func() (string, error)
	}
	steps := []step{
		{path: "migrations/" + names.Table + ".sql", build: func() (string, error) {
			return buildMigration(names, cols), nil
		}},
		{path: "internal/models/" + names.Singular + ".go", build: func() (string, error) {
			return buildModel(names, cols)
		}},
		{path: "internal/handlers/" + names.Singular + ".go", build: func() (string, error) {
			return buildHandler(names, cols)
		}},
		{path: "internal/router/" + names.Singular + "_routes.go", build: func() (string, error) {
			return buildRoutes(names)
		}},
		{path: "web/" + names.Table + "/list.html", build: func() (string, error) {
			return buildListView(in.Entry, names, cols), nil
		}},
		{path: "web/" + names.Table + "/form.html", build: func() (string, error) {
			return buildFormView(in.Entry, names, cols), nil
		}},
	}
	if in.TableExists {
		steps = steps[1:]
	}

	results := make([]Artifact, len(steps))
	eg, _ := errgroup.WithContext(ctx)
	for i, st := range steps {
		eg.Go(func() error {
			content, err := st.build()
			if err != nil {
				return fmt.Errorf("build %s: %w", st.path, err)
			}
			results[i] = Artifact{Path: st.path, Content: content}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &ArtifactSet{
		EntryID:          in.Entry.ID.String(),
		TableName:        names.Table,
		SkippedMigration: in.TableExists,
		Artifacts:        results,
	}, nil
}
