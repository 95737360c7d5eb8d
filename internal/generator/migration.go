// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"fmt"
	"strings"
)

// buildMigration emits the goose-format schema-change script: table
// creation with the derived columns, plus unique indexes, enum checks and
// foreign keys from the validation flags.
func buildMigration(names naming, cols []column) string {
	var b strings.Builder

	fmt.Fprintf(&b, "-- Generated migration for %s. Do not edit by hand;\n", names.Table)
	b.WriteString("-- regenerate from the schema registry instead.\n")
	b.WriteString("-- +goose Up\n")
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", names.Table)
	b.WriteString("    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),\n")

	for _, c := range cols {
		b.WriteString("    " + columnDDL(c) + ",\n")
	}

	b.WriteString("    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),\n")
	b.WriteString("    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),\n")
	b.WriteString("    deleted_at TIMESTAMPTZ\n")
	b.WriteString(");\n")

	for _, c := range cols {
		if c.Unique {
			fmt.Fprintf(&b, "\nCREATE UNIQUE INDEX idx_%s_%s ON %s(%s);\n", names.Table, c.Name, names.Table, c.Name)
		}
		if c.Ref != nil {
			fmt.Fprintf(&b, "\nCREATE INDEX idx_%s_%s ON %s(%s);\n", names.Table, c.Name, names.Table, c.Name)
		}
	}

	b.WriteString("\n-- +goose Down\n")
	fmt.Fprintf(&b, "DROP TABLE %s;\n", names.Table)
	return b.String()
}

// columnDDL renders one column definition.
func columnDDL(c column) string {
	parts := []string{c.Name, c.SQLType}
	if c.Required || (!c.Nullable && c.Default == nil) {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT "+sqlLiteral(*c.Default, c.SQLType))
	}
	if len(c.Enum) > 0 {
		quoted := make([]string, len(c.Enum))
		for i, v := range c.Enum {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		parts = append(parts, fmt.Sprintf("CHECK (%s IN (%s))", c.Name, strings.Join(quoted, ", ")))
	}
	if c.Ref != nil {
		parts = append(parts, fmt.Sprintf("REFERENCES %s(%s)", c.Ref.RelatedTable, c.Ref.RelatedColumn))
	}
	return strings.Join(parts, " ")
}

// sqlLiteral renders a default value, quoting unless the column type is
// numeric or boolean.
func sqlLiteral(v, sqlType string) string {
	switch {
	case strings.HasPrefix(sqlType, "INT"),
		strings.HasPrefix(sqlType, "BIGINT"),
		strings.HasPrefix(sqlType, "NUMERIC"),
		sqlType == "BOOLEAN":
		return v
	default:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
}
