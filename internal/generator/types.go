// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"fmt"

	"github.com/go-openapi/inflect"

	"appforge/internal/models"
)

// column is the canonical, generation-ready view of one field spec:
// its storage type, Go binding and the validation constraints derived
// from the registry flags.
type column struct {
	Name    string
	GoName  string
	SQLType string
	GoType  string

	Required bool
	Nullable bool
	Unique   bool
	Readonly bool
	Hidden   bool

	Length  *int
	Enum    []string
	Default *string
	Ref     *models.Relation
	Binary  bool

	Label       string
	Placeholder string
	InputType   string
	Spec        models.FieldSpec
}

// naming bundles the identifier set derived from the target table name.
type naming struct {
	Table    string // products
	Singular string // product
	Type     string // Product
	Plural   string // Products
}

func deriveNaming(tableName string) naming {
	singular := inflect.Singularize(tableName)
	return naming{
		Table:    tableName,
		Singular: singular,
		Type:     inflect.Camelize(singular),
		Plural:   inflect.Camelize(tableName),
	}
}

// deriveColumns maps the entry's field specs, in category order then field
// order, onto the canonical column list.
func deriveColumns(entry *models.SchemaEntry) []column {
	fields := entry.Fields()
	cols := make([]column, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, column{
			Name:        f.ColumnName,
			GoName:      inflect.Camelize(f.ColumnName),
			SQLType:     sqlType(f),
			GoType:      goType(f),
			Required:    f.Required,
			Nullable:    f.Nullable,
			Unique:      f.Unique,
			Readonly:    f.Readonly,
			Hidden:      f.Hidden,
			Length:      f.Length,
			Enum:        f.EnumOptions,
			Default:     f.DefaultValue,
			Ref:         f.Relation,
			Binary:      models.BinaryDataType(f.DataType),
			Label:       f.LabelEN,
			Placeholder: f.PlaceholderEN,
			InputType:   f.InputType,
			Spec:        f,
		})
	}
	return cols
}

// sqlType maps a field spec onto its PostgreSQL column type.
func sqlType(f models.FieldSpec) string {
	switch f.DataType {
	case models.DataTypeString:
		length := 255
		if f.Length != nil {
			length = *f.Length
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case models.DataTypeText:
		return "TEXT"
	case models.DataTypeInteger:
		return "INT"
	case models.DataTypeBigint:
		return "BIGINT"
	case models.DataTypeDecimal:
		return "NUMERIC(15, 2)"
	case models.DataTypeBoolean:
		return "BOOLEAN"
	case models.DataTypeDate:
		return "DATE"
	case models.DataTypeDatetime:
		return "TIMESTAMPTZ"
	case models.DataTypeJSON:
		return "JSONB"
	case models.DataTypeFile, models.DataTypeImage:
		// Uploads store their object key; bytes live in object storage.
		return "TEXT"
	}
	return "TEXT"
}

// goType maps a field spec onto the generated model's field type.
func goType(f models.FieldSpec) string {
	switch f.DataType {
	case models.DataTypeString, models.DataTypeText, models.DataTypeFile, models.DataTypeImage:
		return "string"
	case models.DataTypeInteger:
		return "int"
	case models.DataTypeBigint:
		return "int64"
	case models.DataTypeDecimal:
		return "float64"
	case models.DataTypeBoolean:
		return "bool"
	case models.DataTypeDate, models.DataTypeDatetime:
		return "time.Time"
	case models.DataTypeJSON:
		return "json.RawMessage"
	}
	return "string"
}

// hasBinary reports whether any column stores an uploaded file, which
// switches the generated handler into storage-hook mode.
func hasBinary(cols []column) bool {
	for _, c := range cols {
		if c.Binary {
			return true
		}
	}
	return false
}
