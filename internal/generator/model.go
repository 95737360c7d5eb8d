// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"
)

// generatedHeader marks every emitted Go file.
const generatedHeader = "Code generated by the appforge schema registry. DO NOT EDIT."

// buildModel emits the data-access definition: the entity struct, its
// table name and the assignable column set.
func buildModel(names naming, cols []column) (string, error) {
	f := jen.NewFile("models")
	f.HeaderComment(generatedHeader)

	fields := []jen.Code{
		jen.Id("ID").Qual("github.com/google/uuid", "UUID").Tag(map[string]string{"json": "id"}),
	}
	for _, c := range cols {
		fields = append(fields, jen.Id(c.GoName).Add(goTypeCode(c)).Tag(map[string]string{"json": c.Name}))
	}
	fields = append(fields,
		jen.Id("CreatedAt").Qual("time", "Time").Tag(map[string]string{"json": "created_at"}),
		jen.Id("UpdatedAt").Qual("time", "Time").Tag(map[string]string{"json": "updated_at"}),
		jen.Id("DeletedAt").Op("*").Qual("time", "Time").Tag(map[string]string{"json": "deleted_at,omitempty"}),
	)

	f.Commentf("%s is one row of the %s table.", names.Type, names.Table)
	f.Type().Id(names.Type).Struct(fields...)

	f.Commentf("%sTable is the backing table name.", names.Type)
	f.Const().Id(names.Type + "Table").Op("=").Lit(names.Table)

	assignable := make([]jen.Code, 0, len(cols))
	for _, c := range cols {
		if c.Readonly {
			continue
		}
		assignable = append(assignable, jen.Lit(c.Name))
	}
	f.Commentf("%sAssignable lists the columns writable through the API.", names.Type)
	f.Var().Id(names.Type + "Assignable").Op("=").Index().String().Values(assignable...)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("render model: %w", err)
	}
	return buf.String(), nil
}

// goTypeCode maps a column's Go type name onto a jennifer type
// expression, adding the pointer for nullable columns.
func goTypeCode(c column) *jen.Statement {
	var base *jen.Statement
	switch c.GoType {
	case "time.Time":
		base = jen.Qual("time", "Time")
	case "json.RawMessage":
		base = jen.Qual("encoding/json", "RawMessage")
	default:
		base = jen.Id(c.GoType)
	}
	if c.Nullable {
		return jen.Op("*").Add(base)
	}
	return base
}
