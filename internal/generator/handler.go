// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
)

const (
	chiPkg  = "github.com/go-chi/chi/v5"
	uuidPkg = "github.com/google/uuid"
)

// buildHandler emits the REST handler scaffold: an input struct, a
// validate function derived from the field rules, CRUD handlers and, for
// entries with binary fields, a storage hook.
func buildHandler(names naming, cols []column) (string, error) {
	f := jen.NewFile("handlers")
	f.HeaderComment(generatedHeader)

	binary := hasBinary(cols)
	handlerName := names.Type + "Handler"
	inputName := names.Type + "Input"

	// Dependency struct.
	handlerFields := []jen.Code{jen.Id("db").Op("*").Qual("database/sql", "DB")}
	if binary {
		handlerFields = append(handlerFields, jen.Id("storage").Id("ObjectStorage"))
	}
	f.Commentf("%s serves the CRUD endpoints of the %s table.", handlerName, names.Table)
	f.Type().Id(handlerName).Struct(handlerFields...)

	if binary {
		f.Comment("ObjectStorage stores uploaded files and returns their object key.")
		f.Type().Id("ObjectStorage").Interface(
			jen.Id("Store").Params(
				jen.Id("ctx").Qual("context", "Context"),
				jen.Id("name").String(),
				jen.Id("data").Index().Byte(),
			).Params(jen.String(), jen.Error()),
		)
	}

	ctorParams := []jen.Code{jen.Id("db").Op("*").Qual("database/sql", "DB")}
	ctorValues := jen.Dict{jen.Id("db"): jen.Id("db")}
	if binary {
		ctorParams = append(ctorParams, jen.Id("storage").Id("ObjectStorage"))
		ctorValues[jen.Id("storage")] = jen.Id("storage")
	}
	f.Commentf("New%s returns a new %s.", handlerName, handlerName)
	f.Func().Id("New"+handlerName).Params(ctorParams...).Op("*").Id(handlerName).Block(
		jen.Return(jen.Op("&").Id(handlerName).Values(ctorValues)),
	)

	// Input struct over the assignable columns.
	inputFields := make([]jen.Code, 0, len(cols))
	for _, c := range cols {
		if c.Readonly {
			continue
		}
		inputFields = append(inputFields, jen.Id(c.GoName).Add(inputTypeCode(c)).Tag(map[string]string{"json": c.Name}))
	}
	f.Commentf("%s carries the writable fields of a %s.", inputName, names.Singular)
	f.Type().Id(inputName).Struct(inputFields...)

	buildValidate(f, names, cols)
	buildList(f, names, cols, handlerName)
	buildCreate(f, names, cols, handlerName, inputName, binary)
	buildGet(f, names, cols, handlerName)
	buildUpdate(f, names, cols, handlerName, inputName)
	buildDelete(f, names, handlerName)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("render handler: %w", err)
	}
	return buf.String(), nil
}

// inputTypeCode is goTypeCode with scalar fields turned into pointers
// whenever absence has to be told apart from the zero value: optional
// fields so omitted keys stay NULL, and required non-string fields so
// the validator can reject a missing key instead of accepting 0.
func inputTypeCode(c column) *jen.Statement {
	if c.Nullable || c.GoType == "json.RawMessage" {
		return goTypeCode(c)
	}
	if !c.Required || c.GoType != "string" {
		cc := c
		cc.Nullable = true
		return goTypeCode(cc)
	}
	return goTypeCode(c)
}

// buildValidate emits the validation rule scaffold: one check per
// constraint tag derived from the registry (required, enum, length).
// Uniqueness and relations are enforced by the generated schema.
func buildValidate(f *jen.File, names naming, cols []column) {
	stmts := []jen.Code{
		jen.Id("errs").Op(":=").Map(jen.String()).String().Values(),
	}
	for _, c := range cols {
		if c.Readonly {
			continue
		}
		if c.Required {
			switch c.GoType {
			case "string":
				stmts = append(stmts, jen.If(
					jen.Qual("strings", "TrimSpace").Call(jen.Id("in").Dot(c.GoName)).Op("==").Lit(""),
				).Block(
					jen.Id("errs").Index(jen.Lit(c.Name)).Op("=").Lit("required"),
				))
			default:
				// Non-string required fields are bound as pointers, so a
				// missing key decodes to nil rather than a zero value.
				stmts = append(stmts, jen.If(
					jen.Id("in").Dot(c.GoName).Op("==").Nil(),
				).Block(
					jen.Id("errs").Index(jen.Lit(c.Name)).Op("=").Lit("required"),
				))
			}
		}
		if len(c.Enum) > 0 && c.GoType == "string" {
			allowed := make([]jen.Code, len(c.Enum))
			for i, v := range c.Enum {
				allowed[i] = jen.Lit(v)
			}
			val := jen.Id("in").Dot(c.GoName)
			if !c.Required {
				val = jen.Id("v")
				stmts = append(stmts, jen.If(jen.Id("in").Dot(c.GoName).Op("!=").Nil()).Block(
					jen.Id("v").Op(":=").Op("*").Id("in").Dot(c.GoName),
					enumCheck(c.Name, val, allowed),
				))
				continue
			}
			stmts = append(stmts, enumCheck(c.Name, val, allowed))
		}
		if c.Length != nil && c.GoType == "string" && c.Required {
			stmts = append(stmts, jen.If(
				jen.Len(jen.Id("in").Dot(c.GoName)).Op(">").Lit(*c.Length),
			).Block(
				jen.Id("errs").Index(jen.Lit(c.Name)).Op("=").Lit(fmt.Sprintf("must be at most %d characters", *c.Length)),
			))
		}
	}
	stmts = append(stmts, jen.Return(jen.Id("errs")))

	f.Commentf("validate%s checks an input against the registry's field rules.", names.Type)
	f.Func().Id("validate"+names.Type).Params(jen.Id("in").Id(names.Type+"Input")).Map(jen.String()).String().Block(stmts...)
}

func enumCheck(name string, val *jen.Statement, allowed []jen.Code) jen.Code {
	return jen.Switch(val).Block(
		jen.Case(allowed...),
		jen.Default().Block(
			jen.Id("errs").Index(jen.Lit(name)).Op("=").Lit("invalid value"),
		),
	)
}

func buildList(f *jen.File, names naming, cols []column, handlerName string) {
	selectCols := "id, " + columnNames(cols) + ", created_at, updated_at, deleted_at"
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		selectCols, names.Table,
	)

	f.Commentf("List serves GET /%s with pagination.", names.Table)
	f.Func().Params(jen.Id("h").Op("*").Id(handlerName)).Id("List").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("r").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.List(jen.Id("limit"), jen.Id("offset")).Op(":=").Id("pageParams").Call(jen.Id("r")),
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("h").Dot("db").Dot("Query").Call(jen.Lit(query), jen.Id("limit"), jen.Id("offset")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusInternalServerError"), jen.Lit("query failed")),
			jen.Return(),
		),
		jen.Defer().Id("rows").Dot("Close").Call(),
		jen.Id("items").Op(":=").Index().Qual("appforge/internal/models", names.Type).Values(),
		jen.For(jen.Id("rows").Dot("Next").Call()).Block(
			jen.Var().Id("item").Qual("appforge/internal/models", names.Type),
			jen.If(jen.Err().Op(":=").Id("rows").Dot("Scan").Call(scanArgs(cols)...).Op(";").Err().Op("!=").Nil()).Block(
				jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusInternalServerError"), jen.Lit("scan failed")),
				jen.Return(),
			),
			jen.Id("items").Op("=").Append(jen.Id("items"), jen.Id("item")),
		),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusOK"), jen.Id("items")),
	)
}

func buildCreate(f *jen.File, names naming, cols []column, handlerName, inputName string, binary bool) {
	assignable := assignableColumns(cols)
	placeholders := make([]string, len(assignable))
	for i := range assignable {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		names.Table, strings.Join(colNames(assignable), ", "), strings.Join(placeholders, ", "),
	)

	stmts := []jen.Code{
		jen.Var().Id("in").Id(inputName),
		jen.If(jen.Err().Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("r").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("in")).Op(";").Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusBadRequest"), jen.Lit("invalid JSON body")),
			jen.Return(),
		),
		jen.If(jen.Id("errs").Op(":=").Id("validate"+names.Type).Call(jen.Id("in")).Op(";").Len(jen.Id("errs")).Op(">").Lit(0)).Block(
			jen.Id("writeJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusUnprocessableEntity"), jen.Map(jen.String()).Any().Values(jen.Dict{
				jen.Lit("error"): jen.Map(jen.String()).Any().Values(jen.Dict{
					jen.Lit("message"): jen.Lit("validation failed"),
					jen.Lit("fields"):  jen.Id("errs"),
				}),
			})),
			jen.Return(),
		),
	}
	if binary {
		stmts = append(stmts,
			jen.Comment("Storage hook: persist uploads before the row insert so the"),
			jen.Comment("column receives the object key."),
			jen.If(jen.Err().Op(":=").Id("h").Dot("storeUploads").Call(jen.Id("r").Dot("Context").Call(), jen.Op("&").Id("in")).Op(";").Err().Op("!=").Nil()).Block(
				jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusInternalServerError"), jen.Lit("upload storage failed")),
				jen.Return(),
			),
		)
	}
	stmts = append(stmts,
		jen.Var().Id("id").Qual(uuidPkg, "UUID"),
		jen.If(jen.Err().Op(":=").Id("h").Dot("db").Dot("QueryRow").Call(insertArgs(query, assignable)...).Dot("Scan").Call(jen.Op("&").Id("id")).Op(";").Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusInternalServerError"), jen.Lit("insert failed")),
			jen.Return(),
		),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusCreated"), jen.Map(jen.String()).Any().Values(jen.Dict{jen.Lit("id"): jen.Id("id")})),
	)

	f.Commentf("Create serves POST /%s.", names.Table)
	f.Func().Params(jen.Id("h").Op("*").Id(handlerName)).Id("Create").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("r").Op("*").Qual("net/http", "Request"),
	).Block(stmts...)

	if binary {
		f.Comment("storeUploads resolves inline upload payloads into object keys.")
		f.Func().Params(jen.Id("h").Op("*").Id(handlerName)).Id("storeUploads").Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("in").Op("*").Id(inputName),
		).Error().Block(
			jen.Comment("Wire the upload fields to h.storage.Store as the application requires."),
			jen.Return(jen.Nil()),
		)
	}
}

func buildGet(f *jen.File, names naming, cols []column, handlerName string) {
	selectCols := "id, " + columnNames(cols) + ", created_at, updated_at, deleted_at"
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectCols, names.Table)

	f.Commentf("Get serves GET /%s/{id}.", names.Table)
	f.Func().Params(jen.Id("h").Op("*").Id(handlerName)).Id("Get").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("r").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Qual(uuidPkg, "Parse").Call(jen.Qual(chiPkg, "URLParam").Call(jen.Id("r"), jen.Lit("id"))),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusBadRequest"), jen.Lit("invalid id")),
			jen.Return(),
		),
		jen.Var().Id("item").Qual("appforge/internal/models", names.Type),
		jen.Err().Op("=").Id("h").Dot("db").Dot("QueryRow").Call(jen.Lit(query), jen.Id("id")).Dot("Scan").Call(scanArgs(cols)...),
		jen.If(jen.Err().Op("==").Qual("database/sql", "ErrNoRows")).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusNotFound"), jen.Lit(names.Singular+" not found")),
			jen.Return(),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusInternalServerError"), jen.Lit("query failed")),
			jen.Return(),
		),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusOK"), jen.Id("item")),
	)
}

func buildUpdate(f *jen.File, names naming, cols []column, handlerName, inputName string) {
	assignable := assignableColumns(cols)
	sets := make([]string, len(assignable))
	for i, c := range assignable {
		sets[i] = fmt.Sprintf("%s = $%d", c.Name, i+1)
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d AND deleted_at IS NULL",
		names.Table, strings.Join(sets, ", "), len(assignable)+1,
	)

	f.Commentf("Update serves PUT /%s/{id}.", names.Table)
	f.Func().Params(jen.Id("h").Op("*").Id(handlerName)).Id("Update").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("r").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Qual(uuidPkg, "Parse").Call(jen.Qual(chiPkg, "URLParam").Call(jen.Id("r"), jen.Lit("id"))),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusBadRequest"), jen.Lit("invalid id")),
			jen.Return(),
		),
		jen.Var().Id("in").Id(inputName),
		jen.If(jen.Err().Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("r").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("in")).Op(";").Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusBadRequest"), jen.Lit("invalid JSON body")),
			jen.Return(),
		),
		jen.If(jen.Id("errs").Op(":=").Id("validate"+names.Type).Call(jen.Id("in")).Op(";").Len(jen.Id("errs")).Op(">").Lit(0)).Block(
			jen.Id("writeJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusUnprocessableEntity"), jen.Map(jen.String()).Any().Values(jen.Dict{
				jen.Lit("error"): jen.Map(jen.String()).Any().Values(jen.Dict{
					jen.Lit("message"): jen.Lit("validation failed"),
					jen.Lit("fields"):  jen.Id("errs"),
				}),
			})),
			jen.Return(),
		),
		jen.List(jen.Id("res"), jen.Err()).Op(":=").Id("h").Dot("db").Dot("Exec").Call(append([]jen.Code{jen.Lit(query)}, updateArgValues(assignable)...)...),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusInternalServerError"), jen.Lit("update failed")),
			jen.Return(),
		),
		jen.If(jen.List(jen.Id("n"), jen.Id("_")).Op(":=").Id("res").Dot("RowsAffected").Call().Op(";").Id("n").Op("==").Lit(0)).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusNotFound"), jen.Lit(names.Singular+" not found")),
			jen.Return(),
		),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusOK"), jen.Map(jen.String()).Any().Values(jen.Dict{jen.Lit("updated"): jen.True()})),
	)
}

func buildDelete(f *jen.File, names naming, handlerName string) {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", names.Table)

	f.Commentf("Delete serves DELETE /%s/{id} (soft delete).", names.Table)
	f.Func().Params(jen.Id("h").Op("*").Id(handlerName)).Id("Delete").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("r").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Qual(uuidPkg, "Parse").Call(jen.Qual(chiPkg, "URLParam").Call(jen.Id("r"), jen.Lit("id"))),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusBadRequest"), jen.Lit("invalid id")),
			jen.Return(),
		),
		jen.If(jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("h").Dot("db").Dot("Exec").Call(jen.Lit(query), jen.Id("id")).Op(";").Err().Op("!=").Nil()).Block(
			jen.Id("errorJSON").Call(jen.Id("w"), jen.Qual("net/http", "StatusInternalServerError"), jen.Lit("delete failed")),
			jen.Return(),
		),
		jen.Id("w").Dot("WriteHeader").Call(jen.Qual("net/http", "StatusNoContent")),
	)
}

// --- small helpers shared by the handler builders ---

func assignableColumns(cols []column) []column {
	out := make([]column, 0, len(cols))
	for _, c := range cols {
		if !c.Readonly {
			out = append(out, c)
		}
	}
	return out
}

func colNames(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func columnNames(cols []column) string {
	return strings.Join(colNames(cols), ", ")
}

// scanArgs builds &item.Field pointers for id + columns + timestamps.
func scanArgs(cols []column) []jen.Code {
	args := []jen.Code{jen.Op("&").Id("item").Dot("ID")}
	for _, c := range cols {
		args = append(args, jen.Op("&").Id("item").Dot(c.GoName))
	}
	args = append(args,
		jen.Op("&").Id("item").Dot("CreatedAt"),
		jen.Op("&").Id("item").Dot("UpdatedAt"),
		jen.Op("&").Id("item").Dot("DeletedAt"),
	)
	return args
}

// insertArgs builds the query literal followed by the input field values.
func insertArgs(query string, cols []column) []jen.Code {
	args := []jen.Code{jen.Lit(query)}
	for _, c := range cols {
		args = append(args, jen.Id("in").Dot(c.GoName))
	}
	return args
}

// updateArgValues builds the input field values followed by the row id.
func updateArgValues(cols []column) []jen.Code {
	args := make([]jen.Code, 0, len(cols)+1)
	for _, c := range cols {
		args = append(args, jen.Id("in").Dot(c.GoName))
	}
	args = append(args, jen.Id("id"))
	return args
}
