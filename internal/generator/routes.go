// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"
)

// buildRoutes emits the route registration file mounting the generated
// handler under its table-named path.
func buildRoutes(names naming) (string, error) {
	f := jen.NewFile("router")
	f.HeaderComment(generatedHeader)

	f.Commentf("Register%sRoutes mounts the %s endpoints on r.", names.Type, names.Table)
	f.Func().Id("Register"+names.Type+"Routes").Params(
		jen.Id("r").Qual(chiPkg, "Router"),
		jen.Id("h").Op("*").Qual("appforge/internal/handlers", names.Type+"Handler"),
	).Block(
		jen.Id("r").Dot("Route").Call(jen.Lit("/"+names.Table), jen.Func().Params(jen.Id("r").Qual(chiPkg, "Router")).Block(
			jen.Id("r").Dot("Get").Call(jen.Lit("/"), jen.Id("h").Dot("List")),
			jen.Id("r").Dot("Post").Call(jen.Lit("/"), jen.Id("h").Dot("Create")),
			jen.Id("r").Dot("Get").Call(jen.Lit("/{id}"), jen.Id("h").Dot("Get")),
			jen.Id("r").Dot("Put").Call(jen.Lit("/{id}"), jen.Id("h").Dot("Update")),
			jen.Id("r").Dot("Delete").Call(jen.Lit("/{id}"), jen.Id("h").Dot("Delete")),
		)),
	)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("render routes: %w", err)
	}
	return buf.String(), nil
}
