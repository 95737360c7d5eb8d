// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"fmt"
	"html"
	"strings"

	"appforge/internal/models"
)

// listColumn is one rendered column of the list view, resolved either
// from the entry's table layout or from the visible field specs.
type listColumn struct {
	Header   string
	Width    string
	Contents []models.ColumnContent
}

// resolveListColumns prefers the configured table layout; entries without
// one get a text column per visible field.
func resolveListColumns(entry *models.SchemaEntry, cols []column) []listColumn {
	if entry.Table != nil && len(entry.Table.Columns) > 0 {
		out := make([]listColumn, 0, len(entry.Table.Columns))
		for _, tc := range entry.Table.Columns {
			out = append(out, listColumn{
				Header:   tc.HeaderEN,
				Width:    tc.Width,
				Contents: tc.Contents,
			})
		}
		return out
	}
	out := make([]listColumn, 0, len(cols))
	for _, c := range cols {
		if c.Hidden {
			continue
		}
		out = append(out, listColumn{
			Header: c.Label,
			Contents: []models.ColumnContent{
				{FieldName: c.Name, RenderType: models.RenderTypeText},
			},
		})
	}
	return out
}

// buildListView emits the list page scaffold: a filter bar, the table
// body driven by the resolved columns and a pagination footer.
func buildListView(entry *models.SchemaEntry, names naming, cols []column) string {
	var b strings.Builder
	listCols := resolveListColumns(entry, cols)

	fmt.Fprintf(&b, "{{/* %s */}}\n", generatedHeader)
	fmt.Fprintf(&b, "{{define \"%s-list\"}}\n", names.Table)
	fmt.Fprintf(&b, "<section class=\"entity-list\" data-entity=\"%s\">\n", names.Table)
	fmt.Fprintf(&b, "  <h1>%s</h1>\n", html.EscapeString(entry.TitleEN))

	b.WriteString("  <form method=\"get\" class=\"list-filter\">\n")
	b.WriteString("    <input type=\"search\" name=\"q\" value=\"{{.Query}}\" placeholder=\"Search\">\n")
	b.WriteString("    <button type=\"submit\">Filter</button>\n")
	fmt.Fprintf(&b, "    <a class=\"button primary\" href=\"/%s/new\">New %s</a>\n", names.Table, html.EscapeString(entry.TitleEN))
	b.WriteString("  </form>\n")

	tableClass := "data-table"
	showActions := true
	actionsAtStart := false
	if entry.Table != nil {
		if entry.Table.Striped {
			tableClass += " striped"
		}
		if entry.Table.Bordered {
			tableClass += " bordered"
		}
		if entry.Table.RowDensity != "" {
			tableClass += " density-" + entry.Table.RowDensity
		}
		showActions = entry.Table.ShowActions
		actionsAtStart = entry.Table.ActionPosition == "start"
	}

	fmt.Fprintf(&b, "  <table class=\"%s\">\n", tableClass)
	b.WriteString("    <thead>\n      <tr>\n")
	if showActions && actionsAtStart {
		b.WriteString("        <th class=\"actions\"></th>\n")
	}
	for _, lc := range listCols {
		if lc.Width != "" {
			fmt.Fprintf(&b, "        <th style=\"width: %s\">%s</th>\n", html.EscapeString(lc.Width), html.EscapeString(lc.Header))
		} else {
			fmt.Fprintf(&b, "        <th>%s</th>\n", html.EscapeString(lc.Header))
		}
	}
	if showActions && !actionsAtStart {
		b.WriteString("        <th class=\"actions\"></th>\n")
	}
	b.WriteString("      </tr>\n    </thead>\n")

	b.WriteString("    <tbody>\n      {{range .Items}}\n      <tr>\n")
	if showActions && actionsAtStart {
		writeActionsCell(&b, names)
	}
	for _, lc := range listCols {
		b.WriteString("        <td>\n")
		for _, cc := range lc.Contents {
			writeCellContent(&b, cc)
		}
		b.WriteString("        </td>\n")
	}
	if showActions && !actionsAtStart {
		writeActionsCell(&b, names)
	}
	b.WriteString("      </tr>\n      {{end}}\n    </tbody>\n  </table>\n")

	b.WriteString("  <nav class=\"pagination\">\n")
	b.WriteString("    {{if .HasPrev}}<a href=\"?page={{.PrevPage}}&q={{.Query}}\">&laquo; Previous</a>{{end}}\n")
	b.WriteString("    <span>Page {{.Page}}</span>\n")
	b.WriteString("    {{if .HasNext}}<a href=\"?page={{.NextPage}}&q={{.Query}}\">Next &raquo;</a>{{end}}\n")
	b.WriteString("  </nav>\n")
	b.WriteString("</section>\n{{end}}\n")
	return b.String()
}

func writeActionsCell(b *strings.Builder, names naming) {
	fmt.Fprintf(b, "        <td class=\"actions\">\n")
	fmt.Fprintf(b, "          <a href=\"/%s/{{.ID}}/edit\">Edit</a>\n", names.Table)
	fmt.Fprintf(b, "          <form method=\"post\" action=\"/%s/{{.ID}}/delete\"><button type=\"submit\">Delete</button></form>\n", names.Table)
	fmt.Fprintf(b, "        </td>\n")
}

// writeCellContent renders one field of a table cell according to its
// configured render type.
func writeCellContent(b *strings.Builder, cc models.ColumnContent) {
	ref := "{{." + fieldRef(cc.FieldName) + "}}"
	switch cc.RenderType {
	case models.RenderTypeImage:
		fmt.Fprintf(b, "          <img src=\"%s\" alt=\"%s\" class=\"cell-image\">\n", ref, html.EscapeString(cc.FieldName))
	case models.RenderTypeBadge:
		badge := "badge"
		if len(cc.BadgeRules) > 0 {
			badge += " badge-{{" + fieldRef(cc.FieldName) + "}}"
		}
		fmt.Fprintf(b, "          <span class=\"%s\">%s</span>\n", badge, ref)
	case models.RenderTypeIcon:
		fmt.Fprintf(b, "          <i class=\"icon icon-%s\"></i>\n", ref)
	default:
		fmt.Fprintf(b, "          <span>%s</span>\n", ref)
	}
}

// fieldRef maps a snake_case column name onto the generated model's
// exported field name.
func fieldRef(columnName string) string {
	parts := strings.Split(columnName, "_")
	for i, p := range parts {
		if p == "id" {
			parts[i] = "ID"
			continue
		}
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// buildFormView emits the create/edit form scaffold: one fieldset per
// field category, one widget per visible writable field.
func buildFormView(entry *models.SchemaEntry, names naming, cols []column) string {
	var b strings.Builder

	fmt.Fprintf(&b, "{{/* %s */}}\n", generatedHeader)
	fmt.Fprintf(&b, "{{define \"%s-form\"}}\n", names.Table)
	fmt.Fprintf(&b, "<section class=\"entity-form\" data-entity=\"%s\">\n", names.Table)
	fmt.Fprintf(&b, "  <h1>{{if .Item.ID}}Edit{{else}}New{{end}} %s</h1>\n", html.EscapeString(entry.TitleEN))
	fmt.Fprintf(&b, "  <form method=\"post\" action=\"{{.Action}}\"%s>\n", formEnctype(cols))

	byColumn := make(map[string]column, len(cols))
	for _, c := range cols {
		byColumn[c.Name] = c
	}
	for _, cat := range entry.Categories {
		fields := visibleFields(cat.Fields, byColumn)
		if len(fields) == 0 {
			continue
		}
		b.WriteString("    <fieldset>\n")
		fmt.Fprintf(&b, "      <legend>%s</legend>\n", html.EscapeString(cat.NameEN))
		for _, c := range fields {
			writeFormField(&b, c)
		}
		b.WriteString("    </fieldset>\n")
	}

	b.WriteString("    <div class=\"form-actions\">\n")
	b.WriteString("      <button type=\"submit\">Save</button>\n")
	fmt.Fprintf(&b, "      <a href=\"/%s\">Cancel</a>\n", names.Table)
	b.WriteString("    </div>\n")
	b.WriteString("  </form>\n</section>\n{{end}}\n")
	return b.String()
}

func formEnctype(cols []column) string {
	if hasBinary(cols) {
		return " enctype=\"multipart/form-data\""
	}
	return ""
}

func visibleFields(fields []models.FieldSpec, byColumn map[string]column) []column {
	out := make([]column, 0, len(fields))
	for _, f := range fields {
		c, ok := byColumn[f.ColumnName]
		if !ok || c.Readonly {
			continue
		}
		if c.Hidden && c.InputType != models.InputTypeHidden {
			continue
		}
		out = append(out, c)
	}
	return out
}

// writeFormField emits the widget for one field spec: label, input
// element per the declared input type, placeholder and default value.
func writeFormField(b *strings.Builder, c column) {
	value := "{{." + "Item." + fieldRef(c.Name) + "}}"
	required := ""
	if c.Required {
		required = " required"
	}

	if c.InputType == models.InputTypeHidden {
		fmt.Fprintf(b, "      <input type=\"hidden\" name=\"%s\" value=\"%s\">\n", c.Name, value)
		return
	}

	fmt.Fprintf(b, "      <div class=\"form-field\">\n")
	fmt.Fprintf(b, "        <label for=\"%s\">%s</label>\n", c.Name, html.EscapeString(c.Label))

	switch c.InputType {
	case models.InputTypeTextarea:
		fmt.Fprintf(b, "        <textarea id=\"%s\" name=\"%s\"%s%s>%s</textarea>\n",
			c.Name, c.Name, placeholderAttr(c), required, value)
	case models.InputTypeSelect:
		fmt.Fprintf(b, "        <select id=\"%s\" name=\"%s\"%s>\n", c.Name, c.Name, required)
		if !c.Required {
			b.WriteString("          <option value=\"\"></option>\n")
		}
		for _, opt := range c.Enum {
			fmt.Fprintf(b, "          <option value=\"%s\" {{if eq .Item.%s \"%s\"}}selected{{end}}>%s</option>\n",
				html.EscapeString(opt), fieldRef(c.Name), html.EscapeString(opt), html.EscapeString(opt))
		}
		b.WriteString("        </select>\n")
	case models.InputTypeRadio:
		for _, opt := range c.Enum {
			fmt.Fprintf(b, "        <label class=\"radio\"><input type=\"radio\" name=\"%s\" value=\"%s\" {{if eq .Item.%s \"%s\"}}checked{{end}}> %s</label>\n",
				c.Name, html.EscapeString(opt), fieldRef(c.Name), html.EscapeString(opt), html.EscapeString(opt))
		}
	case models.InputTypeCheckboxGroup:
		for _, opt := range c.Enum {
			fmt.Fprintf(b, "        <label class=\"checkbox\"><input type=\"checkbox\" name=\"%s\" value=\"%s\"> %s</label>\n",
				c.Name, html.EscapeString(opt), html.EscapeString(opt))
		}
	case models.InputTypeCheckbox:
		fmt.Fprintf(b, "        <input type=\"checkbox\" id=\"%s\" name=\"%s\" {{if .Item.%s}}checked{{end}}>\n",
			c.Name, c.Name, fieldRef(c.Name))
	case models.InputTypeNumber:
		fmt.Fprintf(b, "        <input type=\"number\" id=\"%s\" name=\"%s\" value=\"%s\"%s%s%s>\n",
			c.Name, c.Name, value, placeholderAttr(c), stepAttr(c), required)
	case models.InputTypeDate:
		fmt.Fprintf(b, "        <input type=\"date\" id=\"%s\" name=\"%s\" value=\"%s\"%s>\n",
			c.Name, c.Name, value, required)
	case models.InputTypeDatetime:
		fmt.Fprintf(b, "        <input type=\"datetime-local\" id=\"%s\" name=\"%s\" value=\"%s\"%s>\n",
			c.Name, c.Name, value, required)
	case models.InputTypeFile, models.InputTypeImage:
		accept := ""
		if c.InputType == models.InputTypeImage {
			accept = " accept=\"image/*\""
		}
		fmt.Fprintf(b, "        <input type=\"file\" id=\"%s\" name=\"%s\"%s%s>\n",
			c.Name, c.Name, accept, required)
	case models.InputTypeColor:
		fmt.Fprintf(b, "        <input type=\"color\" id=\"%s\" name=\"%s\" value=\"%s\">\n",
			c.Name, c.Name, value)
	default:
		attrs := placeholderAttr(c)
		if c.Length != nil {
			attrs += fmt.Sprintf(" maxlength=\"%d\"", *c.Length)
		}
		if c.Default != nil {
			attrs += fmt.Sprintf(" data-default=\"%s\"", html.EscapeString(*c.Default))
		}
		fmt.Fprintf(b, "        <input type=\"text\" id=\"%s\" name=\"%s\" value=\"%s\"%s%s>\n",
			c.Name, c.Name, value, attrs, required)
	}
	b.WriteString("      </div>\n")
}

func placeholderAttr(c column) string {
	if c.Placeholder == "" {
		return ""
	}
	return fmt.Sprintf(" placeholder=\"%s\"", html.EscapeString(c.Placeholder))
}

func stepAttr(c column) string {
	if c.GoType == "float64" {
		return " step=\"0.01\""
	}
	return ""
}
