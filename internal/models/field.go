// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Primitive data types a field spec may declare.
const (
	DataTypeString   = "string"
	DataTypeText     = "text"
	DataTypeInteger  = "integer"
	DataTypeBigint   = "bigint"
	DataTypeDecimal  = "decimal"
	DataTypeBoolean  = "boolean"
	DataTypeDate     = "date"
	DataTypeDatetime = "datetime"
	DataTypeJSON     = "json"
	DataTypeFile     = "file"
	DataTypeImage    = "image"
)

// Input widget types for generated forms.
const (
	InputTypeText          = "text"
	InputTypeTextarea      = "textarea"
	InputTypeNumber        = "number"
	InputTypeSelect        = "select"
	InputTypeRadio         = "radio"
	InputTypeCheckbox      = "checkbox"
	InputTypeCheckboxGroup = "checkbox_group"
	InputTypeDate          = "date"
	InputTypeDatetime      = "datetime"
	InputTypeFile          = "file"
	InputTypeImage         = "image"
	InputTypeColor         = "color"
	InputTypeHidden        = "hidden"
)

var dataTypes = map[string]bool{
	DataTypeString: true, DataTypeText: true, DataTypeInteger: true,
	DataTypeBigint: true, DataTypeDecimal: true, DataTypeBoolean: true,
	DataTypeDate: true, DataTypeDatetime: true, DataTypeJSON: true,
	DataTypeFile: true, DataTypeImage: true,
}

var inputTypes = map[string]bool{
	InputTypeText: true, InputTypeTextarea: true, InputTypeNumber: true,
	InputTypeSelect: true, InputTypeRadio: true, InputTypeCheckbox: true,
	InputTypeCheckboxGroup: true, InputTypeDate: true, InputTypeDatetime: true,
	InputTypeFile: true, InputTypeImage: true, InputTypeColor: true,
	InputTypeHidden: true,
}

// ValidDataType reports whether t is a known primitive data type.
func ValidDataType(t string) bool { return dataTypes[t] }

// ValidInputType reports whether t is a known input widget type.
func ValidInputType(t string) bool { return inputTypes[t] }

// ClosedChoiceInput reports whether the widget restricts input to a fixed
// option list. Field specs using one must declare EnumOptions.
func ClosedChoiceInput(t string) bool {
	return t == InputTypeSelect || t == InputTypeRadio || t == InputTypeCheckboxGroup
}

// BinaryDataType reports whether the data type stores an uploaded file.
// Generated handlers for entries containing one get a storage hook.
func BinaryDataType(t string) bool {
	return t == DataTypeFile || t == DataTypeImage
}

// Relation holds the foreign-key descriptor of a field spec. Either all
// three values are present or the field has no relation.
type Relation struct {
	Type          string `json:"type"`
	RelatedTable  string `json:"related_table"`
	RelatedColumn string `json:"related_column"`
}

// FieldSpec describes one column of a generatable entity: its storage
// type, validation flags and form widget.
type FieldSpec struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`

	ColumnName       string `json:"column_name"`
	LabelEN          string `json:"label_en"`
	LabelLocal       string `json:"label_local"`
	PlaceholderEN    string `json:"placeholder_en"`
	PlaceholderLocal string `json:"placeholder_local"`

	DataType  string `json:"data_type"`
	Length    *int   `json:"length,omitempty"`
	InputType string `json:"input_type"`

	EnumOptions []string `json:"enum_options,omitempty"`

	Required bool `json:"required"`
	Nullable bool `json:"nullable"`
	Unique   bool `json:"unique"`
	Readonly bool `json:"readonly"`
	Hidden   bool `json:"hidden"`

	Align        string  `json:"align"`
	DefaultValue *string `json:"default_value,omitempty"`
	SortOrder    int     `json:"sort_order"`

	Relation *Relation `json:"relation,omitempty"`
}
