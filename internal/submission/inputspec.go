package submission

import (
	"fmt"
	"strings"
)

type InputType string

// Declaration order doubles as the deterministic order input rows are
// written to the catalog in.
const (
	TypeBool        InputType = "bool"
	TypeInt         InputType = "int"
	TypeFloat       InputType = "float"
	TypeCategorical InputType = "categorical"
	TypeMap         InputType = "map"
)

const (
	MaxColumnNameLen  = 64
	MaxLabelLen       = 128
	MaxDescriptionLen = 200
	MaxUnitLen        = 64
)

func AllowedTypes() []InputType {
	return []InputType{TypeBool, TypeInt, TypeFloat, TypeCategorical, TypeMap}
}

// TypeRank gives the position of t in the documented type order, or -1
// for unknown types.
func TypeRank(t InputType) int {
	for i, allowed := range AllowedTypes() {
		if t == allowed {
			return i
		}
	}

	return -1
}

// InputSpec declares one field a caller must supply to obtain a
// prediction. ColumnName names the feature column for every type except
// map, which instead names its latitude and longitude columns.
type InputSpec struct {
	ColumnName  string    `json:"column_name"`
	Lat         *string   `json:"lat"`
	Lng         *string   `json:"lng"`
	Label       string    `json:"label"`
	Type        InputType `json:"type"`
	Options     []string  `json:"options"`
	Description *string   `json:"description"`
	Unit        *string   `json:"unit"`
}

// NewInputSpec validates the declaration and returns it. The rules run
// in a fixed order so error messages are deterministic; the first
// failure wins.
func NewInputSpec(spec InputSpec) (*InputSpec, error) {
	if len(spec.ColumnName) > MaxColumnNameLen {
		return nil, &ValidationError{
			Field:  "column_name",
			Reason: fmt.Sprintf("cannot be longer than %d characters", MaxColumnNameLen),
		}
	}

	if len(spec.Label) > MaxLabelLen {
		return nil, &ValidationError{
			Field:  "label",
			Reason: fmt.Sprintf("cannot be longer than %d characters", MaxLabelLen),
		}
	}

	if TypeRank(spec.Type) < 0 {
		return nil, &ValidationError{
			Field:  "type",
			Reason: fmt.Sprintf("must be one of the following: %s", joinTypes(AllowedTypes())),
		}
	}

	if spec.Type == TypeCategorical && len(spec.Options) < 2 {
		return nil, &ValidationError{
			Field:  "options",
			Reason: "categorical variables require at least 2 options to be defined",
		}
	}

	if spec.Type == TypeMap {
		if spec.Lat == nil || *spec.Lat == "" {
			return nil, &ValidationError{Field: "lat", Reason: "map inputs require a latitude column"}
		}
		if spec.Lng == nil || *spec.Lng == "" {
			return nil, &ValidationError{Field: "lng", Reason: "map inputs require a longitude column"}
		}
	} else if spec.ColumnName == "" {
		return nil, &ValidationError{Field: "column_name", Reason: "is required"}
	}

	if spec.Description != nil && len(*spec.Description) > MaxDescriptionLen {
		return nil, &ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("cannot be longer than %d characters", MaxDescriptionLen),
		}
	}

	if spec.Unit != nil && len(*spec.Unit) > MaxUnitLen {
		return nil, &ValidationError{
			Field:  "unit",
			Reason: fmt.Sprintf("cannot be longer than %d characters", MaxUnitLen),
		}
	}

	return &spec, nil
}

func joinTypes(types []InputType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	return strings.Join(names, ", ")
}
