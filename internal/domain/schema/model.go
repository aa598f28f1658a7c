package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the semantic type of a record field.
type Kind string

const (
	KindText     Kind = "text"
	KindLongText Kind = "longtext"
	KindEnum     Kind = "enum"
	KindScore    Kind = "score"
	KindTagSet   Kind = "tagset"
)

// IDField is the reserved name of the identity column.
const IDField = "id"

// TagDelimiter joins tag sets into a single cell. Tags may never contain it.
const TagDelimiter = ";"

// Field describes one named column of a record schema.
type Field struct {
	Name    string   `json:"name" yaml:"name"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Kind    Kind     `json:"kind" yaml:"kind"`
	Values  []string `json:"values,omitempty" yaml:"values,omitempty"`
	Min     float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max     float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
}

// Header returns the human-readable column name.
func (f Field) Header() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// TextLike reports whether the field holds a plain string.
func (f Field) TextLike() bool {
	switch f.Kind {
	case KindText, KindLongText, KindEnum:
		return true
	}
	return false
}

// Schema is the tagged shape shared by every record in a store.
type Schema struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	IDPrefix    string   `json:"id_prefix" yaml:"id_prefix"`
	IDLabel     string   `json:"id_label,omitempty" yaml:"id_label,omitempty"`
	Fields      []Field  `json:"fields" yaml:"fields"`
	Searchable  []string `json:"searchable,omitempty" yaml:"searchable,omitempty"`
}

// IDColumn returns the pseudo-field describing record ids.
func (s *Schema) IDColumn() Field {
	return Field{Name: IDField, Label: s.IDLabel, Kind: KindText}
}

// Lookup resolves a field by name, including the id column.
func (s *Schema) Lookup(name string) (Field, error) {
	if name == IDField {
		return s.IDColumn(), nil
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w: %s", ErrInvalidField, name)
}

// Names returns the id column followed by every field in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Fields)+1)
	names = append(names, IDField)
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Headers maps field names to their CSV header labels.
func (s *Schema) Headers(fieldOrder []string) ([]string, error) {
	headers := make([]string, len(fieldOrder))
	for i, name := range fieldOrder {
		f, err := s.Lookup(name)
		if err != nil {
			return nil, err
		}
		headers[i] = f.Header()
	}
	return headers, nil
}

// DefaultValue returns the value used for a field missing from a new record.
func (s *Schema) DefaultValue(f Field) Value {
	switch f.Kind {
	case KindScore:
		if f.Default != "" {
			if v, err := strconv.ParseFloat(f.Default, 64); err == nil {
				return Number(v)
			}
		}
		return Number(f.Min)
	case KindTagSet:
		if f.Default == "" {
			return Tags()
		}
		return Tags(strings.Split(f.Default, TagDelimiter)...)
	case KindEnum:
		if f.Default == "" && len(f.Values) > 0 {
			return String(f.Values[0])
		}
		return String(f.Default)
	default:
		return String(f.Default)
	}
}

// IsSearchable reports whether free-text search covers the named field.
func (s *Schema) IsSearchable(name string) bool {
	return slices.Contains(s.Searchable, name)
}
