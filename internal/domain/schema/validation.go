package schema

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// ValidateValue checks a value against its field declaration.
func (s *Schema) ValidateValue(f Field, v Value) error {
	invalid := func(format string, args ...any) error {
		return &ValidationError{Field: f.Name, Reason: fmt.Sprintf(format, args...)}
	}

	switch f.Kind {
	case KindText, KindLongText:
		if v.Kind() != ValueString {
			return invalid("expected text, got %s", v.Kind())
		}
		if strings.ContainsRune(v.Str(), '\r') {
			return invalid("carriage returns are not allowed")
		}
		if f.Name == IDField && strings.ContainsAny(v.Str(), "\n") {
			return invalid("id cannot span lines")
		}
		if f.Name == IDField && strings.TrimSpace(v.Str()) == "" {
			return invalid("id is required")
		}
	case KindEnum:
		if v.Kind() != ValueString {
			return invalid("expected one of %s, got %s", strings.Join(f.Values, ", "), v.Kind())
		}
		if !slices.Contains(f.Values, v.Str()) {
			return invalid("%q is not one of %s", v.Str(), strings.Join(f.Values, ", "))
		}
	case KindScore:
		if v.Kind() != ValueNumber {
			return invalid("expected number, got %s", v.Kind())
		}
		n := v.Num()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return invalid("score must be finite")
		}
		if n < f.Min || n > f.Max {
			return invalid("%v is outside [%v, %v]", n, f.Min, f.Max)
		}
	case KindTagSet:
		if v.Kind() != ValueTags {
			return invalid("expected tag list, got %s", v.Kind())
		}
		for _, tag := range v.tags {
			if strings.TrimSpace(tag) == "" {
				return invalid("tags cannot be empty")
			}
			if strings.Contains(tag, TagDelimiter) || strings.ContainsAny(tag, "\r\n") {
				return invalid("tag %q contains a reserved character", tag)
			}
		}
	default:
		return invalid("unsupported field kind %q", f.Kind)
	}
	return nil
}

// Validate checks the schema definition itself.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSchema)
	}
	if strings.TrimSpace(s.IDPrefix) == "" || strings.ContainsAny(s.IDPrefix, ",\"\n\r") {
		return fmt.Errorf("%w: %s: id_prefix is required and must be plain text", ErrInvalidSchema, s.Name)
	}

	seen := map[string]bool{IDField: true}
	for _, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: %s: field name is required", ErrInvalidSchema, s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s: duplicate field %q", ErrInvalidSchema, s.Name, f.Name)
		}
		seen[f.Name] = true

		switch f.Kind {
		case KindText, KindLongText, KindTagSet:
		case KindEnum:
			if len(f.Values) == 0 {
				return fmt.Errorf("%w: %s: enum field %q has no values", ErrInvalidSchema, s.Name, f.Name)
			}
		case KindScore:
			if f.Min > f.Max {
				return fmt.Errorf("%w: %s: score field %q has min > max", ErrInvalidSchema, s.Name, f.Name)
			}
		default:
			return fmt.Errorf("%w: %s: field %q has unknown kind %q", ErrInvalidSchema, s.Name, f.Name, f.Kind)
		}

		if err := s.ValidateValue(f, s.DefaultValue(f)); err != nil {
			return fmt.Errorf("%w: %s: default: %v", ErrInvalidSchema, s.Name, err)
		}
	}

	for _, name := range s.Searchable {
		f, err := s.Lookup(name)
		if err != nil {
			return fmt.Errorf("%w: %s: searchable: %v", ErrInvalidSchema, s.Name, err)
		}
		if !f.TextLike() && f.Kind != KindTagSet {
			return fmt.Errorf("%w: %s: field %q is not searchable text", ErrInvalidSchema, s.Name, name)
		}
	}
	return nil
}
