package record

import (
	"fmt"

	"github.com/ganot/interview-etl/internal/domain/schema"
)

// normalize validates a full record and fills missing fields from schema defaults.
// The input is never modified.
func normalize(s *schema.Schema, rec Record) (Record, error) {
	if err := s.ValidateValue(s.IDColumn(), schema.String(rec.ID)); err != nil {
		return Record{}, err
	}

	out := Record{ID: rec.ID, Fields: make(map[string]schema.Value, len(s.Fields))}
	for name := range rec.Fields {
		if name == schema.IDField {
			return Record{}, &schema.ValidationError{Field: name, Reason: "id must be set on the record, not as a field"}
		}
		if _, err := s.Lookup(name); err != nil {
			return Record{}, &schema.ValidationError{Field: name, Reason: "field is not declared by schema " + s.Name}
		}
	}

	for _, f := range s.Fields {
		v, ok := rec.Fields[f.Name]
		if !ok {
			v = s.DefaultValue(f)
		}
		if err := s.ValidateValue(f, v); err != nil {
			return Record{}, err
		}
		out.Fields[f.Name] = v.Clone()
	}
	return out, nil
}

// validatePatch checks every patched field before anything is applied.
func validatePatch(s *schema.Schema, patch Patch) error {
	for name, v := range patch {
		if name == schema.IDField {
			return &schema.ValidationError{Field: name, Reason: "id is immutable"}
		}
		f, err := s.Lookup(name)
		if err != nil {
			return &schema.ValidationError{Field: name, Reason: fmt.Sprintf("field is not declared by schema %s", s.Name)}
		}
		if err := s.ValidateValue(f, v); err != nil {
			return err
		}
	}
	return nil
}
