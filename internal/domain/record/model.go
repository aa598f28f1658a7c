package record

import (
	"maps"

	"github.com/ganot/interview-etl/internal/domain/schema"
)

// Record is one structured row of extracted data, such as a user story or requirement.
type Record struct {
	ID     string                  `json:"id"`
	Fields map[string]schema.Value `json:"fields"`
}

// Patch names the fields to replace on an existing record.
type Patch map[string]schema.Value

// Get returns the named value. The id column is exposed as a string value.
func (r Record) Get(name string) (schema.Value, bool) {
	if name == schema.IDField {
		return schema.String(r.ID), true
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := Record{ID: r.ID, Fields: make(map[string]schema.Value, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = v.Clone()
	}
	return out
}

// Equal compares ids and every field by content.
func (r Record) Equal(o Record) bool {
	if r.ID != o.ID {
		return false
	}
	return maps.EqualFunc(r.Fields, o.Fields, schema.Value.Equal)
}

// IDs lists record ids in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}
