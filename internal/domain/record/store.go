package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ganot/interview-etl/internal/domain/schema"
)

// Store is the ordered, in-memory source of truth for one table.
// It is owned by a single session and is not safe for concurrent use.
type Store struct {
	schema  *schema.Schema
	records []Record
	index   map[string]int
	// highest numeric suffix seen or issued per id prefix; ids are never reissued
	issued map[string]int
}

// NewStore creates a store for the schema, populated by the seed.
func NewStore(s *schema.Schema, seed Seed) (*Store, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", schema.ErrInvalidSchema)
	}
	st := &Store{
		schema: s,
		index:  make(map[string]int),
		issued: make(map[string]int),
	}
	if seed == nil {
		return st, nil
	}

	records, err := seed.Records(s)
	if err != nil {
		return nil, fmt.Errorf("seeding store: %w", err)
	}
	if err := st.ReplaceAll(records); err != nil {
		return nil, fmt.Errorf("seeding store: %w", err)
	}
	return st, nil
}

// Schema returns the schema every record conforms to.
func (s *Store) Schema() *schema.Schema { return s.schema }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Records returns deep copies of all records in insertion order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	i, ok := s.index[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[i].Clone(), nil
}

// AddRecord validates the record and appends it. Missing fields take schema defaults.
// An empty ID is filled from the schema prefix, and the number is only reserved
// once the record is accepted.
func (s *Store) AddRecord(rec Record) (Record, error) {
	if rec.ID == "" {
		n, err := s.nextID(s.schema.IDPrefix)
		if err != nil {
			return Record{}, err
		}
		rec.ID = formatID(s.schema.IDPrefix, n)
	}
	if _, exists := s.index[rec.ID]; exists {
		return Record{}, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	normalized, err := normalize(s.schema, rec)
	if err != nil {
		return Record{}, err
	}

	s.index[normalized.ID] = len(s.records)
	s.records = append(s.records, normalized)
	s.observe(normalized.ID)
	return normalized.Clone(), nil
}

// UpdateRecord replaces only the patched fields. Nothing is applied unless every field validates.
func (s *Store) UpdateRecord(id string, patch Patch) (Record, error) {
	i, ok := s.index[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := validatePatch(s.schema, patch); err != nil {
		return Record{}, err
	}

	updated := s.records[i].Clone()
	for name, v := range patch {
		updated.Fields[name] = v.Clone()
	}
	s.records[i] = updated
	return updated.Clone(), nil
}

// RemoveRecord deletes a record. Remaining records keep their ids and order.
func (s *Store) RemoveRecord(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.records); j++ {
		s.index[s.records[j].ID] = j
	}
	return nil
}

// ReplaceAll swaps the whole collection. Every record is validated first;
// on any failure the store is left unchanged.
func (s *Store) ReplaceAll(records []Record) error {
	next := make([]Record, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if _, dup := index[rec.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		normalized, err := normalize(s.schema, rec)
		if err != nil {
			return fmt.Errorf("record %q: %w", rec.ID, err)
		}
		index[normalized.ID] = len(next)
		next = append(next, normalized)
	}

	s.records = next
	s.index = index
	for _, rec := range next {
		s.observe(rec.ID)
	}
	return nil
}

// GenerateID returns a fresh id of the form {prefix}-{n}. The id is reserved:
// repeated calls never return the same value, even after deletions.
func (s *Store) GenerateID(prefix string) (string, error) {
	if prefix == "" {
		prefix = s.schema.IDPrefix
	}
	n, err := s.nextID(prefix)
	if err != nil {
		return "", err
	}
	s.issued[prefix] = n
	return formatID(prefix, n), nil
}

func (s *Store) nextID(prefix string) (int, error) {
	last := s.issued[prefix]
	for _, rec := range s.records {
		if p, n, ok := splitID(rec.ID); ok && p == prefix && n > last {
			last = n
		}
	}
	if last == math.MaxInt {
		return 0, fmt.Errorf("%w: %s", ErrIDsExhausted, prefix)
	}
	return last + 1, nil
}

func formatID(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}

func (s *Store) observe(id string) {
	if p, n, ok := splitID(id); ok && n > s.issued[p] {
		s.issued[p] = n
	}
}

// splitID parses ids shaped like {prefix}-{n}.
func splitID(id string) (string, int, bool) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return id[:i], n, true
}
