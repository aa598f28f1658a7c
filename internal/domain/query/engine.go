package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine computes filtered and sorted views over a record collection.
type Engine struct {
	schema *schema.Schema
	locale language.Tag
}

// NewEngine creates an engine for the schema. String fields sort by the locale's collation.
func NewEngine(s *schema.Schema, locale language.Tag) *Engine {
	return &Engine{schema: s, locale: locale}
}

// Evaluate returns the records matching the view, in view order.
// The input slice and its records are never modified.
func (e *Engine) Evaluate(records []record.Record, spec ViewSpec) ([]record.Record, error) {
	filters, err := e.compileFilters(spec.Filters)
	if err != nil {
		return nil, err
	}
	less, err := e.comparator(spec.SortField, spec.Direction)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(spec.Search)
	type row struct {
		rec   record.Record
		order int
	}
	rows := make([]row, 0, len(records))
	for i, rec := range records {
		if term != "" && !e.matchesSearch(rec, term) {
			continue
		}
		if !matchesFilters(rec, filters) {
			continue
		}
		rows = append(rows, row{rec: rec.Clone(), order: i})
	}

	if less != nil {
		slices.SortStableFunc(rows, func(a, b row) int {
			return less(a.rec, b.rec, a.order, b.order)
		})
	}

	out := make([]record.Record, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	return out, nil
}

func (e *Engine) matchesSearch(rec record.Record, term string) bool {
	for _, name := range e.schema.Searchable {
		v, ok := rec.Get(name)
		if !ok {
			continue
		}
		if v.Kind() == schema.ValueTags {
			for _, tag := range v.TagList() {
				if strings.Contains(strings.ToLower(tag), term) {
					return true
				}
			}
			continue
		}
		if strings.Contains(strings.ToLower(v.Text()), term) {
			return true
		}
	}
	return false
}

type filter struct {
	field schema.Field
	value string
}

func (e *Engine) compileFilters(raw map[string]string) ([]filter, error) {
	filters := make([]filter, 0, len(raw))
	for name, value := range raw {
		f, err := e.schema.Lookup(name)
		if err != nil {
			return nil, err
		}
		if value == "" || value == FilterAll {
			continue
		}
		filters = append(filters, filter{field: f, value: value})
	}
	return filters, nil
}

func matchesFilters(rec record.Record, filters []filter) bool {
	for _, f := range filters {
		v, ok := rec.Get(f.field.Name)
		if !ok {
			return false
		}
		if f.field.Kind == schema.KindTagSet {
			if !slices.Contains(v.TagList(), f.value) {
				return false
			}
			continue
		}
		if v.Text() != f.value {
			return false
		}
	}
	return true
}

type lessFunc func(a, b record.Record, ai, bi int) int

// comparator orders by the field, then by insertion position. The direction flips the
// whole result, so a descending view is exactly the reverse of the ascending one.
func (e *Engine) comparator(field string, dir Direction) (lessFunc, error) {
	sign := 1
	switch dir {
	case "", Ascending:
	case Descending:
		sign = -1
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	if field == "" {
		if sign == 1 {
			return nil, nil
		}
		return func(_, _ record.Record, ai, bi int) int { return -cmp.Compare(ai, bi) }, nil
	}

	f, err := e.schema.Lookup(field)
	if err != nil {
		return nil, err
	}

	var byField func(a, b schema.Value) int
	if f.Kind == schema.KindScore {
		byField = func(a, b schema.Value) int { return cmp.Compare(a.Num(), b.Num()) }
	} else {
		// Collator keeps internal buffers, so each view gets its own.
		col := collate.New(e.locale)
		byField = func(a, b schema.Value) int { return col.CompareString(a.Text(), b.Text()) }
	}

	return func(a, b record.Record, ai, bi int) int {
		av, _ := a.Get(f.Name)
		bv, _ := b.Get(f.Name)
		if c := byField(av, bv); c != 0 {
			return sign * c
		}
		return sign * cmp.Compare(ai, bi)
	}, nil
}
