// Package csvcodec serializes record sets to CSV text and back.
//
// Encoded text has a header line of field labels followed by one line per record,
// joined with "\n" and without a trailing newline. Values containing a comma, a
// double quote or a line break are quoted, with inner quotes doubled. Tag sets are
// joined with schema.TagDelimiter and scores are written as plain decimals.
package csvcodec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
)

// ContentType is the media type of encoded output.
const ContentType = "text/csv; charset=utf-8"

// Encode renders records in fieldOrder. A nil fieldOrder means every schema field,
// id first.
func Encode(records []record.Record, s *schema.Schema, fieldOrder []string) (string, error) {
	var b strings.Builder
	if err := EncodeTo(&b, records, s, fieldOrder); err != nil {
		return "", err
	}
	return b.String(), nil
}

// EncodeTo writes the encoding of records to w. A field missing from a record is
// written as the schema default.
func EncodeTo(w io.Writer, records []record.Record, s *schema.Schema, fieldOrder []string) error {
	if fieldOrder == nil {
		fieldOrder = s.Names()
	}
	headers, err := s.Headers(fieldOrder)
	if err != nil {
		return err
	}
	fields := make([]schema.Field, len(fieldOrder))
	for i, name := range fieldOrder {
		if fields[i], err = s.Lookup(name); err != nil {
			return err
		}
	}

	line := make([]string, len(fieldOrder))
	for i, h := range headers {
		line[i] = quote(h)
	}
	if _, err := io.WriteString(w, joinLine(line)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, rec := range records {
		for i, f := range fields {
			v, ok := rec.Get(f.Name)
			if !ok {
				v = s.DefaultValue(f)
			}
			line[i] = quote(v.Text())
		}
		if _, err := io.WriteString(w, "\n"+joinLine(line)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Decode parses text produced by Encode with the same fieldOrder. The header must
// carry exactly the expected labels, and fieldOrder must include the id column.
func Decode(text string, s *schema.Schema, fieldOrder []string) ([]record.Record, error) {
	if fieldOrder == nil {
		fieldOrder = s.Names()
	}
	fields := make([]schema.Field, len(fieldOrder))
	idCol := -1
	for i, name := range fieldOrder {
		f, err := s.Lookup(name)
		if err != nil {
			return nil, err
		}
		fields[i] = f
		if name == schema.IDField {
			idCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: field order has no %s column", ErrSchemaMismatch, schema.IDField)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = len(fields)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrSchemaMismatch)
	}
	if err != nil {
		return nil, mismatch(err)
	}
	for i, f := range fields {
		if header[i] != f.Header() {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i+1, header[i], f.Header())
		}
	}

	records := []record.Record{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, mismatch(err)
		}

		rec := record.Record{ID: row[idCol], Fields: make(map[string]schema.Value, len(fields)-1)}
		for i, f := range fields {
			if i == idCol {
				continue
			}
			v, err := schema.ParseText(f, row[i])
			if err != nil {
				line, _ := r.FieldPos(i)
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec.Fields[f.Name] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

func mismatch(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: line %d: %v", ErrSchemaMismatch, perr.Line, perr.Err)
	}
	return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
}

func quote(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// joinLine keeps a single empty column distinguishable from a blank line,
// which CSV readers skip.
func joinLine(cells []string) string {
	if len(cells) == 1 && cells[0] == "" {
		return `""`
	}
	return strings.Join(cells, ",")
}
