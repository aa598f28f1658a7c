package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValueKind is the storage shape of a Value.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueString
	ValueNumber
	ValueTags
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueTags:
		return "tags"
	default:
		return "none"
	}
}

// Value holds a single field value. Which member is meaningful depends on Kind.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	tags []string
}

// String builds a text, long text or enum value.
func String(s string) Value { return Value{kind: ValueString, str: s} }

// Number builds a score value.
func Number(f float64) Value { return Value{kind: ValueNumber, num: f} }

// Tags builds a tag set value. Order is kept for display.
func Tags(tags ...string) Value {
	return Value{kind: ValueTags, tags: slices.Clone(tags)}
}

// Kind returns the storage shape.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string member.
func (v Value) Str() string { return v.str }

// Num returns the number member.
func (v Value) Num() float64 { return v.num }

// TagList returns a copy of the tag members.
func (v Value) TagList() []string { return slices.Clone(v.tags) }

// Text renders the canonical textual form used by CSV export and filters.
func (v Value) Text() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueTags:
		return strings.Join(v.tags, TagDelimiter)
	default:
		return ""
	}
}

// Equal compares two values by content. Nil and empty tag sets are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueString:
		return v.str == o.str
	case ValueNumber:
		return v.num == o.num
	case ValueTags:
		return slices.Equal(v.tags, o.tags)
	default:
		return true
	}
}

// Clone returns a value that shares no memory with v.
func (v Value) Clone() Value {
	if v.kind == ValueTags {
		v.tags = slices.Clone(v.tags)
	}
	return v
}

func (v Value) GoString() string {
	return fmt.Sprintf("schema.Value{%s:%q}", v.kind, v.Text())
}

// MarshalJSON encodes strings, numbers and tag arrays as plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.str)
	case ValueNumber:
		return json.Marshal(v.num)
	case ValueTags:
		if v.tags == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.tags)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON infers the value kind from the JSON type.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '[':
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			return fmt.Errorf("tag set must be an array of strings: %w", err)
		}
		*v = Tags(tags...)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("unsupported field value %s", data)
		}
		*v = Number(f)
	}
	return nil
}

// ParseText converts a canonical textual rendering back into a value of the field's kind.
func ParseText(f Field, text string) (Value, error) {
	switch f.Kind {
	case KindScore:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("%q is not a number", text)}
		}
		return Number(n), nil
	case KindTagSet:
		if text == "" {
			return Tags(), nil
		}
		return Tags(strings.Split(text, TagDelimiter)...), nil
	default:
		return String(text), nil
	}
}
