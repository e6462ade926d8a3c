package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindScalar // bool, number, or timestamp decoded from front matter
	KindList
	KindMap
)

// Value is a tagged union over the shapes a record field can take.
type Value struct {
	kind   Kind
	str    string
	scalar any
	items  []Value
	fields *Record
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Scalar wraps a non-string scalar such as a bool or number.
func Scalar(v any) Value {
	if v == nil {
		return Null()
	}
	if s, ok := v.(string); ok {
		return String(s)
	}
	return Value{kind: KindScalar, scalar: v}
}

// List wraps items.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, items: items}
}

// Strings wraps a slice of strings as a list value.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return List(items...)
}

// Map wraps a nested record.
func Map(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	return Value{kind: KindMap, fields: r}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string and true when v holds a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Items returns the list elements, or nil for non-list values.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Fields returns the nested record, or nil for non-map values.
func (v Value) Fields() *Record {
	if v.kind != KindMap {
		return nil
	}
	return v.fields
}

// Truthy reports whether v counts as set when choosing between fallbacks:
// null, "", false and zero numbers do not.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindString:
		return v.str != ""
	case KindScalar:
		switch s := v.scalar.(type) {
		case bool:
			return s
		case int:
			return s != 0
		case int64:
			return s != 0
		case uint64:
			return s != 0
		case float64:
			return s != 0
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return marshalJSON(v.str)
	case KindScalar:
		return marshalJSON(v.scalar)
	case KindList:
		return marshalJSON(v.items)
	case KindMap:
		return v.fields.MarshalJSON()
	default:
		return nil, fmt.Errorf("models: unknown value kind %d", v.kind)
	}
}

// marshalJSON encodes v with HTML escaping off. An outer encoder still
// applies its own escaping setting to the result, so callers that need
// <, > and & verbatim must encode with SetEscapeHTML(false).
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
