// Package document provides an insertion-ordered JSON object and the
// encoder used by every sink, so the same household always serializes to
// the same bytes.
package document

import (
	"bytes"
	"encoding/json"
	"io"
)

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a JSON object whose keys are emitted in insertion order.
type Object []Field

// Set replaces the value under key or appends a new field.
func (o *Object) Set(key string, v any) {
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = v
			return
		}
	}
	*o = append(*o, Field{Key: key, Value: v})
}

// Get returns the value under key.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(f.Key); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends '\n'
		buf.WriteByte(':')
		if err := enc.Encode(f.Value); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is one household ready for a sink.
type Document struct {
	Key  string
	Body Object
}

// EncodePretty writes v as 2-space indented JSON without HTML escaping.
// Non-ASCII text is written as UTF-8.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EncodeCompact writes v as a single line of JSON without HTML escaping.
func EncodeCompact(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Marshal returns the pretty form of v.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePretty(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
