package service

import (
	"bytes"
	"encoding/json"
)

// Field is an optional JSON input value. It distinguishes a key that was
// absent (Set false) from one sent as null (Null true) and from one whose
// value had the wrong JSON type (Invalid true), which partial updates and
// per-field validation messages both need.
type Field[T any] struct {
	Value   T
	Set     bool
	Null    bool
	Invalid bool
}

// NewField returns a Field holding v.
func NewField[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// UnmarshalJSON records the value. A type mismatch marks the field Invalid
// instead of failing the whole document.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	if err := json.Unmarshal(b, &f.Value); err != nil {
		var zero T
		f.Value = zero
		f.Invalid = true
	}
	return nil
}

// Present reports whether the field carries a usable value.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null && !f.Invalid
}
