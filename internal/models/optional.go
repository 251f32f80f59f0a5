package models

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that may or may not have been supplied.
// The zero value is "absent". A present value may itself be nil for pointer types,
// which is how a patch expresses "clear this field".
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was supplied
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value was supplied
func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsZero lets encoding/json drop absent values with the omitzero option
func (o Optional[T]) IsZero() bool {
	return !o.set
}

// OrElse returns the value when present and fallback otherwise
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// UnmarshalJSON marks the field present whenever its key appears, including explicit null
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value = zero
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON encodes an absent value as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
