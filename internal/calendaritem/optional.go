package calendaritem

import "encoding/json"

// Optional is a JSON field that distinguishes "absent" from "null" from
// "value". Set is true whenever the key appeared in the payload; Valid is
// true only when it carried a non-null value.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some wraps a concrete value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null is an explicit null, i.e. "clear this field".
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero reports an unset field so omitzero-tagged structs drop it on
// marshal. Without this an omitted field would serialize as null and a
// round-trip would turn "leave alone" into "clear this column".
func (o Optional[T]) IsZero() bool {
	return !o.Set
}
