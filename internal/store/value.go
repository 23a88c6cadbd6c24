// Package store implements the process-wide keyed store: values with
// optional TTL, last-touched timestamps, and a client-id registry. The
// Store type itself is not safe for concurrent use; Keyspace wraps it with
// the readers/writer discipline the dispatcher relies on.
package store

import "strconv"

// ValueKind distinguishes the two value shapes a key can hold.
type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindStr
)

// Value is the tagged union stored per key: either a 64-bit signed integer
// or a UTF-8 string.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
}

// NewValue parses raw as a signed 64-bit decimal; on success it's an Int,
// otherwise it's stored verbatim as a Str.
func NewValue(raw string) Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: n}
	}
	return Value{Kind: KindStr, Str: raw}
}

// Render returns the value as it appears on the wire: the Int rendered in
// decimal, the Str verbatim.
func (v Value) Render() string {
	if v.Kind == KindInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Str
}
