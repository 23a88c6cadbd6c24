// Package resp implements the RESP wire format: encoding and decoding of
// Simple Strings, Errors, Integers, Bulk Strings, and Arrays against a byte
// buffer.
package resp

// Kind identifies which of the five RESP value variants a Value holds.
type Kind uint8

const (
	SimpleString Kind = iota
	Error
	Integer
	BulkString
	Array
)

// Value is a decoded or to-be-encoded RESP value. Only the fields relevant
// to Kind are meaningful; the zero Value is an empty Simple String.
type Value struct {
	Kind Kind

	Str string // SimpleString, Error

	Int int64 // Integer

	Bulk   []byte // BulkString payload
	IsNull bool   // BulkString: true means the RESP null bulk string ($-1\r\n)

	Elems []Value // Array
}

func NewSimpleString(s string) Value {
	return Value{Kind: SimpleString, Str: s}
}

func NewError(s string) Value {
	return Value{Kind: Error, Str: s}
}

func NewInteger(i int64) Value {
	return Value{Kind: Integer, Int: i}
}

func NewBulkString(b []byte) Value {
	return Value{Kind: BulkString, Bulk: b}
}

func NewBulkStringFromString(s string) Value {
	return Value{Kind: BulkString, Bulk: []byte(s)}
}

func NewNullBulkString() Value {
	return Value{Kind: BulkString, IsNull: true}
}

func NewArray(elems []Value) Value {
	return Value{Kind: Array, Elems: elems}
}

// AsString returns the payload of a Simple String or non-null Bulk String.
func (v Value) AsString() (string, bool) {
	switch v.Kind {
	case SimpleString:
		return v.Str, true
	case BulkString:
		if v.IsNull {
			return "", false
		}
		return string(v.Bulk), true
	default:
		return "", false
	}
}
