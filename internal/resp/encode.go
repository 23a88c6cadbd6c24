package resp

import (
	"strconv"
)

var crlf = []byte("\r\n")

// Encode appends the wire representation of v to buf and returns the
// extended slice.
func Encode(buf []byte, v Value) []byte {
	switch v.Kind {
	case SimpleString:
		buf = append(buf, '+')
		buf = append(buf, v.Str...)
		return append(buf, crlf...)
	case Error:
		buf = append(buf, '-')
		buf = append(buf, v.Str...)
		return append(buf, crlf...)
	case Integer:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, v.Int, 10)
		return append(buf, crlf...)
	case BulkString:
		if v.IsNull {
			return append(buf, "$-1\r\n"...)
		}
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(v.Bulk)), 10)
		buf = append(buf, crlf...)
		buf = append(buf, v.Bulk...)
		return append(buf, crlf...)
	case Array:
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(v.Elems)), 10)
		buf = append(buf, crlf...)
		for _, elem := range v.Elems {
			buf = Encode(buf, elem)
		}
		return buf
	default:
		return buf
	}
}

// EncodeBytes is a convenience wrapper over Encode for callers that don't
// want to manage a reusable buffer.
func EncodeBytes(v Value) []byte {
	return Encode(nil, v)
}
