package resp

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestEncodeSimpleString(t *testing.T) {
	got := EncodeBytes(NewSimpleString("OK"))
	assert.Equal(t, "+OK\r\n", string(got))
}

func TestEncodeError(t *testing.T) {
	got := EncodeBytes(NewError("ERR boom"))
	assert.Equal(t, "-ERR boom\r\n", string(got))
}

func TestEncodeInteger(t *testing.T) {
	assert.Equal(t, ":1000\r\n", string(EncodeBytes(NewInteger(1000))))
	assert.Equal(t, ":-1\r\n", string(EncodeBytes(NewInteger(-1))))
}

func TestEncodeBulkString(t *testing.T) {
	got := EncodeBytes(NewBulkStringFromString("foobar"))
	assert.Equal(t, "$6\r\nfoobar\r\n", string(got))
}

func TestEncodeNullBulkString(t *testing.T) {
	got := EncodeBytes(NewNullBulkString())
	assert.Equal(t, "$-1\r\n", string(got))
}

func TestEncodeEmptyBulkString(t *testing.T) {
	got := EncodeBytes(NewBulkStringFromString(""))
	assert.Equal(t, "$0\r\n\r\n", string(got))
}

func TestEncodeArray(t *testing.T) {
	v := NewArray([]Value{
		NewBulkStringFromString("ECHO"),
		NewBulkStringFromString("hi"),
	})
	got := EncodeBytes(v)
	assert.Equal(t, "*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n", string(got))
}

func TestEncodeEmptyArray(t *testing.T) {
	got := EncodeBytes(NewArray(nil))
	assert.Equal(t, "*0\r\n", string(got))
}

func TestDecodeSimpleString(t *testing.T) {
	v, n, err := Decode([]byte("+OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, SimpleString, v.Kind)
	assert.Equal(t, "OK", v.Str)
}

func TestDecodeError(t *testing.T) {
	v, n, err := Decode([]byte("-ERR unknown command\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 22, n)
	assert.Equal(t, Error, v.Kind)
	assert.Equal(t, "ERR unknown command", v.Str)
}

func TestDecodeInteger(t *testing.T) {
	v, n, err := Decode([]byte(":12345\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, int64(12345), v.Int)

	v, _, err = Decode([]byte(":-7\r\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(-7), v.Int)
}

func TestDecodeIntegerInvalid(t *testing.T) {
	_, _, err := Decode([]byte(":foo\r\n"))
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
}

func TestDecodeBulkString(t *testing.T) {
	v, n, err := Decode([]byte("$6\r\nfoobar\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, BulkString, v.Kind)
	assert.Equal(t, "foobar", string(v.Bulk))
}

func TestDecodeBulkStringWithEmbeddedCR(t *testing.T) {
	v, n, err := Decode([]byte("$6\r\nfoo\r\nr\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "foo\r\nr", string(v.Bulk))
}

func TestDecodeEmptyBulkString(t *testing.T) {
	v, n, err := Decode([]byte("$0\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "", string(v.Bulk))
	assert.False(t, v.IsNull)
}

func TestDecodeNullBulkString(t *testing.T) {
	v, n, err := Decode([]byte("$-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, v.IsNull)
}

func TestDecodeArray(t *testing.T) {
	v, n, err := Decode([]byte("*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 22, n)
	require.Len(t, v.Elems, 2)
	s0, _ := v.Elems[0].AsString()
	s1, _ := v.Elems[1].AsString()
	assert.Equal(t, "ECHO", s0)
	assert.Equal(t, "hi", s1)
}

func TestDecodeEmptyArray(t *testing.T) {
	v, n, err := Decode([]byte("*0\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Empty(t, v.Elems)
}

func TestDecodeIncompleteSimpleString(t *testing.T) {
	_, _, err := Decode([]byte("+OK"))
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))
}

func TestDecodeIncompleteEmpty(t *testing.T) {
	_, _, err := Decode(nil)
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))
}

func TestDecodeIncompleteBulkStringLength(t *testing.T) {
	_, _, err := Decode([]byte("$2\r\nOK"))
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))
}

func TestDecodeIncompleteBulkStringHeader(t *testing.T) {
	_, _, err := Decode([]byte("$5"))
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))
}

func TestDecodeIncompleteArray(t *testing.T) {
	_, _, err := Decode([]byte("*2\r\n$4\r\nECHO\r\n"))
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))
}

func TestDecodeInvalidUnknownType(t *testing.T) {
	_, _, err := Decode([]byte("!oops\r\n"))
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
}

func TestDecodeInvalidBulkStringLength(t *testing.T) {
	_, _, err := Decode([]byte("$abc\r\n"))
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		NewSimpleString("PONG"),
		NewError("ERR wrong number of arguments"),
		NewInteger(42),
		NewInteger(-42),
		NewBulkStringFromString("hello world"),
		NewNullBulkString(),
		NewArray([]Value{NewBulkStringFromString("SET"), NewBulkStringFromString("k"), NewBulkStringFromString("v")}),
		NewArray(nil),
	}

	for _, v := range values {
		encoded := EncodeBytes(v)
		decoded, n, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), n)
		assert.Equal(t, EncodeBytes(v), EncodeBytes(decoded))
	}
}

func TestDecodeConsumesOnlyOneFrame(t *testing.T) {
	buf := []byte("+OK\r\n+ANOTHER\r\n")
	v, n, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, SimpleString, v.Kind)
	assert.Equal(t, "OK", v.Str)
	assert.Equal(t, 5, n)

	v2, n2, err := Decode(buf[n:])
	require.NoError(t, err)
	assert.Equal(t, "ANOTHER", v2.Str)
	assert.Equal(t, len(buf)-n, n2)
}
