package command

import (
	"testing"

	"github.com/jffjs/kyev/internal/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bulkArray(parts ...string) resp.Value {
	elems := make([]resp.Value, len(parts))
	for i, p := range parts {
		elems[i] = resp.NewBulkStringFromString(p)
	}
	return resp.NewArray(elems)
}

func TestParsePing(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("PING"))
	require.Nil(t, perr)
	assert.Equal(t, Ping, cmd.Action)
	assert.Equal(t, LockNone, cmd.Lock)
	assert.False(t, cmd.HasArg)

	cmd, perr = ParseCommand(bulkArray("ping", "hello"))
	require.Nil(t, perr)
	assert.True(t, cmd.HasArg)
	assert.Equal(t, "hello", cmd.Value)

	_, perr = ParseCommand(bulkArray("PING", "a", "b"))
	require.NotNil(t, perr)
	assert.Equal(t, WrongNumberArgs, perr.Kind)
}

func TestParseEcho(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("ECHO", "hi"))
	require.Nil(t, perr)
	assert.Equal(t, Echo, cmd.Action)
	assert.Equal(t, "hi", cmd.Value)

	_, perr = ParseCommand(bulkArray("ECHO"))
	require.NotNil(t, perr)
	assert.Equal(t, WrongNumberArgs, perr.Kind)
}

func TestParseGet(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("GET", "foo"))
	require.Nil(t, perr)
	assert.Equal(t, Get, cmd.Action)
	assert.Equal(t, LockRead, cmd.Lock)
	assert.Equal(t, "foo", cmd.Key)
}

func TestParseSetBasic(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SET", "foo", "bar"))
	require.Nil(t, perr)
	assert.Equal(t, Set, cmd.Action)
	assert.Equal(t, LockWrite, cmd.Lock)
	assert.Equal(t, "foo", cmd.Key)
	assert.Equal(t, "bar", cmd.Value)
	assert.Equal(t, ExpireNone, cmd.SetOpts.ExpireUnit)
}

func TestParseSetWithEx(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SET", "foo", "bar", "EX", "30"))
	require.Nil(t, perr)
	assert.Equal(t, ExpireSeconds, cmd.SetOpts.ExpireUnit)
	assert.Equal(t, int64(30), cmd.SetOpts.ExpireValue)
}

func TestParseSetWithPx(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SET", "foo", "bar", "PX", "5000"))
	require.Nil(t, perr)
	assert.Equal(t, ExpireMillis, cmd.SetOpts.ExpireUnit)
	assert.Equal(t, int64(5000), cmd.SetOpts.ExpireValue)
}

func TestParseSetBothExAndPxLaterWins(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SET", "foo", "bar", "EX", "30", "PX", "500"))
	require.Nil(t, perr)
	assert.Equal(t, ExpireMillis, cmd.SetOpts.ExpireUnit)
	assert.Equal(t, int64(500), cmd.SetOpts.ExpireValue)
}

func TestParseSetNxAndXxConflict(t *testing.T) {
	_, perr := ParseCommand(bulkArray("SET", "foo", "bar", "NX", "XX"))
	require.NotNil(t, perr)
	assert.Equal(t, SyntaxError, perr.Kind)
}

func TestParseSetKeepTtl(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SET", "foo", "bar", "KEEPTTL"))
	require.Nil(t, perr)
	assert.True(t, cmd.SetOpts.KeepTTL)
}

func TestParseSetUnknownOptionIgnored(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SET", "foo", "bar", "BOGUS"))
	require.Nil(t, perr)
	assert.Equal(t, "foo", cmd.Key)
}

func TestParseSetExMissingValue(t *testing.T) {
	_, perr := ParseCommand(bulkArray("SET", "foo", "bar", "EX"))
	require.NotNil(t, perr)
	assert.Equal(t, SyntaxError, perr.Kind)
}

func TestParseSetExNegative(t *testing.T) {
	_, perr := ParseCommand(bulkArray("SET", "foo", "bar", "EX", "-1"))
	require.NotNil(t, perr)
	assert.Equal(t, InvalidTtl, perr.Kind)
}

func TestParseSetex(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SETEX", "foo", "10", "bar"))
	require.Nil(t, perr)
	assert.Equal(t, Setex, cmd.Action)
	assert.Equal(t, int64(10), cmd.ExpireValue)
	assert.Equal(t, ExpireSeconds, cmd.ExpireUnit)

	_, perr = ParseCommand(bulkArray("SETEX", "foo", "-5", "bar"))
	require.NotNil(t, perr)
	assert.Equal(t, InvalidTtl, perr.Kind)
}

func TestParseSetnx(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("SETNX", "foo", "bar"))
	require.Nil(t, perr)
	assert.Equal(t, Setnx, cmd.Action)
}

func TestParseExpireAndPexpireStayDistinct(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("EXPIRE", "foo", "30"))
	require.Nil(t, perr)
	assert.Equal(t, Expire, cmd.Action)
	assert.Equal(t, ExpireSeconds, cmd.ExpireUnit)

	cmd, perr = ParseCommand(bulkArray("PEXPIRE", "foo", "30000"))
	require.Nil(t, perr)
	assert.Equal(t, Pexpire, cmd.Action)
	assert.Equal(t, ExpireMillis, cmd.ExpireUnit)
}

func TestParseExpireInvalidTtl(t *testing.T) {
	_, perr := ParseCommand(bulkArray("EXPIRE", "foo", "notanumber"))
	require.NotNil(t, perr)
	assert.Equal(t, InvalidTtl, perr.Kind)
}

func TestParseTxnControl(t *testing.T) {
	for _, name := range []string{"MULTI", "DISCARD", "UNWATCH"} {
		cmd, perr := ParseCommand(bulkArray(name))
		require.Nil(t, perr)
		assert.Equal(t, LockNone, cmd.Lock)
		assert.True(t, cmd.Action.IsTxnControl())
	}

	_, perr := ParseCommand(bulkArray("MULTI", "extra"))
	require.NotNil(t, perr)
	assert.Equal(t, WrongNumberArgs, perr.Kind)
}

func TestParseWatch(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("WATCH", "a", "b"))
	require.Nil(t, perr)
	assert.Equal(t, []string{"a", "b"}, cmd.Keys)

	_, perr = ParseCommand(bulkArray("WATCH"))
	require.NotNil(t, perr)
	assert.Equal(t, WrongNumberArgs, perr.Kind)
}

func TestParseClientID(t *testing.T) {
	cmd, perr := ParseCommand(bulkArray("CLIENTID"))
	require.Nil(t, perr)
	assert.Equal(t, ClientID, cmd.Action)
	assert.Equal(t, LockNone, cmd.Lock)
}

func TestParseMustBeArray(t *testing.T) {
	_, perr := ParseCommand(resp.NewSimpleString("PING"))
	require.NotNil(t, perr)
	assert.Equal(t, MustBeArray, perr.Kind)
}

func TestParseIsEmpty(t *testing.T) {
	_, perr := ParseCommand(resp.NewArray(nil))
	require.NotNil(t, perr)
	assert.Equal(t, IsEmpty, perr.Kind)
}

func TestParseUnknownCommand(t *testing.T) {
	_, perr := ParseCommand(bulkArray("FROBNICATE"))
	require.NotNil(t, perr)
	assert.Equal(t, UnknownCommand, perr.Kind)
	assert.Contains(t, perr.Error(), "FROBNICATE")
}

func TestParseInvalidCommandToken(t *testing.T) {
	v := resp.NewArray([]resp.Value{resp.NewInteger(1)})
	_, perr := ParseCommand(v)
	require.NotNil(t, perr)
	assert.Equal(t, InvalidCommand, perr.Kind)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "ERR wrong number of arguments for 'set' command", errWrongNumberArgs(Set).Error())
	assert.Equal(t, "ERR syntax error", errSyntax(Set).Error())
	assert.Equal(t, "ERR invalid expire time in 'setex' command", errInvalidTtl(Setex).Error())
}
