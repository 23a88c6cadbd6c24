// Package dispatch executes a parsed Command against a locked Store. The
// three entry points are free functions, not methods on a lock guard, so the
// transaction executor can borrow the write lock once and call any of them
// per queued command against the same Store value (see internal/txn).
package dispatch

import (
	"time"

	"github.com/jffjs/kyev/internal/command"
	"github.com/jffjs/kyev/internal/resp"
	"github.com/jffjs/kyev/internal/store"
)

// ExecuteRead runs a Command.Lock == LockRead command against s. The
// caller must hold at least a read lock on the owning Keyspace.
func ExecuteRead(s *store.Store, cmd *command.Command) resp.Value {
	switch cmd.Action {
	case command.Get:
		v, ok := s.Get(cmd.Key)
		if !ok {
			return resp.NewNullBulkString()
		}
		return resp.NewBulkStringFromString(v.Render())
	case command.Ttl:
		res := s.TTL(cmd.Key)
		switch res.Status {
		case store.KeyNotFound:
			return resp.NewInteger(-2)
		case store.NoExpiration:
			return resp.NewInteger(-1)
		default:
			return resp.NewInteger(res.Seconds)
		}
	default:
		return resp.NewError("ERR internal: not a read command")
	}
}

// ExecuteWrite runs a Command.Lock == LockWrite command against s. The
// caller must hold the write lock on the owning Keyspace.
func ExecuteWrite(s *store.Store, cmd *command.Command) resp.Value {
	switch cmd.Action {
	case command.Set:
		return executeSet(s, cmd)
	case command.Setex:
		s.Set(cmd.Key, cmd.Value, false)
		armExpiry(s, cmd.Key, cmd.ExpireUnit, cmd.ExpireValue)
		return resp.NewSimpleString("OK")
	case command.Setnx:
		if _, exists := s.Get(cmd.Key); exists {
			return resp.NewInteger(0)
		}
		s.Set(cmd.Key, cmd.Value, false)
		return resp.NewInteger(1)
	case command.Expire, command.Pexpire:
		return executeExpire(s, cmd)
	default:
		return resp.NewError("ERR internal: not a write command")
	}
}

// ExecuteNone runs a Command.Lock == LockNone command. These never touch
// the Store directly; clientID is the caller's own identifier, already
// obtained at connection registration, which CLIENTID merely reports back.
func ExecuteNone(cmd *command.Command, clientID int64) resp.Value {
	switch cmd.Action {
	case command.Ping:
		if cmd.HasArg {
			return resp.NewBulkStringFromString(cmd.Value)
		}
		return resp.NewSimpleString("PONG")
	case command.Echo:
		return resp.NewBulkStringFromString(cmd.Value)
	case command.ClientID:
		return resp.NewInteger(clientID)
	default:
		return resp.NewError("ERR internal: not a lock-free command")
	}
}

func executeSet(s *store.Store, cmd *command.Command) resp.Value {
	opts := cmd.SetOpts
	if opts.NX {
		if _, exists := s.Get(cmd.Key); exists {
			return resp.NewInteger(0)
		}
	}
	if opts.XX {
		if _, exists := s.Get(cmd.Key); !exists {
			return resp.NewInteger(0)
		}
	}

	s.Set(cmd.Key, cmd.Value, opts.KeepTTL)
	armExpiry(s, cmd.Key, opts.ExpireUnit, opts.ExpireValue)

	if opts.NX || opts.XX {
		return resp.NewInteger(1)
	}
	return resp.NewSimpleString("OK")
}

func executeExpire(s *store.Store, cmd *command.Command) resp.Value {
	d := expireDuration(cmd.ExpireUnit, cmd.ExpireValue)
	var existed bool
	if d <= 0 {
		existed = s.Remove(cmd.Key)
	} else {
		existed = s.Expire(cmd.Key, time.Now().Add(d))
	}
	return boolToInteger(existed)
}

func armExpiry(s *store.Store, key string, unit command.ExpireUnit, value int64) {
	if unit == command.ExpireNone {
		return
	}
	s.Expire(key, time.Now().Add(expireDuration(unit, value)))
}

func expireDuration(unit command.ExpireUnit, value int64) time.Duration {
	if unit == command.ExpireMillis {
		return time.Duration(value) * time.Millisecond
	}
	return time.Duration(value) * time.Second
}

func boolToInteger(b bool) resp.Value {
	if b {
		return resp.NewInteger(1)
	}
	return resp.NewInteger(0)
}
