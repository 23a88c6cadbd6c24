// Package txn implements the per-connection transaction and WATCH state
// machine: MULTI/EXEC/DISCARD queuing and the optimistic-concurrency check
// that backs WATCH.
package txn

import (
	"time"

	"github.com/jffjs/kyev/internal/command"
	"github.com/jffjs/kyev/internal/resp"
)

// WatchEntry records a key a connection asked to be told about, and the
// moment it started watching it.
type WatchEntry struct {
	Key            string
	WatchStartedAt time.Time
}

// State holds one connection's transaction and WATCH bookkeeping. The zero
// value is a connection in the Normal state with no watches.
type State struct {
	InTxn   bool
	Error   bool
	Queue   []*command.Command
	Watches []WatchEntry
}

// HandleMulti implements the Normal/InTxn MULTI transitions. Nesting MULTI
// is rejected rather than silently accepted.
func (s *State) HandleMulti() resp.Value {
	if s.InTxn {
		return resp.NewError("ERR MULTI calls can not be nested")
	}
	s.InTxn = true
	s.Error = false
	s.Queue = nil
	return resp.NewSimpleString("OK")
}

// HandleDiscard drops any queued transaction and its watches. Outside a
// transaction it's a no-op that replies Null.
func (s *State) HandleDiscard() resp.Value {
	if !s.InTxn {
		return resp.NewNullBulkString()
	}
	s.reset()
	return resp.NewSimpleString("OK")
}

// HandleWatch appends (key, now) for each key regardless of transaction
// state; watching is legal before MULTI and accumulates across calls.
func (s *State) HandleWatch(keys []string) resp.Value {
	now := time.Now()
	for _, k := range keys {
		s.Watches = append(s.Watches, WatchEntry{Key: k, WatchStartedAt: now})
	}
	return resp.NewSimpleString("OK")
}

// HandleUnwatch clears the watch list but leaves any in-progress
// transaction queue untouched.
func (s *State) HandleUnwatch() resp.Value {
	s.Watches = nil
	return resp.NewSimpleString("OK")
}

// QueueCommand appends cmd to the transaction queue, replying QUEUED.
func (s *State) QueueCommand(cmd *command.Command) resp.Value {
	s.Queue = append(s.Queue, cmd)
	return resp.NewSimpleString("QUEUED")
}

// MarkError records that a command offered inside this transaction failed
// to parse; EXEC will abort the whole queue without running it.
func (s *State) MarkError(perr *command.ParseError) resp.Value {
	s.Error = true
	return resp.NewError(perr.Error())
}

func (s *State) reset() {
	s.InTxn = false
	s.Error = false
	s.Queue = nil
	s.Watches = nil
}
