package txn

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/jffjs/kyev/internal/command"
	"github.com/jffjs/kyev/internal/dispatch"
	"github.com/jffjs/kyev/internal/resp"
	"github.com/jffjs/kyev/internal/store"
)

// Exec atomically replays st's queued commands against ks. It borrows the
// Store's write lock exactly once for the whole replay (I6): the WATCH
// check and every queued command, whether read- or write-classified, run
// under that single held lock via the dispatch package's free functions.
// ctx carries the parent "kyev.dispatch" span the caller already started;
// tracer is used to open one child span per queued command.
func Exec(ctx context.Context, ks *store.Keyspace, st *State, clientID int64, tracer trace.Tracer) resp.Value {
	if !st.InTxn {
		return resp.NewNullBulkString()
	}
	defer st.reset()

	if st.Error {
		return resp.NewError("ERR EXEC aborted: transaction queued a command that failed to parse")
	}

	ks.Lock()
	defer ks.Unlock()
	raw := ks.Raw()

	for _, w := range st.Watches {
		touchedAt, ok := raw.LastTouched(w.Key)
		if ok && !touchedAt.Before(w.WatchStartedAt) {
			return resp.NewNullBulkString()
		}
	}

	replies := make([]resp.Value, 0, len(st.Queue))
	for _, cmd := range st.Queue {
		_, span := tracer.Start(ctx, "kyev.dispatch."+cmd.Action.String())
		replies = append(replies, execOne(raw, cmd, clientID))
		span.End()
	}
	return resp.NewArray(replies)
}

func execOne(raw *store.Store, cmd *command.Command, clientID int64) resp.Value {
	switch cmd.Lock {
	case command.LockRead:
		return dispatch.ExecuteRead(raw, cmd)
	case command.LockWrite:
		return dispatch.ExecuteWrite(raw, cmd)
	default:
		return dispatch.ExecuteNone(cmd, clientID)
	}
}
