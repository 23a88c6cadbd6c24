package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/rs/xid"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jffjs/kyev/internal/command"
	"github.com/jffjs/kyev/internal/dispatch"
	kyeverrors "github.com/jffjs/kyev/internal/errors"
	"github.com/jffjs/kyev/internal/flags"
	"github.com/jffjs/kyev/internal/logging"
	"github.com/jffjs/kyev/internal/metrics"
	"github.com/jffjs/kyev/internal/resp"
	"github.com/jffjs/kyev/internal/store"
	"github.com/jffjs/kyev/internal/telemetry"
	"github.com/jffjs/kyev/internal/txn"
)

// tracer names every span this package opens after the component that
// opens them, per SPEC_FULL §10.5.
var tracer = telemetry.Tracer("dispatcher")

// connection owns one client's TCP stream, runs its read/parse/execute/
// write cycle, and holds its transaction and WATCH state. Per §4.6, it is
// strictly sequential: one command in, one response out, no intra-
// connection pipelining.
type connection struct {
	conn       net.Conn
	connID     xid.ID // correlates log lines for this TCP connection's lifetime
	ctx        context.Context
	ks         *store.Keyspace
	clientID   int64
	txnState   txn.State
	log        *zap.Logger
	bytes      *bytePool
	readBuffer int
	timeout    time.Duration

	buf []byte
}

func newConnection(c net.Conn, ks *store.Keyspace, clientID int64, log *zap.Logger, bp *bytePool, readBuffer int, timeout time.Duration) *connection {
	connID := xid.New()
	ctx := logging.AddFields(context.Background(),
		zap.String("conn_id", connID.String()),
		zap.Int64("client_id", clientID),
	)
	return &connection{
		conn:       c,
		connID:     connID,
		ctx:        ctx,
		ks:         ks,
		clientID:   clientID,
		log:        log,
		bytes:      bp,
		readBuffer: readBuffer,
		timeout:    timeout,
		buf:        make([]byte, 0, readBuffer),
	}
}

// withFields returns c.log annotated with every field riding ctx, so log
// lines at a given call site pick up conn_id/client_id plus anything a
// dispatch span added (e.g. trace_id) without threading them individually.
func (c *connection) withFields(ctx context.Context) *zap.Logger {
	return c.log.With(logging.GetFields(ctx)...)
}

// serve runs the dispatch loop until the stream closes or a write fails.
// The caller is responsible for unregistering the ClientId afterward.
func (c *connection) serve() {
	defer kyeverrors.RecoverConnection(c.conn.RemoteAddr().String())

	reader := bufio.NewReader(c.conn)
	writer := bufio.NewWriter(c.conn)
	readBuf := make([]byte, c.readBuffer)

	for {
		if c.timeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
		}

		n, err := reader.Read(readBuf)
		if n > 0 {
			c.buf = append(c.buf, readBuf[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				c.withFields(c.ctx).Debug("connection read error", zap.Error(err))
			}
			return
		}

		if !c.drainFrames(writer) {
			return
		}
	}
}

// drainFrames decodes and dispatches every complete frame currently
// sitting in c.buf, writing one response per frame. Returns false if a
// fatal write error means the connection must close.
func (c *connection) drainFrames(w *bufio.Writer) bool {
	for {
		if len(c.buf) == 0 {
			return true
		}

		v, n, err := resp.Decode(c.buf)
		if err != nil {
			if resp.IsIncomplete(err) {
				return true
			}
			// Invalid framing: either drop the buffer and keep reading
			// (the core's lenient default) or close the connection, per
			// the kill switch described in §9.
			if flags.KillSwitch(flags.StrictFraming) {
				c.withFields(c.ctx).Info("closing connection on invalid framing")
				return false
			}
			c.buf = c.buf[:0]
			return true
		}

		c.buf = c.buf[n:]

		reply := c.handleFrame(v)
		out := resp.Encode(c.bytes.get(), reply)
		w.Write(out)
		c.bytes.put(out)
		if err := w.Flush(); err != nil {
			c.withFields(c.ctx).Debug("connection write error", zap.Error(err))
			return false
		}
	}
}

func (c *connection) handleFrame(v resp.Value) resp.Value {
	cmd, perr := command.ParseCommand(v)
	if perr != nil {
		if c.txnState.InTxn {
			return c.txnState.MarkError(perr)
		}
		return resp.NewError(perr.Error())
	}
	return c.dispatchCommand(cmd)
}

func (c *connection) dispatchCommand(cmd *command.Command) resp.Value {
	if cmd.Action.IsTxnControl() {
		return c.dispatchTxnControl(cmd)
	}

	if c.txnState.InTxn {
		return c.txnState.QueueCommand(cmd)
	}

	return c.dispatchImmediate(cmd)
}

func (c *connection) dispatchTxnControl(cmd *command.Command) resp.Value {
	switch cmd.Action {
	case command.Multi:
		return c.txnState.HandleMulti()
	case command.Discard:
		return c.txnState.HandleDiscard()
	case command.Watch:
		return c.txnState.HandleWatch(cmd.Keys)
	case command.Unwatch:
		return c.txnState.HandleUnwatch()
	case command.Exec:
		wasInTxn := c.txnState.InTxn
		execID := ksuid.New()
		start := time.Now()

		ctx, span := tracer.Start(c.ctx, "kyev.dispatch",
			trace.WithAttributes(attribute.String("action", cmd.Action.String())))
		defer span.End()
		ctx = logging.AddFields(ctx, zap.String("trace_id", span.SpanContext().TraceID().String()))

		reply := txn.Exec(ctx, c.ks, &c.txnState, c.clientID, tracer)
		metrics.CommandDuration.WithLabelValues(cmd.Action.String()).Observe(time.Since(start).Seconds())

		outcome := "committed"
		switch {
		case !wasInTxn:
			outcome = "no_transaction"
		case reply.Kind == resp.BulkString && reply.IsNull:
			outcome = "aborted_watch"
		case reply.Kind == resp.Error:
			outcome = "aborted_error"
		}
		metrics.TransactionsTotal.WithLabelValues(outcome).Inc()
		if wasInTxn {
			c.withFields(ctx).Debug("exec finished", zap.String("exec_id", execID.String()), zap.String("outcome", outcome))
		}
		return reply
	default:
		return resp.NewError("ERR internal: not a transaction control command")
	}
}

func (c *connection) dispatchImmediate(cmd *command.Command) resp.Value {
	var reply resp.Value
	outcome := "ok"
	start := time.Now()

	_, span := tracer.Start(c.ctx, "kyev.dispatch",
		trace.WithAttributes(attribute.String("action", cmd.Action.String())))
	defer span.End()

	switch cmd.Lock {
	case command.LockRead:
		c.ks.RLock()
		reply = dispatch.ExecuteRead(c.ks.Raw(), cmd)
		c.ks.RUnlock()
	case command.LockWrite:
		c.ks.Lock()
		reply = dispatch.ExecuteWrite(c.ks.Raw(), cmd)
		c.ks.Unlock()
	default:
		reply = dispatch.ExecuteNone(cmd, c.clientID)
	}

	metrics.CommandDuration.WithLabelValues(cmd.Action.String()).Observe(time.Since(start).Seconds())
	if reply.Kind == resp.Error {
		outcome = "error"
	}
	metrics.CommandsTotal.WithLabelValues(cmd.Action.String(), outcome).Inc()
	return reply
}
