// Package errors wires up Sentry panic reporting for the server. Each
// connection's dispatch loop recovers through RecoverConnection so that a
// bug in one connection's command handling can't take down the listener.
package errors

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/jffjs/kyev/internal/logging"
)

var logger = logging.New("errors")

// Init configures the global Sentry client from SENTRY_DSN. It's a no-op,
// logged at warn, when the variable isn't set.
func Init(version string) {
	log := logger.Sugar()

	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		log.Warn("SENTRY_DSN not set: skipping Sentry initialization")
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Release:          version,
	})
	if err != nil {
		log.Warnw("failed to initialize Sentry client", "error", err)
	}
}

// RecoverConnection captures a panic unwinding out of a single connection's
// dispatch loop and reports it to Sentry, then lets the caller's deferred
// conn.Close run and the goroutine exit. It never re-panics: a bug in one
// connection must not take the listener down with it.
func RecoverConnection(remoteAddr string) {
	if r := recover(); r != nil {
		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("remote_addr", remoteAddr)
		})
		hub.Recover(r)
		sentry.Flush(2 * time.Second)
		logger.Sugar().Errorw("recovered panic in connection handler", "remote_addr", remoteAddr, "panic", r)
	}
}
