// Package metrics exposes prometheus collectors for the server, replacing
// the hand-rolled, mutex-guarded counters the cache-server teacher used.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// CommandsTotal counts, by action and outcome, every command executed
	// immediately: transaction-control commands and commands queued inside
	// MULTI are not counted here.
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyev",
		Name:      "commands_total",
		Help:      "Total commands dispatched, labeled by action and outcome.",
	}, []string{"action", "outcome"})

	// ConnectionsActive tracks the number of currently open connections.
	ConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kyev",
		Name:      "connections_active",
		Help:      "Number of currently open client connections.",
	})

	// ConnectionsTotal counts every accepted connection.
	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyev",
		Name:      "connections_total",
		Help:      "Total connections accepted since process start.",
	})

	// KeysExpired counts keys removed by the expiration scheduler.
	KeysExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyev",
		Name:      "keys_expired_total",
		Help:      "Total keys removed by the background expiration scheduler.",
	})

	// TransactionsTotal counts EXEC outcomes.
	TransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyev",
		Name:      "transactions_total",
		Help:      "Total EXEC attempts, labeled by outcome (committed, aborted_watch, aborted_error, no_transaction).",
	}, []string{"outcome"})

	// CommandDuration tracks how long each dispatched command takes to run,
	// including any wait for the Keyspace lock, labeled by action.
	CommandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kyev",
		Name:      "command_duration_seconds",
		Help:      "Time spent executing a dispatched command, labeled by action.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})
)

// NewRegistry returns a registry holding every collector above, which the
// server exposes on its metrics endpoint. A
// dedicated registry, rather than the global default, keeps test processes
// that construct more than one server from panicking on duplicate
// registration.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(CommandsTotal, ConnectionsActive, ConnectionsTotal, KeysExpired, TransactionsTotal, CommandDuration)
	return reg
}
