// Package server implements the Acceptor and Connection Dispatcher: it
// accepts TCP connections and runs each one's read/parse/execute/write
// cycle against a shared Keyspace.
package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jffjs/kyev/internal/logging"
	"github.com/jffjs/kyev/internal/metrics"
	"github.com/jffjs/kyev/internal/store"
)

// Defaults mirror config.DefaultConfig; a caller that never calls SetLimits
// (e.g. a test dialing New directly) gets the same behavior this server
// shipped with before limits were configurable.
const (
	defaultMaxClients = 10000
	defaultReadBuffer = 4096
	defaultTimeout    = 30 * time.Second
)

// Server is the Acceptor: it owns the listening socket and the process-
// wide Keyspace every accepted connection shares.
type Server struct {
	addr string
	log  *zap.Logger

	ks    *store.Keyspace
	bytes *bytePool

	maxClients int
	readBuffer int
	timeout    time.Duration
	active     int64 // atomic: connections accepted and not yet closed

	mu       sync.Mutex
	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New constructs a Server bound to addr (not yet listening).
func New(addr string, log *zap.Logger) *Server {
	return &Server{
		addr:       addr,
		log:        log,
		ks:         store.NewKeyspace(),
		bytes:      newBytePool(),
		quit:       make(chan struct{}),
		maxClients: defaultMaxClients,
		readBuffer: defaultReadBuffer,
		timeout:    defaultTimeout,
	}
}

// SetLimits configures the connection cap, per-connection read buffer size,
// and idle read timeout enforced by the acceptor and dispatcher. Call
// before Serve; zero/negative timeout disables the idle deadline.
func (s *Server) SetLimits(maxClients, readBuffer int, timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxClients = maxClients
	s.readBuffer = readBuffer
	s.timeout = timeout
}

// Listen binds the listening socket without accepting connections yet, so
// callers can discover the bound address (useful with a ":0" port) before
// handing off to Serve.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound listener's address. Only meaningful after Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServe binds the listener and accepts connections until
// Shutdown is called, handing each one to its own dispatcher goroutine.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Serve accepts connections on an already-bound listener (see Listen)
// until Shutdown is called.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.log.Info("listening", zap.String("addr", s.addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			s.log.Warn("accept error", zap.Error(err))
			continue
		}

		s.mu.Lock()
		maxClients := s.maxClients
		s.mu.Unlock()
		if atomic.LoadInt64(&s.active) >= int64(maxClients) {
			s.log.Warn("rejecting connection: max clients reached",
				zap.String("remote_addr", conn.RemoteAddr().String()),
				zap.Int("max_clients", maxClients))
			conn.Close()
			continue
		}

		metrics.ConnectionsTotal.Inc()
		metrics.ConnectionsActive.Inc()
		atomic.AddInt64(&s.active, 1)
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer metrics.ConnectionsActive.Dec()
	defer atomic.AddInt64(&s.active, -1)
	defer conn.Close()

	addr := conn.RemoteAddr().String()

	s.ks.Lock()
	clientID := s.ks.Raw().AddClient(addr)
	s.ks.Unlock()

	s.mu.Lock()
	readBuffer, timeout := s.readBuffer, s.timeout
	s.mu.Unlock()

	c := newConnection(conn, s.ks, clientID, s.log, s.bytes, readBuffer, timeout)
	c.serve()

	s.ks.Lock()
	s.ks.Raw().RemoveClient(addr)
	s.ks.Unlock()
}

// Shutdown closes the listener. The acceptor loop stops after its current
// Accept call; already-open connections keep running until each client
// closes its own stream (§5).
func (s *Server) Shutdown() {
	close(s.quit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

// Wait blocks until every connection goroutine accepted before Shutdown
// has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

// ServeMetrics runs the Prometheus /metrics and /log-level HTTP endpoints on
// addr in a background goroutine. If that HTTP server stops (for example it
// fails to bind), the error is logged at warn level; it is not returned.
func ServeMetrics(addr string, log *zap.Logger) {
	reg := metrics.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/log-level", logging.LevelHandler)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}
