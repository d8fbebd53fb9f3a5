/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/btnmasher/relayd/shared/logfmt"
	"github.com/btnmasher/util"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// Server is the root value of one relay: its identity, its registries,
// its dispatcher, and the listener it accepts connections on. Grounded
// on the teacher's server.go Server, trimmed of everything TLS/RFC-ISupport
// related this protocol doesn't have, and extended with the password and
// port the teacher's own cmd/dircd/main.go already expected a functional-
// options constructor to accept.
type Server struct {
	hostname string
	network  string
	password string
	port     int

	support *util.ConcurrentMapString

	clients    *ClientRegistry
	channels   *ChannelRegistry
	dispatcher *Dispatcher

	logger *logrus.Logger

	gracefulCtx     context.Context
	gracefulTimeout time.Duration

	nextHandle atomic.Uint64
	events     chan event

	listener net.Listener
}

// Option configures a Server at construction time, following the same
// functional-options shape cmd/dircd/main.go already calls.
type Option func(*Server)

// WithHostname sets the server's display hostname, recorded only in the
// server's metadata map (this protocol has no HOSTMASK/ISupport wire surface).
func WithHostname(hostname string) Option {
	return func(s *Server) { s.hostname = hostname }
}

// WithNetwork sets the server's display network name, recorded only in
// the server's metadata map.
func WithNetwork(network string) Option {
	return func(s *Server) { s.network = network }
}

// WithPassword sets the shared server password every connection's
// handshake is checked against.
func WithPassword(password string) Option {
	return func(s *Server) { s.password = password }
}

// WithPort sets the TCP port ListenAndServe binds to.
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

// WithLogger replaces the default logger instance.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithLogLevel sets the logger's minimum level.
func WithLogLevel(level logrus.Level) Option {
	return func(s *Server) { s.logger.SetLevel(level) }
}

// WithDefaultLogFormatter installs the teacher's nested-logrus-formatter,
// ordering fields so a connection's trace tag and the verb being handled
// lead every structured line.
func WithDefaultLogFormatter() Option {
	return func(s *Server) {
		s.logger.SetFormatter(&nested.Formatter{
			HideKeys:    true,
			FieldsOrder: []string{"component", "sub-component", "trace", "verb"},
		})
	}
}

// WithLogStyle installs shared/logfmt as the logger's formatter instead of
// nested-logrus-formatter, for deployments that want ANSI-styled output.
func WithLogStyle(opts ...logfmt.FormatOption) Option {
	return func(s *Server) {
		s.logger.SetFormatter(logfmt.New(opts...))
	}
}

// WithGracefulShutdown arranges for ctx's cancellation to close the
// listener at once and, after timeout has passed, every connection still
// open, so that Serve returns once their readers have exited.
func WithGracefulShutdown(ctx context.Context, timeout time.Duration) Option {
	return func(s *Server) {
		s.gracefulCtx = ctx
		s.gracefulTimeout = timeout
	}
}

// NewServer builds a Server from the given options, populating sensible
// defaults for anything left unset.
func NewServer(opts ...Option) *Server {
	s := &Server{
		hostname:        "relayd",
		network:         "relaynet",
		support:         util.NewConcurrentMapString(),
		clients:         NewClientRegistry(),
		channels:        NewChannelRegistry(),
		logger:          logrus.New(),
		gracefulCtx:     context.Background(),
		gracefulTimeout: GracefulShutdownTimeout,
		events:          make(chan event, EventQueueLength),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.dispatcher = NewDispatcher(s.logger.WithField("component", "relayd"))

	s.support.Add("hostname", s.hostname)
	s.support.Add("network", s.network)

	return s
}

// ListenAndServe binds a TCP listener on the configured port and serves
// it, blocking until the listener is closed.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		s.logger.WithError(err).Error("listen failed")
		return err
	}
	return s.Serve(listener)
}

// Serve runs the Reactor over an already-bound listener: a dedicated
// accept goroutine and one reader goroutine per connection only ever
// produce events onto s.events, and this goroutine is their single
// consumer, giving spec.md 5's ordering guarantees for free from Go's
// scheduler around one goroutine. See REDESIGN FLAG R1 and DESIGN.md.
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	wg := conc.NewWaitGroup()

	wg.Go(func() { s.acceptLoop(wg, listener) })

	go func() {
		<-s.gracefulCtx.Done()
		s.logger.Info("shutdown requested, closing listener")
		listener.Close()
		time.AfterFunc(s.gracefulTimeout, func() {
			for _, client := range s.clients.clients.Values() {
				_ = client.conn.Close()
			}
		})
	}()

	go func() {
		wg.Wait()
		close(s.events)
	}()

	for ev := range s.events {
		s.handle(ev)
	}

	if s.gracefulCtx.Err() != nil {
		return ErrServerClosed
	}
	return nil
}

// acceptLoop owns the listener exclusively. On success it mints a Handle,
// wraps the socket in a Conn, posts an evAccept event, and starts the
// connection's own reader goroutine. On transient errors it backs off
// exponentially up to AcceptRetryMax, mirroring the teacher's Serve loop
// almost line for line (tcpKeepAliveListener aside — Go's net package
// already enables TCP keepalive by default on *net.TCPConn).
func (s *Server) acceptLoop(wg *conc.WaitGroup, listener net.Listener) {
	var retryDelay time.Duration
	for {
		sock, err := listener.Accept()
		if err != nil {
			if s.gracefulCtx.Err() != nil {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() { //nolint:staticcheck
				if retryDelay == 0 {
					retryDelay = AcceptRetryDelay
				} else {
					retryDelay *= 2
				}
				if retryDelay > AcceptRetryMax {
					retryDelay = AcceptRetryMax
				}
				s.logger.WithError(err).Warnf("accept error, retrying in %s", retryDelay)
				time.Sleep(retryDelay)
				continue
			}
			s.logger.WithError(err).Error("accept failed permanently")
			return
		}
		retryDelay = 0

		handle := Handle(s.nextHandle.Add(1))
		conn := newConn(handle, sock)
		s.events <- event{kind: evAccept, handle: handle, conn: conn}
		wg.Go(func() { conn.readLoop(s.events, handle) })
	}
}
