// Package nntpserver binds the nntp protocol engine to a TCP (optionally
// TLS) listener: one accepted connection becomes one protocol session,
// running in its own goroutine until it quits or the peer goes away.
package nntpserver

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/abusenet/nntpserver"
	"github.com/sirupsen/logrus"
)

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger overrides the server's logrus logger (default:
// logrus.StandardLogger()).
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) { s.engine.Logger = l }
}

// WithMaxLineLength overrides the wire framer's line-length ceiling
// (default nntp.MaxLineLength) for every session this server accepts.
func WithMaxLineLength(n int) Option {
	return func(s *Server) { s.engine.MaxLineLength = n }
}

// WithIdleTimeout sets a read/write deadline applied to each accepted
// connection before every protocol-engine pass; zero (the default)
// disables deadlines entirely.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

// WithRequireSecureAuth withholds AUTHINFO USER from CAPABILITIES unless
// the connection is TLS, mirroring nntp.Engine.RequireSecureAuth.
func WithRequireSecureAuth(require bool) Option {
	return func(s *Server) { s.engine.RequireSecureAuth = require }
}

// Server binds a Backend to a listening socket and dispatches accepted
// connections to the protocol engine.
type Server struct {
	engine      *nntp.Engine
	idleTimeout time.Duration
}

// New builds a Server around backend, applying opts in order.
func New(backend nntp.Backend, opts ...Option) *Server {
	s := &Server{engine: nntp.NewEngine(backend)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds network/addr (typically "tcp", "host:119") and, if
// tlsConfig is non-nil, wraps the listener so every accepted connection is
// already past its TLS handshake by the time Serve hands it to the
// protocol engine. There is no STARTTLS: TLS is a listen-time decision.
func Listen(network, addr string, tlsConfig *tls.Config) (net.Listener, error) {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		ln = tls.NewListener(ln, tlsConfig)
	}
	return ln, nil
}

// Serve accepts connections from ln until it returns a permanent error
// (typically because ln was closed), spawning one goroutine per connection.
// A temporary accept error is logged and does not stop the loop.
func (s *Server) Serve(ln net.Listener) error {
	log := s.logger()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				log.WithError(err).Warn("temporary accept error")
				continue
			}
			return err
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	if s.idleTimeout > 0 {
		conn = &deadlineConn{Conn: conn, timeout: s.idleTimeout}
	}
	s.engine.Serve(conn)
}

func (s *Server) logger() *logrus.Logger {
	if s.engine.Logger != nil {
		return s.engine.Logger
	}
	return logrus.StandardLogger()
}

// deadlineConn refreshes a read/write deadline on every Read and Write,
// turning a configured idle timeout into per-operation enforcement without
// the protocol engine needing to know about it.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	_ = c.Conn.SetDeadline(time.Now().Add(c.timeout))
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	_ = c.Conn.SetDeadline(time.Now().Add(c.timeout))
	return c.Conn.Write(b)
}
