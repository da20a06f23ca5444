package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/varlink/go/varlink"

	"github.com/podlink/podlink/pkg/errdefs"
	"github.com/podlink/podlink/pkg/log"
	"github.com/podlink/podlink/pkg/metrics"
	"github.com/podlink/podlink/pkg/tunnel"
)

// Session is one open request/response channel to the daemon. A session is
// single-use per acquisition: it holds exactly one live varlink connection
// and is not safe for concurrent or nested reuse.
type Session struct {
	conn    *varlink.Connection
	iface   string
	address string
	closed  bool
	logger  zerolog.Logger
}

func newSession(conn *varlink.Connection, iface, address, variant string) *Session {
	metrics.SessionsOpened.WithLabelValues(variant).Inc()
	s := &Session{
		conn:    conn,
		iface:   iface,
		address: address,
		logger:  log.WithComponent("session").With().Str("address", address).Logger(),
	}
	s.logger.Debug().Str("variant", variant).Msg("opened varlink connection")
	return s
}

// Call invokes method on the session's interface. in carries the named
// parameters (nil for none); the reply parameters are decoded into out.
// Daemon-reported faults are translated into DaemonError; transport
// failures are wrapped with the call context.
func (s *Session) Call(ctx context.Context, method string, in, out any) error {
	if s.closed || s.conn == nil {
		return fmt.Errorf("call %s.%s: session is closed", s.iface, method)
	}

	qualified := s.iface + "." + method
	metrics.CallsTotal.WithLabelValues(method).Inc()

	receive, err := s.conn.Send(ctx, qualified, in, 0)
	if err != nil {
		metrics.CallErrorsTotal.WithLabelValues("transport").Inc()
		return fmt.Errorf("call %s on %s: %w", qualified, s.address, err)
	}
	if _, err = receive(ctx, out); err != nil {
		return s.translate(qualified, err)
	}
	return nil
}

func (s *Session) translate(qualified string, err error) error {
	var verr *varlink.Error
	if errors.As(err, &verr) {
		de := errdefs.Translate(verr.Name, daemonMessage(verr.Parameters))
		metrics.CallErrorsTotal.WithLabelValues(string(de.Kind)).Inc()
		s.logger.Debug().Str("identifier", de.Identifier).Str("kind", string(de.Kind)).Msg("daemon fault")
		return de
	}
	metrics.CallErrorsTotal.WithLabelValues("transport").Inc()
	return fmt.Errorf("call %s on %s: %w", qualified, s.address, err)
}

// Close releases the underlying channel. The second and later calls are
// no-ops, so every exit path may close unconditionally.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.conn.Close()
	s.logger.Debug().Msg("closed varlink connection")
	return err
}

// daemonMessage extracts a human-readable message from a varlink error's
// parameters, whatever shape the daemon sent them in.
func daemonMessage(params any) string {
	switch p := params.(type) {
	case nil:
		return ""
	case string:
		return p
	case *json.RawMessage:
		if p == nil {
			return ""
		}
		return daemonMessage(*p)
	case json.RawMessage:
		var m map[string]any
		if json.Unmarshal(p, &m) == nil {
			return messageFromMap(m)
		}
		return string(p)
	case map[string]any:
		return messageFromMap(p)
	default:
		return fmt.Sprint(p)
	}
}

func messageFromMap(m map[string]any) string {
	for _, key := range []string{"reason", "message", "error"} {
		if v, ok := m[key]; ok {
			return fmt.Sprint(v)
		}
	}
	if len(m) == 0 {
		return ""
	}
	b, _ := json.Marshal(m)
	return string(b)
}

// Opener opens transport sessions. The local and remote variants are
// selected by the connection context shape.
type Opener interface {
	Open(ctx context.Context) (*Session, error)
}

// NewOpener selects the opener variant for the context. portal is required
// for remote contexts and ignored for local ones.
func NewOpener(cc *ConnContext, portal *tunnel.Portal) Opener {
	if cc.Remote() {
		return &RemoteOpener{Context: cc, Portal: portal}
	}
	return &LocalOpener{Context: cc}
}

// LocalOpener opens sessions directly over the local Unix socket.
type LocalOpener struct {
	Context *ConnContext
}

// Open dials the daemon's local socket and binds the interface.
func (o *LocalOpener) Open(ctx context.Context) (*Session, error) {
	conn, err := varlink.NewConnection(ctx, o.Context.URI())
	if err != nil {
		return nil, &errdefs.ConnectionError{Address: o.Context.Address(), Err: err}
	}
	return newSession(conn, o.Context.Interface(), o.Context.Address(), "local"), nil
}

// RemoteOpener opens sessions over a tunnel's forwarded socket, consulting
// the portal so one ssh session serves every connection to the same
// destination.
type RemoteOpener struct {
	Context *ConnContext
	Portal  *tunnel.Portal

	// Bore overrides tunnel creation when set; used by tests.
	Bore func(ctx context.Context) (tunnel.Forwarder, error)
}

// Open obtains a live tunnel for the destination (creating one if absent)
// and dials the forwarded socket. If the dial fails on a tunnel this call
// just created, the tunnel is closed before the error propagates; a reused
// tunnel is left open for its other sessions.
func (o *RemoteOpener) Open(ctx context.Context) (*Session, error) {
	factory := func() (tunnel.Forwarder, error) {
		if o.Bore != nil {
			return o.Bore(ctx)
		}
		t := tunnel.New(o.Context.TunnelSpec())
		if err := t.Bore(ctx); err != nil {
			return nil, err
		}
		return t, nil
	}

	fwd, reused, err := o.Portal.GetOrCreate(o.Context.DestinationKey(), factory)
	if err != nil {
		return nil, err
	}

	conn, err := varlink.NewConnection(ctx, "unix:"+fwd.Socket())
	if err != nil {
		if !reused {
			_ = fwd.Close()
		}
		return nil, &errdefs.ConnectionError{Address: o.Context.Address(), Err: err}
	}
	return newSession(conn, o.Context.Interface(), o.Context.Address(), "remote"), nil
}

// WithSession is the scoped-acquisition boundary for daemon calls: it opens
// a session from opener, runs fn, and releases the session exactly once on
// every exit path, including panics.
func WithSession(ctx context.Context, opener Opener, fn func(*Session) error) (err error) {
	s, err := opener.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	err = fn(s)
	return err
}
