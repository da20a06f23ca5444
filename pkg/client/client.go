package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/podlink/podlink/pkg/config"
	"github.com/podlink/podlink/pkg/log"
	"github.com/podlink/podlink/pkg/transport"
	"github.com/podlink/podlink/pkg/tunnel"
)

// logOnce guards the one-time logger setup driven by PODLINK_LOG_LEVEL.
var logOnce sync.Once

// args carries the named parameters of one RPC call.
type args = map[string]any

type options struct {
	uri    string
	iface  string
	remote transport.Options
	portal *tunnel.Portal
	opener transport.Opener
}

// Option configures a Client.
type Option func(*options)

// WithURI sets the local varlink address (default unix:/run/podman/io.podman).
func WithURI(uri string) Option {
	return func(o *options) { o.uri = uri }
}

// WithInterface sets the varlink interface name (default io.podman).
func WithInterface(iface string) Option {
	return func(o *options) { o.iface = iface }
}

// WithRemoteURI routes the connection through an ssh tunnel to the daemon
// socket on a remote host, ssh://user@hostname[:port]/path_to_socket.
func WithRemoteURI(uri string) Option {
	return func(o *options) { o.remote.RemoteURI = uri }
}

// WithIdentityFile sets the private-key identity file for the tunnel.
func WithIdentityFile(path string) Option {
	return func(o *options) { o.remote.IdentityFile = path }
}

// WithIgnoreHosts disables host-key verification for the tunnel.
func WithIgnoreHosts() Option {
	return func(o *options) { o.remote.IgnoreHosts = true }
}

// WithKnownHosts sets an alternate known-hosts file for the tunnel.
func WithKnownHosts(path string) Option {
	return func(o *options) { o.remote.KnownHosts = path }
}

// WithPortal supplies a shared tunnel portal. Without it a remote client
// owns a private portal that Close tears down.
func WithPortal(p *tunnel.Portal) Option {
	return func(o *options) { o.portal = p }
}

// WithConnection applies a destination loaded from a connections file.
func WithConnection(conn config.Connection) Option {
	return func(o *options) {
		if conn.URI != "" {
			o.uri = conn.URI
		}
		if conn.Interface != "" {
			o.iface = conn.Interface
		}
		o.remote.RemoteURI = conn.RemoteURI
		o.remote.IdentityFile = conn.IdentityFile
		o.remote.IgnoreHosts = conn.IgnoreHosts
		o.remote.KnownHosts = conn.KnownHosts
	}
}

// withOpener overrides session opening; tests use it.
func withOpener(op transport.Opener) Option {
	return func(o *options) { o.opener = op }
}

// Client talks to a container daemon over varlink, locally or through an
// ssh tunnel. Construction validates the connection description and pings
// the daemon once, so an unreachable daemon fails fast.
type Client struct {
	cc         *transport.ConnContext
	opener     transport.Opener
	portal     *tunnel.Portal
	ownsPortal bool
	logger     zerolog.Logger

	containers *Containers
	images     *Images
	pods       *Pods
	volumes    *Volumes
	system     *System
}

// New constructs a Client. The PODLINK_LOG_LEVEL environment variable is
// read once, at first construction, to configure logging.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	logOnce.Do(func() {
		log.Init(log.Config{Level: log.LevelFromEnv()})
	})

	o := options{
		uri:   transport.DefaultURI,
		iface: transport.DefaultInterface,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cc, err := transport.NewContext(o.uri, o.iface, o.remote)
	if err != nil {
		return nil, err
	}

	portal := o.portal
	ownsPortal := false
	if cc.Remote() && portal == nil {
		portal = tunnel.NewPortal()
		ownsPortal = true
	}

	opener := o.opener
	if opener == nil {
		opener = transport.NewOpener(cc, portal)
	}

	c := &Client{
		cc:         cc,
		opener:     opener,
		portal:     portal,
		ownsPortal: ownsPortal,
		logger:     log.WithComponent("client").With().Str("address", cc.Address()).Logger(),
	}
	c.containers = &Containers{c: c}
	c.images = &Images{c: c}
	c.pods = &Pods{c: c}
	c.volumes = &Volumes{c: c}
	c.system = &System{c: c}

	// Quick validation of the connection data provided.
	if err := c.system.Ping(ctx); err != nil {
		if ownsPortal {
			_ = portal.Close()
		}
		return nil, err
	}
	c.logger.Debug().Bool("remote", cc.Remote()).Msg("client connected")
	return c, nil
}

// Close releases resources the client owns. A portal supplied via
// WithPortal is left to its owner.
func (c *Client) Close() error {
	if c.ownsPortal && c.portal != nil {
		return c.portal.Close()
	}
	return nil
}

// Context returns the validated connection context.
func (c *Client) Context() *transport.ConnContext { return c.cc }

// Containers accesses the container facade.
func (c *Client) Containers() *Containers { return c.containers }

// Images accesses the image facade.
func (c *Client) Images() *Images { return c.images }

// Pods accesses the pod facade.
func (c *Client) Pods() *Pods { return c.pods }

// Volumes accesses the volume facade.
func (c *Client) Volumes() *Volumes { return c.volumes }

// System accesses daemon-level information.
func (c *Client) System() *System { return c.system }

// call runs one RPC in its own scoped session.
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	return transport.WithSession(ctx, c.opener, func(s *transport.Session) error {
		return s.Call(ctx, method, in, out)
	})
}

// refresh runs one fetch-style RPC, retrying on transient channel resets.
func (c *Client) refresh(ctx context.Context, method string, in, out any) error {
	return transport.Refresh(ctx, c.opener, func(s *transport.Session) error {
		return s.Call(ctx, method, in, out)
	})
}
