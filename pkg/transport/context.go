package transport

import (
	"net/url"
	"strconv"

	"github.com/podlink/podlink/pkg/errdefs"
	"github.com/podlink/podlink/pkg/tunnel"
)

const (
	// DefaultURI is the daemon's default systemd-style socket address.
	DefaultURI = "unix:/run/podman/io.podman"

	// DefaultInterface is the varlink interface the daemon serves.
	DefaultInterface = "io.podman"
)

const remoteFormat = `expected format "ssh://user@hostname[:port]/path_to_socket"`

// Options carries the optional remote-access parameters for a connection.
// The zero value describes a local connection.
type Options struct {
	RemoteURI    string
	IdentityFile string
	IgnoreHosts  bool
	KnownHosts   string
}

// ConnContext is an immutable description of how to reach the daemon:
// either a local Unix socket, or a remote socket tunneled through ssh.
// Construction is pure parsing and validation; no I/O occurs.
type ConnContext struct {
	uri       string
	iface     string
	localPath string

	remote       bool
	remotePath   string
	username     string
	hostname     string
	port         int
	identityFile string
	ignoreHosts  bool
	knownHosts   string
}

// NewContext validates uri and iface plus the optional remote parameters
// and produces a connection context. A partially populated remote
// description is a ConfigurationError; either the context is local-only or
// the full remote tuple is present.
func NewContext(uri, iface string, opts Options) (*ConnContext, error) {
	if uri == "" {
		return nil, errdefs.Configf("uri is required and cannot be empty")
	}
	if iface == "" {
		return nil, errdefs.Configf("interface is required and cannot be empty")
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, errdefs.Configf("invalid uri %q: %v", uri, err)
	}
	localPath := u.Path
	if localPath == "" {
		localPath = u.Opaque
	}
	if localPath == "" {
		return nil, errdefs.Configf(`path is required for uri, expected format "unix:/path_to_socket"`)
	}

	cc := &ConnContext{
		uri:       uri,
		iface:     iface,
		localPath: localPath,
	}

	if opts.RemoteURI == "" {
		return cc, nil
	}

	remote, err := url.Parse(opts.RemoteURI)
	if err != nil {
		return nil, errdefs.Configf("invalid remote_uri %q: %v", opts.RemoteURI, err)
	}
	if remote.User == nil || remote.User.Username() == "" {
		return nil, errdefs.Configf("username is required, %s", remoteFormat)
	}
	if remote.Path == "" {
		return nil, errdefs.Configf("path is required, %s", remoteFormat)
	}
	if remote.Hostname() == "" {
		return nil, errdefs.Configf("hostname is required, %s", remoteFormat)
	}

	port := 0
	if p := remote.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, errdefs.Configf("invalid port %q, %s", p, remoteFormat)
		}
	}

	cc.remote = true
	cc.remotePath = remote.Path
	cc.username = remote.User.Username()
	cc.hostname = remote.Hostname()
	cc.port = port
	cc.identityFile = opts.IdentityFile
	cc.ignoreHosts = opts.IgnoreHosts
	cc.knownHosts = opts.KnownHosts
	return cc, nil
}

// URI returns the local varlink address.
func (c *ConnContext) URI() string { return c.uri }

// Interface returns the varlink interface name calls are addressed to.
func (c *ConnContext) Interface() string { return c.iface }

// LocalPath returns the filesystem path of the local socket.
func (c *ConnContext) LocalPath() string { return c.localPath }

// Remote reports whether the context describes a tunneled connection.
func (c *ConnContext) Remote() bool { return c.remote }

// Address identifies the connection for diagnostics.
func (c *ConnContext) Address() string { return c.uri + "-" + c.iface }

// TunnelSpec returns the tunnel destination for a remote context.
func (c *ConnContext) TunnelSpec() tunnel.Spec {
	return tunnel.Spec{
		Username:     c.username,
		Hostname:     c.hostname,
		Port:         c.port,
		RemotePath:   c.remotePath,
		IdentityFile: c.identityFile,
		IgnoreHosts:  c.ignoreHosts,
		KnownHosts:   c.knownHosts,
	}
}

// DestinationKey returns the normalized portal cache key for a remote
// context.
func (c *ConnContext) DestinationKey() string {
	return c.TunnelSpec().Destination()
}
