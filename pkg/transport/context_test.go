package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podlink/podlink/pkg/errdefs"
)

func TestNewContextLocal(t *testing.T) {
	cc, err := NewContext("unix:/run/daemon.sock", "io.podman", Options{})
	require.NoError(t, err)

	assert.False(t, cc.Remote())
	assert.Equal(t, "unix:/run/daemon.sock", cc.URI())
	assert.Equal(t, "io.podman", cc.Interface())
	assert.Equal(t, "/run/daemon.sock", cc.LocalPath())
	assert.Equal(t, "unix:/run/daemon.sock-io.podman", cc.Address())
}

func TestNewContextRemote(t *testing.T) {
	cc, err := NewContext("unix:/tmp/podman.sock", "io.podman", Options{
		RemoteURI:    "ssh://core@host.example.com:2222/run/podman/io.podman",
		IdentityFile: "/home/core/.ssh/id_rsa",
		IgnoreHosts:  true,
	})
	require.NoError(t, err)

	assert.True(t, cc.Remote())
	assert.Equal(t, "core@host.example.com:2222:/run/podman/io.podman", cc.DestinationKey())

	spec := cc.TunnelSpec()
	assert.Equal(t, "core", spec.Username)
	assert.Equal(t, "host.example.com", spec.Hostname)
	assert.Equal(t, 2222, spec.Port)
	assert.Equal(t, "/run/podman/io.podman", spec.RemotePath)
	assert.Equal(t, "/home/core/.ssh/id_rsa", spec.IdentityFile)
	assert.True(t, spec.IgnoreHosts)
}

func TestNewContextRemoteDefaultPort(t *testing.T) {
	cc, err := NewContext("unix:/tmp/podman.sock", "io.podman", Options{
		RemoteURI: "ssh://core@host/run/podman/io.podman",
	})
	require.NoError(t, err)
	assert.Equal(t, "core@host:22:/run/podman/io.podman", cc.DestinationKey())
}

func TestNewContextValidation(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		iface   string
		opts    Options
		wantMsg string
	}{
		{"missing uri", "", "io.podman", Options{}, "uri is required"},
		{"missing interface", "unix:/run/daemon.sock", "", Options{}, "interface is required"},
		{"uri without path", "unix://", "io.podman", Options{}, "path is required for uri"},
		{
			"remote missing username",
			"unix:/tmp/podman.sock", "io.podman",
			Options{RemoteURI: "ssh://host/run/daemon.sock"},
			"username is required",
		},
		{
			"remote missing path",
			"unix:/tmp/podman.sock", "io.podman",
			Options{RemoteURI: "ssh://core@host"},
			"path is required",
		},
		{
			"remote missing hostname",
			"unix:/tmp/podman.sock", "io.podman",
			Options{RemoteURI: "ssh://core@/run/daemon.sock"},
			"hostname is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContext(tt.uri, tt.iface, tt.opts)
			require.Error(t, err)
			assert.True(t, errdefs.IsConfiguration(err), "want ConfigurationError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
