package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podlink/podlink/pkg/errdefs"
)

const sample = `
default: staging
connections:
  local:
    uri: unix:/run/podman/io.podman
  staging:
    uri: unix:/tmp/podman.sock
    interface: io.podman
    remote_uri: ssh://core@staging.example.com/run/podman/io.podman
    identity_file: /home/core/.ssh/id_rsa
    ignore_hosts: true
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", f.Default)
	assert.Len(t, f.Connections, 2)
}

func TestLookup(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	conn, err := f.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "ssh://core@staging.example.com/run/podman/io.podman", conn.RemoteURI)
	assert.True(t, conn.IgnoreHosts)

	conn, err = f.Lookup("local")
	require.NoError(t, err)
	assert.Equal(t, "unix:/run/podman/io.podman", conn.URI)
	assert.Empty(t, conn.RemoteURI)

	_, err = f.Lookup("production")
	require.Error(t, err)
	assert.True(t, errdefs.IsConfiguration(err))
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
connections:
  local:
    uri: unix:/run/podman/io.podman
    proxy: socks5://localhost
`))
	require.Error(t, err)
	assert.True(t, errdefs.IsConfiguration(err))
}

func TestLookupNoDefault(t *testing.T) {
	f, err := Parse([]byte("connections: {}\n"))
	require.NoError(t, err)

	_, err = f.Lookup("")
	require.Error(t, err)
	assert.True(t, errdefs.IsConfiguration(err))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
