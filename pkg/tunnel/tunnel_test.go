package tunnel

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podlink/podlink/pkg/errdefs"
)

func TestSpecDestination(t *testing.T) {
	spec := Spec{Username: "core", Hostname: "host", RemotePath: "/run/podman/io.podman"}
	assert.Equal(t, "core@host:22:/run/podman/io.podman", spec.Destination())

	spec.Port = 2222
	assert.Equal(t, "core@host:2222:/run/podman/io.podman", spec.Destination())
}

func TestSSHArgs(t *testing.T) {
	tn := New(Spec{
		Username:     "core",
		Hostname:     "host",
		Port:         2222,
		RemotePath:   "/run/podman/io.podman",
		IdentityFile: "/home/core/.ssh/id_rsa",
		IgnoreHosts:  true,
	})
	tn.socket = "/tmp/podlink.sock"

	args := tn.sshArgs()
	assert.Equal(t, []string{
		"-nNT",
		"-i", "/home/core/.ssh/id_rsa",
		"-p", "2222",
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-L", "/tmp/podlink.sock:/run/podman/io.podman",
		"core@host",
	}, args)
}

func TestSSHArgsKnownHosts(t *testing.T) {
	tn := New(Spec{
		Username:   "core",
		Hostname:   "host",
		RemotePath: "/run/daemon.sock",
		KnownHosts: "/etc/ssh/known_hosts",
	})
	tn.socket = "/tmp/podlink.sock"

	args := tn.sshArgs()
	assert.Contains(t, args, "UserKnownHostsFile=/etc/ssh/known_hosts")
	assert.NotContains(t, args, "StrictHostKeyChecking=no")
	assert.NotContains(t, args, "-p")
}

func TestCloseNeverBored(t *testing.T) {
	tn := New(Spec{Username: "u", Hostname: "h", RemotePath: "/run/daemon.sock"})
	assert.NoError(t, tn.Close())
	assert.NoError(t, tn.Close())
	assert.False(t, tn.Alive())
}

func TestBoreFailsWhenSubprocessExits(t *testing.T) {
	tn := New(Spec{Username: "u", Hostname: "h", RemotePath: "/run/daemon.sock"})
	tn.execPath = "false" // exits immediately, never forwards

	err := tn.Bore(context.Background())
	require.Error(t, err)
	assert.True(t, errdefs.IsTunnel(err))
	assert.False(t, tn.Alive())
}

func TestBoreFailsWhenCommandMissing(t *testing.T) {
	tn := New(Spec{Username: "u", Hostname: "h", RemotePath: "/run/daemon.sock"})
	tn.execPath = "/nonexistent/ssh-binary"

	err := tn.Bore(context.Background())
	require.Error(t, err)
	assert.True(t, errdefs.IsTunnel(err))
}

// fakeSSH writes a stand-in forwarding binary that just stays alive.
func fakeSSH(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ssh")
	script := "#!/bin/sh\nexec sleep 30\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestBoreAndCloseIdempotent(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "forward.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	defer ln.Close()

	tn := New(Spec{Username: "u", Hostname: "h", RemotePath: "/run/daemon.sock"})
	tn.execPath = fakeSSH(t)
	tn.socket = sock // already listening, so readiness is immediate

	require.NoError(t, tn.Bore(context.Background()))
	assert.True(t, tn.Alive())
	assert.Equal(t, sock, tn.Socket())

	require.NoError(t, tn.Close())
	assert.False(t, tn.Alive())
	_, statErr := os.Stat(sock)
	assert.True(t, os.IsNotExist(statErr), "socket file should be removed on close")

	// Closing twice is a no-op, not an error.
	require.NoError(t, tn.Close())
}

// noisySSH writes a stand-in forwarding binary that chatters on stderr for
// its whole lifetime, like ssh -v does.
func noisySSH(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "noisy-ssh")
	script := "#!/bin/sh\nwhile true; do echo debug1: chatter >&2; sleep 0.02; done\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestBoreTimeoutCapturesOutputAfterStop(t *testing.T) {
	tn := New(Spec{Username: "u", Hostname: "h", RemotePath: "/run/daemon.sock"})
	tn.execPath = noisySSH(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := tn.Bore(ctx)
	require.Error(t, err)
	assert.True(t, errdefs.IsTimeout(err))

	// Diagnostic output is attached once the subprocess has been stopped,
	// never read while it is still writing.
	var terr *errdefs.TunnelError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Output, "debug1: chatter")
	assert.False(t, tn.Alive())
}

func TestBoreReadinessTimeoutRespectsContext(t *testing.T) {
	tn := New(Spec{Username: "u", Hostname: "h", RemotePath: "/run/daemon.sock"})
	tn.execPath = fakeSSH(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tn.Bore(ctx)
	require.Error(t, err)
	assert.True(t, errdefs.IsTunnel(err))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, tn.Alive())
}
