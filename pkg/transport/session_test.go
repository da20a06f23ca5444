package transport

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podlink/podlink/pkg/errdefs"
	"github.com/podlink/podlink/pkg/tunnel"
)

func localContext(t *testing.T, sock string) *ConnContext {
	t.Helper()
	cc, err := NewContext("unix:"+sock, "io.podman", Options{})
	require.NoError(t, err)
	return cc
}

func remoteContext(t *testing.T) *ConnContext {
	t.Helper()
	cc, err := NewContext("unix:/tmp/podman.sock", "io.podman", Options{
		RemoteURI: "ssh://core@host/run/podman/io.podman",
	})
	require.NoError(t, err)
	return cc
}

func TestLocalSessionCallAndClose(t *testing.T) {
	sock := startDaemon(t, versionHandler)
	opener := NewOpener(localContext(t, sock), nil)
	_, isLocal := opener.(*LocalOpener)
	assert.True(t, isLocal)

	s, err := opener.Open(context.Background())
	require.NoError(t, err)

	var out struct {
		Version struct {
			Version string `json:"version"`
		} `json:"version"`
	}
	require.NoError(t, s.Call(context.Background(), "GetVersion", nil, &out))
	assert.Equal(t, "1.4.2", out.Version.Version)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close must be a no-op")

	err = s.Call(context.Background(), "GetVersion", nil, &out)
	assert.ErrorContains(t, err, "session is closed")
}

func TestLocalOpenUnreachableDaemon(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "missing.sock")
	opener := NewOpener(localContext(t, sock), nil)

	_, err := opener.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errdefs.IsConnection(err))
	assert.Contains(t, err.Error(), "Is the daemon socket or service running?")
}

func TestWithSessionClosesOnEveryPath(t *testing.T) {
	sock := startDaemon(t, versionHandler)
	opener := &trackingOpener{inner: NewOpener(localContext(t, sock), nil)}
	ctx := context.Background()

	// Normal return.
	require.NoError(t, WithSession(ctx, opener, func(s *Session) error { return nil }))
	assert.True(t, opener.last.closed)

	// Daemon fault from the call.
	err := WithSession(ctx, opener, func(s *Session) error {
		return s.Call(ctx, "NoSuchMethod", nil, &struct{}{})
	})
	require.Error(t, err)
	assert.True(t, opener.last.closed)

	// Unrelated error from the body.
	err = WithSession(ctx, opener, func(s *Session) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, opener.last.closed)

	// Panic in the body still releases the channel.
	func() {
		defer func() { _ = recover() }()
		_ = WithSession(ctx, opener, func(s *Session) error { panic("boom") })
	}()
	assert.True(t, opener.last.closed)
}

type trackingOpener struct {
	inner Opener
	last  *Session
}

func (o *trackingOpener) Open(ctx context.Context) (*Session, error) {
	s, err := o.inner.Open(ctx)
	if err == nil {
		o.last = s
	}
	return s, err
}

func TestCallTranslatesDaemonFault(t *testing.T) {
	sock := startDaemon(t, func(method string, _ json.RawMessage) string {
		return `{"error":"io.podman.ContainerNotFound","parameters":{"reason":"no container with id xyz"}}`
	})
	opener := NewOpener(localContext(t, sock), nil)

	err := WithSession(context.Background(), opener, func(s *Session) error {
		return s.Call(context.Background(), "GetContainer", map[string]any{"name": "xyz"}, &struct{}{})
	})
	require.Error(t, err)
	assert.True(t, errdefs.IsKind(err, errdefs.KindContainerNotFound))
	assert.Contains(t, err.Error(), "no container with id xyz")
}

func TestCallUnknownFaultFallsBack(t *testing.T) {
	sock := startDaemon(t, func(method string, _ json.RawMessage) string {
		return `{"error":"XYZ123","parameters":{"reason":"original message"}}`
	})
	opener := NewOpener(localContext(t, sock), nil)

	err := WithSession(context.Background(), opener, func(s *Session) error {
		return s.Call(context.Background(), "GetContainer", map[string]any{"name": "xyz"}, &struct{}{})
	})
	require.Error(t, err)
	assert.True(t, errdefs.IsKind(err, errdefs.KindErrorOccurred))

	var de *errdefs.DaemonError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "XYZ123", de.Identifier)
	assert.Equal(t, "original message", de.Message)
}

type countingBorer struct {
	fwd   tunnel.Forwarder
	count int
}

func (b *countingBorer) bore(context.Context) (tunnel.Forwarder, error) {
	b.count++
	return b.fwd, nil
}

type staticForwarder struct {
	socket string
	alive  bool
	closes int
}

func (f *staticForwarder) Socket() string { return f.socket }
func (f *staticForwarder) Alive() bool    { return f.alive }
func (f *staticForwarder) Close() error {
	f.alive = false
	f.closes++
	return nil
}

func TestRemoteOpenerReusesTunnel(t *testing.T) {
	sock := startDaemon(t, versionHandler)
	fwd := &staticForwarder{socket: sock, alive: true}
	borer := &countingBorer{fwd: fwd}
	portal := tunnel.NewPortal()

	opener := &RemoteOpener{Context: remoteContext(t), Portal: portal, Bore: borer.bore}

	for i := 0; i < 2; i++ {
		s, err := opener.Open(context.Background())
		require.NoError(t, err)
		var out struct{}
		require.NoError(t, s.Call(context.Background(), "GetVersion", nil, &out))
		require.NoError(t, s.Close())
	}

	assert.Equal(t, 1, borer.count, "one tunnel per destination")
	assert.Equal(t, 1, portal.Len())
	assert.Equal(t, 0, fwd.closes, "closing sessions must not close the tunnel")
}

func TestRemoteOpenerClosesCreatedTunnelOnFailure(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "nowhere.sock")
	fwd := &staticForwarder{socket: bad, alive: true}
	borer := &countingBorer{fwd: fwd}
	portal := tunnel.NewPortal()

	opener := &RemoteOpener{Context: remoteContext(t), Portal: portal, Bore: borer.bore}

	_, err := opener.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errdefs.IsConnection(err))
	assert.Equal(t, 1, fwd.closes, "a tunnel created by the failing open must be closed")
}

func TestRemoteOpenerKeepsReusedTunnelOnFailure(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "nowhere.sock")
	fwd := &staticForwarder{socket: bad, alive: true}
	portal := tunnel.NewPortal()

	// Seed the portal so the opener sees a reused tunnel.
	_, _, err := portal.GetOrCreate(remoteContext(t).DestinationKey(),
		func() (tunnel.Forwarder, error) { return fwd, nil })
	require.NoError(t, err)

	opener := &RemoteOpener{Context: remoteContext(t), Portal: portal}

	_, err = opener.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errdefs.IsConnection(err))
	assert.Equal(t, 0, fwd.closes, "a reused tunnel must survive a failed open")
}
