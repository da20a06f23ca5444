package tunnel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/podlink/podlink/pkg/errdefs"
	"github.com/podlink/podlink/pkg/log"
)

const (
	// BoreTimeout bounds how long Bore waits for the forward socket to
	// accept connections.
	BoreTimeout = 30 * time.Second

	// readyInterval is how often the forward socket is probed during Bore.
	readyInterval = 250 * time.Millisecond

	// stopTimeout bounds the graceful shutdown of the ssh subprocess
	// before it is killed.
	stopTimeout = 3 * time.Second

	// socketAttempts bounds retries when a generated socket path collides.
	socketAttempts = 3
)

// Spec describes the remote destination a tunnel forwards to.
type Spec struct {
	Username     string
	Hostname     string
	Port         int // 0 means the ssh default
	RemotePath   string
	IdentityFile string
	IgnoreHosts  bool
	KnownHosts   string
}

// Destination returns the normalized destination identifier, used as the
// portal cache key.
func (s Spec) Destination() string {
	port := s.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s@%s:%d:%s", s.Username, s.Hostname, port, s.RemotePath)
}

// Forwarder is the portal's and the transport's view of a tunnel: a local
// socket that forwards to the daemon, with liveness and close.
type Forwarder interface {
	Socket() string
	Alive() bool
	Close() error
}

// Tunnel forwards a uniquely-named local Unix socket to the daemon socket
// on a remote host through an ssh subprocess. A tunnel is bored once and
// its forwarding is then shared read-only by every session that reuses it
// through the portal.
type Tunnel struct {
	spec Spec

	socket string
	dir    string

	execPath string
	cmd      *exec.Cmd
	stderr   bytes.Buffer
	done     chan error
	exited   atomic.Bool

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool

	logger zerolog.Logger
}

// New creates a tunnel for the given spec. The subprocess is not started
// until Bore is called.
func New(spec Spec) *Tunnel {
	return &Tunnel{
		spec:     spec,
		execPath: "ssh",
		logger:   log.WithComponent("tunnel").With().Str("destination", spec.Destination()).Logger(),
	}
}

// Socket returns the local forward socket path. Empty until Bore succeeds.
func (t *Tunnel) Socket() string { return t.socket }

// Alive reports whether the forwarding subprocess is still running.
func (t *Tunnel) Alive() bool {
	return t.cmd != nil && !t.exited.Load() && !t.closed.Load()
}

// Bore allocates the local forward socket, starts the ssh subprocess, and
// blocks until the socket accepts connections or the readiness deadline
// elapses. Failures surface as TunnelError with any captured subprocess
// output.
func (t *Tunnel) Bore(ctx context.Context) error {
	if t.socket == "" {
		if err := t.allocateSocket(); err != nil {
			return err
		}
	}

	args := t.sshArgs()
	t.logger.Debug().Strs("args", args).Msg("starting ssh forwarding subprocess")

	t.cmd = exec.Command(t.execPath, args...)
	t.cmd.Stderr = &t.stderr
	if err := t.cmd.Start(); err != nil {
		t.cleanupSocket()
		return &errdefs.TunnelError{Reason: "failed to start ssh", Err: err}
	}

	t.done = make(chan error, 1)
	go func() {
		err := t.cmd.Wait()
		t.exited.Store(true)
		t.done <- err
	}()

	if err := t.waitForReady(ctx); err != nil {
		// Stop the subprocess before reading its captured output: the
		// stderr buffer is only stable once Wait has returned.
		_ = t.Close()
		var terr *errdefs.TunnelError
		if errors.As(err, &terr) && terr.Output == "" {
			terr.Output = t.stderr.String()
		}
		return err
	}

	t.logger.Debug().Str("socket", t.socket).Msg("tunnel bored")
	return nil
}

// Close terminates the subprocess and removes the forward socket file.
// Closing an already-closed or never-bored tunnel is a no-op.
func (t *Tunnel) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)

		if t.cmd != nil && t.cmd.Process != nil && !t.exited.Load() {
			if err := t.cmd.Process.Signal(syscall.SIGTERM); err != nil {
				t.logger.Debug().Err(err).Msg("SIGTERM failed")
			}
			select {
			case <-t.done:
			case <-time.After(stopTimeout):
				t.logger.Warn().Msg("ssh did not stop gracefully, killing")
				if err := t.cmd.Process.Kill(); err != nil {
					t.closeErr = fmt.Errorf("failed to kill ssh: %w", err)
				}
				<-t.done
			}
		}

		t.cleanupSocket()
		t.logger.Debug().Msg("tunnel closed")
	})
	return t.closeErr
}

func (t *Tunnel) allocateSocket() error {
	for attempt := 0; attempt < socketAttempts; attempt++ {
		dir, err := os.MkdirTemp("", "podlink-tunnel-")
		if err != nil {
			return &errdefs.TunnelError{Reason: "failed to create socket directory", Err: err}
		}
		sock := filepath.Join(dir, uuid.NewString()+".sock")
		if _, err := os.Stat(sock); err == nil {
			// Collision; generate a new name.
			_ = os.RemoveAll(dir)
			continue
		}
		t.dir = dir
		t.socket = sock
		return nil
	}
	return &errdefs.TunnelError{
		Reason: fmt.Sprintf("could not allocate a free socket path in %d attempts", socketAttempts),
	}
}

func (t *Tunnel) cleanupSocket() {
	if t.socket != "" {
		_ = os.Remove(t.socket)
	}
	if t.dir != "" {
		_ = os.RemoveAll(t.dir)
	}
}

func (t *Tunnel) sshArgs() []string {
	args := []string{"-nNT"}
	if t.spec.IdentityFile != "" {
		args = append(args, "-i", t.spec.IdentityFile)
	}
	if t.spec.Port != 0 {
		args = append(args, "-p", strconv.Itoa(t.spec.Port))
	}
	if t.spec.IgnoreHosts {
		args = append(args,
			"-o", "StrictHostKeyChecking=no",
			"-o", "UserKnownHostsFile=/dev/null")
	} else if t.spec.KnownHosts != "" {
		args = append(args, "-o", "UserKnownHostsFile="+t.spec.KnownHosts)
	}
	args = append(args,
		"-L", t.socket+":"+t.spec.RemotePath,
		t.spec.Username+"@"+t.spec.Hostname)
	return args
}

// waitForReady polls the forward socket until it accepts a connection.
func (t *Tunnel) waitForReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, BoreTimeout)
	defer cancel()

	ticker := time.NewTicker(readyInterval)
	defer ticker.Stop()

	for {
		if conn, err := net.DialTimeout("unix", t.socket, readyInterval); err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case err := <-t.done:
			return &errdefs.TunnelError{
				Reason: "ssh exited before the forward socket became ready",
				Output: t.stderr.String(),
				Err:    err,
			}
		case <-ctx.Done():
			// The subprocess is still running here, so its stderr buffer
			// cannot be read yet; Bore fills Output in after stopping it.
			return &errdefs.TunnelError{
				Reason: fmt.Sprintf("forward socket %s not ready", t.socket),
				Err:    &errdefs.TimeoutError{Op: "tunnel readiness", After: BoreTimeout},
			}
		case <-ticker.C:
		}
	}
}
