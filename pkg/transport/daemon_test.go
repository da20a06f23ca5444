package transport

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// startDaemon serves a fake varlink daemon on a Unix socket. handle
// receives the qualified method and raw parameters and returns the full
// reply document (without the trailing NUL).
func startDaemon(t *testing.T, handle func(method string, params json.RawMessage) string) string {
	t.Helper()

	sock := filepath.Join(t.TempDir(), "daemon.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(conn, handle)
		}
	}()
	return sock
}

func serveConn(conn net.Conn, handle func(method string, params json.RawMessage) string) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		raw, err := r.ReadBytes(0)
		if err != nil {
			return
		}
		var call struct {
			Method     string          `json:"method"`
			Parameters json.RawMessage `json:"parameters"`
		}
		if json.Unmarshal(raw[:len(raw)-1], &call) != nil {
			return
		}
		reply := handle(call.Method, call.Parameters)
		if _, err := conn.Write(append([]byte(reply), 0)); err != nil {
			return
		}
	}
}

// versionHandler answers GetVersion and reports anything else as an
// unimplemented method fault.
func versionHandler(method string, _ json.RawMessage) string {
	if method == "io.podman.GetVersion" {
		return `{"parameters":{"version":{"version":"1.4.2","go_version":"go1.25"}}}`
	}
	return `{"error":"org.varlink.service.MethodNotImplemented","parameters":{"method":"` + method + `"}}`
}
