/*
Package tunnel forwards a local Unix socket to a daemon socket on a remote
host through an ssh subprocess.

A Tunnel owns the subprocess and a uniquely-named temporary forward socket.
Bore starts the subprocess and blocks until the socket accepts connections;
Close terminates the subprocess and removes the socket, and is idempotent.

The Portal caches tunnels by destination key (user@host:port:path) so
repeated connections to the same remote daemon share one ssh session.
Creation is single-winner under concurrent access, and tunnels found dead
are replaced lazily on next use. Tunnels persist until Portal.Close.
*/
package tunnel
