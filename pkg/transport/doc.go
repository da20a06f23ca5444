/*
Package transport implements the connection layer: validated connection
contexts, scoped transport sessions over a local socket or a tunnel's
forwarded socket, daemon fault translation at the call boundary, and the
bounded retry and poll patterns refresh-style operations rely on.

A caller acquires a Session through an Opener (or the WithSession helper,
which guarantees the channel is released exactly once on every exit path),
issues calls against the bound interface, and lets the session go on scope
exit. Remote openers consult the tunnel portal so one ssh session serves
every connection to the same destination.
*/
package transport
