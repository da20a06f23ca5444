/*
Package errdefs defines the error taxonomy for podlink.

Daemon-reported faults arrive on the wire as string identifiers and are
translated into a closed set of DaemonError kinds by Translate, which is
total: unrecognized identifiers fall back to KindErrorOccurred with the
original message preserved. Transport-side failures use their own types
(ConfigurationError, TunnelError, ConnectionError, TimeoutError) so callers
can distinguish expected application conditions from connectivity problems.
*/
package errdefs
