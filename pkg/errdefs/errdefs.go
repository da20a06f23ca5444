package errdefs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies one of the closed set of application-level fault
// categories the daemon can report.
type Kind string

const (
	KindContainerNotFound  Kind = "ContainerNotFound"
	KindImageNotFound      Kind = "ImageNotFound"
	KindPodNotFound        Kind = "PodNotFound"
	KindNoContainerRunning Kind = "NoContainerRunning"
	KindNoContainersInPod  Kind = "NoContainersInPod"
	KindInvalidState       Kind = "InvalidState"
	KindPodContainerError  Kind = "PodContainerError"

	// KindErrorOccurred is the fallback for identifiers not in the table.
	KindErrorOccurred Kind = "ErrorOccurred"
)

// identifiers maps bare wire identifiers to kinds. NoSuchContainer is the
// daemon's historical name for a missing container and maps to the same
// kind as ContainerNotFound.
var identifiers = map[string]Kind{
	"ContainerNotFound":  KindContainerNotFound,
	"NoSuchContainer":    KindContainerNotFound,
	"ImageNotFound":      KindImageNotFound,
	"PodNotFound":        KindPodNotFound,
	"NoContainerRunning": KindNoContainerRunning,
	"NoContainersInPod":  KindNoContainersInPod,
	"InvalidState":       KindInvalidState,
	"PodContainerError":  KindPodContainerError,
	"ErrorOccurred":      KindErrorOccurred,
}

// DaemonError is an application-level fault reported by the daemon,
// translated from its wire identifier. It carries no reference to the
// session that produced it.
type DaemonError struct {
	Kind       Kind
	Message    string
	Identifier string // wire identifier, verbatim
}

func (e *DaemonError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Translate maps a daemon-reported error identifier to a DaemonError.
// The mapping is total: an interface-qualified identifier (for example
// "io.podman.ContainerNotFound") is matched on its bare name, and an
// unrecognized identifier falls back to KindErrorOccurred carrying the
// original message unchanged.
func Translate(identifier, message string) *DaemonError {
	bare := identifier
	if i := strings.LastIndex(identifier, "."); i >= 0 {
		bare = identifier[i+1:]
	}
	kind, ok := identifiers[bare]
	if !ok {
		kind = KindErrorOccurred
	}
	return &DaemonError{Kind: kind, Message: message, Identifier: identifier}
}

// IsKind reports whether err is (or wraps) a DaemonError of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *DaemonError
	return errors.As(err, &de) && de.Kind == kind
}

// IsNotFound reports whether err is any of the not-found daemon faults.
func IsNotFound(err error) bool {
	return IsKind(err, KindContainerNotFound) ||
		IsKind(err, KindImageNotFound) ||
		IsKind(err, KindPodNotFound)
}

// ConfigurationError reports invalid construction input. It is raised
// before any network or filesystem I/O and is not recoverable.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// Configf builds a ConfigurationError from a format string.
func Configf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// TunnelError reports a failure setting up or operating the secure-shell
// forwarding subprocess. Output carries captured diagnostic output from
// the subprocess when available.
type TunnelError struct {
	Reason string
	Output string
	Err    error
}

func (e *TunnelError) Error() string {
	msg := "tunnel: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += " (" + strings.TrimSpace(e.Output) + ")"
	}
	return msg
}

func (e *TunnelError) Unwrap() error { return e.Err }

// IsTunnel reports whether err is a TunnelError.
func IsTunnel(err error) bool {
	var te *TunnelError
	return errors.As(err, &te)
}

// ConnectionError reports that the daemon was unreachable when opening a
// channel.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed varlink connection %q: %v. Is the daemon socket or service running?",
		e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnection reports whether err is a ConnectionError.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// TimeoutError reports that a poll or readiness deadline elapsed. It is
// distinct from daemon faults and from context cancellation.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s did not complete within %s", e.Op, e.After)
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
