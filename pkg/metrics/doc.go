// Package metrics defines Prometheus instrumentation for the client:
// per-method call counters, fault-kind error counters, and tunnel
// creation/reuse counters. Metrics register on the default registry;
// Handler exposes them for embedding programs.
package metrics
