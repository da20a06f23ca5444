// Package config loads the optional YAML connections file that names
// daemon destinations (local socket or ssh remote). Decoding is strict:
// keys outside the recognized set fail with a ConfigurationError.
package config
