package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/podlink/podlink/pkg/errdefs"
)

// Connection is one named daemon destination. The field set is closed:
// keys outside it are rejected at load time.
type Connection struct {
	URI          string `yaml:"uri"`
	Interface    string `yaml:"interface"`
	RemoteURI    string `yaml:"remote_uri"`
	IdentityFile string `yaml:"identity_file"`
	IgnoreHosts  bool   `yaml:"ignore_hosts"`
	KnownHosts   string `yaml:"known_hosts"`
}

// File is a connections file: named destinations plus the name used when
// the caller does not pick one.
type File struct {
	Default     string                `yaml:"default"`
	Connections map[string]Connection `yaml:"connections"`
}

// Load reads and strictly decodes a connections file. Unknown keys are a
// ConfigurationError, not silently dropped.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read connections file: %w", err)
	}
	return Parse(data)
}

// Parse decodes connections file content.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errdefs.Configf("invalid connections file: %v", err)
	}
	return &f, nil
}

// Lookup returns the named connection, or the default connection when name
// is empty.
func (f *File) Lookup(name string) (Connection, error) {
	if name == "" {
		name = f.Default
	}
	if name == "" {
		return Connection{}, errdefs.Configf("no connection name given and no default set")
	}
	conn, ok := f.Connections[name]
	if !ok {
		return Connection{}, errdefs.Configf("unknown connection %q", name)
	}
	return conn, nil
}
