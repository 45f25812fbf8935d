// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads cmd/sectiond's startup configuration from a
// YAML file (spec.md places "CLI, configuration loading" out of scope
// for the core state machine itself, but the surrounding binary still
// needs one, the same way the teacher's cmd/thor/solo command loads
// its own flags into a settings struct before constructing anything).
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files can spell timeouts the
// way Go does ("30s", "2m"); yaml.v3 only decodes bare integers into
// a time.Duration directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrap(err, "parse duration")
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full set of settings cmd/sectiond reads once at
// startup before constructing the lifecycle Machine.
type Config struct {
	Node      NodeSettings      `yaml:"node"`
	Bootstrap BootstrapSettings `yaml:"bootstrap"`
	API       APISettings       `yaml:"api"`
}

// NodeSettings covers identity and storage.
type NodeSettings struct {
	// DataDir holds the Link Layer's bootstrap contact cache.
	DataDir string `yaml:"data_dir"`
	// ListenAddr is the address the Link Layer transport binds.
	ListenAddr string `yaml:"listen_addr"`
}

// BootstrapSettings tunes the lifecycle's Bootstrapping/Joining
// states.
type BootstrapSettings struct {
	// Contacts is the hard-coded contact list; on every start it is
	// added to the contact cache and handed to lifecycle.NewBootstrapping.
	Contacts []string `yaml:"contacts"`
	// JoinTimeout overrides lifecycle.JoinTimeout when non-zero.
	JoinTimeout Duration `yaml:"join_timeout"`
	// QuorumFraction overrides event.EldersInfo.Quorum()'s simple-
	// majority default (numerator over 256) when non-zero; e.g. 171
	// for roughly two-thirds.
	QuorumFraction uint8 `yaml:"quorum_fraction"`
}

// APISettings covers the read-only status/health/metrics server.
type APISettings struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration cmd/sectiond falls back to when no
// --config flag is given.
func Default() Config {
	return Config{
		Node: NodeSettings{DataDir: "./sectiond-data", ListenAddr: ":5400"},
		API:  APISettings{Addr: ":8080", MetricsAddr: ":8081"},
	}
}

// Load reads and parses the YAML configuration file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config file")
	}
	return cfg, nil
}
