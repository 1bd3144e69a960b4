/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/UnderAOverE/nsync/pkg/defaults"
	"github.com/UnderAOverE/nsync/pkg/errors"
)

// Config is the optional YAML config file. Flags and environment variables
// take precedence over file values; the file covers what is awkward to pass
// on the command line (SMTP recipients, Vault coordinates).
type Config struct {
	// StoreDSN is the cluster record store connection string.
	StoreDSN string `yaml:"storeDsn"`

	// MappingFile is the identifier mapping file path.
	MappingFile string `yaml:"mappingFile"`

	// Concurrency caps in-flight cluster refreshes.
	Concurrency int `yaml:"concurrency"`

	// APITimeout bounds each cluster's Kubernetes call.
	APITimeout time.Duration `yaml:"apiTimeout"`

	// SMTP configures the alert relay; empty means alerts go to the log.
	SMTP SMTPConfig `yaml:"smtp"`

	// Vault configures the token acquisition hook; empty address disables it.
	Vault VaultConfig `yaml:"vault"`
}

// SMTPConfig is the alert mail relay.
type SMTPConfig struct {
	Addr string   `yaml:"addr"`
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

// VaultConfig is the token acquisition hook.
type VaultConfig struct {
	Address string `yaml:"address"`
	// Token is usually left empty here and supplied via VAULT_TOKEN.
	Token        string `yaml:"token"`
	Mount        string `yaml:"mount"`
	PathTemplate string `yaml:"pathTemplate"`
}

// loadConfig reads the YAML config file. An empty path yields defaults; a
// named file that cannot be read or parsed is a configuration error.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{
		StoreDSN:    "nsync.db",
		MappingFile: defaults.MappingFile,
		Concurrency: defaults.MaxConcurrentClusters,
		APITimeout:  defaults.KubeAPITimeout,
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to read config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to parse config file", err)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.MaxConcurrentClusters
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = defaults.KubeAPITimeout
	}
	return cfg, nil
}
