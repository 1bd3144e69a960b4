// Package cli implements the command-line interface for the nsync tool.
//
// # Overview
//
// nsync maintains a fleet of Kubernetes cluster records: it refreshes each
// cluster's namespace inventory, rotates the encrypted bearer token every
// cycle, and aggregates failures into a single operator alert.
//
// # Commands
//
// refresh - run one full refresh cycle:
//
//	nsync refresh [--store DSN] [--concurrency N] [--config FILE]
//
// records list - inspect stored cluster records:
//
//	nsync records list [--all]
//
// records seed - load record documents from a YAML or JSON file:
//
//	nsync records seed clusters.yaml
//
// # Configuration
//
// Flags and their NSYNC_* environment variables take precedence over the
// optional YAML config file (--config). The config file additionally carries
// the SMTP alert relay and Vault token-acquisition settings.
package cli
