/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/UnderAOverE/nsync/pkg/logging"
)

const name = "nsync"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               version,
		EnableShellCompletion: true,
		Usage:                 "Multi-cluster namespace refresh and credential maintenance",
		Description: fmt.Sprintf(`nsync keeps a fleet of Kubernetes cluster records current:

  refresh - decrypt each cluster's bearer token, list its namespaces,
            apply the configured prefix filters, rotate the token
            ciphertext, and persist the updated record
  records - inspect and seed the cluster record store

Version: %s
Commit:  %s
Built:   %s`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Sources: cli.EnvVars("NSYNC_CONFIG"),
			},
		},
		Before: func(_ context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			return nil, nil
		},
		Commands: []*cli.Command{
			refreshCmd(),
			recordsCmd(),
		},
	}
}

// Execute runs the CLI. Called by main.main(); SIGINT/SIGTERM cancel the
// context so in-flight cluster work winds down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
