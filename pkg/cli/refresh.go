/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/UnderAOverE/nsync/pkg/kube"
	"github.com/UnderAOverE/nsync/pkg/mapper"
	"github.com/UnderAOverE/nsync/pkg/notify"
	"github.com/UnderAOverE/nsync/pkg/orchestrator"
	"github.com/UnderAOverE/nsync/pkg/processor"
	"github.com/UnderAOverE/nsync/pkg/store"
	"github.com/UnderAOverE/nsync/pkg/tokensource"
)

func refreshCmd() *cli.Command {
	return &cli.Command{
		Name:                  "refresh",
		EnableShellCompletion: true,
		Usage:                 "Refresh namespaces and rotate tokens for all active clusters",
		Description: `Run one full refresh cycle:

  1. Fetch every active cluster record from the store
  2. For each cluster (bounded concurrency): decrypt the stored bearer
     token, list the cluster's namespaces, apply the record's prefix
     filters, re-encrypt the token with a fresh nonce, and persist
  3. Aggregate failures into one alert; log a final summary

Per-cluster failures never abort the batch. The command exits non-zero
only when the record store itself is unreachable.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Cluster record store connection string",
				Sources: cli.EnvVars("NSYNC_STORE"),
			},
			&cli.StringFlag{
				Name:    "mapping-file",
				Usage:   "Identifier mapping file path",
				Sources: cli.EnvVars("NSYNC_MAPPING_FILE"),
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "Maximum in-flight cluster refreshes",
				Sources: cli.EnvVars("NSYNC_CONCURRENCY"),
			},
			&cli.DurationFlag{
				Name:    "api-timeout",
				Usage:   "Per-cluster Kubernetes API call timeout",
				Sources: cli.EnvVars("NSYNC_API_TIMEOUT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			applyFlags(cfg, cmd)

			db, err := store.Open(ctx, cfg.StoreDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := mapper.New(cfg.MappingFile)
			if err != nil {
				return err
			}

			source, err := buildTokenSource(cfg)
			if err != nil {
				return err
			}

			notifier, err := buildNotifier(cfg)
			if err != nil {
				return err
			}

			proc := processor.New(m, kube.NewClient(), source, db,
				processor.WithAPITimeout(cfg.APITimeout))
			orch := orchestrator.New(db, proc, notifier,
				orchestrator.WithConcurrency(cfg.Concurrency))

			report, err := orch.Run(ctx)
			if err != nil {
				return err
			}
			if failed := report.Failed(); len(failed) > 0 {
				slog.Warn("refresh finished with failures",
					"run", report.RunID,
					"failed", len(failed))
			}
			return nil
		},
	}
}

// applyFlags overlays explicitly-set flags on top of the file config.
func applyFlags(cfg *Config, cmd *cli.Command) {
	if v := cmd.String("store"); v != "" {
		cfg.StoreDSN = v
	}
	if v := cmd.String("mapping-file"); v != "" {
		cfg.MappingFile = v
	}
	if v := int(cmd.Int("concurrency")); v > 0 {
		cfg.Concurrency = v
	}
	if v := cmd.Duration("api-timeout"); v > 0 {
		cfg.APITimeout = v
	}
}

// buildTokenSource wires the Vault acquisition hook when configured and
// otherwise a source that fails clusters missing a stored token.
func buildTokenSource(cfg *Config) (tokensource.Source, error) {
	if cfg.Vault.Address == "" {
		return tokensource.Disabled{}, nil
	}
	token := cfg.Vault.Token
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}
	return tokensource.NewVault(cfg.Vault.Address, token, cfg.Vault.Mount, cfg.Vault.PathTemplate)
}

func buildNotifier(cfg *Config) (notify.Notifier, error) {
	if cfg.SMTP.Addr == "" {
		return notify.Log{}, nil
	}
	return notify.NewSMTP(cfg.SMTP.Addr, cfg.SMTP.From, cfg.SMTP.To)
}
