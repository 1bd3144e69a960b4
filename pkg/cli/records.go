/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/record"
	"github.com/UnderAOverE/nsync/pkg/store"
)

func recordsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "records",
		EnableShellCompletion: true,
		Usage:                 "Inspect and seed the cluster record store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Cluster record store connection string",
				Sources: cli.EnvVars("NSYNC_STORE"),
			},
		},
		Commands: []*cli.Command{
			recordsListCmd(),
			recordsSeedCmd(),
		},
	}
}

func recordsListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List cluster records with their last-known namespace counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include inactive records",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			var docs []record.Document
			if cmd.Bool("all") {
				docs, err = db.FetchAll(ctx)
			} else {
				docs, err = db.FetchActive(ctx)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCLUSTER\tACTIVE\tNAMESPACES\tLAST REFRESHED")
			for _, doc := range docs {
				r, err := record.FromDocument(doc)
				if err != nil {
					continue
				}
				refreshed := "-"
				if !r.LastRefreshedAt.IsZero() {
					refreshed = r.LastRefreshedAt.UTC().Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n",
					r.ID, r.ClusterName, r.Active, r.TotalNamespaces, refreshed)
			}
			return w.Flush()
		},
	}
}

func recordsSeedCmd() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load cluster record documents from a YAML or JSON file",
		ArgsUsage: "FILE",
		Description: `The file holds a list of cluster record documents:

  - clusterName: prod-east
    apiUrl: https://prod-east.example.com:6443
    namespaceFetchFilters: [team-]
    active: true

Records without an id are inserted with a generated one; records with an
existing id are replaced.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New(errors.ErrCodeConfiguration, "seed requires exactly one file argument")
			}

			data, err := os.ReadFile(cmd.Args().First())
			if err != nil {
				return errors.Wrap(errors.ErrCodeConfiguration, "failed to read seed file", err)
			}
			// yaml.v3 parses JSON too, so one decoder covers both formats.
			var docs []record.Document
			if err := yaml.Unmarshal(data, &docs); err != nil {
				return errors.Wrap(errors.ErrCodeConfiguration, "seed file is not a list of record documents", err)
			}

			db, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, doc := range docs {
				id, err := db.Upsert(ctx, doc)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "seeded %s (%s)\n", id, displayName(doc))
			}
			return nil
		},
	}
}

func openStore(ctx context.Context, cmd *cli.Command) (*store.SQLite, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if v := cmd.String("store"); v != "" {
		cfg.StoreDSN = v
	}
	return store.Open(ctx, cfg.StoreDSN)
}

func displayName(doc record.Document) string {
	if name, ok := doc[record.FieldClusterName].(string); ok && name != "" {
		return name
	}
	return "unnamed"
}
