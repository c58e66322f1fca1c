// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/backend"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/meta"
)

// CacheClearAction removes every cached record, or only those in
// --namespace.
func CacheClearAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "cache") {
		return nil
	}

	env, err := getEnvFactory(cmd)(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeEnv(env)

	if ns := cmd.String("namespace"); ns != "" {
		parsed, err := cache.ParseNamespace(ns)
		if err != nil {
			return err
		}
		if err := env.Store.ClearNamespace(ctx, parsed); err != nil {
			return fmt.Errorf("failed to clear %s: %w", parsed, err)
		}
		fmt.Fprintf(m.Stdout(), "cleared %s from %s cache\n", parsed, env.Settings.Store.Backend)
		return nil
	}

	if err := env.Store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(m.Stdout(), "cleared %s cache\n", env.Settings.Store.Backend)
	return nil
}

// CachePurgeAction removes cached records older than --hours. Only backends
// that can age out entries support it.
func CachePurgeAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "cache") {
		return nil
	}

	env, err := getEnvFactory(cmd)(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeEnv(env)

	hours := int(cmd.Int("hours"))
	n, err := backend.Purge(ctx, env.Backend, hours)
	if errors.Is(err, backend.ErrPurgeUnsupported) {
		return fmt.Errorf("%s backend: %w", env.Settings.Store.Backend, err)
	}
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	fmt.Fprintf(m.Stdout(), "purged %d entries older than %d hours\n", n, hours)
	return nil
}

// CacheCommandBuilder constructs the cli.Command for "cache" and its clear and
// purge subcommands.
func CacheCommandBuilder(meta meta.Meta, envFactory EnvFactory) *cli.Command {
	metadata := map[string]any{
		"meta": meta,
		"env":  envFactory,
	}
	return &cli.Command{
		Name:      "cache",
		Usage:     "manage the research cache",
		UsageText: `civicctl cache clear|purge [options]`,
		Metadata:  metadata,
		Commands: []*cli.Command{
			{
				Name:      "clear",
				Usage:     "remove cached ballots and candidate profiles",
				UsageText: `civicctl cache clear [--namespace ballots|candidate-profiles]`,
				Metadata:  metadata,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "namespace",
						Aliases: []string{"n"},
						Usage:   fmt.Sprintf("only clear this namespace, one of %v", cache.Namespaces),
						Validator: func(value string) error {
							return FlagValidators(value, JammedFlagValidator, NamespaceValidator)
						},
					},
					newTldrFlag(),
				}, NewStoreFlags("cache", meta.Config.Source)...),
				Action: CacheClearAction,
			},
			{
				Name:      "purge",
				Usage:     "remove cache entries older than --hours",
				UsageText: `civicctl cache purge [--hours N]`,
				Metadata:  metadata,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "hours",
						Usage: "purge entries at least this many hours old, 0 purges everything",
						Value: 24,
						Validator: func(value int) error {
							return FlagValidators(value, PositiveValidator)
						},
					},
					newTldrFlag(),
				}, NewStoreFlags("cache", meta.Config.Source)...),
				Action: CachePurgeAction,
			},
		},
	}
}
