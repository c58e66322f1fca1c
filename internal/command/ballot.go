// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/meta"
	"github.com/normalee1993/BallotResearch/internal/output"
	"github.com/normalee1993/BallotResearch/internal/service"
)

var ballotDefaultAttrs = []string{"race_id:race", "office", "candidate_id:id", "name", "party", "incumbent"}

// BallotCommandAction is the action handler for the "ballot" subcommand. It
// looks up the ballot for the location in the args, researching it when the
// cache has no fresh copy or --refresh is set.
func BallotCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "ballot") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, output.BallotView) {
		return nil
	}

	location := joinArgs(cmd.Args().Slice())
	if location == "" {
		return fmt.Errorf("a location is required: %w", domain.ErrInvalidInput)
	}

	al, err := BuildAttrs(cmd, ballotDefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al)

	env, err := getEnvFactory(cmd)(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeEnv(env)

	lk, err := research(ctx, cmd, "Researching ballot for "+location,
		func(ctx context.Context) (service.Lookup[*domain.Ballot], error) {
			return env.Ballots.LookupBallot(ctx, location, cmd.Bool("refresh"))
		})
	if err != nil {
		return userError(err)
	}

	if err := Emit(cmd, lk.Record, al); err != nil {
		return err
	}
	report(cmd, lookupInfo{updated: lk.Record.Updated(), fromCache: lk.FromCache, writeErr: lk.WriteErr})
	return nil
}

// BallotCommandBuilder constructs the cli.Command for "ballot", wiring
// metadata, flags, and action/validator handlers.
func BallotCommandBuilder(meta meta.Meta, envFactory EnvFactory) *cli.Command {
	return &cli.Command{
		Name:      "ballot",
		Usage:     "research the ballot for a location",
		UsageText: `civicctl ballot <location...> [options]`,
		Metadata: map[string]any{
			"meta": meta,
			"env":  envFactory,
		},
		Flags: append([]cli.Flag{
			NewRefreshFlag(),
			newTldrFlag(),
			newSchemaFlag(),
		}, append(NewStoreFlags("ballot", meta.Config.Source), NewGlobalFlags("ballot", meta.Config.Source)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: BallotCommandAction,
	}
}

// closeEnv closes env, logging rather than failing on error.
func closeEnv(env *Env) {
	if err := env.Close(); err != nil {
		log.WithError(err).Warn("failed to close cache")
	}
}
