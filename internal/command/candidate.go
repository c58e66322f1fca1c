// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/meta"
	"github.com/normalee1993/BallotResearch/internal/output"
	"github.com/normalee1993/BallotResearch/internal/service"
)

var candidateDefaultAttrs = []string{"field", "value"}

// resolveCandidates looks up the ballot for location and finds each id on it.
// The ballot comes from the cache whenever a fresh copy exists.
func resolveCandidates(ctx context.Context, env *Env, location string, ids ...string) ([]domain.Candidate, []domain.Race, service.Lookup[*domain.Ballot], error) {
	lk, err := env.Ballots.LookupBallot(ctx, location, false)
	if err != nil {
		return nil, nil, lk, err
	}

	cands := make([]domain.Candidate, 0, len(ids))
	races := make([]domain.Race, 0, len(ids))
	for _, id := range ids {
		c, r, ok := lk.Record.FindCandidate(id)
		if !ok {
			return nil, nil, lk, fmt.Errorf("candidate %q is not on the ballot for %s: %w", id, location, domain.ErrNotFound)
		}
		cands = append(cands, c)
		races = append(races, r)
	}
	return cands, races, lk, nil
}

// CandidateCommandAction is the action handler for the "candidate"
// subcommand. It resolves the candidate and race from the ballot, then looks
// up the candidate's profile.
func CandidateCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "candidate") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, output.ProfileView) {
		return nil
	}

	if err := ArgCountValidator(cmd, 2, 2); err != nil {
		return err
	}
	location := strings.TrimSpace(cmd.Args().Get(0))
	id := strings.TrimSpace(cmd.Args().Get(1))
	if location == "" || id == "" {
		return fmt.Errorf("a location and candidate id are required: %w", domain.ErrInvalidInput)
	}

	al, err := BuildAttrs(cmd, candidateDefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al)

	env, err := getEnvFactory(cmd)(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeEnv(env)

	type found struct {
		ballot  service.Lookup[*domain.Ballot]
		profile service.Lookup[*domain.CandidateProfile]
	}
	res, err := research(ctx, cmd, "Researching candidate "+id,
		func(ctx context.Context) (found, error) {
			cands, races, blk, err := resolveCandidates(ctx, env, location, id)
			if err != nil {
				return found{}, err
			}
			plk, err := env.Candidates.LookupCandidateProfile(ctx, cands[0], races[0], location)
			return found{ballot: blk, profile: plk}, err
		})
	if err != nil {
		return userError(err)
	}

	if err := Emit(cmd, res.profile.Record, al); err != nil {
		return err
	}
	output.WriteStoreWarning(m.Stderr(), res.ballot.WriteErr)
	report(cmd, lookupInfo{
		updated:   res.profile.Record.Updated(),
		fromCache: res.profile.FromCache,
		writeErr:  res.profile.WriteErr,
	})
	return nil
}

// CandidateCommandBuilder constructs the cli.Command for "candidate".
func CandidateCommandBuilder(meta meta.Meta, envFactory EnvFactory) *cli.Command {
	return &cli.Command{
		Name:      "candidate",
		Usage:     "research one candidate on a ballot",
		UsageText: `civicctl candidate <location> <candidate-id> [options]`,
		Metadata: map[string]any{
			"meta": meta,
			"env":  envFactory,
		},
		Flags: append([]cli.Flag{
			newTldrFlag(),
			newSchemaFlag(),
		}, append(NewStoreFlags("candidate", meta.Config.Source), NewGlobalFlags("candidate", meta.Config.Source)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: CandidateCommandAction,
	}
}
