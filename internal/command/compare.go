// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/attrs"
	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/meta"
	"github.com/normalee1993/BallotResearch/internal/output"
	"github.com/normalee1993/BallotResearch/internal/service"
)

// comparison is the document handed to the output routine for compare.
type comparison struct {
	Profiles [2]*domain.CandidateProfile `json:"profiles"`
}

// compareAttrs labels the a and b columns with the candidates' names. Extras
// from --attrs are applied after, so they can rename or hide either column.
func compareAttrs(cmd *cli.Command, a, b string) (attrs.AttrList, error) {
	if strings.TrimSpace(a) == "" {
		a = "a"
	}
	if strings.TrimSpace(b) == "" {
		b = "b"
	}
	if b == a {
		b += " (2)"
	}

	al := attrs.AttrList{
		{Key: "field", OutputKey: "field", Include: true},
		{Key: "a", OutputKey: a, Include: true},
		{Key: "b", OutputKey: b, Include: true},
	}
	if extras := flagString(cmd, "attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return al, nil
}

// CompareCommandAction is the action handler for the "compare" subcommand. Both
// candidates must be in the same race; their profiles are fetched
// concurrently and printed side by side.
func CompareCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "compare") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, output.CompareView) {
		return nil
	}

	if err := ArgCountValidator(cmd, 3, 3); err != nil {
		return err
	}
	location := strings.TrimSpace(cmd.Args().Get(0))
	ids := []string{strings.TrimSpace(cmd.Args().Get(1)), strings.TrimSpace(cmd.Args().Get(2))}
	if location == "" || ids[0] == "" || ids[1] == "" {
		return fmt.Errorf("a location and two candidate ids are required: %w", domain.ErrInvalidInput)
	}
	if ids[0] == ids[1] {
		return fmt.Errorf("can not compare %s with itself: %w", ids[0], domain.ErrInvalidInput)
	}

	env, err := getEnvFactory(cmd)(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeEnv(env)

	type found struct {
		ballot   service.Lookup[*domain.Ballot]
		profiles [2]service.Lookup[*domain.CandidateProfile]
	}
	res, err := research(ctx, cmd, fmt.Sprintf("Comparing %s and %s", ids[0], ids[1]),
		func(ctx context.Context) (found, error) {
			cands, races, blk, err := resolveCandidates(ctx, env, location, ids...)
			if err != nil {
				return found{}, err
			}
			if races[0].ID != races[1].ID {
				return found{}, fmt.Errorf("%s (%s) and %s (%s) are not in the same race: %w",
					ids[0], races[0].Office, ids[1], races[1].Office, domain.ErrInvalidInput)
			}
			plks, err := env.Candidates.CompareLookups(ctx, [2]domain.Candidate{cands[0], cands[1]}, races[0], location)
			return found{ballot: blk, profiles: plks}, err
		})
	if err != nil {
		return userError(err)
	}

	a, b := res.profiles[0].Record, res.profiles[1].Record
	al, err := compareAttrs(cmd, a.Name, b.Name)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al)

	if err := Emit(cmd, comparison{Profiles: [2]*domain.CandidateProfile{a, b}}, al); err != nil {
		return err
	}
	output.WriteStoreWarning(m.Stderr(), res.ballot.WriteErr)
	report(cmd,
		lookupInfo{label: a.Name, updated: a.Updated(), fromCache: res.profiles[0].FromCache, writeErr: res.profiles[0].WriteErr},
		lookupInfo{label: b.Name, updated: b.Updated(), fromCache: res.profiles[1].FromCache, writeErr: res.profiles[1].WriteErr},
	)
	return nil
}

// CompareCommandBuilder constructs the cli.Command for "compare".
func CompareCommandBuilder(meta meta.Meta, envFactory EnvFactory) *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "compare two candidates in the same race",
		UsageText: `civicctl compare <location> <candidate-id> <candidate-id> [options]`,
		Metadata: map[string]any{
			"meta": meta,
			"env":  envFactory,
		},
		Flags: append([]cli.Flag{
			newTldrFlag(),
			newSchemaFlag(),
		}, append(NewStoreFlags("compare", meta.Config.Source), NewGlobalFlags("compare", meta.Config.Source)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: CompareCommandAction,
	}
}
