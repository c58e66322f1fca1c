// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/config"
	"github.com/normalee1993/BallotResearch/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the civicctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load(ns)
	if err != nil {
		log.WithError(err).Debug("no config file loaded")
	}

	m := meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
		Out:     os.Stdout,
		Err:     os.Stderr,
	}

	return NewApp(m, NewEnv), nil
}

// NewApp builds the command tree. envFactory opens the cache and services for
// the research commands.
func NewApp(m meta.Meta, envFactory EnvFactory) *cli.Command {
	app := &cli.Command{
		Name:      "civicctl",
		Usage:     "Civic ballot and candidate research",
		Writer:    m.Stdout(),
		ErrWriter: m.Stderr(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "civicctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		BallotCommandBuilder(m, envFactory),
		CandidateCommandBuilder(m, envFactory),
		CompareCommandBuilder(m, envFactory),
		CacheCommandBuilder(m, envFactory),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sortFlags(cmd)
	}

	return app
}

func sortFlags(cmd *cli.Command) {
	sort.Slice(cmd.Flags, func(i, j int) bool {
		return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
	})
	for _, sub := range cmd.Commands {
		sortFlags(sub)
	}
}
