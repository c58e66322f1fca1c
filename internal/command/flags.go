// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// newSchemaFlag and newTldrFlag build fresh flags per command so that a value
// set on one command never leaks into another.
func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the row keys available to --attrs, --filter and --sort",
		HideDefault: true,
	}
}

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags builds the presentation flags shared by the research
// commands. Each takes its value from the command line, then the environment,
// then <ns>.<flag> and <flag> in the config file at src.
func NewGlobalFlags(ns string, src string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of row keys to include in results",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"attrs", altsrc.StringSourcer(src)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CIVICCTL_COLOR"),
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(src)),
				yaml.YAML("color", altsrc.StringSourcer(src)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"filter", altsrc.StringSourcer(src)),
			),
		},
		&cli.BoolFlag{
			Name:  "no-spinner",
			Usage: "do not show progress while researching",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CIVICCTL_NO_SPINNER"),
				yaml.YAML(ns+"."+"no-spinner", altsrc.StringSourcer(src)),
				yaml.YAML("no-spinner", altsrc.StringSourcer(src)),
			),
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CIVICCTL_OUTPUT"),
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(src)),
				yaml.YAML("output", altsrc.StringSourcer(src)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of row keys to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(src)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(src)),
				yaml.YAML("titles", altsrc.StringSourcer(src)),
			),
			Value: false,
		},
	}
}

// NewStoreFlags builds the flags that pick the cache backend for a single
// run. Without them the backend comes from CIVICCTL_STORE or store.backend.
func NewStoreFlags(ns string, src string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store",
			Usage: "cache backend for this run",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"store", altsrc.StringSourcer(src)),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, BackendValidator)
			},
		},
		&cli.BoolFlag{
			Name:        "no-persist",
			Usage:       "keep research in memory only, for this run",
			HideDefault: true,
		},
	}
}

// NewRefreshFlag builds --refresh, which skips the cache and researches again.
func NewRefreshFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "refresh",
		Aliases:     []string{"r"},
		Usage:       "ignore any cached ballot and research it again",
		HideDefault: true,
	}
}

// pathHas reports whether target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
