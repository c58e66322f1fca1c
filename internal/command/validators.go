// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/backend"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/output"
)

// GlobalFlagsValidator checks flag combinations that no single flag
// validator can see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Bool("schema") && c.String("output") == "raw" {
		return errors.New("--schema can not be combined with --output=raw")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func NamespaceValidator(value any) error {
	if value.(string) == "" {
		return nil
	}
	_, err := cache.ParseNamespace(value.(string))
	return err
}

func PositiveValidator(value any) error {
	if value.(int) < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func BackendValidator(value any) error {
	if !slices.Contains(backend.Types, value.(string)) {
		return fmt.Errorf("must be one of %v", backend.Types)
	}
	return nil
}

// ArgCountValidator checks the number of positional args.
func ArgCountValidator(c *cli.Command, min, max int) error {
	n := c.Args().Len()
	switch {
	case n < min:
		return fmt.Errorf("%s: expected at least %d argument(s), got %d", c.Name, min, n)
	case max >= 0 && n > max:
		return fmt.Errorf("%s: expected at most %d argument(s), got %d", c.Name, max, n)
	}
	return nil
}
