// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"io"
	"os"

	"github.com/normalee1993/BallotResearch/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Out receives command results, Err receives warnings, provenance and
	// the spinner.
	Out io.Writer
	Err io.Writer
}

// Stdout returns Out, defaulting to os.Stdout.
func (m Meta) Stdout() io.Writer {
	if m.Out == nil {
		return os.Stdout
	}
	return m.Out
}

// Stderr returns Err, defaulting to os.Stderr.
func (m Meta) Stderr() io.Writer {
	if m.Err == nil {
		return os.Stderr
	}
	return m.Err
}
