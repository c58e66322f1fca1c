// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// Package output flattens ballots, profiles and comparisons into rows, then
// filters, sorts and emits them as text tables, JSON, YAML or the raw record.
package output
