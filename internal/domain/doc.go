// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package domain holds the ballot and candidate records exchanged between the
// research provider, the cache and the CLI, along with the normalization rules
// applied to provider output before it is persisted.
package domain
