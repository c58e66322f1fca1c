// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package migrations embeds the SQLite schema for the cache backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
