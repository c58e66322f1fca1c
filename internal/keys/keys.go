// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package keys canonicalizes free-text locations into cache keys.
package keys

import "strings"

// Normalize lower-cases raw, trims it and collapses every run of whitespace to
// a single space, so " Austin,  TX " and "austin, tx" share one key.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
