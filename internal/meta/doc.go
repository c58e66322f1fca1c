// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// Package meta carries per-invocation options shared by every command.
package meta
