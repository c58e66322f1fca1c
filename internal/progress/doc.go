// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// Package progress draws a terminal spinner while slow research runs.
package progress
