// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// Package cache is the TTL-aware persistent store in front of the research
// provider. A Store wraps a durable Backend; a Table is a typed view of one
// namespace whose Get never returns a stale record.
package cache
