// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// Package service implements the cache-aside fetches: look in the store, and
// on a miss (or a forced refresh) ask the research provider, extract and
// normalize its answer, persist it and return it. Concurrent misses for the
// same key share a single provider call.
package service
