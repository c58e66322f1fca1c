// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package backend selects the durable medium behind the cache: local files
// (the default), a SQLite database, an S3 bucket, or process memory.
package backend
