// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// Package aws loads AWS SDK v2 configuration and builds the S3 client used by
// the S3 cache backend.
package aws
