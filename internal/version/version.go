// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the build version, set at link time with
// -ldflags "-X github.com/normalee1993/BallotResearch/internal/version.Version=v1.2.3".
package version

var Version = "dev"
