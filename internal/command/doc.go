// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for civicctl. It wires flags,
// validators, actions, and shell completion for subcommands.
package command
