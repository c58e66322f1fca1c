// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

// civicctl is the main package for the civicctl command line tool. It wires
// the CLI, delegates to internal packages, and serves as the entry point.
package main
