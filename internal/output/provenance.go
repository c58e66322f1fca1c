// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Provenance describes where a record came from, e.g. "cached, updated 3
// hours ago" or "researched now".
func Provenance(updated, now time.Time, fromCache bool) string {
	age := humanize.RelTime(updated, now, "ago", "from now")
	if updated.IsZero() {
		age = "at an unknown time"
	}
	if fromCache {
		return "cached, updated " + age
	}
	return "researched " + age
}

// WriteProvenance prints the provenance line for a record. It is meant for
// stderr so that stdout stays machine readable.
func WriteProvenance(w io.Writer, updated time.Time, fromCache bool) {
	fmt.Fprintln(w, Provenance(updated, time.Now(), fromCache))
}

// WriteStoreWarning tells the user a result could not be cached.
func WriteStoreWarning(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "warning: result was not cached and will be researched again next time: %v\n", err)
}
