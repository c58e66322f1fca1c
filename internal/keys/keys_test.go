// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "austin, tx", "austin, tx"},
		{"case and padding", " Austin,  TX ", "austin, tx"},
		{"tabs and newlines", "New\tYork\n City", "new york city"},
		{"coordinates", " 30.2672, -97.7431 ", "30.2672, -97.7431"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_EqualKeys(t *testing.T) {
	variants := []string{"Austin, TX", "austin, tx", "  AUSTIN,\tTX", "Austin,   tx  "}
	for _, v := range variants {
		assert.Equal(t, Normalize(variants[0]), Normalize(v), v)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	k := Normalize("  Portland ,  OR ")
	assert.Equal(t, k, Normalize(k))
}
