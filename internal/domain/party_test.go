// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeParty(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Nonpartisan"},
		{"\t", "Nonpartisan"},
		{"democratic", "Democratic"},
		{"REPUBLICAN", "REPUBLICAN"},
		{"libertarian party", "Libertarian party"},
		{"ébène", "Ébène"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeParty(tt.in))
		})
	}
}

func TestReconcileParty(t *testing.T) {
	tests := []struct {
		name     string
		reported string
		fallback string
		want     string
	}{
		{"empty", "", "Green", "Green"},
		{"unknown", "Unknown", "Green", "Green"},
		{"unknown lower padded", "  unknown ", "Green", "Green"},
		{"resolved", "Libertarian", "Green", "Libertarian"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReconcileParty(tt.reported, tt.fallback))
		})
	}
}

func TestDedupeSources(t *testing.T) {
	in := []Source{
		{Title: "A", URI: "https://a"},
		{Title: "", URI: "https://b"},
		{Title: "A again", URI: "https://a"},
		{Title: "no uri"},
	}
	assert.Equal(t, []Source{{Title: "A", URI: "https://a"}, {Title: "Source", URI: "https://b"}}, DedupeSources(in))
	assert.NotNil(t, DedupeSources(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "could not retrieve data, try again",
		UserMessage(fmt.Errorf("find ballot: %w", ErrProviderUnavailable)))
	assert.Equal(t, "could not retrieve data, try again",
		UserMessage(fmt.Errorf("decode: %w", ErrMalformedResponse)))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

func TestClassifyParty(t *testing.T) {
	assert.Equal(t, ClassDemocratic, ClassifyParty("Democrat"))
	assert.Equal(t, ClassDemocratic, ClassifyParty("Democratic"))
	assert.Equal(t, ClassRepublican, ClassifyParty("Republican"))
	assert.Equal(t, ClassNeutral, ClassifyParty("NPP"))
	assert.Equal(t, ClassNeutral, ClassifyParty(PartyNonpartisan))
	assert.Equal(t, ClassDefault, ClassifyParty("Working Families"))
	assert.Equal(t, ClassDefault, ClassifyParty("republican"))
}
