// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBallot_SynthesizesIDs(t *testing.T) {
	b := &Ballot{
		Races: []Race{
			{Office: "Mayor", Candidates: []Candidate{{Name: "A"}, {Name: "B", ID: "keep"}}},
			{Office: "Council", Candidates: []Candidate{{Name: "C"}}},
			{ID: "prop-1", Office: "Prop 1", Type: "Proposition"},
		},
	}

	NormalizeBallot(b)

	assert.Equal(t, "race-0", b.Races[0].ID)
	assert.Equal(t, "race-1", b.Races[1].ID)
	assert.Equal(t, "prop-1", b.Races[2].ID)

	assert.Equal(t, "race-0-cand-0", b.Races[0].Candidates[0].ID)
	assert.Equal(t, "keep", b.Races[0].Candidates[1].ID)
	assert.Equal(t, "race-1-cand-0", b.Races[1].Candidates[0].ID)

	assert.Equal(t, RaceCandidate, b.Races[0].Type)
	assert.Equal(t, RaceProposition, b.Races[2].Type)
}

func TestNormalizeBallot_CandidateIDUsesExistingRaceID(t *testing.T) {
	b := &Ballot{Races: []Race{{ID: "mayor", Candidates: []Candidate{{Name: "A"}}}}}
	NormalizeBallot(b)
	assert.Equal(t, "mayor-cand-0", b.Races[0].Candidates[0].ID)
}

func TestNormalizeBallot_Parties(t *testing.T) {
	b := &Ballot{Races: []Race{{Candidates: []Candidate{
		{Party: ""},
		{Party: "   "},
		{Party: "independent"},
		{Party: "Green"},
		{Party: "no Party Preference"},
	}}}}

	NormalizeBallot(b)

	got := []string{}
	for _, c := range b.Races[0].Candidates {
		got = append(got, c.Party)
	}
	assert.Equal(t, []string{"Nonpartisan", "Nonpartisan", "Independent", "Green", "No Party Preference"}, got)
}

func TestBallot_FindCandidate(t *testing.T) {
	b := &Ballot{Races: []Race{
		{ID: "race-0", Office: "Mayor", Candidates: []Candidate{{ID: "race-0-cand-0", Name: "Ann"}}},
		{ID: "race-1", Office: "Sheriff", Candidates: []Candidate{{ID: "race-1-cand-0", Name: "Bo"}}},
	}}

	c, r, ok := b.FindCandidate("race-1-cand-0")
	require.True(t, ok)
	assert.Equal(t, "Bo", c.Name)
	assert.Equal(t, "Sheriff", r.Office)

	_, _, ok = b.FindCandidate("nope")
	assert.False(t, ok)

	r, ok = b.Race("race-0")
	require.True(t, ok)
	assert.Equal(t, "Mayor", r.Office)
}

func TestBallot_TouchRoundTrip(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	b := &Ballot{}
	b.Touch(at)
	assert.Equal(t, at.UnixMilli(), b.LastUpdated)
	assert.True(t, b.Updated().Equal(at))
}

func TestNormalizeBallot_EmptyLists(t *testing.T) {
	b := &Ballot{}
	NormalizeBallot(b)
	assert.NotNil(t, b.Races)

	b = &Ballot{Races: []Race{{Office: "Prop A", Type: "proposition"}}}
	NormalizeBallot(b)
	assert.NotNil(t, b.Races[0].Candidates)
}

func TestBallot_Clone(t *testing.T) {
	b := &Ballot{Location: "Austin, TX", Races: []Race{{ID: "race-0", Candidates: []Candidate{{ID: "c", Name: "Ann"}}}}}
	c := b.Clone()
	assert.Equal(t, b, c)

	c.Races[0].Candidates[0].Name = "Changed"
	c.Races[0].Office = "Changed"
	assert.Equal(t, "Ann", b.Races[0].Candidates[0].Name)
	assert.Empty(t, b.Races[0].Office)

	var nilBallot *Ballot
	assert.Nil(t, nilBallot.Clone())
}

func TestCandidateProfile_CloneAndComplete(t *testing.T) {
	p := &CandidateProfile{ID: "c", Platform: []string{"Transit"}}
	c := p.Clone()
	c.Platform[0] = "Housing"
	assert.Equal(t, "Transit", p.Platform[0])
	assert.Nil(t, c.KeyIssues)

	c.Complete()
	assert.NotNil(t, c.Experience)
	assert.NotNil(t, c.KeyIssues)
	assert.NotNil(t, c.Sources)
	assert.Equal(t, []string{"Housing"}, c.Platform)
}
