// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"fmt"
	"strings"
	"time"
)

// RaceType distinguishes contests between people from ballot measures.
type RaceType string

const (
	RaceCandidate   RaceType = "candidate"
	RaceProposition RaceType = "proposition"
)

// Candidate is a single person running in a Race. ID is unique within its
// Race and, once synthesized, stable for the life of the cached Ballot.
type Candidate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	Incumbent bool   `json:"incumbent,omitempty"`
}

// Race is one contest on a Ballot. Candidates keep provider response order.
type Race struct {
	ID          string      `json:"id"`
	Office      string      `json:"office"`
	Type        RaceType    `json:"type"`
	Description string      `json:"description,omitempty"`
	Candidates  []Candidate `json:"candidates"`
}

// Ballot is the full set of races for a location. LastUpdated is epoch
// milliseconds and is stamped by the cache on every write.
type Ballot struct {
	Location    string `json:"location"`
	Date        string `json:"date"`
	Races       []Race `json:"races"`
	LastUpdated int64  `json:"lastUpdated"`
}

// Touch stamps the ballot with t.
func (b *Ballot) Touch(t time.Time) { b.LastUpdated = t.UnixMilli() }

// Updated returns the time the ballot was last stamped.
func (b *Ballot) Updated() time.Time { return time.UnixMilli(b.LastUpdated) }

// Clone returns a deep copy of b.
func (b *Ballot) Clone() *Ballot {
	if b == nil {
		return nil
	}
	c := *b
	if b.Races != nil {
		c.Races = make([]Race, len(b.Races))
		for i, r := range b.Races {
			if r.Candidates != nil {
				r.Candidates = append([]Candidate{}, r.Candidates...)
			}
			c.Races[i] = r
		}
	}
	return &c
}

// Race returns the race with the given id.
func (b *Ballot) Race(id string) (Race, bool) {
	for _, r := range b.Races {
		if r.ID == id {
			return r, true
		}
	}
	return Race{}, false
}

// FindCandidate locates a candidate by id and returns it with its race.
func (b *Ballot) FindCandidate(id string) (Candidate, Race, bool) {
	for _, r := range b.Races {
		for _, c := range r.Candidates {
			if c.ID == id {
				return c, r, true
			}
		}
	}
	return Candidate{}, Race{}, false
}

// NormalizeBallot fills the identifiers and party labels the provider is
// allowed to omit. Races without an id become race-<index>; candidates without
// an id become <raceId>-cand-<index>. Indexes follow response order.
func NormalizeBallot(b *Ballot) {
	if b.Races == nil {
		b.Races = []Race{}
	}
	for i := range b.Races {
		race := &b.Races[i]
		if strings.TrimSpace(race.ID) == "" {
			race.ID = fmt.Sprintf("race-%d", i)
		}
		race.Type = normalizeRaceType(race.Type)
		if race.Candidates == nil {
			race.Candidates = []Candidate{}
		}
		for j := range race.Candidates {
			cand := &race.Candidates[j]
			if strings.TrimSpace(cand.ID) == "" {
				cand.ID = fmt.Sprintf("%s-cand-%d", race.ID, j)
			}
			cand.Party = NormalizeParty(cand.Party)
		}
	}
}

func normalizeRaceType(t RaceType) RaceType {
	if strings.EqualFold(strings.TrimSpace(string(t)), string(RaceProposition)) {
		return RaceProposition
	}
	return RaceCandidate
}
