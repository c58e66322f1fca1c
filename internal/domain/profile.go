// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package domain

import "time"

// Issue is a candidate's stance on one topic.
type Issue struct {
	Topic  string `json:"topic"`
	Stance string `json:"stance"`
}

// Source is a grounding citation returned alongside provider research.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// CandidateProfile is the researched background for one Candidate, keyed by
// the candidate id.
type CandidateProfile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Office      string   `json:"office"`
	Party       string   `json:"party"`
	Summary     string   `json:"summary"`
	Platform    []string `json:"platform"`
	Experience  []string `json:"experience"`
	Education   string   `json:"education"`
	KeyIssues   []Issue  `json:"keyIssues"`
	Sources     []Source `json:"sources"`
	LastUpdated int64    `json:"lastUpdated"`
}

// Touch stamps the profile with t.
func (p *CandidateProfile) Touch(t time.Time) { p.LastUpdated = t.UnixMilli() }

// Updated returns the time the profile was last stamped.
func (p *CandidateProfile) Updated() time.Time { return time.UnixMilli(p.LastUpdated) }

// Clone returns a deep copy of p.
func (p *CandidateProfile) Clone() *CandidateProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Platform = cloneSlice(p.Platform)
	c.Experience = cloneSlice(p.Experience)
	c.KeyIssues = cloneSlice(p.KeyIssues)
	c.Sources = cloneSlice(p.Sources)
	return &c
}

// Complete replaces missing lists with empty ones so encoded profiles always
// carry arrays.
func (p *CandidateProfile) Complete() {
	if p.Platform == nil {
		p.Platform = []string{}
	}
	if p.Experience == nil {
		p.Experience = []string{}
	}
	if p.KeyIssues == nil {
		p.KeyIssues = []Issue{}
	}
	if p.Sources == nil {
		p.Sources = []Source{}
	}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

// DedupeSources drops citations without a URI and repeats of a URI already
// seen, keeping the first occurrence. The result is never nil.
func DedupeSources(in []Source) []Source {
	out := make([]Source, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s.URI == "" || seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		if s.Title == "" {
			s.Title = "Source"
		}
		out = append(out, s)
	}
	return out
}
