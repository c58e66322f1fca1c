// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/normalee1993/BallotResearch/internal/backend/memory"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/domain"
)

const ballotJSON = "Sure! Here is the ballot:\n```json\n" + `{
  "location": "Austin, TX",
  "date": "2024-11-05",
  "races": [
    {"office": "Mayor", "type": "candidate", "candidates": [
      {"name": "Jane Doe", "party": "democratic", "incumbent": true},
      {"name": "John Roe", "party": ""}
    ]},
    {"office": "Proposition A", "type": "proposition", "description": "Bonds"}
  ]
}` + "\n```\nLet me know if you need more."

const profileJSON = `{
  "summary": "Two-term mayor.",
  "platform": ["Transit", "Housing"],
  "experience": ["Mayor of Austin"],
  "education": "UT Austin",
  "keyIssues": [{"topic": "Housing", "stance": "Build more"}],
  "party": "Unknown"
}`

type fakeProvider struct {
	mu          sync.Mutex
	ballotText  string
	profileText string
	sources     []domain.Source
	err         error

	// gate, when set, blocks every call until it is closed.
	gate    chan struct{}
	started chan struct{}

	ballotCalls  atomic.Int32
	profileCalls atomic.Int32
	locations    []string
	offices      []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		ballotText:  ballotJSON,
		profileText: profileJSON,
		sources: []domain.Source{
			{Title: "Campaign", URI: "https://jane.example"},
			{URI: "https://news.example"},
			{Title: "Dup", URI: "https://jane.example"},
		},
		started: make(chan struct{}, 64),
	}
}

func (f *fakeProvider) wait(ctx context.Context) error {
	f.started <- struct{}{}
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeProvider) FindBallot(ctx context.Context, location string) (string, error) {
	f.ballotCalls.Add(1)
	f.mu.Lock()
	f.locations = append(f.locations, location)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ballotText, f.err
}

func (f *fakeProvider) ResearchCandidate(ctx context.Context, _, office, _ string) (string, []domain.Source, error) {
	f.profileCalls.Add(1)
	f.mu.Lock()
	f.offices = append(f.offices, office)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return "", nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileText, f.sources, f.err
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)} }

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type failingWrites struct {
	*memory.Backend
}

func (failingWrites) Write(context.Context, cache.Namespace, string, cache.Entry) error {
	return errors.New("read-only filesystem")
}

func newStore(clk *clock) (*cache.Store, *memory.Backend) {
	be := memory.New()
	return cache.New(be, cache.WithClock(clk.now)), be
}
