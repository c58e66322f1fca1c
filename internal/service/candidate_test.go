// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normalee1993/BallotResearch/internal/backend/memory"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/domain"
)

var (
	mayor = domain.Race{ID: "race-0", Office: "Mayor", Type: domain.RaceCandidate}
	jane  = domain.Candidate{ID: "race-0-cand-0", Name: "Jane Doe", Party: "Democratic", Incumbent: true}
	john  = domain.Candidate{ID: "race-0-cand-1", Name: "John Roe", Party: "Libertarian"}
)

func TestFetchCandidateProfile(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store, _ := newStore(clk)
	fp := newFakeProvider()
	svc := NewCandidateService(fp, store)

	p, err := svc.FetchCandidateProfile(ctx, jane, mayor, "Austin, TX")
	require.NoError(t, err)

	assert.Equal(t, []string{"Mayor"}, fp.offices)
	assert.Equal(t, jane.ID, p.ID)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "Mayor", p.Office)
	assert.Equal(t, "Democratic", p.Party, "unknown party falls back to the ballot")
	assert.Equal(t, "Two-term mayor.", p.Summary)
	assert.Equal(t, []string{"Transit", "Housing"}, p.Platform)
	assert.Equal(t, []domain.Issue{{Topic: "Housing", Stance: "Build more"}}, p.KeyIssues)
	assert.Equal(t, []domain.Source{
		{Title: "Campaign", URI: "https://jane.example"},
		{Title: "Source", URI: "https://news.example"},
	}, p.Sources)
	assert.Equal(t, clk.now().UnixMilli(), p.LastUpdated)

	clk.advance(time.Hour)
	lk, err := svc.LookupCandidateProfile(ctx, jane, mayor, "Austin, TX")
	require.NoError(t, err)
	assert.True(t, lk.FromCache)
	assert.Equal(t, p, lk.Record)
	assert.Equal(t, int32(1), fp.profileCalls.Load())
}

func TestFetchCandidateProfile_PartyReconciliation(t *testing.T) {
	tests := []struct {
		name     string
		reported string
		want     string
	}{
		{"missing", `""`, "Democratic"},
		{"unknown", `"Unknown"`, "Democratic"},
		{"unknown any case", `" unknown "`, "Democratic"},
		{"reported wins", `"Independent"`, "Independent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider()
			fp.profileText = `{"summary":"s","party":` + tt.reported + `}`
			svc := NewCandidateService(fp, cache.New(memory.New()))

			p, err := svc.FetchCandidateProfile(context.Background(), jane, mayor, "Austin, TX")
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Party)
		})
	}
}

func TestFetchCandidateProfile_ProviderFieldsWin(t *testing.T) {
	fp := newFakeProvider()
	fp.profileText = `{"id":"ignored","name":"Jane Q. Doe","office":"Mayor of Austin","summary":"s"}`
	fp.sources = nil
	svc := NewCandidateService(fp, cache.New(memory.New()))

	p, err := svc.FetchCandidateProfile(context.Background(), jane, mayor, "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, p.ID, "id is always the candidate id")
	assert.Equal(t, "Jane Q. Doe", p.Name)
	assert.Equal(t, "Mayor of Austin", p.Office)
	assert.NotNil(t, p.Sources)
	assert.Empty(t, p.Sources)
	assert.NotNil(t, p.Platform)
}

func TestFetchCandidateProfile_Errors(t *testing.T) {
	be := memory.New()
	fp := newFakeProvider()
	svc := NewCandidateService(fp, cache.New(be))

	_, err := svc.FetchCandidateProfile(context.Background(), domain.Candidate{Name: "No Id"}, mayor, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, fp.profileCalls.Load())

	fp.profileText = "No information available."
	_, err = svc.FetchCandidateProfile(context.Background(), jane, mayor, "x")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	fp.err = domain.ErrProviderUnavailable
	_, err = svc.FetchCandidateProfile(context.Background(), jane, mayor, "x")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Zero(t, be.Len(cache.CandidateProfiles))
}

func TestFetchCandidateProfile_WriteFailure(t *testing.T) {
	fp := newFakeProvider()
	svc := NewCandidateService(fp, cache.New(failingWrites{memory.New()}))

	lk, err := svc.LookupCandidateProfile(context.Background(), jane, mayor, "x")
	require.NoError(t, err)
	assert.ErrorIs(t, lk.WriteErr, domain.ErrStoreWriteFailed)
	assert.Equal(t, "Two-term mayor.", lk.Record.Summary)
}

func TestFetchCandidateProfile_Coalesces(t *testing.T) {
	fp := newFakeProvider()
	fp.gate = make(chan struct{})
	svc := NewCandidateService(fp, cache.New(memory.New()))

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.FetchCandidateProfile(context.Background(), jane, mayor, "Austin, TX")
			assert.NoError(t, err)
		}()
	}

	<-fp.started
	time.Sleep(50 * time.Millisecond)
	close(fp.gate)
	wg.Wait()

	assert.Equal(t, int32(1), fp.profileCalls.Load())
}

func TestCompare(t *testing.T) {
	be := memory.New()
	fp := newFakeProvider()
	svc := NewCandidateService(fp, cache.New(be))

	pair, err := svc.Compare(context.Background(), jane, john, mayor, "Austin, TX")
	require.NoError(t, err)

	assert.Equal(t, jane.ID, pair[0].ID)
	assert.Equal(t, "Democratic", pair[0].Party)
	assert.Equal(t, john.ID, pair[1].ID)
	assert.Equal(t, "Libertarian", pair[1].Party)
	assert.Equal(t, int32(2), fp.profileCalls.Load())
	assert.Equal(t, 2, be.Len(cache.CandidateProfiles))
}

func TestCompare_Failure(t *testing.T) {
	fp := newFakeProvider()
	fp.err = errors.Join(domain.ErrProviderUnavailable, errors.New("quota"))
	svc := NewCandidateService(fp, cache.New(memory.New()))

	_, err := svc.Compare(context.Background(), jane, john, mayor, "Austin, TX")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestCandidateService_Clear(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	svc := NewCandidateService(newFakeProvider(), cache.New(be))

	_, err := svc.FetchCandidateProfile(ctx, jane, mayor, "x")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))
	assert.Zero(t, be.Len(cache.CandidateProfiles))
}
