// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normalee1993/BallotResearch/internal/backend/memory"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/domain"
)

func TestFetchBallot_ResearchesAndNormalizes(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store, _ := newStore(clk)
	fp := newFakeProvider()
	svc := NewBallotService(fp, store)

	b, err := svc.FetchBallot(ctx, "  Austin,   TX ", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Austin,   TX"}, fp.locations, "provider sees the trimmed location")
	assert.Equal(t, "Austin, TX", b.Location)
	assert.Equal(t, "2024-11-05", b.Date)
	assert.Equal(t, clk.now().UnixMilli(), b.LastUpdated)

	require.Len(t, b.Races, 2)
	assert.Equal(t, "race-0", b.Races[0].ID)
	assert.Equal(t, "race-1", b.Races[1].ID)
	assert.Equal(t, domain.RaceProposition, b.Races[1].Type)
	assert.NotNil(t, b.Races[1].Candidates)

	cands := b.Races[0].Candidates
	require.Len(t, cands, 2)
	assert.Equal(t, "race-0-cand-0", cands[0].ID)
	assert.Equal(t, "race-0-cand-1", cands[1].ID)
	assert.Equal(t, "Democratic", cands[0].Party)
	assert.Equal(t, "Nonpartisan", cands[1].Party)
	assert.True(t, cands[0].Incumbent)
}

func TestFetchBallot_CacheHitSkipsProvider(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store, _ := newStore(clk)
	fp := newFakeProvider()
	svc := NewBallotService(fp, store)

	first, err := svc.FetchBallot(ctx, "Austin, TX", false)
	require.NoError(t, err)

	clk.advance(23 * time.Hour)
	lk, err := svc.LookupBallot(ctx, "austin,  tx", false)
	require.NoError(t, err)
	assert.True(t, lk.FromCache)
	assert.Equal(t, first, lk.Record)
	assert.Equal(t, int32(1), fp.ballotCalls.Load())
}

func TestFetchBallot_ExpiredRefetches(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store, _ := newStore(clk)
	fp := newFakeProvider()
	svc := NewBallotService(fp, store)

	_, err := svc.FetchBallot(ctx, "Austin, TX", false)
	require.NoError(t, err)

	clk.advance(24 * time.Hour)
	lk, err := svc.LookupBallot(ctx, "Austin, TX", false)
	require.NoError(t, err)
	assert.False(t, lk.FromCache)
	assert.Equal(t, int32(2), fp.ballotCalls.Load())
	assert.Equal(t, clk.now().UnixMilli(), lk.Record.LastUpdated)
}

func TestFetchBallot_ForceRefreshOverwritesFreshEntry(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store, _ := newStore(clk)
	fp := newFakeProvider()
	svc := NewBallotService(fp, store)

	_, err := svc.FetchBallot(ctx, "Austin, TX", false)
	require.NoError(t, err)

	clk.advance(time.Minute)
	fp.mu.Lock()
	fp.ballotText = `{"location":"Austin, TX","date":"2024-12-14","races":[]}`
	fp.mu.Unlock()

	b, err := svc.FetchBallot(ctx, "AUSTIN, TX", true)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-14", b.Date)
	assert.Equal(t, int32(2), fp.ballotCalls.Load())

	cached, err := svc.LookupBallot(ctx, "austin, tx", false)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, "2024-12-14", cached.Record.Date)
	assert.Equal(t, clk.now().UnixMilli(), cached.Record.LastUpdated)
}

func TestFetchBallot_BlankLocation(t *testing.T) {
	fp := newFakeProvider()
	svc := NewBallotService(fp, cache.New(memory.New()))

	_, err := svc.FetchBallot(context.Background(), " \t ", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, fp.ballotCalls.Load())
}

func TestFetchBallot_MissingLocationUsesRequest(t *testing.T) {
	fp := newFakeProvider()
	fp.ballotText = `{"date":"2024-11-05","races":[]}`
	svc := NewBallotService(fp, cache.New(memory.New()))

	b, err := svc.FetchBallot(context.Background(), " Springfield ", false)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", b.Location)
}

func TestFetchBallot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		wantErr error
	}{
		{"provider down", "", domain.ErrProviderUnavailable, domain.ErrProviderUnavailable},
		{"prose only", "I could not find an election.", nil, domain.ErrMalformedResponse},
		{"wrong shape", `{"races": "none"}`, nil, domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := memory.New()
			fp := newFakeProvider()
			fp.ballotText = tt.text
			fp.err = tt.err
			svc := NewBallotService(fp, cache.New(be))

			_, err := svc.FetchBallot(context.Background(), "Austin, TX", false)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "could not retrieve data, try again", domain.UserMessage(err))
			assert.Zero(t, be.Len(cache.Ballots), "nothing is persisted on failure")
		})
	}
}

func TestFetchBallot_WriteFailureStillReturns(t *testing.T) {
	fp := newFakeProvider()
	svc := NewBallotService(fp, cache.New(failingWrites{memory.New()}))

	lk, err := svc.LookupBallot(context.Background(), "Austin, TX", false)
	require.NoError(t, err)
	assert.ErrorIs(t, lk.WriteErr, domain.ErrStoreWriteFailed)
	assert.Equal(t, "Austin, TX", lk.Record.Location)
	assert.Len(t, lk.Record.Races, 2)
}

func TestFetchBallot_CoalescesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	fp := newFakeProvider()
	fp.gate = make(chan struct{})
	svc := NewBallotService(fp, cache.New(memory.New()))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.Ballot, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.FetchBallot(ctx, "Austin, TX", false)
		}()
	}

	<-fp.started
	// Give the other callers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(fp.gate)
	wg.Wait()

	assert.Equal(t, int32(1), fp.ballotCalls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	// Every caller gets its own copy.
	results[1].Races[0].Office = "Changed"
	assert.Equal(t, "Mayor", results[0].Races[0].Office)
}

func TestFetchBallot_CancelledCallerStillPersists(t *testing.T) {
	be := memory.New()
	fp := newFakeProvider()
	fp.gate = make(chan struct{})
	svc := NewBallotService(fp, cache.New(be))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.FetchBallot(ctx, "Austin, TX", false)
		done <- err
	}()

	<-fp.started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(fp.gate)
	assert.Eventually(t, func() bool { return be.Len(cache.Ballots) == 1 }, time.Second, 10*time.Millisecond)

	b, err := svc.FetchBallot(context.Background(), "austin, tx", false)
	require.NoError(t, err)
	assert.Equal(t, "Austin, TX", b.Location)
	assert.Equal(t, int32(1), fp.ballotCalls.Load())
}

func TestFetchBallot_DetachedCallTimesOut(t *testing.T) {
	fp := newFakeProvider()
	fp.gate = make(chan struct{})
	defer close(fp.gate)
	svc := NewBallotService(fp, cache.New(memory.New()), WithTimeout(20*time.Millisecond))

	_, err := svc.FetchBallot(context.Background(), "Austin, TX", false)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "could not retrieve data, try again", domain.UserMessage(err))
}

func TestBallotService_Clear(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	fp := newFakeProvider()
	svc := NewBallotService(fp, cache.New(be))

	_, err := svc.FetchBallot(ctx, "Austin, TX", false)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))
	assert.Zero(t, be.Len(cache.Ballots))
}
