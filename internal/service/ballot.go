// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"

	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/extract"
	"github.com/normalee1993/BallotResearch/internal/keys"
	"github.com/normalee1993/BallotResearch/internal/provider"
)

// BallotService fetches ballots by location. Safe for concurrent use.
type BallotService struct {
	provider provider.Provider
	ballots  *cache.Table[*domain.Ballot]
	group    singleflight.Group
	timeout  time.Duration
}

func NewBallotService(p provider.Provider, store *cache.Store, opts ...Option) *BallotService {
	o := buildOptions(opts)
	return &BallotService{
		provider: p,
		ballots:  cache.NewTable(store, cache.Ballots, func() *domain.Ballot { return &domain.Ballot{} }),
		timeout:  o.timeout,
	}
}

// FetchBallot returns the ballot for location, from the cache when a fresh
// copy exists and forceRefresh is false.
func (s *BallotService) FetchBallot(ctx context.Context, location string, forceRefresh bool) (*domain.Ballot, error) {
	lk, err := s.LookupBallot(ctx, location, forceRefresh)
	if err != nil {
		return nil, err
	}
	return lk.Record, nil
}

// LookupBallot is FetchBallot with provenance and the outcome of the cache
// write.
func (s *BallotService) LookupBallot(ctx context.Context, location string, forceRefresh bool) (Lookup[*domain.Ballot], error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return Lookup[*domain.Ballot]{}, fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	}
	key := keys.Normalize(trimmed)

	if !forceRefresh {
		if b, ok := s.ballots.Get(ctx, key); ok {
			return Lookup[*domain.Ballot]{Record: b, FromCache: true}, nil
		}
	}

	flight := key + "\x00" + fmt.Sprint(forceRefresh)
	lk, err := coalesce(ctx, &s.group, flight, s.timeout, func(ctx context.Context) (Lookup[*domain.Ballot], error) {
		if !forceRefresh {
			// A flight that finished just before this one started has
			// already written the answer.
			if b, ok := s.ballots.Get(ctx, key); ok {
				return Lookup[*domain.Ballot]{Record: b, FromCache: true}, nil
			}
		}
		return s.research(ctx, trimmed, key)
	})
	if err != nil {
		return Lookup[*domain.Ballot]{}, err
	}
	lk.Record = lk.Record.Clone()
	return lk, nil
}

func (s *BallotService) research(ctx context.Context, location, key string) (Lookup[*domain.Ballot], error) {
	text, err := s.provider.FindBallot(ctx, location)
	if err != nil {
		return Lookup[*domain.Ballot]{}, fmt.Errorf("failed to find ballot for %q: %w", location, err)
	}

	var b domain.Ballot
	if err := extract.Decode(text, &b); err != nil {
		return Lookup[*domain.Ballot]{}, fmt.Errorf("failed to read ballot for %q: %w", location, err)
	}

	domain.NormalizeBallot(&b)
	if strings.TrimSpace(b.Location) == "" {
		b.Location = location
	}

	werr := s.ballots.Set(ctx, key, &b)
	if werr != nil {
		log.WithError(werr).WithField("key", key).Warn("ballot not cached")
	}
	log.WithFields(log.Fields{"key": key, "races": len(b.Races)}).Debug("ballot researched")

	return Lookup[*domain.Ballot]{Record: &b, WriteErr: werr}, nil
}

// Clear drops every cached ballot.
func (s *BallotService) Clear(ctx context.Context) error {
	return s.ballots.Clear(ctx)
}
