// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/extract"
	"github.com/normalee1993/BallotResearch/internal/provider"
)

// CandidateService fetches researched profiles keyed by candidate id. Safe
// for concurrent use.
type CandidateService struct {
	provider provider.Provider
	profiles *cache.Table[*domain.CandidateProfile]
	group    singleflight.Group
	timeout  time.Duration
}

func NewCandidateService(p provider.Provider, store *cache.Store, opts ...Option) *CandidateService {
	o := buildOptions(opts)
	return &CandidateService{
		provider: p,
		profiles: cache.NewTable(store, cache.CandidateProfiles, func() *domain.CandidateProfile { return &domain.CandidateProfile{} }),
		timeout:  o.timeout,
	}
}

// FetchCandidateProfile returns the profile for candidate, researching it
// when no fresh copy is cached.
func (s *CandidateService) FetchCandidateProfile(ctx context.Context, candidate domain.Candidate, race domain.Race, location string) (*domain.CandidateProfile, error) {
	lk, err := s.LookupCandidateProfile(ctx, candidate, race, location)
	if err != nil {
		return nil, err
	}
	return lk.Record, nil
}

// LookupCandidateProfile is FetchCandidateProfile with provenance and the
// outcome of the cache write.
func (s *CandidateService) LookupCandidateProfile(ctx context.Context, candidate domain.Candidate, race domain.Race, location string) (Lookup[*domain.CandidateProfile], error) {
	if strings.TrimSpace(candidate.ID) == "" {
		return Lookup[*domain.CandidateProfile]{}, fmt.Errorf("%w: candidate id is required", domain.ErrInvalidInput)
	}

	if p, ok := s.profiles.Get(ctx, candidate.ID); ok {
		return Lookup[*domain.CandidateProfile]{Record: p, FromCache: true}, nil
	}

	lk, err := coalesce(ctx, &s.group, candidate.ID, s.timeout, func(ctx context.Context) (Lookup[*domain.CandidateProfile], error) {
		if p, ok := s.profiles.Get(ctx, candidate.ID); ok {
			return Lookup[*domain.CandidateProfile]{Record: p, FromCache: true}, nil
		}
		return s.research(ctx, candidate, race, location)
	})
	if err != nil {
		return Lookup[*domain.CandidateProfile]{}, err
	}
	lk.Record = lk.Record.Clone()
	return lk, nil
}

func (s *CandidateService) research(ctx context.Context, candidate domain.Candidate, race domain.Race, location string) (Lookup[*domain.CandidateProfile], error) {
	text, sources, err := s.provider.ResearchCandidate(ctx, candidate.Name, race.Office, location)
	if err != nil {
		return Lookup[*domain.CandidateProfile]{}, fmt.Errorf("failed to research %s: %w", candidate.Name, err)
	}

	var p domain.CandidateProfile
	if err := extract.Decode(text, &p); err != nil {
		return Lookup[*domain.CandidateProfile]{}, fmt.Errorf("failed to read profile for %s: %w", candidate.Name, err)
	}

	p.ID = candidate.ID
	if strings.TrimSpace(p.Name) == "" {
		p.Name = candidate.Name
	}
	if strings.TrimSpace(p.Office) == "" {
		p.Office = race.Office
	}
	p.Party = domain.ReconcileParty(p.Party, candidate.Party)
	p.Sources = domain.DedupeSources(sources)
	p.Complete()

	werr := s.profiles.Set(ctx, candidate.ID, &p)
	if werr != nil {
		log.WithError(werr).WithField("candidate", candidate.ID).Warn("profile not cached")
	}
	log.WithFields(log.Fields{"candidate": candidate.ID, "sources": len(p.Sources)}).Debug("candidate researched")

	return Lookup[*domain.CandidateProfile]{Record: &p, WriteErr: werr}, nil
}

// Compare fetches two profiles side by side.
func (s *CandidateService) Compare(ctx context.Context, a, b domain.Candidate, race domain.Race, location string) ([2]*domain.CandidateProfile, error) {
	lks, err := s.CompareLookups(ctx, [2]domain.Candidate{a, b}, race, location)
	if err != nil {
		return [2]*domain.CandidateProfile{}, err
	}
	return [2]*domain.CandidateProfile{lks[0].Record, lks[1].Record}, nil
}

// CompareLookups fetches both profiles concurrently. Either failure fails the
// comparison; a profile already researched is still cached.
func (s *CandidateService) CompareLookups(ctx context.Context, candidates [2]domain.Candidate, race domain.Race, location string) ([2]Lookup[*domain.CandidateProfile], error) {
	var out [2]Lookup[*domain.CandidateProfile]

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			lk, err := s.LookupCandidateProfile(gctx, c, race, location)
			if err != nil {
				return err
			}
			out[i] = lk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [2]Lookup[*domain.CandidateProfile]{}, err
	}
	return out, nil
}

// Clear drops every cached profile.
func (s *CandidateService) Clear(ctx context.Context) error {
	return s.profiles.Clear(ctx)
}
