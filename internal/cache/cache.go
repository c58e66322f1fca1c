// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Namespace partitions the store. Clearing a namespace never touches another.
type Namespace string

const (
	Ballots           Namespace = "ballots"
	CandidateProfiles Namespace = "candidate-profiles"
)

// Namespaces lists every namespace the application writes.
var Namespaces = []Namespace{Ballots, CandidateProfiles}

// ParseNamespace validates a namespace name supplied by a user.
func ParseNamespace(s string) (Namespace, error) {
	for _, ns := range Namespaces {
		if string(ns) == s {
			return ns, nil
		}
	}
	return "", fmt.Errorf("unknown namespace %q, must be one of %v", s, Namespaces)
}

// DefaultTTL is how long a record stays fresh.
const DefaultTTL = 24 * time.Hour

// Entry is a raw record as held by a Backend.
type Entry struct {
	Key         string
	Data        []byte
	LastUpdated time.Time
}

// Backend is the durable medium under a Store. Implementations only need
// last-write-wins semantics; a write must replace the whole entry so a reader
// never observes a partial record.
type Backend interface {
	Read(ctx context.Context, ns Namespace, key string) (*Entry, bool, error)
	Write(ctx context.Context, ns Namespace, key string, e Entry) error
	RemoveNamespace(ctx context.Context, ns Namespace) error
	Close() error
}

// Store applies the freshness policy over a Backend.
type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock injects the time source used for stamping and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration { return s.ttl }

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.now() }

// Fresh reports whether a record stamped at updated is still usable. A record
// is stale once its age reaches the TTL. A stamp in the future is treated as
// stale so a skewed clock cannot pin a record forever.
func (s *Store) Fresh(updated time.Time) bool {
	age := s.now().Sub(updated)
	return age >= 0 && age < s.ttl
}

// Clear removes every namespace. All namespaces are attempted even when one
// fails.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, ns := range Namespaces {
		if err := s.ClearNamespace(ctx, ns); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearNamespace removes one namespace.
func (s *Store) ClearNamespace(ctx context.Context, ns Namespace) error {
	if err := s.backend.RemoveNamespace(ctx, ns); err != nil {
		return fmt.Errorf("failed to clear %s: %w", ns, err)
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
