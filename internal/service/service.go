// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/normalee1993/BallotResearch/internal/domain"
)

// DefaultTimeout bounds a provider call once it is detached from the caller.
const DefaultTimeout = 90 * time.Second

// Lookup is a fetched record plus how it was obtained. WriteErr is set when a
// freshly researched record could not be persisted; Record is still valid.
type Lookup[T any] struct {
	Record    T
	FromCache bool
	WriteErr  error
}

type options struct {
	timeout time.Duration
}

type Option func(*options)

// WithTimeout bounds each shared provider call. Non-positive values are
// ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// coalesce runs fn once per key among concurrent callers. fn runs on a
// context detached from ctx so a caller giving up does not abort the work
// (the result is still persisted for the next caller); the caller itself
// returns ctx.Err() as soon as ctx is done. A flight that outlives its own
// timeout is reported as ErrProviderUnavailable.
func coalesce[T any](ctx context.Context, g *singleflight.Group, key string, timeout time.Duration,
	fn func(context.Context) (Lookup[T], error),
) (Lookup[T], error) {
	ch := g.DoChan(key, func() (any, error) {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return Lookup[T]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Lookup[T]{}, flightError(ctx, res.Err)
		}
		return res.Val.(Lookup[T]), nil
	}
}

func flightError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, domain.ErrProviderUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	return err
}
