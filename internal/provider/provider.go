// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package provider defines the research provider boundary and builds the
// configured adapter. Providers return raw model text; callers extract and
// validate the JSON themselves.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/normalee1993/BallotResearch/internal/config"
	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/provider/gemini"
	"github.com/normalee1993/BallotResearch/internal/provider/openai"
)

// Provider answers free-form research questions with model text that should
// hold one JSON object. Failures wrap domain.ErrProviderUnavailable, except a
// cancelled context which is returned as is.
type Provider interface {
	FindBallot(ctx context.Context, location string) (string, error)
	ResearchCandidate(ctx context.Context, name, office, location string) (string, []domain.Source, error)
}

var (
	_ Provider = (*gemini.Client)(nil)
	_ Provider = (*openai.Client)(nil)
	_ Provider = (*Limited)(nil)
	_ Provider = (*Logged)(nil)
)

const (
	NameGemini = "gemini"
	NameOpenAI = "openai"
)

// New builds the adapter named in settings, throttled and logged.
func New(settings config.ProviderSettings) (Provider, error) {
	var p Provider
	switch settings.Name {
	case "", NameGemini:
		p = gemini.New(gemini.Config{
			APIKey:  settings.GeminiKey,
			BaseURL: settings.URL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	case NameOpenAI:
		p = openai.New(openai.Config{
			APIKey:  settings.OpenAIKey,
			BaseURL: settings.URL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q, must be %s or %s", settings.Name, NameGemini, NameOpenAI)
	}

	return NewLimited(NewLogged(p, settings.Name), settings.Rate, settings.Burst), nil
}

// Limited throttles calls to the wrapped provider with a token bucket so a
// comparison fan-out cannot burst through the provider's quota. It never
// retries.
type Limited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewLimited allows perSecond calls per second with the given burst. A
// non-positive rate disables throttling.
func NewLimited(next Provider, perSecond float64, burst int) *Limited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (l *Limited) FindBallot(ctx context.Context, location string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", waitError(ctx, err)
	}
	return l.next.FindBallot(ctx, location)
}

func (l *Limited) ResearchCandidate(ctx context.Context, name, office, location string) (string, []domain.Source, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", nil, waitError(ctx, err)
	}
	return l.next.ResearchCandidate(ctx, name, office, location)
}

// waitError classifies a failed limiter wait. A cancelled caller gets its
// own error back; a wait that would outrun the deadline means the provider
// cannot be reached in time.
func waitError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: waiting for provider: %w", domain.ErrProviderUnavailable, err)
}

// Logged tags each call with a request id and logs its outcome and latency.
type Logged struct {
	next Provider
	name string
}

func NewLogged(next Provider, name string) *Logged {
	return &Logged{next: next, name: name}
}

func (l *Logged) entry(op string) *log.Entry {
	return log.WithFields(log.Fields{"provider": l.name, "op": op, "req": uuid.NewString()})
}

func (l *Logged) FindBallot(ctx context.Context, location string) (string, error) {
	e := l.entry("ballot").WithField("location", location)
	e.Debug("provider call")
	start := time.Now()

	text, err := l.next.FindBallot(ctx, location)
	done(e, start, err)
	return text, err
}

func (l *Logged) ResearchCandidate(ctx context.Context, name, office, location string) (string, []domain.Source, error) {
	e := l.entry("candidate").WithField("candidate", name)
	e.Debug("provider call")
	start := time.Now()

	text, sources, err := l.next.ResearchCandidate(ctx, name, office, location)
	done(e, start, err)
	return text, sources, err
}

func done(e *log.Entry, start time.Time, err error) {
	e = e.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		e.WithError(err).Warn("provider call failed")
		return
	}
	e.Debug("provider call done")
}
