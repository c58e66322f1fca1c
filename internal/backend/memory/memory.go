// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package memory is a process-local cache.Backend. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/normalee1993/BallotResearch/internal/cache"
)

// Backend keeps entries in a map guarded by a RWMutex.
type Backend struct {
	mu      sync.RWMutex
	entries map[cache.Namespace]map[string]cache.Entry
}

var _ cache.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{entries: make(map[cache.Namespace]map[string]cache.Entry)}
}

func (b *Backend) Read(_ context.Context, ns cache.Namespace, key string) (*cache.Entry, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[ns][key]
	if !ok {
		return nil, false, nil
	}
	e.Data = append([]byte(nil), e.Data...)
	return &e, true, nil
}

func (b *Backend) Write(_ context.Context, ns cache.Namespace, key string, e cache.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.entries[ns]
	if !ok {
		m = make(map[string]cache.Entry)
		b.entries[ns] = m
	}
	e.Data = append([]byte(nil), e.Data...)
	m[key] = e
	return nil
}

func (b *Backend) RemoveNamespace(_ context.Context, ns cache.Namespace) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, ns)
	return nil
}

// Len returns the number of entries held in ns.
func (b *Backend) Len(ns cache.Namespace) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries[ns])
}

func (b *Backend) Close() error { return nil }
