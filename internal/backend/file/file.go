// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package file stores cache entries as one file per key beneath a base
// directory, one subdirectory per namespace. File names are the MD5 of the
// key so arbitrary locations and ids are safe on any filesystem.
package file

import (
	"context"

	"github.com/apex/log"

	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/cacheutil"
)

type Backend struct {
	base    string
	enabled bool
}

var _ cache.Backend = (*Backend)(nil)

// New opens a file backend rooted at base. An empty base resolves through
// CIVICCTL_CACHE_DIR and the user cache directory. When caching is disabled
// via CIVICCTL_CACHE the backend misses on every read and drops every write.
func New(base string) (*Backend, error) {
	dir, ok, err := cacheutil.EnsureBaseDir(base)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Debug("file cache disabled")
	}
	return &Backend{base: dir, enabled: ok}, nil
}

// Dir returns the resolved base directory.
func (b *Backend) Dir() string { return b.base }

// Enabled reports whether reads and writes reach the disk.
func (b *Backend) Enabled() bool { return b.enabled }

func (b *Backend) Read(_ context.Context, ns cache.Namespace, key string) (*cache.Entry, bool, error) {
	if !b.enabled {
		return nil, false, nil
	}
	e, ok := cacheutil.Read(b.base, []string{string(ns)}, key)
	if !ok {
		return nil, false, nil
	}
	return &cache.Entry{Key: key, Data: e.Data, LastUpdated: e.ModTime}, true, nil
}

func (b *Backend) Write(_ context.Context, ns cache.Namespace, key string, e cache.Entry) error {
	if !b.enabled {
		return nil
	}
	return cacheutil.Write(b.base, []string{string(ns)}, key, e.Data)
}

func (b *Backend) RemoveNamespace(_ context.Context, ns cache.Namespace) error {
	if !b.enabled {
		return nil
	}
	return cacheutil.RemoveDir(b.base, []string{string(ns)})
}

// Purge removes entries older than hours regardless of namespace and returns
// how many were removed.
func (b *Backend) Purge(hours int) (int, error) {
	if !b.enabled {
		return 0, nil
	}
	return cacheutil.Purge(b.base, hours)
}

func (b *Backend) Close() error { return nil }
