// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/apex/log"

	"github.com/normalee1993/BallotResearch/internal/backend/file"
	"github.com/normalee1993/BallotResearch/internal/backend/memory"
	"github.com/normalee1993/BallotResearch/internal/backend/s3"
	"github.com/normalee1993/BallotResearch/internal/backend/sqlite"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/cacheutil"
	"github.com/normalee1993/BallotResearch/internal/config"
)

const (
	TypeFile   = "file"
	TypeSQLite = "sqlite"
	TypeS3     = "s3"
	TypeMemory = "memory"
)

// Types lists the accepted store.backend values.
var Types = []string{TypeFile, TypeSQLite, TypeS3, TypeMemory}

// ErrPurgeUnsupported is returned by Purge for backends without age-based
// cleanup.
var ErrPurgeUnsupported = errors.New("purge is not supported by this backend")

// Purger is implemented by backends that can drop entries by age.
type Purger interface {
	Purge(ctx context.Context, hours int) (int, error)
}

// Open builds the backend named by settings.Backend.
func Open(ctx context.Context, settings config.StoreSettings) (cache.Backend, error) {
	log.Debugf("Open: backend=%s", settings.Backend)

	switch settings.Backend {
	case "", TypeFile:
		be, err := file.New(settings.Dir)
		if err != nil {
			return nil, err
		}
		return filePurger{be}, nil
	case TypeSQLite:
		path := settings.SQLitePath
		if path == "" {
			dir := settings.Dir
			if dir == "" {
				var ok bool
				if dir, ok = cacheutil.Dir(); !ok {
					return nil, errors.New("cannot resolve a directory for the sqlite cache")
				}
			}
			path = filepath.Join(dir, sqlite.DefaultFile)
		}
		be, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return be, nil
	case TypeS3:
		be, err := s3.NewBackendS3(ctx, settings.S3Bucket,
			s3.WithPrefix(settings.S3Prefix),
			s3.WithRegion(settings.S3Region),
			s3.WithProfile(settings.S3Profile),
			s3.WithEndpoint(settings.S3Endpoint),
		)
		if err != nil {
			return nil, err
		}
		return be, nil
	case TypeMemory:
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown store backend %q, must be one of %v", settings.Backend, Types)
}

// Purge removes entries older than hours when the backend supports it.
func Purge(ctx context.Context, be cache.Backend, hours int) (int, error) {
	p, ok := be.(Purger)
	if !ok {
		return 0, ErrPurgeUnsupported
	}
	return p.Purge(ctx, hours)
}

// filePurger adapts the file backend's context-free Purge.
type filePurger struct {
	*file.Backend
}

func (f filePurger) Purge(_ context.Context, hours int) (int, error) {
	return f.Backend.Purge(hours)
}
