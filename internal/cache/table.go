// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/normalee1993/BallotResearch/internal/domain"
)

// Record is a value that carries its own last-updated stamp.
type Record interface {
	Touch(time.Time)
	Updated() time.Time
}

// Table is a typed view of one namespace.
type Table[T Record] struct {
	store     *Store
	ns        Namespace
	newRecord func() T
}

// NewTable binds a namespace to a record type. newRecord must return a fresh,
// decodable value (typically a pointer to a zero struct).
func NewTable[T Record](store *Store, ns Namespace, newRecord func() T) *Table[T] {
	return &Table[T]{store: store, ns: ns, newRecord: newRecord}
}

// Namespace returns the namespace the table reads and writes.
func (t *Table[T]) Namespace() Namespace { return t.ns }

// Get returns the record stored under key if it exists and is fresh. Read and
// decode failures are logged and reported as a miss; the provider can always
// rebuild the entry.
func (t *Table[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	entry, ok, err := t.store.backend.Read(ctx, t.ns, key)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"ns": t.ns, "key": key}).Warn("cache read failed")
		return zero, false
	}
	if !ok {
		log.Debugf("cache miss: %s/%s", t.ns, key)
		return zero, false
	}

	rec := t.newRecord()
	if err := json.Unmarshal(entry.Data, rec); err != nil {
		log.WithError(err).WithFields(log.Fields{"ns": t.ns, "key": key}).Warn("discarding undecodable cache entry")
		return zero, false
	}

	if !t.store.Fresh(rec.Updated()) {
		log.Debugf("cache expired: %s/%s", t.ns, key)
		return zero, false
	}

	log.Debugf("cache hit: %s/%s", t.ns, key)
	return rec, true
}

// Set stamps rec with the current time and writes it under key, replacing any
// previous entry. The returned error, if any, wraps domain.ErrStoreWriteFailed
// and is safe to ignore: rec itself is still valid.
func (t *Table[T]) Set(ctx context.Context, key string, rec T) error {
	now := t.store.now()
	rec.Touch(now)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %w", domain.ErrStoreWriteFailed, t.ns, key, err)
	}

	if err := t.store.backend.Write(ctx, t.ns, key, Entry{Key: key, Data: data, LastUpdated: now}); err != nil {
		return fmt.Errorf("%w: %s/%s: %w", domain.ErrStoreWriteFailed, t.ns, key, err)
	}
	return nil
}

// Clear removes every record in the table's namespace.
func (t *Table[T]) Clear(ctx context.Context) error {
	return t.store.ClearNamespace(ctx, t.ns)
}
