// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Setenv("CIVICCTL_CACHE_DIR", "/tmp/civic-test")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/civic-test", dir)
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("CIVICCTL_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "cache")
	got, ok, err := EnsureBaseDir(base)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)

	t.Setenv("CIVICCTL_CACHE", "0")
	_, ok, err = EnsureBaseDir(base)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteRead(t *testing.T) {
	base := t.TempDir()
	subdirs := []string{"ballots"}

	_, ok := Read(base, subdirs, "austin, tx")
	assert.False(t, ok)

	require.NoError(t, Write(base, subdirs, "austin, tx", []byte(`{"a":1}`+"\n")))

	e, ok := Read(base, subdirs, "austin, tx")
	require.True(t, ok)
	assert.Equal(t, "austin, tx", e.Key)
	assert.Equal(t, EncodeKey("austin, tx"), e.EncodedKey)
	assert.Equal(t, []byte(`{"a":1}`), e.Data)
	assert.Equal(t, filepath.Join(base, "ballots", EncodeKey("austin, tx")), e.Path)
	assert.False(t, e.ModTime.IsZero())

	// Overwrite replaces the entry and leaves no temp files behind.
	require.NoError(t, Write(base, subdirs, "austin, tx", []byte(`{"a":2}`)))
	e, ok = Read(base, subdirs, "austin, tx")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":2}`), e.Data)

	files, err := os.ReadDir(filepath.Join(base, "ballots"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRemoveDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, Write(base, []string{"ballots"}, "k", []byte("x")))
	require.NoError(t, Write(base, []string{"candidate-profiles"}, "k", []byte("y")))

	require.NoError(t, RemoveDir(base, []string{"ballots"}))
	_, ok := Read(base, []string{"ballots"}, "k")
	assert.False(t, ok)
	_, ok = Read(base, []string{"candidate-profiles"}, "k")
	assert.True(t, ok)

	assert.NoError(t, RemoveDir(base, []string{"missing"}))
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, Write(base, []string{"ballots"}, "old", []byte("x")))
	require.NoError(t, Write(base, []string{"ballots"}, "new", []byte("y")))

	old, _ := EntryPath(base, []string{"ballots"}, "old")
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	n, err := Purge(base, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = Purge(base, 24)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := Read(base, []string{"ballots"}, "old")
	assert.False(t, ok)
	_, ok = Read(base, []string{"ballots"}, "new")
	assert.True(t, ok)
}

func TestPurge_MissingBase(t *testing.T) {
	n, err := Purge(filepath.Join(t.TempDir(), "nope"), 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}
