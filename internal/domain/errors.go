// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package domain

import "errors"

var (
	// ErrProviderUnavailable covers transport, auth and empty responses from
	// the research provider.
	ErrProviderUnavailable = errors.New("research provider unavailable")

	// ErrMalformedResponse means the provider text held no usable JSON object
	// or the object did not match the expected shape.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrStoreWriteFailed is reported when a record could not be persisted.
	// Fetches never fail because of it.
	ErrStoreWriteFailed = errors.New("cache write failed")

	// ErrInvalidInput indicates a blank location or candidate id.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a candidate id that is not on the ballot.
	ErrNotFound = errors.New("not found")
)

// UserMessage turns an error from a fetch into the text shown to a person.
// Provider and parsing failures collapse into a single retry hint.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrMalformedResponse):
		return "could not retrieve data, try again"
	default:
		return err.Error()
	}
}
