// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package extract recovers a single JSON object from provider free text that
// may be wrapped in prose or fenced code blocks.
//
// Fenced blocks are tried first, then the whole text is sliced from the first
// '{' to the last '}'. A truncated payload, or prose with unrelated braces and
// no fence, cannot be repaired and is reported as malformed.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/normalee1993/BallotResearch/internal/domain"
)

// fenceRegex matches ```lang\n ... ``` blocks. The language tag is optional.
var fenceRegex = regexp.MustCompile("(?s)```[\\w-]*[ \\t]*\\r?\\n(.*?)```")

// Object returns the JSON object embedded in text.
func Object(text string) (gjson.Result, error) {
	for _, m := range fenceRegex.FindAllStringSubmatch(text, -1) {
		if obj, err := slice(m[1]); err == nil {
			return obj, nil
		}
	}
	return slice(text)
}

// Decode extracts the JSON object from text and unmarshals it into v. Type
// mismatches against v are reported as malformed responses too.
func Decode(text string, v any) error {
	obj, err := Object(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj.Raw), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

func slice(text string) (gjson.Result, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || start >= end {
		return gjson.Result{}, fmt.Errorf("%w: response does not contain a JSON object", domain.ErrMalformedResponse)
	}

	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return gjson.Result{}, fmt.Errorf("%w: response JSON does not parse", domain.ErrMalformedResponse)
	}

	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: response JSON is not an object", domain.ErrMalformedResponse)
	}
	return obj, nil
}
