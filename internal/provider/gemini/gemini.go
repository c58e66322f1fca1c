// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package gemini researches ballots and candidates through the Gemini
// generateContent REST API with Google Search grounding enabled.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/provider/prompt"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 90 * time.Second
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	Tools             []map[string]any `json:"tools"`
}

// FindBallot returns the raw model text for a ballot lookup.
func (c *Client) FindBallot(ctx context.Context, location string) (string, error) {
	text, _, err := c.generate(ctx, prompt.BallotSystem, prompt.Ballot(location))
	return text, err
}

// ResearchCandidate returns the raw model text for a candidate and the web
// citations Gemini grounded it on.
func (c *Client) ResearchCandidate(ctx context.Context, name, office, location string) (string, []domain.Source, error) {
	return c.generate(ctx, prompt.CandidateSystem, prompt.Candidate(name, office, location))
}

func (c *Client) generate(ctx context.Context, system, user string) (string, []domain.Source, error) {
	if c.apiKey == "" {
		return "", nil, fmt.Errorf("%w: gemini API key missing", domain.ErrProviderUnavailable)
	}

	body, err := json.Marshal(generateRequest{
		SystemInstruction: content{Parts: []part{{Text: system}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: user}}}},
		Tools:             []map[string]any{{"google_search": map[string]any{}}},
	})
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: read response: %w", domain.ErrProviderUnavailable, err)
	}

	if msg := gjson.GetBytes(raw, "error.message"); msg.Exists() {
		return "", nil, fmt.Errorf("%w: gemini error (status %d): %s", domain.ErrProviderUnavailable, resp.StatusCode, msg.String())
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%w: gemini error (status %d): %s", domain.ErrProviderUnavailable, resp.StatusCode, truncate(raw))
	}

	text, sources := parse(raw)
	if strings.TrimSpace(text) == "" {
		reason := gjson.GetBytes(raw, "candidates.0.finishReason").String()
		return "", nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, emptyError(reason))
	}

	log.WithFields(log.Fields{"model": c.model, "chars": len(text), "sources": len(sources)}).Debug("gemini response")
	return text, sources, nil
}

// parse concatenates the answer parts of the first candidate, skipping
// thought summaries, and collects the grounding citations.
func parse(raw []byte) (string, []domain.Source) {
	first := gjson.GetBytes(raw, "candidates.0")

	var b strings.Builder
	first.Get("content.parts").ForEach(func(_, p gjson.Result) bool {
		if !p.Get("thought").Bool() {
			b.WriteString(p.Get("text").String())
		}
		return true
	})

	var sources []domain.Source
	first.Get("groundingMetadata.groundingChunks.#.web").ForEach(func(_, web gjson.Result) bool {
		sources = append(sources, domain.Source{
			Title: web.Get("title").String(),
			URI:   web.Get("uri").String(),
		})
		return true
	})

	return b.String(), domain.DedupeSources(sources)
}

func emptyError(reason string) error {
	if reason == "" {
		return errors.New("no data returned")
	}
	return fmt.Errorf("no data returned (finish reason %s)", reason)
}

func truncate(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
