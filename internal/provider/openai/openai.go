// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package openai researches through any OpenAI-compatible /chat/completions
// endpoint. Plain OpenAI models are not grounded, so they return no
// citations; search-backed services that report citations (a top-level
// "citations" list of URLs or "search_results" objects) have them mapped.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/provider/prompt"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 90 * time.Second
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
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

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model    string              `json:"model"`
	Messages []chatCompletionMsg `json:"messages"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) FindBallot(ctx context.Context, location string) (string, error) {
	text, _, err := c.chat(ctx, prompt.BallotSystem, prompt.Ballot(location))
	return text, err
}

func (c *Client) ResearchCandidate(ctx context.Context, name, office, location string) (string, []domain.Source, error) {
	return c.chat(ctx, prompt.CandidateSystem, prompt.Candidate(name, office, location))
}

func (c *Client) chat(ctx context.Context, system, user string) (string, []domain.Source, error) {
	if c.apiKey == "" {
		return "", nil, fmt.Errorf("%w: openai API key missing", domain.ErrProviderUnavailable)
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return "", nil, fmt.Errorf("%w: openai error (status %d): %s", domain.ErrProviderUnavailable, resp.StatusCode, msg.String())
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%w: openai error (status %d)", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	text := gjson.GetBytes(raw, "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", nil, fmt.Errorf("%w: no data returned", domain.ErrProviderUnavailable)
	}

	sources := citations(raw)
	log.WithFields(log.Fields{"model": c.model, "chars": len(text), "sources": len(sources)}).Debug("openai response")
	return text, sources, nil
}

func citations(raw []byte) []domain.Source {
	var sources []domain.Source
	gjson.GetBytes(raw, "search_results").ForEach(func(_, r gjson.Result) bool {
		sources = append(sources, domain.Source{Title: r.Get("title").String(), URI: r.Get("url").String()})
		return true
	})
	gjson.GetBytes(raw, "citations").ForEach(func(_, r gjson.Result) bool {
		sources = append(sources, domain.Source{URI: r.String()})
		return true
	})
	return domain.DedupeSources(sources)
}
