// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/provider/prompt"
)

func newServer(t *testing.T, status int, body string, inspect func(*http.Request, []byte)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if inspect != nil {
			inspect(r, raw)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFindBallot(t *testing.T) {
	srv := newServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"{\"location\":\"Austin, TX\"}"},"finish_reason":"stop"}]}`,
		func(r *http.Request, body []byte) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			assert.Equal(t, "gpt-test", gjson.GetBytes(body, "model").String())
			assert.Equal(t, "system", gjson.GetBytes(body, "messages.0.role").String())
			assert.Equal(t, prompt.BallotSystem, gjson.GetBytes(body, "messages.0.content").String())
			assert.Equal(t, prompt.Ballot("Austin, TX"), gjson.GetBytes(body, "messages.1.content").String())
		})

	c := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-test"})
	text, err := c.FindBallot(context.Background(), "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, `{"location":"Austin, TX"}`, text)
}

func TestResearchCandidate_NoCitations(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":"{}"}}]}`, nil)

	c := New(Config{APIKey: "k", BaseURL: srv.URL})
	_, sources, err := c.ResearchCandidate(context.Background(), "Jane Doe", "Mayor", "Austin, TX")
	require.NoError(t, err)
	assert.NotNil(t, sources)
	assert.Empty(t, sources)
}

func TestResearchCandidate_Citations(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{
	  "choices":[{"message":{"content":"{}"}}],
	  "search_results":[{"title":"Campaign site","url":"https://jane.example"}],
	  "citations":["https://jane.example","https://news.example/jane"]
	}`, nil)

	c := New(Config{APIKey: "k", BaseURL: srv.URL})
	_, sources, err := c.ResearchCandidate(context.Background(), "Jane Doe", "Mayor", "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, []domain.Source{
		{Title: "Campaign site", URI: "https://jane.example"},
		{Title: "Source", URI: "https://news.example/jane"},
	}, sources)
}

func TestChat_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key"}}`},
		{"bad status", http.StatusBadGateway, `<html>`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body, nil)
			c := New(Config{APIKey: "k", BaseURL: srv.URL})
			_, err := c.FindBallot(context.Background(), "x")
			assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
		})
	}
}

func TestChat_MissingKey(t *testing.T) {
	_, err := New(Config{}).FindBallot(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestGenerate_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() { close(block); srv.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(Config{APIKey: "k", BaseURL: srv.URL})
	_, _, err := c.ResearchCandidate(ctx, "Jane Doe", "Mayor", "Austin, TX")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	cctx, ccancel := context.WithCancel(context.Background())
	ccancel()
	_, err = c.FindBallot(cctx, "Austin, TX")
	assert.ErrorIs(t, err, context.Canceled)
}
