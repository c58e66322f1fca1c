// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Defaults applied when neither the environment nor the config file set a
// value.
const (
	DefaultProvider        = "gemini"
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultProviderTimeout = 90 * time.Second
	DefaultProviderRate    = 1.0
	DefaultProviderBurst   = 2
	DefaultStore           = "file"
	DefaultTTL             = 24 * time.Hour
)

// ProviderSettings selects and configures the research provider.
type ProviderSettings struct {
	Name      string        `env:"CIVICCTL_PROVIDER"`
	Model     string        `env:"CIVICCTL_MODEL"`
	URL       string        `env:"CIVICCTL_PROVIDER_URL"`
	Timeout   time.Duration `env:"CIVICCTL_PROVIDER_TIMEOUT"`
	Rate      float64       `env:"CIVICCTL_PROVIDER_RATE"`
	Burst     int           `env:"CIVICCTL_PROVIDER_BURST"`
	GeminiKey string        `env:"GEMINI_API_KEY"`
	OpenAIKey string        `env:"OPENAI_API_KEY"`
}

// APIKey returns the key for the selected provider.
func (p ProviderSettings) APIKey() string {
	if p.Name == "openai" {
		return p.OpenAIKey
	}
	return p.GeminiKey
}

// StoreSettings selects and configures the cache backend.
type StoreSettings struct {
	Backend    string        `env:"CIVICCTL_STORE"`
	TTL        time.Duration `env:"CIVICCTL_TTL"`
	Dir        string        `env:"CIVICCTL_CACHE_DIR"`
	SQLitePath string        `env:"CIVICCTL_SQLITE_PATH"`
	S3Bucket   string        `env:"CIVICCTL_S3_BUCKET"`
	S3Prefix   string        `env:"CIVICCTL_S3_PREFIX"`
	S3Region   string        `env:"CIVICCTL_S3_REGION"`
	S3Profile  string        `env:"CIVICCTL_S3_PROFILE"`
	S3Endpoint string        `env:"CIVICCTL_S3_ENDPOINT"`
}

// Settings is everything needed to wire the services.
type Settings struct {
	Provider ProviderSettings
	Store    StoreSettings
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings reads the environment and fills whatever is still unset from
// the config file, then from the built-in defaults. Environment always wins.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}

	p := &s.Provider
	fillString(&p.Name, "provider.name", DefaultProvider)
	defaultModel := DefaultGeminiModel
	if p.Name == "openai" {
		defaultModel = DefaultOpenAIModel
	}
	fillString(&p.Model, "provider.model", defaultModel)
	fillString(&p.URL, "provider.url", "")
	if p.Timeout == 0 {
		p.Timeout, _ = GetDuration("provider.timeout", DefaultProviderTimeout)
	}
	if p.Rate == 0 {
		p.Rate, _ = GetFloat("provider.rate", DefaultProviderRate)
	}
	if p.Burst == 0 {
		p.Burst, _ = GetInt("provider.burst", DefaultProviderBurst)
	}

	st := &s.Store
	fillString(&st.Backend, "store.backend", DefaultStore)
	if st.TTL == 0 {
		st.TTL, _ = GetDuration("store.ttl", DefaultTTL)
	}
	fillString(&st.Dir, "store.dir", "")
	fillString(&st.SQLitePath, "store.sqlite.path", "")
	fillString(&st.S3Bucket, "store.s3.bucket", "")
	fillString(&st.S3Prefix, "store.s3.prefix", "")
	fillString(&st.S3Region, "store.s3.region", "")
	fillString(&st.S3Profile, "store.s3.profile", "")
	fillString(&st.S3Endpoint, "store.s3.endpoint", "")

	return s, nil
}

func fillString(dst *string, key, def string) {
	if *dst != "" {
		return
	}
	*dst, _ = GetString(key, def)
}
