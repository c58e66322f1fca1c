// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/attrs"
	"github.com/normalee1993/BallotResearch/internal/backend"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/config"
	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/meta"
	"github.com/normalee1993/BallotResearch/internal/output"
	"github.com/normalee1993/BallotResearch/internal/progress"
	"github.com/normalee1993/BallotResearch/internal/provider"
	"github.com/normalee1993/BallotResearch/internal/service"
)

// Env is everything a research command needs: the opened cache and the two
// services sharing it.
type Env struct {
	Settings   config.Settings
	Backend    cache.Backend
	Store      *cache.Store
	Ballots    *service.BallotService
	Candidates *service.CandidateService
}

// Close releases the cache backend.
func (e *Env) Close() error {
	if e == nil || e.Store == nil {
		return nil
	}
	return e.Store.Close()
}

// EnvFactory builds the Env for a command invocation. Tests substitute one
// that wires a fake provider and the memory backend.
type EnvFactory func(ctx context.Context, cmd *cli.Command) (*Env, error)

// NewEnv loads settings, opens the configured backend and builds the
// services. --store and --no-persist override the configured backend.
func NewEnv(ctx context.Context, cmd *cli.Command) (*Env, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	if s := flagString(cmd, "store"); s != "" {
		settings.Store.Backend = s
	}
	if flagBool(cmd, "no-persist") {
		settings.Store.Backend = backend.TypeMemory
	}
	log.WithFields(log.Fields{
		"store":    settings.Store.Backend,
		"provider": settings.Provider.Name,
		"ttl":      settings.Store.TTL,
	}).Debug("settings loaded")

	p, err := provider.New(settings.Provider)
	if err != nil {
		return nil, err
	}

	be, err := backend.Open(ctx, settings.Store)
	if err != nil {
		return nil, err
	}

	return newEnv(settings, be, p), nil
}

func newEnv(settings config.Settings, be cache.Backend, p provider.Provider) *Env {
	store := cache.New(be, cache.WithTTL(settings.Store.TTL))
	timeout := service.WithTimeout(settings.Provider.Timeout)
	return &Env{
		Settings:   settings,
		Backend:    be,
		Store:      store,
		Ballots:    service.NewBallotService(p, store, timeout),
		Candidates: service.NewCandidateService(p, store, timeout),
	}
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// getEnvFactory returns the factory stored in the command's Metadata, or
// NewEnv.
func getEnvFactory(cmd *cli.Command) EnvFactory {
	if cmd != nil && cmd.Metadata != nil {
		if f, ok := cmd.Metadata["env"].(EnvFactory); ok && f != nil {
			return f
		}
	}
	return NewEnv
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr civicctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if flagBool(cmd, "tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "civicctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the row keys for the view when --schema is
// set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, v output.View) bool {
	if flagBool(cmd, "schema") {
		output.DumpSchema(GetMeta(cmd).Stdout(), v)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := flagString(cmd, "attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return al, nil
}

// Emit marshals a record and passes it to the common output routine.
func Emit(cmd *cli.Command, record any, al attrs.AttrList) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	var raw bytes.Buffer
	raw.Write(doc)
	return output.SliceDiceSpit(raw, al, output.OptionsFromCommand(cmd), GetMeta(cmd).Stdout())
}

// research wraps fn with the progress spinner unless it is disabled or
// stderr is not a terminal.
func research[T any](ctx context.Context, cmd *cli.Command, message string, fn func(context.Context) (T, error)) (T, error) {
	m := GetMeta(cmd)
	f, _ := m.Stderr().(*os.File)
	enabled := progress.Enabled(flagBool(cmd, "no-spinner"), f)
	return progress.Run(ctx, m.Stderr(), enabled, message, fn)
}

// report writes the provenance line and any durability warning for a
// lookup. Provenance is only shown with text output.
func report(cmd *cli.Command, lookups ...lookupInfo) {
	w := GetMeta(cmd).Stderr()
	for _, l := range lookups {
		output.WriteStoreWarning(w, l.writeErr)
	}
	if flagString(cmd, "output") != "text" {
		return
	}
	for _, l := range lookups {
		if l.label != "" {
			fmt.Fprintf(w, "%s: ", l.label)
		}
		output.WriteProvenance(w, l.updated, l.fromCache)
	}
}

type lookupInfo struct {
	label     string
	updated   time.Time
	fromCache bool
	writeErr  error
}

// UserError carries the text shown to a person while keeping the cause for
// errors.Is and the debug log.
type UserError struct {
	err error
}

func (e *UserError) Error() string { return domain.UserMessage(e.err) }

func (e *UserError) Unwrap() error { return e.err }

// userError logs err in full and returns it wrapped for display.
func userError(err error) error {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return err
	}
	log.WithError(err).Debug("command failed")
	return &UserError{err: err}
}

// joinArgs joins the positional args into a single location.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// flagString and flagBool read a flag that might not be defined on cmd.
func flagString(cmd *cli.Command, name string) string {
	if cmd == nil || !hasFlag(cmd, name) {
		return ""
	}
	return cmd.String(name)
}

func flagBool(cmd *cli.Command, name string) bool {
	if cmd == nil || !hasFlag(cmd, name) {
		return false
	}
	return cmd.Bool(name)
}

func hasFlag(cmd *cli.Command, name string) bool {
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			if n == name {
				return true
			}
		}
	}
	return false
}
