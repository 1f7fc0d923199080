package config

import (
	"time"

	"github.com/spf13/afero"

	"github.com/devstats/gha2db/internal/env"
	"github.com/devstats/gha2db/internal/fatal"
)

// Option configures New.
type Option func(*options)

type options struct {
	source          env.Source
	fs              afero.Fs
	fatal           *fatal.Handler
	overrides       Overrides
	database        string
	oauthCandidates []string
	testMode        bool
}

// Overrides are values supplied by an upstream collaborator, typically the
// projects.yaml entry of the current project. A non-nil field wins over the
// literal default but loses to an explicit environment variable.
type Overrides struct {
	Project      *string
	StartDate    *time.Time
	ProjectScale *float64
	SharedDB     *string
	MainRepo     *string
}

// WithSource reads variables from src instead of the process environment.
func WithSource(src env.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithEnv reads variables from a fixed map.
func WithEnv(vars map[string]string) Option {
	return WithSource(env.Map(vars))
}

// WithFs probes files on fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithFatal escalates resolution errors to h.
func WithFatal(h *fatal.Handler) Option {
	return func(o *options) {
		o.fatal = h
	}
}

// WithOverrides merges project level values under the environment.
func WithOverrides(ov Overrides) Option {
	return func(o *options) {
		o.overrides = ov
	}
}

// WithDatabase connects to db instead of PG_DB. The resulting Ctx must not
// share connections with its siblings, so CanReconnect is false.
func WithDatabase(db string) Option {
	return func(o *options) {
		o.database = db
	}
}

// WithOAuthCandidates replaces the token files probed when
// GHA2DB_GITHUB_OAUTH is empty.
func WithOAuthCandidates(paths ...string) Option {
	return func(o *options) {
		o.oauthCandidates = paths
	}
}

// WithTestMode marks the Ctx as built by a test harness.
func WithTestMode() Option {
	return func(o *options) {
		o.testMode = true
	}
}
