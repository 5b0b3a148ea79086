package syncer

import (
	"fmt"

	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Options controls a batch sync.
type Options struct {
	Concurrency int  // Entities processed at once
	DryRun      bool // Build the export payloads without sending anything
	FailFast    bool // Cancel the remaining entities after the first failure
	SkipUpdate  bool // Export only, do not reconcile service metadata
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		Concurrency: constants.DefaultSyncConcurrency,
	}
}

// Apply applies the given options to the sync options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks if the sync options are valid.
func (o *Options) Validate() error {
	if o.Concurrency < 1 || o.Concurrency > constants.MaxSyncConcurrency {
		return &errors.ValidationError{
			Field:   "concurrency",
			Value:   o.Concurrency,
			Message: fmt.Sprintf("must be between 1 and %d", constants.MaxSyncConcurrency),
		}
	}
	return nil
}

// WithConcurrency sets how many entities are processed at once.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithDryRun prepares exports without calling the platform.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithFailFast stops the batch on the first failed entity.
func WithFailFast(failFast bool) Option {
	return func(o *Options) {
		o.FailFast = failFast
	}
}

// WithSkipUpdate disables the reconcile step.
func WithSkipUpdate(skip bool) Option {
	return func(o *Options) {
		o.SkipUpdate = skip
	}
}
