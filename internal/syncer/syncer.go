// Package syncer exports catalog entities to the platform and reconciles
// their service metadata in batches.
package syncer

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// Sync steps recorded on *errors.SyncError.
const (
	StepLoad   = "load"
	StepExport = "export"
	StepUpdate = "update"
)

// Client is the part of the platform client the syncer needs.
type Client interface {
	opslevel.Exporter
	opslevel.Reconciler
}

// Syncer runs export and reconcile for many entities.
type Syncer struct {
	client  Client
	options *Options
}

// New creates a Syncer.
func New(client Client, opts ...Option) (*Syncer, error) {
	if client == nil {
		return nil, errors.NewConfigError("syncer", "client is required", nil)
	}
	o := Defaults().Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Syncer{client: client, options: o}, nil
}

// job is one entity to sync together with where it came from.
type job struct {
	source string
	entity *catalog.Entity
}

// SyncFiles loads every entity from the given catalog files and syncs them.
// A file that cannot be loaded is reported as a failed result.
func (s *Syncer) SyncFiles(ctx context.Context, paths ...string) (*Report, error) {
	var (
		jobs   []job
		failed []*Result
	)
	for _, path := range paths {
		entities, err := catalog.LoadFile(path)
		if err != nil {
			failed = append(failed, &Result{
				Source: path,
				Err:    errors.NewSyncError(path, StepLoad, err),
			})
			continue
		}
		for _, e := range entities {
			jobs = append(jobs, job{source: path, entity: e})
		}
	}

	report, err := s.run(ctx, jobs)
	report.Results = append(failed, report.Results...)
	return report, err
}

// Sync exports and reconciles entities. Per-entity failures are recorded in
// the report. The returned error is set only when the batch itself stopped,
// on fail-fast or cancellation.
func (s *Syncer) Sync(ctx context.Context, entities ...*catalog.Entity) (*Report, error) {
	jobs := make([]job, len(entities))
	for i, e := range entities {
		jobs[i] = job{entity: e}
	}
	return s.run(ctx, jobs)
}

func (s *Syncer) run(ctx context.Context, jobs []job) (*Report, error) {
	start := time.Now()
	report := &Report{
		Results: make([]*Result, len(jobs)),
		DryRun:  s.options.DryRun,
	}

	logger := logging.FromContext(ctx)
	logger.Info().
		Int("entity_count", len(jobs)).
		Int("concurrency", s.options.Concurrency).
		Bool("dry_run", s.options.DryRun).
		Msg("Syncing entities")

	p := pool.New().
		WithMaxGoroutines(s.options.Concurrency).
		WithErrors().
		WithContext(ctx)
	if s.options.FailFast {
		p = p.WithCancelOnError().WithFirstError()
	}

	for i, j := range jobs {
		p.Go(func(ctx context.Context) error {
			res := s.syncOne(ctx, j)
			report.Results[i] = res
			if s.options.FailFast {
				return res.Err
			}
			return nil
		})
	}
	err := p.Wait()

	report.Duration = time.Since(start)
	logger.Info().
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Dur("duration", report.Duration).
		Msg("Sync finished")

	if err == nil {
		err = ctx.Err()
	}
	return report, err
}

func (s *Syncer) syncOne(ctx context.Context, j job) *Result {
	start := time.Now()
	res := &Result{Source: j.source}
	defer func() { res.Duration = time.Since(start) }()

	if j.entity == nil {
		res.Err = errors.NewSyncError(j.source, StepLoad, &errors.ValidationError{Message: "entity is nil"})
		return res
	}
	res.EntityRef = catalog.StringifyEntityRef(j.entity)
	ctx = logging.WithEntityRef(ctx, res.EntityRef)

	if err := ctx.Err(); err != nil {
		res.Err = errors.NewSyncError(res.EntityRef, StepExport, err)
		return res
	}

	if s.options.DryRun {
		req, err := opslevel.PrepareExport(j.entity)
		if err != nil {
			res.Err = errors.NewSyncError(res.EntityRef, StepExport, err)
			return res
		}
		res.Plan = &req
		return res
	}

	export, err := s.client.ExportEntity(ctx, j.entity)
	if err == nil {
		err = export.Err()
	}
	res.Export = export
	if err != nil {
		res.Err = errors.NewSyncError(res.EntityRef, StepExport, err)
		logging.FromContext(ctx).Warn().Err(err).Msg("Export failed, skipping update")
		return res
	}

	if s.options.SkipUpdate {
		return res
	}

	update, err := s.client.Reconcile(ctx, j.entity)
	if err == nil && update != nil {
		err = update.Err()
	}
	res.Update = update
	if err != nil {
		var syncErr *errors.SyncError
		if !errors.As(err, &syncErr) {
			err = errors.NewSyncError(res.EntityRef, StepUpdate, err)
		}
		res.Err = err
	}
	return res
}
