package opslevel

import (
	"context"

	"github.com/agentstation/opslevel/internal/graphql"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// ErrUpdatePending is returned by PendingUpdate.Result while the update is
// still running.
var ErrUpdatePending = errors.New("service update still running")

// PendingUpdate is a reconciliation running in the background.
type PendingUpdate struct {
	done   chan struct{}
	result *ServiceUpdateResult
	err    error
}

func newPendingUpdate() *PendingUpdate {
	return &PendingUpdate{done: make(chan struct{})}
}

func (p *PendingUpdate) finish(result *ServiceUpdateResult, err error) {
	p.result = result
	p.err = err
	close(p.done)
}

// Done is closed once the update has finished.
func (p *PendingUpdate) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the update finishes or ctx is done. It returns the
// failure of whichever step broke the chain, including the language lookup.
func (p *PendingUpdate) Wait(ctx context.Context) (*ServiceUpdateResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking, or ErrUpdatePending.
func (p *PendingUpdate) Result() (*ServiceUpdateResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	default:
		return nil, ErrUpdatePending
	}
}

// GetServiceLanguages returns the language breakdown of the first repository
// linked to the service. A service without repositories has no languages.
func (c *client) GetServiceLanguages(ctx context.Context, alias string) ([]Language, error) {
	if err := requireAlias(alias); err != nil {
		return nil, err
	}

	var resp struct {
		Account struct {
			Service *struct {
				Name  string `json:"name"`
				Repos *struct {
					Edges []struct {
						Node struct {
							Languages []Language `json:"languages"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"repos"`
			} `json:"service"`
		} `json:"account"`
	}
	ctx = logging.WithAlias(c.withLogger(ctx), alias)
	if err := c.exec.Do(ctx, graphql.Request{
		Operation: opServiceLanguage,
		Query:     serviceLanguageQuery,
		Variables: map[string]any{"alias": alias},
	}, &resp); err != nil {
		return nil, err
	}

	service := resp.Account.Service
	if service == nil {
		return nil, errors.NewNotFoundError("service", alias)
	}
	if service.Repos == nil || len(service.Repos.Edges) == 0 {
		return []Language{}, nil
	}
	languages := service.Repos.Edges[0].Node.Languages
	if languages == nil {
		languages = []Language{}
	}
	return languages, nil
}

// UpdateService reads the service languages, derives the update input and
// sends it, all in the background. The returned handle reports the outcome.
func (c *client) UpdateService(ctx context.Context, entity *catalog.Entity) *PendingUpdate {
	pending := newPendingUpdate()

	if entity == nil {
		pending.finish(nil, &errors.ValidationError{Message: "entity is nil"})
		return pending
	}
	if err := requireAlias(entity.Metadata.Name); err != nil {
		pending.finish(nil, err)
		return pending
	}

	// the caller may keep using its entity while the update runs
	snapshot := entity.Copy()
	frameworks := c.Frameworks()
	ctx = logging.WithAlias(c.withLogger(ctx), snapshot.Metadata.Name)

	go func() {
		result, err := c.reconcile(ctx, snapshot, frameworks)
		if err != nil {
			logging.FromContext(ctx).Error().Err(err).Msg("service update failed")
		}
		pending.finish(result, err)
	}()

	return pending
}

// Reconcile runs UpdateService and waits for its outcome.
func (c *client) Reconcile(ctx context.Context, entity *catalog.Entity) (*ServiceUpdateResult, error) {
	return c.UpdateService(ctx, entity).Wait(ctx)
}

func (c *client) reconcile(ctx context.Context, entity *catalog.Entity, frameworks []string) (*ServiceUpdateResult, error) {
	alias := entity.Metadata.Name

	languages, err := c.GetServiceLanguages(ctx, alias)
	if err != nil {
		return nil, errors.NewSyncError(catalog.StringifyEntityRef(entity), opServiceLanguage, err)
	}

	input := BuildServiceUpdate(entity, languages, frameworks)
	result := &ServiceUpdateResult{
		Input:     input,
		Languages: languages,
	}

	var resp struct {
		ServiceUpdate *struct {
			Errors RemoteErrors `json:"errors"`
		} `json:"serviceUpdate"`
	}
	if err := c.exec.Do(ctx, graphql.Request{
		Operation: opServiceUpdate,
		Query:     serviceUpdateMutation,
		Variables: input.Variables(),
	}, &resp); err != nil {
		return result, errors.NewSyncError(catalog.StringifyEntityRef(entity), opServiceUpdate, err)
	}
	if resp.ServiceUpdate != nil {
		result.Errors = resp.ServiceUpdate.Errors
	}

	logger := logging.FromContext(ctx)
	if len(result.Errors) > 0 {
		logger.Warn().Strs("errors", result.Errors.Messages()).Msg("service update rejected")
	} else {
		logger.Info().Interface("input", input).Msg("service update sent")
	}
	return result, nil
}
