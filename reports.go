package opslevel

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/agentstation/opslevel/internal/graphql"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// GetServiceMaturityByAlias returns the rubric and maturity details of the
// service with the given alias. A missing service yields *errors.NotFoundError.
func (c *client) GetServiceMaturityByAlias(ctx context.Context, alias string) (*ServiceMaturity, error) {
	if err := requireAlias(alias); err != nil {
		return nil, err
	}

	var resp struct {
		Account ServiceMaturity `json:"account"`
	}
	if err := c.maturity(ctx, alias, &resp); err != nil {
		return nil, err
	}
	if resp.Account.Service == nil {
		return nil, errors.NewNotFoundError("service", alias)
	}
	return &resp.Account, nil
}

// GetServiceMaturityByAliasRaw returns the maturity query data as received.
func (c *client) GetServiceMaturityByAliasRaw(ctx context.Context, alias string) (json.RawMessage, error) {
	if err := requireAlias(alias); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.maturity(ctx, alias, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *client) maturity(ctx context.Context, alias string, out any) error {
	ctx = logging.WithAlias(c.withLogger(ctx), alias)
	return c.exec.Do(ctx, graphql.Request{
		Operation: opServiceMaturity,
		Query:     serviceMaturityQuery,
		Variables: map[string]any{"alias": alias},
		Headers:   readHeaders,
	}, out)
}

// GetServicesReport returns the account wide rubric statistics.
func (c *client) GetServicesReport(ctx context.Context) (*ServicesReport, error) {
	var resp struct {
		Account ServicesReport `json:"account"`
	}
	if err := c.servicesReport(ctx, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

// GetServicesReportRaw returns the services report data as received.
func (c *client) GetServicesReportRaw(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.servicesReport(ctx, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *client) servicesReport(ctx context.Context, out any) error {
	return c.exec.Do(c.withLogger(ctx), graphql.Request{
		Operation: opServicesReport,
		Query:     servicesReportQuery,
		Headers:   readHeaders,
	}, out)
}

func requireAlias(alias string) error {
	if strings.TrimSpace(alias) == "" {
		return errors.NewValidationError("alias", alias, "is required")
	}
	return nil
}
