package opslevel

import (
	"context"
	"strings"

	"github.com/agentstation/opslevel/internal/graphql"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// PrepareExport builds the import mutation variables for entity. It works on
// a copy: a "type:<spec type>" tag is appended when the entity has tags and
// the spec type is rewritten to "service" when the entity has a spec.
func PrepareExport(entity *catalog.Entity) (ExportRequest, error) {
	if entity == nil {
		return ExportRequest{}, &errors.ValidationError{Message: "entity is nil"}
	}
	if strings.TrimSpace(entity.Metadata.Name) == "" {
		return ExportRequest{}, errors.NewValidationError("metadata.name", entity.Metadata.Name, "is required")
	}

	out := entity.Copy()
	if out.Metadata.HasTags() {
		out.Metadata.Tags = append(out.Metadata.Tags, TypeTag(entity))
	}
	if out.Spec != nil {
		out.Spec.Type = constants.ServiceType
	}

	return ExportRequest{
		EntityRef:   catalog.StringifyEntityRef(out),
		Entity:      out,
		EntityAlias: out.Metadata.Name,
	}, nil
}

// TypeTag returns the tag recording the entity's declared spec type.
func TypeTag(entity *catalog.Entity) string {
	specType := constants.UndefinedValue
	if entity != nil && entity.Spec != nil && entity.Spec.Type != "" {
		specType = entity.Spec.Type
	}
	return constants.TypeTagPrefix + specType
}

// ExportEntity imports entity into the platform. Errors reported by the
// platform are returned in the result, not as an error.
func (c *client) ExportEntity(ctx context.Context, entity *catalog.Entity) (*ExportResult, error) {
	req, err := PrepareExport(entity)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithEntityRef(c.withLogger(ctx), req.EntityRef)
	var resp struct {
		Import *struct {
			Errors        RemoteErrors `json:"errors"`
			ActionMessage string       `json:"actionMessage"`
			HTMLURL       string       `json:"htmlUrl"`
		} `json:"import"`
	}
	if err := c.exec.Do(ctx, graphql.Request{
		Operation: opImport,
		Query:     importEntityMutation,
		Variables: req.Variables(),
	}, &resp); err != nil {
		return nil, err
	}

	result := &ExportResult{
		EntityRef: req.EntityRef,
		Entity:    req.Entity,
	}
	if resp.Import != nil {
		result.Errors = resp.Import.Errors
		result.ActionMessage = resp.Import.ActionMessage
		result.HTMLURL = resp.Import.HTMLURL
	}

	logger := logging.FromContext(ctx)
	if len(result.Errors) > 0 {
		logger.Warn().Strs("errors", result.Errors.Messages()).Msg("entity import rejected")
	} else {
		logger.Info().Str("action", result.ActionMessage).Msg("entity exported")
	}
	return result, nil
}
