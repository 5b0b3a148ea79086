package opslevel

import (
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Level is a rubric maturity level.
type Level struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Alias       string `json:"alias,omitempty"`
}

// LevelConnection lists the levels of a rubric.
type LevelConnection struct {
	TotalCount int     `json:"totalCount,omitempty"`
	Nodes      []Level `json:"nodes"`
}

// Category is a rubric category.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// CategoryConnection lists the categories of a rubric.
type CategoryConnection struct {
	Nodes []Category `json:"nodes"`
}

// Rubric is the account wide maturity rubric.
type Rubric struct {
	Levels     LevelConnection     `json:"levels"`
	Categories *CategoryConnection `json:"categories,omitempty"`
}

// Named is an object selected only by name.
type Named struct {
	Name string `json:"name"`
}

// ServiceMaturity is the account object returned by the maturity query.
type ServiceMaturity struct {
	Rubric  Rubric           `json:"rubric"`
	Service *MaturityService `json:"service"`
}

// MaturityService is a service with its maturity details.
type MaturityService struct {
	HTMLURL        string          `json:"htmlUrl"`
	MaturityReport *MaturityReport `json:"maturityReport"`
	ServiceStats   *ServiceStats   `json:"serviceStats"`
	CheckStats     *CheckStats     `json:"checkStats"`
}

// MaturityReport is the overall level and per category levels of a service.
type MaturityReport struct {
	OverallLevel      *Level          `json:"overallLevel"`
	CategoryBreakdown []CategoryLevel `json:"categoryBreakdown"`
}

// CategoryLevel is the level a service reached in one category.
type CategoryLevel struct {
	Category Named  `json:"category"`
	Level    *Named `json:"level"`
}

// ServiceStats holds check results grouped by level.
type ServiceStats struct {
	Rubric struct {
		CheckResults struct {
			ByLevel struct {
				Nodes []LevelCheckResults `json:"nodes"`
			} `json:"byLevel"`
		} `json:"checkResults"`
	} `json:"rubric"`
}

// ByLevel returns the check results of every level.
func (s *ServiceStats) ByLevel() []LevelCheckResults {
	if s == nil {
		return nil
	}
	return s.Rubric.CheckResults.ByLevel.Nodes
}

// LevelCheckResults are the check results that gate one level.
type LevelCheckResults struct {
	Level Level `json:"level"`
	Items struct {
		Nodes []CheckResult `json:"nodes"`
	} `json:"items"`
}

// CheckResult is the outcome of one check against a service.
type CheckResult struct {
	Message     string `json:"message"`
	WarnMessage string `json:"warnMessage,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	Check       Check  `json:"check"`
	Status      string `json:"status"`
}

// Check describes a rubric check.
type Check struct {
	ID       string `json:"id"`
	EnableOn string `json:"enableOn,omitempty"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category *Named `json:"category"`
}

// CheckStats counts the checks of a service.
type CheckStats struct {
	TotalChecks        int `json:"totalChecks"`
	TotalPassingChecks int `json:"totalPassingChecks"`
}

// ServicesReport is the account object returned by the services report query.
type ServicesReport struct {
	Rubric         Rubric             `json:"rubric"`
	ServicesReport ServicesReportData `json:"servicesReport"`
}

// ServicesReportData holds the service counts per level and category.
type ServicesReportData struct {
	LevelCounts         []LevelCount         `json:"levelCounts"`
	CategoryLevelCounts []CategoryLevelCount `json:"categoryLevelCounts"`
}

// LevelCount is the number of services at a level.
type LevelCount struct {
	Level        Named `json:"level"`
	ServiceCount int   `json:"serviceCount"`
}

// CategoryLevelCount is the number of services at a level within a category.
type CategoryLevelCount struct {
	Category     Named `json:"category"`
	Level        Level `json:"level"`
	ServiceCount int   `json:"serviceCount"`
}

// RemoteError is an error reported inside a mutation payload.
type RemoteError struct {
	Message string `json:"message"`
}

// RemoteErrors is the errors list of a mutation payload.
type RemoteErrors []RemoteError

// Messages returns the error messages in order.
func (r RemoteErrors) Messages() []string {
	msgs := make([]string, len(r))
	for i, e := range r {
		msgs[i] = e.Message
	}
	return msgs
}

// Err converts a non-empty list into an *errors.RemoteValidationError.
func (r RemoteErrors) Err() error {
	return r.errFor("mutation")
}

func (r RemoteErrors) errFor(operation string) error {
	if len(r) == 0 {
		return nil
	}
	return &errors.RemoteValidationError{Operation: operation, Messages: r.Messages()}
}

// ExportRequest holds the variables of the import mutation.
type ExportRequest struct {
	EntityRef   string          `json:"entityRef"`
	Entity      *catalog.Entity `json:"entity"`
	EntityAlias string          `json:"entityAlias"`
}

// Variables returns the mutation variables.
func (r ExportRequest) Variables() map[string]any {
	return map[string]any{
		"entityRef":   r.EntityRef,
		"entity":      r.Entity,
		"entityAlias": r.EntityAlias,
	}
}

// ExportResult is the import mutation payload together with what was sent.
type ExportResult struct {
	Errors        RemoteErrors    `json:"errors"`
	ActionMessage string          `json:"actionMessage"`
	HTMLURL       string          `json:"htmlUrl"`
	EntityRef     string          `json:"entityRef"`
	Entity        *catalog.Entity `json:"entity"`
}

// Err returns the remote errors as an error, or nil.
func (r *ExportResult) Err() error {
	return r.Errors.errFor(opImport)
}

// Language is one entry of a repository language breakdown.
type Language struct {
	Name  string  `json:"name"`
	Usage float64 `json:"usage"`
}

// ServiceUpdateInput is the input of the serviceUpdate mutation. Nil fields
// are left out of the request.
type ServiceUpdateInput struct {
	Alias     string  `json:"alias"`
	Language  *string `json:"language,omitempty"`
	Framework *string `json:"framework,omitempty"`
}

// Variables returns the mutation variables, omitting absent fields.
func (in ServiceUpdateInput) Variables() map[string]any {
	vars := map[string]any{"alias": in.Alias}
	if in.Language != nil {
		vars["language"] = *in.Language
	}
	if in.Framework != nil {
		vars["framework"] = *in.Framework
	}
	return vars
}

// ServiceUpdateResult is the outcome of a metadata reconciliation.
type ServiceUpdateResult struct {
	Input     ServiceUpdateInput `json:"input"`
	Languages []Language         `json:"languages"`
	Errors    RemoteErrors       `json:"errors"`
}

// Err returns the remote errors as an error, or nil.
func (r *ServiceUpdateResult) Err() error {
	return r.Errors.errFor(opServiceUpdate)
}
