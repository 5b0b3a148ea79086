// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/internal/syncer"
	"github.com/agentstation/opslevel/internal/utils/ptr"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

const none = "-"

// MaturityToTableData converts a maturity report to an overall row followed
// by one row per category.
func MaturityToTableData(m *opslevel.ServiceMaturity) Data {
	data := Data{Headers: []string{"Category", "Level"}}
	if m == nil || m.Service == nil {
		return data
	}

	report := m.Service.MaturityReport
	if report == nil {
		data.Rows = append(data.Rows, []string{"Overall", none})
		return data
	}

	overall := none
	if report.OverallLevel != nil {
		overall = report.OverallLevel.Name
	}
	data.Rows = append(data.Rows, []string{"Overall", overall})

	for _, c := range report.CategoryBreakdown {
		level := none
		if c.Level != nil {
			level = c.Level.Name
		}
		data.Rows = append(data.Rows, []string{c.Category.Name, level})
	}
	return data
}

// CheckResultsToTableData lists every check result of a service grouped by
// the level the check gates.
func CheckResultsToTableData(m *opslevel.ServiceMaturity) Data {
	data := Data{Headers: []string{"Level", "Check", "Category", "Status", "Message"}}
	if m == nil || m.Service == nil {
		return data
	}

	for _, lvl := range m.Service.ServiceStats.ByLevel() {
		for _, res := range lvl.Items.Nodes {
			category := none
			if res.Check.Category != nil {
				category = res.Check.Category.Name
			}
			data.Rows = append(data.Rows, []string{
				lvl.Level.Name,
				res.Check.Name,
				category,
				res.Status,
				Truncate(oneLine(res.Message), 80),
			})
		}
	}
	return data
}

// ServicesReportToTableData converts the account report into service counts.
// Account wide level counts are listed under the "All" category first.
func ServicesReportToTableData(r *opslevel.ServicesReport) Data {
	data := Data{
		Headers:         []string{"Category", "Level", "Services"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
	if r == nil {
		return data
	}

	for _, lc := range r.ServicesReport.LevelCounts {
		data.Rows = append(data.Rows, []string{"All", lc.Level.Name, strconv.Itoa(lc.ServiceCount)})
	}
	for _, clc := range r.ServicesReport.CategoryLevelCounts {
		data.Rows = append(data.Rows, []string{clc.Category.Name, clc.Level.Name, strconv.Itoa(clc.ServiceCount)})
	}
	return data
}

// ExportResultsToTableData converts import outcomes to one row per entity.
func ExportResultsToTableData(results []*opslevel.ExportResult) Data {
	data := Data{Headers: []string{"Entity", "Action", "URL", "Errors"}}
	for _, r := range results {
		if r == nil {
			continue
		}
		data.Rows = append(data.Rows, []string{
			orNone(r.EntityRef),
			orNone(r.ActionMessage),
			orNone(r.HTMLURL),
			orNone(strings.Join(r.Errors.Messages(), "; ")),
		})
	}
	return data
}

// ExportPlanToTableData shows what an export would send without sending it.
func ExportPlanToTableData(plans []opslevel.ExportRequest) Data {
	data := Data{Headers: []string{"Entity", "Alias", "Type", "Tags"}}
	for _, p := range plans {
		alias, typ, tags := none, none, none
		if p.Entity != nil {
			alias = orNone(p.EntityAlias)
			if p.Entity.Spec != nil {
				typ = orNone(p.Entity.Spec.Type)
			}
			if len(p.Entity.Metadata.Tags) > 0 {
				tags = strings.Join(p.Entity.Metadata.Tags, ", ")
			}
		}
		data.Rows = append(data.Rows, []string{orNone(p.EntityRef), alias, typ, tags})
	}
	return data
}

// UpdateResultToTableData converts a service update outcome to a key-value table.
func UpdateResultToTableData(r *opslevel.ServiceUpdateResult) Data {
	data := Data{Headers: []string{"Property", "Value"}}
	if r == nil {
		return data
	}

	data.Rows = [][]string{
		{"Alias", r.Input.Alias},
		{"Language", deref(r.Input.Language)},
		{"Framework", deref(r.Input.Framework)},
		{"Languages", FormatLanguages(r.Languages)},
		{"Errors", orNone(strings.Join(r.Errors.Messages(), "; "))},
	}
	return data
}

// SyncReportToTableData converts a batch sync report to one row per entity.
func SyncReportToTableData(r *syncer.Report) Data {
	data := Data{Headers: []string{"Entity", "Source", "Status", "Language", "Framework", "Error"}}
	if r == nil {
		return data
	}

	for _, res := range r.Results {
		language, framework := none, none
		if res.Update != nil {
			language = deref(res.Update.Input.Language)
			framework = deref(res.Update.Input.Framework)
		}
		errMsg := none
		if res.Err != nil {
			errMsg = Truncate(rootCause(res.Err).Error(), 80)
		}
		data.Rows = append(data.Rows, []string{
			orNone(res.EntityRef),
			orNone(res.Source),
			SyncStatus(res, r.DryRun),
			language,
			framework,
			errMsg,
		})
	}
	return data
}

// SyncStatus describes where an entity ended up in the sync pipeline.
func SyncStatus(res *syncer.Result, dryRun bool) string {
	var syncErr *errors.SyncError
	switch {
	case res.Err != nil && errors.As(res.Err, &syncErr) && syncErr.Step != "":
		return "failed (" + syncErr.Step + ")"
	case res.Err != nil:
		return "failed"
	case dryRun:
		return "planned"
	case res.Update != nil && res.Export != nil:
		return "synced"
	case res.Update != nil:
		return "updated"
	case res.Export != nil:
		return "exported"
	default:
		return none
	}
}

// FormatLanguages renders a language breakdown as "Ruby (0.9), Shell (0.1)".
func FormatLanguages(languages []opslevel.Language) string {
	if len(languages) == 0 {
		return none
	}
	parts := make([]string, len(languages))
	for i, l := range languages {
		parts[i] = fmt.Sprintf("%s (%g)", l.Name, l.Usage)
	}
	return strings.Join(parts, ", ")
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func rootCause(err error) error {
	var syncErr *errors.SyncError
	if errors.As(err, &syncErr) && syncErr.Err != nil {
		return syncErr.Err
	}
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

func deref(s *string) string {
	return orNone(ptr.Deref(s))
}
