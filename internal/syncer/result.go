package syncer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Result is the outcome of syncing one entity.
type Result struct {
	EntityRef string                        // Canonical entity reference
	Source    string                        // File the entity was loaded from, if any
	Plan      *opslevel.ExportRequest       // Export payload (dry run only)
	Export    *opslevel.ExportResult        // Import mutation outcome
	Update    *opslevel.ServiceUpdateResult // Service update outcome
	Err       error                         // First failure, nil on success
	Duration  time.Duration
}

// Failed reports whether the entity could not be synced.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// MarshalJSON renders the error as its message and the duration in
// milliseconds.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := struct {
		EntityRef  string                        `json:"entityRef,omitempty"`
		Source     string                        `json:"source,omitempty"`
		Plan       *opslevel.ExportRequest       `json:"plan,omitempty"`
		Export     *opslevel.ExportResult        `json:"export,omitempty"`
		Update     *opslevel.ServiceUpdateResult `json:"update,omitempty"`
		Error      string                        `json:"error,omitempty"`
		DurationMS int64                         `json:"durationMs"`
	}{
		EntityRef:  r.EntityRef,
		Source:     r.Source,
		Plan:       r.Plan,
		Export:     r.Export,
		Update:     r.Update,
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Report collects the results of a batch sync in input order.
type Report struct {
	Results  []*Result
	DryRun   bool
	Duration time.Duration
}

// Succeeded returns the number of entities synced without error.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if !res.Failed() {
			n++
		}
	}
	return n
}

// Failed returns the number of entities that failed.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Err joins the errors of all failed entities.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Summary returns a human-readable summary of the report.
func (r *Report) Summary() string {
	summary := fmt.Sprintf("%d entities: %d synced, %d failed", len(r.Results), r.Succeeded(), r.Failed())
	if r.DryRun {
		summary += " (dry run)"
	}
	return summary
}
