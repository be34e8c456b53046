package harness

import "github.com/roach88/hindsight/internal/engine"

// TraceEvent records one step's observed outcome. Amounts are integer cents.
type TraceEvent struct {
	Step     int    `json:"step"`
	Action   string `json:"action"`
	Quantity *int64 `json:"quantity,omitempty"`
	Price    *int64 `json:"price,omitempty"`
	Cash     int64  `json:"cash"`
	Shares   int64  `json:"shares"`
	Error    string `json:"error,omitempty"`
	Next     string `json:"next,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and the final clause matched.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Scorecard is set when the scenario played the story to completion.
	Scorecard *engine.Scorecard `json:"scorecard,omitempty"`

	// Errors contains expectation mismatches. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Trace: []TraceEvent{},
	}
}

// AddError records an expectation mismatch and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
