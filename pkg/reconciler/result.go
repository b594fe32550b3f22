package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/ordermatch/pkg/match"
)

// Result represents the outcome of one commit.
type Result struct {
	// Committed lists the rows written, in decision order.
	Committed []int

	// Skipped lists rows that were already reconciled.
	Skipped []int

	// Ignored lists rows of decisions without a product, with an invalid row
	// or repeated within the batch.
	Ignored []int

	// SoldOut lists committed rows that received sold-out formatting.
	SoldOut []int

	// Entries describes each committed row.
	Entries []Entry

	// HeaderExtended is set when result columns were appended to the header.
	HeaderExtended bool

	// FormattingErr holds a formatting failure; the commit itself still succeeded.
	FormattingErr error

	Metadata ResultMetadata
}

// Entry is the match log line of one committed row.
type Entry struct {
	Row        int          `json:"row" yaml:"row"`
	Product    string       `json:"product" yaml:"product"`
	Table      string       `json:"table" yaml:"table"`
	Method     match.Method `json:"method" yaml:"method"`
	SupplyTier string       `json:"supply_tier" yaml:"supply_tier"`
}

// ResultMetadata contains timing information about the commit.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	DryRun    bool
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Committed: []int{},
		Skipped:   []int{},
		Ignored:   []int{},
		SoldOut:   []int{},
		Entries:   []Entry{},
		Metadata:  ResultMetadata{StartTime: time.Now()},
	}
}

// Count returns the number of rows written.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Committed)
}

// Finalize records the end time.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	prefix := "Committed"
	if r.Metadata.DryRun {
		prefix = "Dry run: would commit"
	}
	s := fmt.Sprintf("%s %d rows (%d already matched, %d ignored, %d sold out)",
		prefix, len(r.Committed), len(r.Skipped), len(r.Ignored), len(r.SoldOut))
	if r.FormattingErr != nil {
		s += "; formatting failed"
	}
	return s
}
