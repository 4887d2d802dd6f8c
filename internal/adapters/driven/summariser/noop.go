// Package summariser holds implementations of the summariser port.
// Summary generation is owned by an external collaborator; the pipeline
// inserts records with their upstream summary (or none) and the
// collaborator fills the gaps later.
package summariser

import (
	"context"

	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
)

// Ensure Noop implements the interface.
var _ driven.Summariser = (*Noop)(nil)

// Noop is the default summariser: it generates nothing, leaving records
// with an empty summary for the external collaborator to pick up.
type Noop struct{}

// NewNoop creates the no-op summariser.
func NewNoop() *Noop {
	return &Noop{}
}

// Summarise implements driven.Summariser.
func (*Noop) Summarise(_ context.Context, _, _ string) (string, error) {
	return "", nil
}
