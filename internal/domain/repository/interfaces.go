package repository

import (
	"context"
	"time"

	"BubbleScope/internal/domain/models"
)

// SeriesProvider is the external data-acquisition collaborator: it supplies
// the validated, read-only price series for one symbol and observation
// window. Fetching, backfill and caching live behind this interface, outside
// the fitting core.
type SeriesProvider interface {
	Series(ctx context.Context, symbol string, from, to time.Time) (*models.TimeSeriesInput, error)
}

// ResultStore is the external persistence collaborator. The engine hands it
// immutable session reports and owns no schema or file format of its own.
type ResultStore interface {
	SaveReport(ctx context.Context, report *models.SessionReport) error
}

// Metrics is the observability sink the session engine records into.
type Metrics interface {
	RecordTrial(outcome string)
	RecordFailure(reason string)
	RecordCandidate(status string)
	RecordSession(strategy, result string, seconds float64)
}
