package telemetry

import (
	"context"
	"time"
)

// Aggregation selects how the telemetry layer pre-aggregates a series
// before returning it.
type Aggregation string

const (
	// AggNone returns the raw samples (CI-level metrics).
	AggNone Aggregation = ""
	// AggAvg averages across series instances (resource-level metrics).
	AggAvg Aggregation = "avg"
)

// Target identifies what a series is fetched for: a CI, optionally narrowed
// to one of its sub-resources.
type Target struct {
	CISysID  string
	Resource string // empty for CI-level fetches
}

// Client is the opaque time-series read API. Implementations return the
// sample values for one (target, metric) pair over [start, end); a metric
// that is unavailable for the target is an error, never an empty success.
type Client interface {
	Fetch(ctx context.Context, target Target, metric string, agg Aggregation, start, end time.Time) ([]float64, error)
}
