package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	promModel "github.com/prometheus/common/model"
	"github.com/rs/zerolog/log"
)

// PrometheusClient implements Client against a Prometheus-compatible
// telemetry store.
type PrometheusClient struct {
	api  v1.API
	step time.Duration
}

// NewPrometheusClient creates a telemetry client for the given address.
// step controls the range-query resolution (default 1 minute).
func NewPrometheusClient(address string, step time.Duration) (*PrometheusClient, error) {
	client, err := api.NewClient(api.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	if step <= 0 {
		step = time.Minute
	}
	return &PrometheusClient{api: v1.NewAPI(client), step: step}, nil
}

// Fetch runs a range query for one (target, metric) pair and flattens the
// result to its raw values.
func (c *PrometheusClient) Fetch(ctx context.Context, target Target, metric string, agg Aggregation, start, end time.Time) ([]float64, error) {
	query := buildQuery(target, metric, agg)
	r := v1.Range{Start: start, End: end, Step: c.step}

	result, warnings, err := c.api.QueryRange(ctx, query, r)
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry: %w", err)
	}
	if len(warnings) > 0 {
		log.Warn().Strs("warnings", warnings).Str("query", query).Msg("telemetry query warnings")
	}

	matrix, ok := result.(promModel.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", result)
	}
	if len(matrix) == 0 {
		return nil, fmt.Errorf("metric %s not available for %s", metric, target.CISysID)
	}

	var values []float64
	for _, sample := range matrix {
		for _, pair := range sample.Values {
			values = append(values, float64(pair.Value))
		}
	}

	return values, nil
}

// buildQuery assembles the selector for one fetch pair. Resource-level
// fetches are wrapped in avg so multi-instance resources come back as one
// pre-averaged series.
func buildQuery(target Target, metric string, agg Aggregation) string {
	selector := fmt.Sprintf(`%s{ci_sys_id="%s"`, metric, target.CISysID)
	if target.Resource != "" {
		selector += fmt.Sprintf(`,resource="%s"`, target.Resource)
	}
	selector += "}"

	if agg == AggAvg {
		return fmt.Sprintf("avg(%s)", selector)
	}
	return selector
}
