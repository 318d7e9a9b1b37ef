package service

import (
	"context"
	"time"

	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/perfscope/perfscope/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// DashboardService composes discovery, metric resolution, fetching,
// aggregation, grouping and the alert/anomaly query into one payload.
type DashboardService struct {
	registry  Registry
	catalog   MetricCatalog
	names     *NameCache
	telemetry telemetry.Client
	alerts    AlertStore
}

// NewDashboardService wires the facade. The name cache is expected to be
// loaded already.
func NewDashboardService(registry Registry, catalog MetricCatalog, names *NameCache,
	client telemetry.Client, alerts AlertStore) *DashboardService {
	return &DashboardService{
		registry:  registry,
		catalog:   catalog,
		names:     names,
		telemetry: client,
		alerts:    alerts,
	}
}

// Query runs the full pipeline for one request. It never returns an error:
// every internal failure (panics included) is absorbed into a well-formed
// failure payload with empty sections; detail stays in the server log.
func (s *DashboardService) Query(ctx context.Context, f *model.Filter) (resp *model.DashboardResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("dashboard query panicked")
			resp = failureResponse()
		}
	}()

	window := ResolveTimeRange(f)

	entities, err := DiscoverEntities(ctx, s.registry, f)
	if err != nil {
		log.Error().Err(err).Msg("entity discovery failed")
		return failureResponse()
	}

	groups, err := s.queryMetrics(ctx, entities, f, window)
	if err != nil {
		log.Error().Err(err).Msg("metrics query failed")
		return failureResponse()
	}

	ciSysIDs := make([]string, 0, len(entities))
	for _, e := range entities {
		ciSysIDs = append(ciSysIDs, e.CISysID)
	}
	alertResult, err := QueryAlerts(ctx, s.alerts, ciSysIDs, window)
	if err != nil {
		log.Error().Err(err).Msg("alert query failed")
		return failureResponse()
	}

	return &model.DashboardResponse{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Filters:   f,
		Metrics:   model.MetricsSection{Count: len(groups), Data: groups},
		Alerts:    model.AlertsSection{Count: len(alertResult.Alerts), Data: alertResult.Alerts},
		Anomalies: model.AnomaliesSection{Count: len(alertResult.Anomalies), Data: alertResult.Anomalies},
		Summary:   alertResult.Summary,
	}
}

// queryMetrics runs discovery output through fetch, aggregation and
// grouping. Metric definitions are resolved once per distinct entity class.
func (s *DashboardService) queryMetrics(ctx context.Context, entities []model.MonitoredEntity,
	f *model.Filter, window model.TimeRangeWindow) ([]model.MetricGroup, error) {

	if len(entities) == 0 {
		return []model.MetricGroup{}, nil
	}

	agentIDs := make([]string, 0, len(entities))
	for _, e := range entities {
		agentIDs = append(agentIDs, e.ID)
	}
	resourcesByAgent, err := s.registry.FindResources(ctx, agentIDs)
	if err != nil {
		return nil, err
	}

	defsByClass := map[string][]model.MetricDefinition{}
	var raw []model.RawSeries
	for _, entity := range entities {
		defs, ok := defsByClass[entity.EntityClass]
		if !ok {
			defs, err = ResolveMetricDefinitions(ctx, s.catalog, s.names, entity.EntityClass, f.MetricCategory)
			if err != nil {
				return nil, err
			}
			defsByClass[entity.EntityClass] = defs
		}
		raw = append(raw, FetchSeries(ctx, s.telemetry, entity, resourcesByAgent[entity.ID], defs, window)...)
	}

	lines := make([]model.SeriesLine, len(raw))
	for i, rs := range raw {
		lines[i] = Aggregate(rs, window)
	}

	return GroupSeries(raw, lines), nil
}

// Entities exposes the discovery stage standalone (UI CI pickers).
func (s *DashboardService) Entities(ctx context.Context, f *model.Filter) ([]model.MonitoredEntity, error) {
	entities, err := DiscoverEntities(ctx, s.registry, f)
	if err != nil {
		return nil, err
	}
	if entities == nil {
		entities = []model.MonitoredEntity{}
	}
	return entities, nil
}

// MetricDefinitions exposes the metric catalog standalone (UI category
// pickers).
func (s *DashboardService) MetricDefinitions(ctx context.Context, ciClass, category string) ([]model.MetricDefinition, error) {
	defs, err := ResolveMetricDefinitions(ctx, s.catalog, s.names, ciClass, category)
	if err != nil {
		return nil, err
	}
	if defs == nil {
		defs = []model.MetricDefinition{}
	}
	return defs, nil
}

func failureResponse() *model.DashboardResponse {
	return &model.DashboardResponse{
		Success:   false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     "dashboard query failed",
		Message:   "an internal error occurred while building the dashboard",
		Metrics:   model.MetricsSection{Count: 0, Data: []model.MetricGroup{}},
		Alerts:    model.AlertsSection{Count: 0, Data: []model.AlertRecord{}},
		Anomalies: model.AnomaliesSection{Count: 0, Data: []model.AnomalyRecord{}},
		Summary:   model.NewSummary(),
	}
}
