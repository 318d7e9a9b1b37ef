package service

import (
	"context"
	"fmt"
	"time"

	"github.com/perfscope/perfscope/internal/dashboard/alertstore"
	"github.com/perfscope/perfscope/internal/dashboard/database"
	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/perfscope/perfscope/internal/telemetry"
)

type fakeRegistry struct {
	agents    []model.MonitoredEntity
	resources map[string][]model.SubResource
	err       error

	gotSysIDs []string
	gotLimit  int
}

func (r *fakeRegistry) FindActiveAgents(ctx context.Context, ciSysIDs []string, limit int) ([]model.MonitoredEntity, error) {
	r.gotSysIDs = ciSysIDs
	r.gotLimit = limit
	if r.err != nil {
		return nil, r.err
	}
	if limit > 0 && len(r.agents) > limit {
		return r.agents[:limit], nil
	}
	return r.agents, nil
}

func (r *fakeRegistry) FindResources(ctx context.Context, agentIDs []string) (map[string][]model.SubResource, error) {
	if r.resources == nil {
		return map[string][]model.SubResource{}, nil
	}
	return r.resources, nil
}

type fakeCatalog struct {
	metas map[string][]database.DashboardMeta // keyed by ciClass
	types []database.SourceMetricType
	err   error
}

func (c *fakeCatalog) FindDashboardMeta(ctx context.Context, ciClass, category string) ([]database.DashboardMeta, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.metas[ciClass], nil
}

func (c *fakeCatalog) ResolveMetricTypes(ctx context.Context, sysIDs []string) ([]database.SourceMetricType, error) {
	if c.err != nil {
		return nil, c.err
	}
	want := map[string]bool{}
	for _, id := range sysIDs {
		want[id] = true
	}
	var out []database.SourceMetricType
	for _, t := range c.types {
		if want[t.SysID] {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeNameLoader struct {
	names map[string]string
	err   error
}

func (l *fakeNameLoader) LoadNameMap(ctx context.Context) (map[string]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.names, nil
}

func newTestNameCache(t interface{ Fatalf(string, ...any) }, names map[string]string) *NameCache {
	cache, err := NewNameCache(context.Background(), &fakeNameLoader{names: names})
	if err != nil {
		t.Fatalf("name cache init: %v", err)
	}
	return cache
}

// fakeTelemetry serves canned series keyed by "ci|resource|metric". Keys in
// failKeys return an error. Every call is recorded.
type fakeTelemetry struct {
	series   map[string][]float64
	failKeys map[string]bool
	calls    []string
	aggModes map[string]telemetry.Aggregation
}

func fetchKey(target telemetry.Target, metric string) string {
	return fmt.Sprintf("%s|%s|%s", target.CISysID, target.Resource, metric)
}

func (f *fakeTelemetry) Fetch(ctx context.Context, target telemetry.Target, metric string, agg telemetry.Aggregation, start, end time.Time) ([]float64, error) {
	key := fetchKey(target, metric)
	f.calls = append(f.calls, key)
	if f.aggModes == nil {
		f.aggModes = map[string]telemetry.Aggregation{}
	}
	f.aggModes[key] = agg
	if f.failKeys[key] {
		return nil, fmt.Errorf("metric %s not available", metric)
	}
	values, ok := f.series[key]
	if !ok {
		return nil, fmt.Errorf("metric %s not available", metric)
	}
	return values, nil
}

type fakeAlertStore struct {
	alerts    []alertstore.Row
	anomalies []alertstore.Row
	parents   map[string]string
	err       error

	alertCalls   int
	anomalyCalls int
	parentCalls  int
}

func (s *fakeAlertStore) QueryAlerts(ctx context.Context, ciSysIDs []string, start, end time.Time, limit int) ([]alertstore.Row, error) {
	s.alertCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.alerts, nil
}

func (s *fakeAlertStore) QueryAnomalies(ctx context.Context, ciSysIDs []string, start, end time.Time, limit int) ([]alertstore.Row, error) {
	s.anomalyCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.anomalies, nil
}

func (s *fakeAlertStore) ResolveParentNumbers(ctx context.Context, parentIDs []string) (map[string]string, error) {
	s.parentCalls++
	if s.parents == nil {
		return map[string]string{}, nil
	}
	return s.parents, nil
}
