package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/perfscope/perfscope/internal/dashboard/database"
	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, registry *fakeRegistry, catalog *fakeCatalog,
	client *fakeTelemetry, store *fakeAlertStore, names map[string]string) *DashboardService {
	t.Helper()
	return NewDashboardService(registry, catalog, newTestNameCache(t, names), client, store)
}

func TestDashboardQueryHappyPath(t *testing.T) {
	registry := &fakeRegistry{
		agents: []model.MonitoredEntity{
			{ID: "a1", CISysID: "ci1", DisplayName: "web-01", EntityClass: "cmdb_ci_linux_server", SupportGroup: "unix", Location: "dc1"},
			{ID: "a2", CISysID: "ci2", DisplayName: "web-02", EntityClass: "cmdb_ci_linux_server", SupportGroup: "unix", Location: "dc1"},
		},
	}
	catalog := &fakeCatalog{
		metas: map[string][]database.DashboardMeta{
			"cmdb_ci_linux_server": {{MetricTypes: "smt1", Category: "CPU"}},
		},
		types: []database.SourceMetricType{
			{SysID: "smt1", InternalType: "cpu_user", DisplayName: "CPU User", Unit: "%"},
		},
	}
	client := &fakeTelemetry{
		series: map[string][]float64{
			"ci1||cpu.user_percentage": {10, 20, 30},
			"ci2||cpu.user_percentage": {5, 15, 25},
		},
	}
	store := &fakeAlertStore{}
	svc := newTestService(t, registry, catalog, client, store, map[string]string{"cpu_user": "cpu.user_percentage"})

	resp := svc.Query(context.Background(), &model.Filter{TimeRange: "6h"})
	require.True(t, resp.Success)
	require.Equal(t, 1, resp.Metrics.Count)

	group := resp.Metrics.Data[0]
	assert.Equal(t, "smt1_CI", group.ID)
	assert.Equal(t, []string{"web-01", "web-02"}, group.Hosts)
	require.Len(t, group.Data, 2)
	assert.Equal(t, []float64{10, 20, 30}, group.Data[0].Values)
	assert.Len(t, group.Data[0].Timestamps, 3)
	assert.Equal(t, "20.00", group.Data[0].Avg)
	assert.NotNil(t, resp.Summary)
}

// A single pair's fetch failure must leave sibling pairs and the overall
// query unaffected.
func TestDashboardQueryPartialFetchFailure(t *testing.T) {
	registry := &fakeRegistry{
		agents: []model.MonitoredEntity{
			{ID: "a1", CISysID: "ci1", DisplayName: "web-01", EntityClass: "cmdb_ci_linux_server"},
			{ID: "a2", CISysID: "ci2", DisplayName: "web-02", EntityClass: "cmdb_ci_linux_server"},
		},
	}
	catalog := &fakeCatalog{
		metas: map[string][]database.DashboardMeta{
			"cmdb_ci_linux_server": {{MetricTypes: "smt1,smt2,smt3", Category: "CPU"}},
		},
		types: []database.SourceMetricType{
			{SysID: "smt1", InternalType: "m1", DisplayName: "M1"},
			{SysID: "smt2", InternalType: "m2", DisplayName: "M2"},
			{SysID: "smt3", InternalType: "m3", DisplayName: "M3"},
		},
	}
	client := &fakeTelemetry{
		series: map[string][]float64{
			"ci1||m1": {1}, "ci1||m3": {3},
			"ci2||m1": {1}, "ci2||m2": {2}, "ci2||m3": {3},
		},
		failKeys: map[string]bool{"ci1||m2": true},
	}
	svc := newTestService(t, registry, catalog, client, &fakeAlertStore{},
		map[string]string{"m1": "m1", "m2": "m2", "m3": "m3"})

	resp := svc.Query(context.Background(), &model.Filter{})
	require.True(t, resp.Success)
	require.Equal(t, 3, resp.Metrics.Count)

	byID := map[string][]string{}
	for _, g := range resp.Metrics.Data {
		byID[g.ID] = g.Hosts
	}
	assert.Equal(t, []string{"web-01", "web-02"}, byID["smt1_CI"])
	assert.Equal(t, []string{"web-02"}, byID["smt2_CI"], "only the failed pair is missing")
	assert.Equal(t, []string{"web-01", "web-02"}, byID["smt3_CI"])
}

// The facade absorbs internal failures into a well-formed failure payload.
func TestDashboardQueryFailureContainment(t *testing.T) {
	registry := &fakeRegistry{err: fmt.Errorf("cmdb unreachable")}
	svc := newTestService(t, registry, &fakeCatalog{}, &fakeTelemetry{}, &fakeAlertStore{}, map[string]string{})

	resp := svc.Query(context.Background(), &model.Filter{TimeRange: "6h"})
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.NotContains(t, resp.Message, "cmdb unreachable", "internal detail stays server-side")
	assert.Equal(t, 0, resp.Metrics.Count)
	assert.NotNil(t, resp.Metrics.Data)
	assert.NotNil(t, resp.Alerts.Data)
	assert.NotNil(t, resp.Anomalies.Data)
}

func TestDashboardQueryRecoversPanic(t *testing.T) {
	svc := NewDashboardService(&fakeRegistry{}, &fakeCatalog{}, nil, &fakeTelemetry{}, &fakeAlertStore{})

	// nil name cache makes metric resolution panic for any discovered entity
	registryWithAgent := &fakeRegistry{agents: []model.MonitoredEntity{{ID: "a1", CISysID: "ci1", DisplayName: "x", EntityClass: "c"}}}
	svc.registry = registryWithAgent
	svc.catalog = &fakeCatalog{
		metas: map[string][]database.DashboardMeta{"c": {{MetricTypes: "s1", Category: "x"}}},
		types: []database.SourceMetricType{{SysID: "s1", InternalType: "i1"}},
	}

	resp := svc.Query(context.Background(), &model.Filter{})
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
}

func TestDashboardEmptyDiscoveryYieldsEmptySections(t *testing.T) {
	store := &fakeAlertStore{}
	svc := newTestService(t, &fakeRegistry{}, &fakeCatalog{}, &fakeTelemetry{}, store, map[string]string{})

	resp := svc.Query(context.Background(), &model.Filter{TimeRange: "1h"})
	require.True(t, resp.Success)
	assert.Equal(t, 0, resp.Metrics.Count)
	assert.Equal(t, 0, resp.Alerts.Count)
	assert.Zero(t, store.alertCalls, "no entities means no alert store read")
}
