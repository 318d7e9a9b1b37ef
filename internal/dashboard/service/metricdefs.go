package service

import (
	"context"
	"strings"

	"github.com/perfscope/perfscope/internal/dashboard/database"
	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/rs/zerolog/log"
)

// MetricCatalog is the metric metadata read API: dashboard-metadata records
// per CI class and batched source-metric-type resolution.
type MetricCatalog interface {
	FindDashboardMeta(ctx context.Context, ciClass, category string) ([]database.DashboardMeta, error)
	ResolveMetricTypes(ctx context.Context, sysIDs []string) ([]database.SourceMetricType, error)
}

// ResolveMetricDefinitions maps a CI class (and optional category substring)
// to the concrete metrics to query. Two indirection levels: dashboard
// metadata lists source-metric-type references, those resolve to internal
// type/display/unit, and the name cache supplies the tiny query name. A
// definition without a tiny-name mapping is silently dropped.
func ResolveMetricDefinitions(ctx context.Context, catalog MetricCatalog, names *NameCache, ciClass, category string) ([]model.MetricDefinition, error) {
	metas, err := catalog.FindDashboardMeta(ctx, ciClass, category)
	if err != nil {
		return nil, err
	}

	// union of all referenced ids, last write wins per id for the category
	categoryByID := map[string]string{}
	ids := make([]string, 0, len(metas))
	for _, meta := range metas {
		for _, ref := range strings.Split(meta.MetricTypes, ",") {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			if _, seen := categoryByID[ref]; !seen {
				ids = append(ids, ref)
			}
			categoryByID[ref] = meta.Category
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	types, err := catalog.ResolveMetricTypes(ctx, ids)
	if err != nil {
		return nil, err
	}

	defs := make([]model.MetricDefinition, 0, len(types))
	for _, t := range types {
		tinyName, ok := names.Lookup(t.InternalType)
		if !ok {
			log.Debug().Str("metric_type", t.InternalType).Msg("dropping metric without tiny-name mapping")
			continue
		}
		defs = append(defs, model.MetricDefinition{
			MetricTypeID: t.SysID,
			InternalName: tinyName,
			DisplayName:  t.DisplayName,
			Unit:         t.Unit,
			Category:     categoryByID[t.SysID],
		})
	}

	return defs, nil
}
