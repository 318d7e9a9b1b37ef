package service

import (
	"context"

	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/perfscope/perfscope/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// FetchSeries retrieves raw sample values for every (entity, metric) and
// (resource, metric) pair over the window. Each pair is an independent
// blocking call; a failed or empty fetch drops that pair only and never
// aborts its siblings. Resource-level series are fetched pre-averaged.
func FetchSeries(ctx context.Context, client telemetry.Client, entity model.MonitoredEntity,
	resources []model.SubResource, defs []model.MetricDefinition, window model.TimeRangeWindow) []model.RawSeries {

	start, end := window.Start(), window.End()
	var series []model.RawSeries

	for _, def := range defs {
		target := telemetry.Target{CISysID: entity.CISysID}
		values, err := client.Fetch(ctx, target, def.InternalName, telemetry.AggNone, start, end)
		if err != nil {
			// a metric missing for one pair is normal, keep going
			log.Debug().Err(err).Str("ci", entity.CISysID).Str("metric", def.InternalName).Msg("skipping failed fetch")
			continue
		}
		if len(values) == 0 {
			continue
		}
		series = append(series, model.RawSeries{Entity: entity, Def: def, Values: values})
	}

	for _, res := range resources {
		for _, def := range defs {
			target := telemetry.Target{CISysID: entity.CISysID, Resource: res.Name}
			values, err := client.Fetch(ctx, target, def.InternalName, telemetry.AggAvg, start, end)
			if err != nil {
				log.Debug().Err(err).Str("ci", entity.CISysID).Str("resource", res.Name).
					Str("metric", def.InternalName).Msg("skipping failed resource fetch")
				continue
			}
			if len(values) == 0 {
				continue
			}
			series = append(series, model.RawSeries{Entity: entity, Def: def, ResourceName: res.Name, Values: values})
		}
	}

	return series
}
