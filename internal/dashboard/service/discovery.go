package service

import (
	"context"
	"strings"

	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/rs/zerolog/log"
)

// Registry is the CMDB read API the discovery stage consumes: agents joined
// with their CI record in one batched read, and sub-resources batch-resolved
// for a whole agent set.
type Registry interface {
	FindActiveAgents(ctx context.Context, ciSysIDs []string, limit int) ([]model.MonitoredEntity, error)
	FindResources(ctx context.Context, agentIDs []string) (map[string][]model.SubResource, error)
}

// DiscoverEntities finds the monitored entities matching the filter. The
// registry already applied the active/warmed-up/id-set/cap criteria; class,
// name and platform filters are applied here after platform derivation.
func DiscoverEntities(ctx context.Context, registry Registry, f *model.Filter) ([]model.MonitoredEntity, error) {
	limit := f.MaxEntities
	if limit <= 0 {
		limit = model.DefaultMaxAgents
	}

	candidates, err := registry.FindActiveAgents(ctx, f.CISysIDs, limit)
	if err != nil {
		return nil, err
	}

	entities := make([]model.MonitoredEntity, 0, len(candidates))
	for _, e := range candidates {
		e.Platform = derivePlatform(e.EntityClass)
		if f.CIClass != "" && e.EntityClass != f.CIClass {
			continue
		}
		if f.CIName != "" && e.DisplayName != f.CIName {
			continue
		}
		if f.Platform != "" && !strings.EqualFold(e.Platform, f.Platform) {
			continue
		}
		entities = append(entities, e)
	}

	log.Debug().Int("candidates", len(candidates)).Int("matched", len(entities)).Msg("entity discovery done")
	return entities, nil
}

// derivePlatform infers the OS platform from the CI class name. Exact suffix
// classes are checked first, then a substring fallback.
func derivePlatform(class string) string {
	switch {
	case strings.HasSuffix(class, "_linux_server"):
		return "Linux"
	case strings.HasSuffix(class, "_win_server"):
		return "Windows"
	case strings.Contains(class, "linux"):
		return "Linux"
	case strings.Contains(class, "win"):
		return "Windows"
	default:
		return "Unknown"
	}
}
