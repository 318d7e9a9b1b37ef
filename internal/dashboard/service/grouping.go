package service

import (
	"github.com/perfscope/perfscope/internal/dashboard/model"
)

// GroupSeries merges aggregated series sharing the same (metric type,
// sub-resource-or-CI) key into one display group with one data line per
// entity. The first occurrence of a key fixes the group's shared metadata;
// later occurrences only append. Hosts and data grow in discovery order.
func GroupSeries(raw []model.RawSeries, lines []model.SeriesLine) []model.MetricGroup {
	groups := make([]model.MetricGroup, 0)
	index := map[string]int{}

	for i, rs := range raw {
		line := lines[i]
		keyPart := rs.ResourceName
		if keyPart == "" {
			keyPart = "CI"
		}
		key := rs.Def.MetricTypeID + "_" + keyPart

		at, ok := index[key]
		if !ok {
			displayName := rs.Def.DisplayName
			if rs.ResourceName != "" {
				displayName += " [" + rs.ResourceName + "]"
			}
			groups = append(groups, model.MetricGroup{
				ID:              key,
				DisplayName:     displayName,
				MetricTypeID:    rs.Def.MetricTypeID,
				Unit:            line.Unit,
				EntityClass:     rs.Entity.EntityClass,
				Category:        rs.Def.Category,
				IsResourceBased: rs.ResourceName != "",
				ResourceName:    rs.ResourceName,
				SupportGroup:    rs.Entity.SupportGroup,
				Location:        rs.Entity.Location,
			})
			at = len(groups) - 1
			index[key] = at
		}

		groups[at].Hosts = append(groups[at].Hosts, rs.Entity.DisplayName)
		groups[at].Data = append(groups[at].Data, line)
	}

	return groups
}
