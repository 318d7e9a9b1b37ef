package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/perfscope/perfscope/internal/dashboard/alertstore"
	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/rs/zerolog/log"
)

// AlertStore is the alert/anomaly read API consumed by the sibling engine.
type AlertStore interface {
	QueryAlerts(ctx context.Context, ciSysIDs []string, start, end time.Time, limit int) ([]alertstore.Row, error)
	QueryAnomalies(ctx context.Context, ciSysIDs []string, start, end time.Time, limit int) ([]alertstore.Row, error)
	ResolveParentNumbers(ctx context.Context, parentIDs []string) (map[string]string, error)
}

// Direction marker phrases emitted by the anomaly detector's description
// text. Substring detection is a heuristic coupled to the upstream format;
// replace with a structured field if the detector ever exposes one.
const (
	aboveBaselinePhrase = "above calculated boundary"
	belowBaselinePhrase = "below calculated boundary"
)

// AlertResult is the output of the alert/anomaly query.
type AlertResult struct {
	Alerts    []model.AlertRecord
	Anomalies []model.AnomalyRecord
	Summary   *model.Summary
}

func emptyAlertResult() *AlertResult {
	return &AlertResult{
		Alerts:    []model.AlertRecord{},
		Anomalies: []model.AnomalyRecord{},
		Summary:   model.NewSummary(),
	}
}

// QueryAlerts fetches and formats alert and anomaly records for the entity
// set inside the window, newest first, capped per store. An empty entity set
// short-circuits without touching the store.
func QueryAlerts(ctx context.Context, store AlertStore, ciSysIDs []string, window model.TimeRangeWindow) (*AlertResult, error) {
	if len(ciSysIDs) == 0 {
		log.Warn().Msg("alert query called with no entities, returning empty result")
		return emptyAlertResult(), nil
	}

	start, end := window.Start(), window.End()

	alertRows, err := store.QueryAlerts(ctx, ciSysIDs, start, end, model.MaxAlertRecords)
	if err != nil {
		return nil, err
	}
	anomalyRows, err := store.QueryAnomalies(ctx, ciSysIDs, start, end, model.MaxAlertRecords)
	if err != nil {
		return nil, err
	}

	parents := resolveParents(ctx, store, alertRows, anomalyRows)

	result := emptyAlertResult()
	for _, row := range alertRows {
		result.Alerts = append(result.Alerts, formatAlert(row, parents))
	}
	for _, row := range anomalyRows {
		result.Anomalies = append(result.Anomalies, formatAnomaly(row, parents))
	}
	result.Summary = buildSummary(result.Alerts, result.Anomalies)

	return result, nil
}

// resolveParents batch-resolves the human-readable numbers of every parent
// reference present across both record sets. Errors degrade to unresolved
// parents, not a failed query.
func resolveParents(ctx context.Context, store AlertStore, alertRows, anomalyRows []alertstore.Row) map[string]string {
	seen := map[string]bool{}
	var ids []string
	for _, rows := range [][]alertstore.Row{alertRows, anomalyRows} {
		for _, row := range rows {
			if row.ParentID != "" && !seen[row.ParentID] {
				seen[row.ParentID] = true
				ids = append(ids, row.ParentID)
			}
		}
	}
	if len(ids) == 0 {
		return map[string]string{}
	}
	parents, err := store.ResolveParentNumbers(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("parent alert resolution failed")
		return map[string]string{}
	}
	return parents
}

func formatAlert(row alertstore.Row, parents map[string]string) model.AlertRecord {
	return model.AlertRecord{
		Number:        row.Number,
		Severity:      row.Severity,
		SeverityLabel: model.SeverityLabel(row.Severity),
		State:         row.State,
		Description:   row.Description,
		MetricName:    row.MetricName,
		Resource:      row.Resource,
		DisplayName:   compositeDisplayName(row.MetricName, row.Resource),
		Source:        row.Source,
		CISysID:       row.CISysID,
		CIName:        row.CIName,
		ParentNumber:  parents[row.ParentID],
		CreatedAt:     row.CreatedAt,
		Extras:        parseExtras(row),
	}
}

func formatAnomaly(row alertstore.Row, parents map[string]string) model.AnomalyRecord {
	return model.AnomalyRecord{
		Number:        row.Number,
		Severity:      row.Severity,
		SeverityLabel: model.SeverityLabel(row.Severity),
		State:         row.State,
		Description:   row.Description,
		MetricName:    row.MetricName,
		Resource:      row.Resource,
		DisplayName:   compositeDisplayName(row.MetricName, row.Resource),
		Source:        row.Source,
		CISysID:       row.CISysID,
		CIName:        row.CIName,
		ParentNumber:  parents[row.ParentID],
		CreatedAt:     row.CreatedAt,
		Direction:     detectDirection(row.Description),
		Extras:        parseExtras(row),
	}
}

// compositeDisplayName renders "<metric> [<resource>]" when a resource is
// present.
func compositeDisplayName(metric, resource string) string {
	if strings.TrimSpace(resource) == "" {
		return metric
	}
	return metric + " [" + resource + "]"
}

// parseExtras defensively decodes the JSON side-channel. Malformed JSON is
// logged and yields the all-defaults instance; the record is still included.
func parseExtras(row alertstore.Row) model.RecordExtras {
	var extras model.RecordExtras
	if row.AdditionalInfo == "" {
		return extras
	}
	if err := json.Unmarshal([]byte(row.AdditionalInfo), &extras); err != nil {
		log.Warn().Err(err).Str("number", row.Number).Msg("malformed additional_info, using empty extras")
		return model.RecordExtras{}
	}
	return extras
}

func detectDirection(description string) string {
	switch {
	case strings.Contains(description, aboveBaselinePhrase):
		return "above"
	case strings.Contains(description, belowBaselinePhrase):
		return "below"
	default:
		return ""
	}
}

// buildSummary computes the dashboard header counts: totals, per-severity
// and per-state histograms, affected entities, top metrics and anomaly
// baseline directions.
func buildSummary(alerts []model.AlertRecord, anomalies []model.AnomalyRecord) *model.Summary {
	s := model.NewSummary()
	s.TotalAlerts = len(alerts)
	s.TotalAnomalies = len(anomalies)

	for _, a := range alerts {
		s.AlertSeverity[strings.ToLower(a.SeverityLabel)]++
		if a.State != "" {
			s.AlertStates[a.State]++
		}
		if a.CIName != "" {
			s.AffectedEntities[a.CIName]++
		}
		if a.MetricName != "" {
			s.TopMetrics[a.MetricName]++
		}
	}
	for _, a := range anomalies {
		s.AnomalySeverity[strings.ToLower(a.SeverityLabel)]++
		if a.State != "" {
			s.AnomalyStates[a.State]++
		}
		if a.CIName != "" {
			s.AffectedEntities[a.CIName]++
		}
		if a.MetricName != "" {
			s.TopMetrics[a.MetricName]++
		}
		switch a.Direction {
		case "above":
			s.AnomaliesAbove++
		case "below":
			s.AnomaliesBelow++
		}
	}

	return s
}
