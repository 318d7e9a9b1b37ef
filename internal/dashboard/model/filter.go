package model

import "time"

// Named time windows accepted by the dashboard, in hours.
var TimeRangeHours = map[string]float64{
	"1h":  1,
	"2h":  2,
	"6h":  6,
	"12h": 12,
	"24h": 24,
	"2d":  48,
}

const (
	DefaultTimeRange  = "24h"
	DefaultMaxAgents  = 50
	MaxResourcesPerCI = 50
	MaxAlertRecords   = 200
)

// Filter is the parsed query input for a dashboard request.
type Filter struct {
	TimeRange      string   `json:"time_range,omitempty"`
	StartTimeMs    int64    `json:"start_time,omitempty"`
	EndTimeMs      int64    `json:"end_time,omitempty"`
	CIClass        string   `json:"ci_class,omitempty"`
	CISysIDs       []string `json:"ci_sys_ids,omitempty"`
	CIName         string   `json:"ci_name,omitempty"`
	Platform       string   `json:"platform,omitempty"`
	MetricCategory string   `json:"category,omitempty"`
	MaxEntities    int      `json:"max_agents,omitempty"`
}

// HasCustomRange reports whether explicit bounds were supplied. A zero
// start is a valid bound (epoch), so presence is keyed on the end bound.
func (f *Filter) HasCustomRange() bool {
	return f.EndTimeMs > 0 && f.EndTimeMs > f.StartTimeMs
}

// TimeRangeWindow is the resolved [StartMs, EndMs) query interval.
type TimeRangeWindow struct {
	StartMs  int64
	EndMs    int64
	Hours    float64
	IsCustom bool
}

func (w TimeRangeWindow) Start() time.Time { return time.UnixMilli(w.StartMs).UTC() }
func (w TimeRangeWindow) End() time.Time   { return time.UnixMilli(w.EndMs).UTC() }
