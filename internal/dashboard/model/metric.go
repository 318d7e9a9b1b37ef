package model

// MetricDefinition is a fully resolved metric to query: the source metric
// type joined with its tiny internal name and the dashboard category it was
// referenced from.
type MetricDefinition struct {
	MetricTypeID string `json:"metric_type_id"`
	InternalName string `json:"internal_name"`
	DisplayName  string `json:"display_name"`
	Unit         string `json:"unit"`
	Category     string `json:"category"`
}

// RawSeries is the transient output of one telemetry fetch. Consumed by the
// aggregator and discarded after grouping.
type RawSeries struct {
	Entity       MonitoredEntity
	Def          MetricDefinition
	ResourceName string // empty for CI-level series
	Values       []float64
}

// SeriesLine is one aggregated data line inside a MetricGroup.
type SeriesLine struct {
	Host         string    `json:"host"`
	CISysID      string    `json:"ci_sys_id"`
	ResourceName string    `json:"resource_name,omitempty"`
	Values       []float64 `json:"values"`
	Timestamps   []string  `json:"timestamps"`
	Last         string    `json:"last"`
	Min          string    `json:"min"`
	Max          string    `json:"max"`
	Avg          string    `json:"avg"`
	Unit         string    `json:"unit"`
}

// MetricGroup is the final display unit: one group per distinct
// (metric type, sub-resource-or-CI) key, one SeriesLine per entity.
type MetricGroup struct {
	ID              string       `json:"id"`
	DisplayName     string       `json:"display_name"`
	MetricTypeID    string       `json:"metric_type_id"`
	Unit            string       `json:"unit"`
	EntityClass     string       `json:"entity_class"`
	Category        string       `json:"category"`
	IsResourceBased bool         `json:"is_resource_based"`
	ResourceName    string       `json:"resource_name,omitempty"`
	SupportGroup    string       `json:"support_group"`
	Location        string       `json:"location"`
	Hosts           []string     `json:"hosts"`
	Data            []SeriesLine `json:"data"`
}
