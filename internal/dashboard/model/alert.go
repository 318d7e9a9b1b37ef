package model

import "time"

// Severity labels keyed by the numeric severity codes used by the alert store.
var SeverityLabels = map[int]string{
	0: "Clear",
	1: "Critical",
	2: "Major",
	3: "Minor",
	4: "Warning",
	5: "Info",
}

// SeverityLabel maps a numeric severity to its display label, "Unknown" for
// unmapped codes.
func SeverityLabel(severity int) string {
	if label, ok := SeverityLabels[severity]; ok {
		return label
	}
	return "Unknown"
}

// RecordExtras is the optional JSON side-channel attached to alert and
// anomaly records. Shape is unreliable upstream; all fields are optional and
// a parse failure yields the zero value.
type RecordExtras struct {
	Environment string  `json:"environment,omitempty"`
	IPAddress   string  `json:"ip_address,omitempty"`
	UpperBound  float64 `json:"upper_bound,omitempty"`
	LowerBound  float64 `json:"lower_bound,omitempty"`
	Score       float64 `json:"anomaly_score,omitempty"`
}

// AlertRecord is a formatted alert row ready for the response payload.
type AlertRecord struct {
	Number        string       `json:"number"`
	Severity      int          `json:"severity"`
	SeverityLabel string       `json:"severity_label"`
	State         string       `json:"state"`
	Description   string       `json:"description"`
	MetricName    string       `json:"metric_name"`
	Resource      string       `json:"resource,omitempty"`
	DisplayName   string       `json:"display_name"`
	Source        string       `json:"source"`
	CISysID       string       `json:"ci_sys_id"`
	CIName        string       `json:"ci_name"`
	ParentNumber  string       `json:"parent_number,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	Extras        RecordExtras `json:"extras"`
}

// AnomalyRecord mirrors AlertRecord for the anomaly store, plus the detected
// baseline direction.
type AnomalyRecord struct {
	Number        string       `json:"number"`
	Severity      int          `json:"severity"`
	SeverityLabel string       `json:"severity_label"`
	State         string       `json:"state"`
	Description   string       `json:"description"`
	MetricName    string       `json:"metric_name"`
	Resource      string       `json:"resource,omitempty"`
	DisplayName   string       `json:"display_name"`
	Source        string       `json:"source"`
	CISysID       string       `json:"ci_sys_id"`
	CIName        string       `json:"ci_name"`
	ParentNumber  string       `json:"parent_number,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	Direction     string       `json:"direction,omitempty"` // "above", "below" or empty
	Extras        RecordExtras `json:"extras"`
}

// Summary aggregates alert and anomaly counts for the dashboard header.
type Summary struct {
	TotalAlerts      int            `json:"total_alerts"`
	TotalAnomalies   int            `json:"total_anomalies"`
	AlertSeverity    map[string]int `json:"alert_severity"`
	AnomalySeverity  map[string]int `json:"anomaly_severity"`
	AlertStates      map[string]int `json:"alert_states"`
	AnomalyStates    map[string]int `json:"anomaly_states"`
	AffectedEntities map[string]int `json:"affected_entities"`
	TopMetrics       map[string]int `json:"top_metrics"`
	AnomaliesAbove   int            `json:"anomalies_above_baseline"`
	AnomaliesBelow   int            `json:"anomalies_below_baseline"`
}

// NewSummary returns an empty summary with all maps initialized so encoders
// emit {} instead of null.
func NewSummary() *Summary {
	return &Summary{
		AlertSeverity:    map[string]int{},
		AnomalySeverity:  map[string]int{},
		AlertStates:      map[string]int{},
		AnomalyStates:    map[string]int{},
		AffectedEntities: map[string]int{},
		TopMetrics:       map[string]int{},
	}
}
