package model

// ===== API response structures =====

// MetricsSection wraps the grouped metric payload.
type MetricsSection struct {
	Count int           `json:"count"`
	Data  []MetricGroup `json:"data"`
}

// AlertsSection wraps the alert record payload.
type AlertsSection struct {
	Count int           `json:"count"`
	Data  []AlertRecord `json:"data"`
}

// AnomaliesSection wraps the anomaly record payload.
type AnomaliesSection struct {
	Count int             `json:"count"`
	Data  []AnomalyRecord `json:"data"`
}

// DashboardResponse is the full facade payload. The facade always returns a
// well-formed instance; on failure Success is false and every section is
// present but empty.
type DashboardResponse struct {
	Success   bool             `json:"success"`
	Timestamp string           `json:"timestamp"`
	Error     string           `json:"error,omitempty"`
	Message   string           `json:"message,omitempty"`
	Filters   *Filter          `json:"filters,omitempty"`
	Metrics   MetricsSection   `json:"metrics"`
	Alerts    AlertsSection    `json:"alerts"`
	Anomalies AnomaliesSection `json:"anomalies"`
	Summary   *Summary         `json:"summary,omitempty"`
}

// ErrorResponse is the parameter-error payload shape.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrorCodeInvalidParameter = "INVALID_PARAMETER"
	ErrorCodeInternalError    = "INTERNAL_ERROR"
)
