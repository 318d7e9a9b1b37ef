package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/perfscope/perfscope/internal/dashboard/model"
)

// displayTimeLayout is the timestamp format used in display payloads.
const displayTimeLayout = "2006-01-02 15:04:05"

// Aggregate computes the summary stats for one raw series and attaches the
// synthetic timestamp sequence for the query window.
//
// avg divides by the total sample count, NaN entries included. That matches
// the numbers the platform has always shown; keep it even though it is not
// a true mean of the valid samples.
func Aggregate(raw model.RawSeries, window model.TimeRangeWindow) model.SeriesLine {
	values := raw.Values

	last := values[len(values)-1]
	min := math.Inf(1)
	max := math.Inf(-1)
	sum := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	if math.IsInf(min, 1) {
		min, max = 0, 0
	}
	avg := sum / float64(len(values))

	return model.SeriesLine{
		Host:         raw.Entity.DisplayName,
		CISysID:      raw.Entity.CISysID,
		ResourceName: raw.ResourceName,
		Values:       values,
		Timestamps:   syntheticTimestamps(window, len(values)),
		Last:         formatStat(last),
		Min:          formatStat(min),
		Max:          formatStat(max),
		Avg:          formatStat(avg),
		Unit:         resolveUnit(raw.Def),
	}
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", v)
}

// syntheticTimestamps reconstructs count evenly spaced timestamps spanning
// the window inclusive. The telemetry layer returns values only, so real
// per-sample times are not available; this is an accepted approximation.
func syntheticTimestamps(window model.TimeRangeWindow, count int) []string {
	if count <= 0 {
		return nil
	}
	out := make([]string, 0, count)
	if count == 1 {
		return append(out, time.UnixMilli(window.EndMs).UTC().Format(displayTimeLayout))
	}
	interval := float64(window.EndMs-window.StartMs) / float64(count-1)
	for i := 0; i < count; i++ {
		ms := window.StartMs + int64(float64(i)*interval)
		out = append(out, time.UnixMilli(ms).UTC().Format(displayTimeLayout))
	}
	return out
}

// unitPatterns maps metric-name substrings to display units, checked in
// order. Used only when the metric definition carries no explicit unit.
var unitPatterns = []struct {
	substr string
	unit   string
}{
	{"percentage", "%"},
	{"percent", "%"},
	{"bytes", "Bytes"},
	{"kb", "KB"},
	{"gb", "GB"},
	{"sec", "/sec"},
	{"packets", "packets"},
	{"time", "ms"},
}

func resolveUnit(def model.MetricDefinition) string {
	if def.Unit != "" {
		return def.Unit
	}
	name := strings.ToLower(def.InternalName)
	for _, p := range unitPatterns {
		if strings.Contains(name, p.substr) {
			return p.unit
		}
	}
	return ""
}
