package service

import (
	"time"

	"github.com/perfscope/perfscope/internal/dashboard/model"
)

// ResolveTimeRange normalizes a filter's time specification into a concrete
// query window. An explicit start/end pair wins over the named range; an
// unknown named range falls back to 24h.
//
// No sampling is applied anywhere downstream: every raw datapoint inside the
// window is returned to the caller.
func ResolveTimeRange(f *model.Filter) model.TimeRangeWindow {
	return resolveTimeRangeAt(f, time.Now())
}

func resolveTimeRangeAt(f *model.Filter, now time.Time) model.TimeRangeWindow {
	if f.HasCustomRange() {
		return model.TimeRangeWindow{
			StartMs:  f.StartTimeMs,
			EndMs:    f.EndTimeMs,
			Hours:    float64(f.EndTimeMs-f.StartTimeMs) / float64(time.Hour.Milliseconds()),
			IsCustom: true,
		}
	}

	name := f.TimeRange
	if name == "" {
		name = model.DefaultTimeRange
	}
	hours, ok := model.TimeRangeHours[name]
	if !ok {
		hours = model.TimeRangeHours[model.DefaultTimeRange]
	}

	endMs := now.UnixMilli()
	startMs := endMs - int64(hours*float64(time.Hour.Milliseconds()))
	return model.TimeRangeWindow{
		StartMs:  startMs,
		EndMs:    endMs,
		Hours:    hours,
		IsCustom: false,
	}
}
