package api

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// displayTimeLayout is the fallback format accepted for start_time/end_time
// alongside epoch milliseconds.
const displayTimeLayout = "2006-01-02 15:04:05"

// GetPerformanceDashboard handles GET /v1/dashboard/performance. The facade
// guarantees a well-formed payload, so the handler always answers 200 with
// the success flag inside the body.
func (api *Api) GetPerformanceDashboard(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		api.sendErrorResponse(c, http.StatusBadRequest, model.ErrorCodeInvalidParameter, err.Error())
		return
	}

	if cached, ok := api.cachedPayload(c, filter); ok {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	resp := api.svc.Query(c.Request.Context(), filter)
	if resp.Success {
		api.storePayload(c, filter, resp)
	}
	c.JSON(http.StatusOK, resp)
}

// GetEntities handles GET /v1/dashboard/entities — the discovery stage
// exposed standalone for UI pickers.
func (api *Api) GetEntities(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		api.sendErrorResponse(c, http.StatusBadRequest, model.ErrorCodeInvalidParameter, err.Error())
		return
	}

	entities, err := api.svc.Entities(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("entity listing failed")
		api.sendErrorResponse(c, http.StatusInternalServerError, model.ErrorCodeInternalError, "entity discovery failed")
		return
	}
	c.JSON(http.StatusOK, map[string]any{"count": len(entities), "data": entities})
}

// GetMetricDefinitions handles GET /v1/dashboard/metrics/:ciClass.
func (api *Api) GetMetricDefinitions(c *gin.Context) {
	ciClass := c.Param("ciClass")
	if ciClass == "" {
		api.sendErrorResponse(c, http.StatusBadRequest, model.ErrorCodeInvalidParameter, "missing ciClass")
		return
	}

	defs, err := api.svc.MetricDefinitions(c.Request.Context(), ciClass, c.Query("category"))
	if err != nil {
		log.Error().Err(err).Str("ci_class", ciClass).Msg("metric definition listing failed")
		api.sendErrorResponse(c, http.StatusInternalServerError, model.ErrorCodeInternalError, "metric definition lookup failed")
		return
	}
	c.JSON(http.StatusOK, map[string]any{"count": len(defs), "data": defs})
}

// parseFilter builds a Filter from the request query parameters.
func parseFilter(c *gin.Context) (*model.Filter, error) {
	f := &model.Filter{
		TimeRange:      strings.TrimSpace(c.Query("time_range")),
		CIClass:        strings.TrimSpace(c.Query("ci_class")),
		CIName:         strings.TrimSpace(c.Query("ci_name")),
		Platform:       strings.TrimSpace(c.Query("platform")),
		MetricCategory: strings.TrimSpace(c.Query("category")),
	}

	if ids := strings.TrimSpace(c.Query("ci_sys_ids")); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.CISysIDs = append(f.CISysIDs, id)
			}
		}
	}

	if maxStr := strings.TrimSpace(c.Query("max_agents")); maxStr != "" {
		n, err := strconv.Atoi(maxStr)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("max_agents must be a positive integer")
		}
		f.MaxEntities = n
	}

	startStr := strings.TrimSpace(c.Query("start_time"))
	endStr := strings.TrimSpace(c.Query("end_time"))
	if (startStr == "") != (endStr == "") {
		return nil, fmt.Errorf("start_time and end_time must be given together")
	}
	if startStr != "" {
		startMs, err := parseTimestamp(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid start_time: %w", err)
		}
		endMs, err := parseTimestamp(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid end_time: %w", err)
		}
		if startMs >= endMs {
			return nil, fmt.Errorf("start_time must be before end_time")
		}
		f.StartTimeMs = startMs
		f.EndTimeMs = endMs
	}

	return f, nil
}

// parseTimestamp accepts epoch milliseconds or the display time format.
func parseTimestamp(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(displayTimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("expected epoch milliseconds or %q", displayTimeLayout)
	}
	return t.UTC().UnixMilli(), nil
}

// cachedPayload returns a previously cached payload for the filter. Custom
// windows are never cached (every zoom is a distinct interval). Cache errors
// degrade to a direct query.
func (api *Api) cachedPayload(c *gin.Context, f *model.Filter) ([]byte, bool) {
	if api.cache == nil || f.HasCustomRange() {
		return nil, false
	}
	val, err := api.cache.Get(c.Request.Context(), payloadCacheKey(f)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("payload cache read failed")
		}
		return nil, false
	}
	return val, true
}

func (api *Api) storePayload(c *gin.Context, f *model.Filter, resp *model.DashboardResponse) {
	if api.cache == nil || f.HasCustomRange() {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := api.cache.Set(c.Request.Context(), payloadCacheKey(f), data, api.cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("payload cache write failed")
	}
}

func payloadCacheKey(f *model.Filter) string {
	data, _ := json.Marshal(f)
	sum := sha1.Sum(data)
	return "dashboard:payload:" + hex.EncodeToString(sum[:])
}

func (api *Api) sendErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, model.ErrorResponse{Error: model.ErrorDetail{Code: code, Message: message}})
}
