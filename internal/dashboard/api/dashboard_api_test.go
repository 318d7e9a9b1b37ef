package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	return c
}

func TestParseFilter(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		f, err := parseFilter(testContext(t, "/v1/dashboard/performance"))
		require.NoError(t, err)
		assert.Empty(t, f.TimeRange)
		assert.Zero(t, f.MaxEntities)
		assert.False(t, f.HasCustomRange())
	})

	t.Run("AllParams", func(t *testing.T) {
		f, err := parseFilter(testContext(t,
			"/v1/dashboard/performance?time_range=6h&ci_class=cmdb_ci_linux_server&ci_sys_ids=a,b,%20c&platform=linux&category=CPU&max_agents=10"))
		require.NoError(t, err)
		assert.Equal(t, "6h", f.TimeRange)
		assert.Equal(t, "cmdb_ci_linux_server", f.CIClass)
		assert.Equal(t, []string{"a", "b", "c"}, f.CISysIDs)
		assert.Equal(t, "linux", f.Platform)
		assert.Equal(t, "CPU", f.MetricCategory)
		assert.Equal(t, 10, f.MaxEntities)
	})

	t.Run("CustomWindowEpochMs", func(t *testing.T) {
		f, err := parseFilter(testContext(t,
			"/v1/dashboard/performance?start_time=1000&end_time=3600000"))
		require.NoError(t, err)
		require.True(t, f.HasCustomRange())
		assert.EqualValues(t, 1000, f.StartTimeMs)
		assert.EqualValues(t, 3600000, f.EndTimeMs)
	})

	t.Run("CustomWindowDisplayFormat", func(t *testing.T) {
		f, err := parseFilter(testContext(t,
			"/v1/dashboard/performance?start_time=2025-06-01%2010:00:00&end_time=2025-06-01%2011:00:00"))
		require.NoError(t, err)
		require.True(t, f.HasCustomRange())
		assert.EqualValues(t, 3_600_000, f.EndTimeMs-f.StartTimeMs)
	})

	t.Run("HalfWindowRejected", func(t *testing.T) {
		_, err := parseFilter(testContext(t, "/v1/dashboard/performance?start_time=1000"))
		assert.Error(t, err)
	})

	t.Run("InvertedWindowRejected", func(t *testing.T) {
		_, err := parseFilter(testContext(t,
			"/v1/dashboard/performance?start_time=5000&end_time=1000"))
		assert.Error(t, err)
	})

	t.Run("BadMaxAgentsRejected", func(t *testing.T) {
		_, err := parseFilter(testContext(t, "/v1/dashboard/performance?max_agents=zero"))
		assert.Error(t, err)
		_, err = parseFilter(testContext(t, "/v1/dashboard/performance?max_agents=-3"))
		assert.Error(t, err)
	})
}

func TestParseTimestamp(t *testing.T) {
	ms, err := parseTimestamp("1717236000000")
	require.NoError(t, err)
	assert.EqualValues(t, 1717236000000, ms)

	ms, err = parseTimestamp("1970-01-01 00:00:01")
	require.NoError(t, err)
	assert.EqualValues(t, 1000, ms)

	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestPayloadCacheKeyStable(t *testing.T) {
	f1, err := parseFilter(testContext(t, "/v1/dashboard/performance?time_range=6h&platform=linux"))
	require.NoError(t, err)
	f2, err := parseFilter(testContext(t, "/v1/dashboard/performance?time_range=6h&platform=linux"))
	require.NoError(t, err)
	f3, err := parseFilter(testContext(t, "/v1/dashboard/performance?time_range=1h&platform=linux"))
	require.NoError(t, err)

	assert.Equal(t, payloadCacheKey(f1), payloadCacheKey(f2))
	assert.NotEqual(t, payloadCacheKey(f1), payloadCacheKey(f3))
}
