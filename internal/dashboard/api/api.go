package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfscope/perfscope/internal/config"
	"github.com/perfscope/perfscope/internal/dashboard/service"
	"github.com/redis/go-redis/v9"
)

// Api registers the dashboard routes.
type Api struct {
	svc      *service.DashboardService
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewApi binds the dashboard endpoints to the router. rdb may be nil, in
// which case payload caching is disabled.
func NewApi(router *gin.Engine, svc *service.DashboardService, rdb *redis.Client, cfg *config.DashboardConfig) *Api {
	ttl := 30 * time.Second
	if cfg != nil {
		if d, err := time.ParseDuration(cfg.PayloadCacheTTL); err == nil && d > 0 {
			ttl = d
		}
	}
	api := &Api{svc: svc, cache: rdb, cacheTTL: ttl}
	api.setupRouters(router)
	return api
}

func (api *Api) setupRouters(router *gin.Engine) {
	router.GET("/v1/dashboard/performance", api.GetPerformanceDashboard)
	router.GET("/v1/dashboard/entities", api.GetEntities)
	router.GET("/v1/dashboard/metrics/:ciClass", api.GetMetricDefinitions)
}

// NewRedisClientFromConfig constructs a redis client from app config.
func NewRedisClientFromConfig(c *config.RedisConfig) *redis.Client {
	if c == nil {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
}
