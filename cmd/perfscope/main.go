package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfscope/perfscope/internal/config"
	"github.com/perfscope/perfscope/internal/dashboard/alertstore"
	dashapi "github.com/perfscope/perfscope/internal/dashboard/api"
	ddb "github.com/perfscope/perfscope/internal/dashboard/database"
	"github.com/perfscope/perfscope/internal/dashboard/service"
	"github.com/perfscope/perfscope/internal/middleware"
	"github.com/perfscope/perfscope/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// load config first
	log.Info().Msg("Starting perfscope api server")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// configure log level from config
	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := ddb.New(cfg.CMDB.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect cmdb")
	}
	defer db.Close()

	alerts, err := alertstore.New(ctx, cfg.AlertStore.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect alert store")
	}
	defer alerts.Close()

	telemetryClient, err := telemetry.NewPrometheusClient(cfg.Telemetry.URL, parseDuration(cfg.Telemetry.QueryStep, time.Minute))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telemetry client")
	}

	metricRepo := ddb.NewMetricRepo(db)
	names, err := service.NewNameCache(ctx, metricRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load metric name cache")
	}
	names.StartRefresher(ctx, parseDuration(cfg.Dashboard.NameCacheRefresh, 0))

	svc := service.NewDashboardService(ddb.NewAgentRepo(db), metricRepo, names, telemetryClient, alerts)
	rdb := dashapi.NewRedisClientFromConfig(&cfg.Redis)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Authentication)
	router.Use(middleware.RequestID)
	router.Use(middleware.Metrics)
	dashapi.NewApi(router, svc, rdb, &cfg.Dashboard)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		status := map[string]string{"cmdb": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status["cmdb"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				status["redis"] = err.Error()
			}
		}
		c.JSON(code, status)
	})

	log.Info().Msgf("Starting server on %s", cfg.Server.BindAddr)
	if err := router.Run(cfg.Server.BindAddr); err != nil {
		log.Fatal().Err(err).Msg("start perfscope api server failed.")
	}
	log.Info().Msg("perfscope api server exit...")
}

func parseDuration(s string, d time.Duration) time.Duration {
	if s == "" {
		return d
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return d
}
