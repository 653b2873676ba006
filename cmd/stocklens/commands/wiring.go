package commands

import (
	"fmt"
	"time"

	"stocklens/internal/capitalflow"
	"stocklens/internal/indicator"
	"stocklens/internal/market"
	"stocklens/internal/pipeline"
	"stocklens/internal/provider"
	"stocklens/internal/quality"
	"stocklens/internal/store"
	"stocklens/pkg/config"
	"stocklens/pkg/database"
	"stocklens/pkg/httputil"
	"stocklens/pkg/logger"
	"stocklens/pkg/redis"
)

// runtime bundles the wired components every command starts from.
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	registry *market.Registry
	indCfg   *indicator.Config
	source   provider.BarProvider

	db    *database.DB
	redis *redis.Client
	bars  *store.BarStore
}

// newRuntime loads configuration and wires the shared components.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	configPath := cfg.Pipeline.IndicatorConfig
	if indicatorConfig != "" {
		configPath = indicatorConfig
	}

	indCfg, _, err := indicator.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load indicator config %s: %w", configPath, err)
	}
	for _, warning := range indicator.Warn(indCfg) {
		log.WithFields(map[string]interface{}{
			"code": warning.Code,
		}).Warn(warning.Message)
	}
	if hash, err := indicator.Hash(indCfg); err == nil {
		log.WithFields(map[string]interface{}{
			"config_id": indCfg.Meta.ConfigID,
			"hash":      hash[:12],
		}).Info("Indicator config loaded")
	}

	rt := &runtime{
		cfg:      cfg,
		log:      log,
		registry: market.NewRegistry(),
		indCfg:   indCfg,
	}

	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		rt.db = db
		rt.bars = store.NewBarStore(db.Pool)
		log.Info("Connected to database")
	}

	if cfg.Redis.Enabled {
		client, err := redis.New(cfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		rt.redis = client
		log.Info("Connected to redis")
	}

	src, err := rt.buildProvider()
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.source = src

	return rt, nil
}

// buildProvider constructs the configured bar source, optionally wrapped
// with the caching layers.
func (rt *runtime) buildProvider() (provider.BarProvider, error) {
	pcfg := rt.cfg.Provider

	var src provider.BarProvider
	switch pcfg.Source {
	case "rest":
		client := httputil.New(rt.log, pcfg.Timeout).
			WithRetry(3, 500*time.Millisecond).
			WithRateLimit(pcfg.RateLimit)
		src = provider.NewRESTProvider(client, rt.log, pcfg.BaseURL, pcfg.UserAgent)
	case "html":
		client := httputil.New(rt.log, pcfg.Timeout).
			WithRetry(3, 500*time.Millisecond).
			WithRateLimit(pcfg.RateLimit)
		src = provider.NewHTMLProvider(client, rt.log, pcfg.BaseURL, pcfg.UserAgent)
	case "csv":
		src = provider.NewCSVProvider(pcfg.CSVDir, rt.log)
	default:
		return nil, fmt.Errorf("unknown provider source %q", pcfg.Source)
	}

	if pcfg.CacheEnable && (rt.redis != nil || rt.bars != nil) {
		var cache *redis.Cache
		if rt.redis != nil {
			cache = redis.NewCache(rt.redis, "stocklens")
		}
		src = provider.NewCachingProvider(src, cache, rt.bars, rt.log)
	}

	return src, nil
}

// orchestrator wires a pipeline orchestrator over the runtime components.
func (rt *runtime) orchestrator(onProgress pipeline.ProgressFunc) *pipeline.Orchestrator {
	flowCfg := capitalflow.DefaultConfig()
	flowCfg.Threshold = rt.cfg.Pipeline.CapitalFlowThresh
	if rt.indCfg.CapitalFlow.Threshold > 0 {
		flowCfg.Threshold = rt.indCfg.CapitalFlow.Threshold
	}
	if rt.indCfg.CapitalFlow.MomentumPeriod > 0 {
		flowCfg.MomentumPeriod = rt.indCfg.CapitalFlow.MomentumPeriod
	}
	if rt.indCfg.CapitalFlow.DivergenceWindow > 0 {
		flowCfg.DivergenceWindow = rt.indCfg.CapitalFlow.DivergenceWindow
	}

	return pipeline.NewOrchestrator(
		rt.registry,
		quality.NewValidator(rt.registry, rt.log),
		indicator.NewCalculator(rt.log),
		capitalflow.NewAnalyzer(flowCfg, rt.log),
		rt.source,
		rt.indCfg.Indicators,
		pipeline.Options{
			Workers:    rt.cfg.Pipeline.Workers,
			RunTimeout: rt.cfg.Pipeline.RunTimeout,
			OnProgress: onProgress,
		},
		rt.log,
	)
}

// Close releases the runtime's connections.
func (rt *runtime) Close() {
	if rt.redis != nil {
		rt.redis.Close()
	}
	if rt.db != nil {
		rt.db.Close()
	}
}
