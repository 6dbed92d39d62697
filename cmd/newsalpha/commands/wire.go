package commands

import (
	"fmt"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/external/finnhub"
	"github.com/wonny/newsalpha/backend/internal/external/ft"
	"github.com/wonny/newsalpha/backend/internal/external/nvidia"
	"github.com/wonny/newsalpha/backend/internal/external/yahoo"
	"github.com/wonny/newsalpha/backend/internal/s0_data"
	"github.com/wonny/newsalpha/backend/internal/s0_data/collector"
	"github.com/wonny/newsalpha/backend/internal/s0_data/memstore"
	"github.com/wonny/newsalpha/backend/internal/s0_data/quality"
	"github.com/wonny/newsalpha/backend/internal/s2_analysis"
	"github.com/wonny/newsalpha/backend/internal/sentiment"
	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/database"
	"github.com/wonny/newsalpha/backend/pkg/httputil"
	"github.com/wonny/newsalpha/backend/pkg/logger"
	"github.com/wonny/newsalpha/backend/pkg/redis"
)

const cachePrefix = "newsalpha"

// app holds the wired components shared by the commands.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.Factory // nil on dry runs
	gateway   contracts.Gateway
	redis     *redis.Client
	analysis  *s2_analysis.Service
	quality   *quality.QualityGate
	collector *collector.Collector // nil unless wireOptions.ingest
}

type wireOptions struct {
	// dryRun keeps every write in process memory.
	dryRun bool
	// ingest builds the external clients and the collector.
	ingest   bool
	progress contracts.ProgressSink
}

func newApp(cfg *config.Config, log *logger.Logger, opts wireOptions) (*app, error) {
	a := &app{cfg: cfg, log: log}

	if opts.dryRun {
		log.Info("Dry run: writes stay in memory")
		a.gateway = memstore.New()
	} else {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.gateway = s0_data.NewStore(db)
	}

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, falling back to in-process cache")
		rc = redis.NewFromRedis(nil)
	}
	a.redis = rc

	a.analysis = s2_analysis.NewService(
		s0_data.NewDatasetLoader(a.gateway),
		redis.NewCache(a.redis, cachePrefix),
		cfg.Analysis.CacheTTL,
		log,
	)
	a.quality = quality.NewQualityGate(a.gateway)

	if opts.ingest {
		col, err := a.buildCollector(opts.progress)
		if err != nil {
			a.close()
			return nil, err
		}
		a.collector = col
	}

	return a, nil
}

// buildCollector wires one paced HTTP client per upstream so a slow site
// never holds back another.
func (a *app) buildCollector(progress contracts.ProgressSink) (*collector.Collector, error) {
	secrets, err := config.LoadSecrets(a.cfg.SecretsFile)
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	if secrets.Finnhub.APIKey == "" {
		a.log.Warn("api_finhub.api_key is empty, Finnhub requests will be rejected")
	}

	limiter := redis.NewRateLimiter(a.redis, cachePrefix)
	ing := a.cfg.Ingest

	ftHTTP := httputil.New(a.cfg, a.log).
		WithPacing(ing.FTDelay).
		WithRateLimiter(limiter, redis.FTRateLimit)
	nvidiaHTTP := httputil.New(a.cfg, a.log).
		WithPacing(ing.NvidiaDelay).
		WithRateLimiter(limiter, redis.NvidiaRateLimit)
	finnhubHTTP := httputil.New(a.cfg, a.log).
		WithPacing(ing.FinnhubDelay).
		WithRateLimiter(limiter, redis.FinnhubRateLimit(ing.FinnhubRequestsPerMinute))
	yahooHTTP := httputil.New(a.cfg, a.log).
		WithRateLimiter(limiter, redis.YahooRateLimit)

	scorer := sentiment.New()
	opts := collector.OptionsFromConfig(a.cfg, progress)

	col := collector.NewCollector(a.log,
		collector.NewFTIngestor(ft.NewClient(ftHTTP, secrets.FT, a.log), a.gateway, scorer, opts, a.log),
		collector.NewNvidiaIngestor(nvidia.NewClient(nvidiaHTTP, secrets.Nvidia, a.log), a.gateway, scorer, opts, a.log),
		collector.NewFinnhubIngestor(finnhub.NewClient(finnhubHTTP, secrets.Finnhub.APIKey, a.log), a.gateway, scorer, opts, a.log),
		collector.NewStockIngestor(yahoo.NewClient(yahooHTTP, yahoo.DefaultEndpoints(), a.log), a.gateway, opts, a.log),
	).WithInvalidator(a.analysis)

	return col, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
