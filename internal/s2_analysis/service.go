package s2_analysis

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s1_align"
	"github.com/wonny/newsalpha/backend/pkg/logger"
	"github.com/wonny/newsalpha/backend/pkg/redis"
)

const (
	routineRegression  = "regression"
	routineCorrelation = "correlation"
	routineTimeline    = "timeline"
	routineStocks      = "stocks"
)

// cacheKeys lists every key Invalidate must drop.
var cacheKeys = []string{
	redis.AnalysisKey(routineRegression, ""),
	redis.AnalysisKey(routineCorrelation, ""),
	redis.AnalysisKey(routineTimeline, "raw"),
	redis.AnalysisKey(routineTimeline, "rescaled"),
	redis.AnalysisKey(routineStocks, ""),
}

// Service runs the analysis routines over one dataset load per request.
// Results are cached in Redis when it is enabled and in process otherwise;
// concurrent identical requests share one computation.
type Service struct {
	loader contracts.SeriesLoader
	shared *redis.Cache
	local  *gocache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *logger.Logger
}

// NewService creates an analysis service. shared may be nil.
func NewService(loader contracts.SeriesLoader, shared *redis.Cache, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &Service{
		loader: loader,
		shared: shared,
		local:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: log.Component("analysis"),
	}
}

// Regression fits the NVDA close. Too little aligned data is
// contracts.ErrInsufficientData.
func (s *Service) Regression(ctx context.Context) (*contracts.RegressionResult, error) {
	return cached(ctx, s, redis.AnalysisKey(routineRegression, ""), func(ds *contracts.Dataset) (*contracts.RegressionResult, error) {
		frame, err := s1_align.RegressionFrame(ds)
		if err != nil {
			return nil, err
		}
		s.logger.WithField("rows", frame.Len()).Debug("Regression frame aligned")
		return Regress(frame)
	})
}

// Correlation reports the per-source correlation metrics.
func (s *Service) Correlation(ctx context.Context) (contracts.CorrelationReport, error) {
	return cached(ctx, s, redis.AnalysisKey(routineCorrelation, ""), func(ds *contracts.Dataset) (contracts.CorrelationReport, error) {
		return Correlate(ds, s.logger)
	})
}

// Timeline returns the sentiment and close series for charting.
func (s *Service) Timeline(ctx context.Context, rescale bool) (*contracts.Timeline, error) {
	variant := "raw"
	if rescale {
		variant = "rescaled"
	}
	return cached(ctx, s, redis.AnalysisKey(routineTimeline, variant), func(ds *contracts.Dataset) (*contracts.Timeline, error) {
		return BuildTimeline(ds, rescale), nil
	})
}

// StockComparison returns the per-symbol bars for charting.
func (s *Service) StockComparison(ctx context.Context) (contracts.StockComparison, error) {
	return cached(ctx, s, redis.AnalysisKey(routineStocks, ""), func(ds *contracts.Dataset) (contracts.StockComparison, error) {
		return BuildStockComparison(ds), nil
	})
}

// Invalidate drops every cached result. The collector calls it after a run
// that inserted rows.
func (s *Service) Invalidate(ctx context.Context) error {
	s.local.Flush()
	if s.sharedEnabled() {
		if err := s.shared.Delete(ctx, cacheKeys...); err != nil {
			return fmt.Errorf("invalidate analysis cache: %w", err)
		}
	}
	return nil
}

func (s *Service) sharedEnabled() bool {
	return s.shared != nil && s.shared.Enabled()
}

func cached[T any](ctx context.Context, s *Service, key string, compute func(*contracts.Dataset) (T, error)) (T, error) {
	var zero T

	if s.sharedEnabled() {
		var hit T
		found, err := s.shared.Get(ctx, key, &hit)
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Analysis cache read failed")
		} else if found {
			return hit, nil
		}
	} else if v, ok := s.local.Get(key); ok {
		return v.(T), nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		start := time.Now()
		ds, err := s.loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		result, err := compute(ds)
		if err != nil {
			return nil, err
		}

		if s.sharedEnabled() {
			if err := s.shared.Set(ctx, key, result, s.ttl); err != nil {
				s.logger.WithError(err).WithField("key", key).Warn("Analysis cache write failed")
			}
		} else {
			s.local.Set(key, result, gocache.DefaultExpiration)
		}

		s.logger.WithFields(map[string]any{
			"key":      key,
			"duration": time.Since(start).String(),
		}).Info("Analysis computed")
		return result, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
