package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

// QualityGate reports what the six tables currently hold.
type QualityGate struct {
	gateway contracts.Gateway
	now     func() time.Time
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(gateway contracts.Gateway) *QualityGate {
	return &QualityGate{
		gateway: gateway,
		now:     time.Now,
	}
}

// Check reads per-table coverage in one connection.
// ⭐ SSOT: 테이블 커버리지 점검
func (g *QualityGate) Check(ctx context.Context) (*contracts.DataQualitySnapshot, error) {
	snapshot := &contracts.DataQualitySnapshot{CheckedAt: g.now()}

	err := g.gateway.Read(ctx, func(ctx context.Context, r contracts.Reader) error {
		// 1. 뉴스 테이블
		for _, src := range contracts.Sources {
			cov, err := r.Coverage(ctx, src.Table())
			if err != nil {
				return fmt.Errorf("coverage %s: %w", src.Table(), err)
			}
			snapshot.News = append(snapshot.News, cov)
		}

		// 2. 시세 테이블
		for _, sym := range contracts.Symbols {
			cov, err := r.Coverage(ctx, sym.Table())
			if err != nil {
				return fmt.Errorf("coverage %s: %w", sym.Table(), err)
			}
			snapshot.Stocks = append(snapshot.Stocks, cov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}
