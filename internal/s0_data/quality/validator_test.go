package quality

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s0_data/memstore"
)

func TestQualityGate_Check(t *testing.T) {
	store := memstore.New()
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	store.SeedNews(contracts.SourceNvidia, contracts.NewNewsRecord("t", "l", day, "NVIDIA", "", 0))
	for _, sym := range contracts.Symbols {
		store.SeedBars(sym, contracts.StockBar{TradingDay: day, Close: 1})
	}

	gate := NewQualityGate(store)
	gate.now = func() time.Time { return day }

	snapshot, err := gate.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, day, snapshot.CheckedAt)
	require.Len(t, snapshot.News, 3)
	require.Len(t, snapshot.Stocks, 3)
	assert.Equal(t, "nvidia_news_api", snapshot.News[0].Table)
	assert.Equal(t, 1, snapshot.News[1].Rows)
	assert.True(t, snapshot.ReadyForRegression())
	assert.InDelta(t, 4.0/6.0, snapshot.CoverageRate(), 1e-9)
	assert.Equal(t, 1, store.Opened)
}

func TestQualityGate_CheckEmpty(t *testing.T) {
	snapshot, err := NewQualityGate(memstore.New()).Check(context.Background())
	require.NoError(t, err)
	assert.False(t, snapshot.ReadyForRegression())
	assert.Zero(t, snapshot.CoverageRate())
}

func TestQualityGate_CheckError(t *testing.T) {
	store := memstore.New()
	store.Fail(errors.New("dial tcp: refused"))

	_, err := NewQualityGate(store).Check(context.Background())
	assert.Error(t, err)
}
