package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

func TestInsertBar_SkipsExistingDay(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	err := s.Write(ctx, func(ctx context.Context, w contracts.Writer) error {
		require.NoError(t, w.EnsureStockTable(ctx, contracts.SymbolNVDA))

		ok, err := w.InsertBar(ctx, contracts.SymbolNVDA, contracts.StockBar{TradingDay: day, Close: 100})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = w.InsertBar(ctx, contracts.SymbolNVDA, contracts.StockBar{TradingDay: day.Add(15 * time.Hour), Close: 999})
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	bars, err := s.ListBars(ctx, contracts.SymbolNVDA)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 100.0, bars[0].Close)
}

func TestInsertNews_RequiresTable(t *testing.T) {
	s := New()
	err := s.InsertNews(context.Background(), contracts.SourceFT, contracts.NewsRecord{Title: "x"})
	assert.Error(t, err)
}

func TestFail(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	s.Fail(boom)

	err := s.Read(context.Background(), func(context.Context, contracts.Reader) error { return nil })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Opened)
}

func TestCoverage(t *testing.T) {
	s := New()
	d1 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	s.SeedNews(contracts.SourceFT,
		contracts.NewNewsRecord("a", "l", d1, "Financial Times", "", 0.1),
		contracts.NewNewsRecord("b", "l", d1.Add(time.Hour), "Financial Times", "", 0.2),
		contracts.NewNewsRecord("c", "l", d2, "Financial Times", "", 0.3),
	)

	cov, err := s.Coverage(context.Background(), contracts.SourceFT.Table())
	require.NoError(t, err)
	assert.True(t, cov.Exists)
	assert.Equal(t, 3, cov.Rows)
	assert.Equal(t, 2, cov.Distinct)
	assert.Equal(t, contracts.Day(d1), *cov.First)
	assert.Equal(t, d2, *cov.Last)

	cov, err = s.Coverage(context.Background(), contracts.SourceNvidia.Table())
	require.NoError(t, err)
	assert.False(t, cov.Exists)
	assert.Nil(t, cov.First)
}
