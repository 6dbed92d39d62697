// Package memstore is an in-memory contracts.Gateway. It backs dry runs of
// the ingest command and the package tests that need a store.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

// ErrClosed is returned once Fail has been armed.
var ErrClosed = errors.New("memstore: store unavailable")

// Store keeps rows per table. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	news    map[contracts.Source][]contracts.NewsRecord
	bars    map[contracts.Symbol]map[time.Time]contracts.StockBar
	tables  map[string]bool
	failErr error

	// Opened counts Write and Read calls.
	Opened int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		news:   make(map[contracts.Source][]contracts.NewsRecord),
		bars:   make(map[contracts.Symbol]map[time.Time]contracts.StockBar),
		tables: make(map[string]bool),
	}
}

// Fail makes every following Write and Read return err.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *Store) Write(ctx context.Context, fn func(ctx context.Context, w contracts.Writer) error) error {
	if err := s.open(); err != nil {
		return err
	}
	return fn(ctx, s)
}

func (s *Store) Read(ctx context.Context, fn func(ctx context.Context, r contracts.Reader) error) error {
	if err := s.open(); err != nil {
		return err
	}
	return fn(ctx, s)
}

func (s *Store) open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Opened++
	return s.failErr
}

func (s *Store) EnsureNewsTable(_ context.Context, source contracts.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[source.Table()] = true
	return nil
}

func (s *Store) InsertNews(_ context.Context, source contracts.Source, rec contracts.NewsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tables[source.Table()] {
		return errors.New("memstore: relation " + source.Table() + " does not exist")
	}
	s.news[source] = append(s.news[source], rec)
	return nil
}

func (s *Store) EnsureStockTable(_ context.Context, symbol contracts.Symbol) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[symbol.Table()] = true
	if s.bars[symbol] == nil {
		s.bars[symbol] = make(map[time.Time]contracts.StockBar)
	}
	return nil
}

func (s *Store) InsertBar(_ context.Context, symbol contracts.Symbol, bar contracts.StockBar) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tables[symbol.Table()] {
		return false, errors.New("memstore: relation " + symbol.Table() + " does not exist")
	}
	day := contracts.Day(bar.TradingDay)
	if _, ok := s.bars[symbol][day]; ok {
		return false, nil
	}
	bar.TradingDay = day
	s.bars[symbol][day] = bar
	return true, nil
}

func (s *Store) ListScores(_ context.Context, source contracts.Source) ([]contracts.DatedScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.news[source]
	scores := make([]contracts.DatedScore, 0, len(recs))
	for _, r := range recs {
		scores = append(scores, contracts.DatedScore{PublishedAt: r.PublishedAt, Score: r.SentimentScore})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].PublishedAt.Before(scores[j].PublishedAt) })
	return scores, nil
}

func (s *Store) ListBars(_ context.Context, symbol contracts.Symbol) ([]contracts.StockBar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bars := make([]contracts.StockBar, 0, len(s.bars[symbol]))
	for _, b := range s.bars[symbol] {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].TradingDay.Before(bars[j].TradingDay) })
	return bars, nil
}

func (s *Store) Coverage(_ context.Context, table string) (contracts.TableCoverage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cov := contracts.TableCoverage{Table: table, Exists: s.tables[table]}
	var days []time.Time
	for src, recs := range s.news {
		if src.Table() == table {
			for _, r := range recs {
				days = append(days, contracts.Day(r.PublishedAt))
			}
		}
	}
	for sym, bars := range s.bars {
		if sym.Table() == table {
			for d := range bars {
				days = append(days, d)
			}
		}
	}

	cov.Rows = len(days)
	if len(days) == 0 {
		return cov, nil
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	first, last := days[0], days[len(days)-1]
	cov.First, cov.Last = &first, &last
	distinct := map[time.Time]bool{}
	for _, d := range days {
		distinct[d] = true
	}
	cov.Distinct = len(distinct)
	return cov, nil
}

// News returns a copy of the stored records of source.
func (s *Store) News(source contracts.Source) []contracts.NewsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contracts.NewsRecord(nil), s.news[source]...)
}

// SeedNews stores records directly, creating the table.
func (s *Store) SeedNews(source contracts.Source, recs ...contracts.NewsRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[source.Table()] = true
	s.news[source] = append(s.news[source], recs...)
}

// SeedBars stores bars directly, creating the table.
func (s *Store) SeedBars(symbol contracts.Symbol, bars ...contracts.StockBar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[symbol.Table()] = true
	if s.bars[symbol] == nil {
		s.bars[symbol] = make(map[time.Time]contracts.StockBar)
	}
	for _, b := range bars {
		b.TradingDay = contracts.Day(b.TradingDay)
		s.bars[symbol][b.TradingDay] = b
	}
}
