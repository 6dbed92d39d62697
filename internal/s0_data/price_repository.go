package s0_data

import (
	"context"
	"fmt"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/database"
)

// StockRepository reads and writes the per-symbol bar tables.
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type StockRepository struct {
	db database.DBTX
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db database.DBTX) *StockRepository {
	return &StockRepository{db: db}
}

// EnsureStockTable creates the symbol table if it is missing.
func (r *StockRepository) EnsureStockTable(ctx context.Context, symbol contracts.Symbol) error {
	table := symbol.Table()
	query := `
		CREATE TABLE IF NOT EXISTS ` + quote(table) + ` (
			date DATE PRIMARY KEY,
			open FLOAT NOT NULL,
			high FLOAT NOT NULL,
			low FLOAT NOT NULL,
			close FLOAT NOT NULL,
			volume FLOAT NOT NULL
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// InsertBar stores a bar unless one already exists for that day. Existing
// rows are never touched.
func (r *StockRepository) InsertBar(ctx context.Context, symbol contracts.Symbol, bar contracts.StockBar) (bool, error) {
	table := symbol.Table()
	query := `
		INSERT INTO ` + quote(table) + ` (date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		contracts.Day(bar.TradingDay),
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
	)
	if err != nil {
		return false, fmt.Errorf("insert into %s: %w", table, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListBars returns every bar of the symbol, oldest first.
func (r *StockRepository) ListBars(ctx context.Context, symbol contracts.Symbol) ([]contracts.StockBar, error) {
	table := symbol.Table()

	exists, err := tableExists(ctx, r.db, table)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", table, err)
	}
	if !exists {
		return nil, nil
	}

	query := `
		SELECT date, open, high, low, close, volume
		FROM ` + quote(table) + `
		ORDER BY date ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var bars []contracts.StockBar
	for rows.Next() {
		var b contracts.StockBar
		if err := rows.Scan(&b.TradingDay, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		b.TradingDay = contracts.Day(b.TradingDay)
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
