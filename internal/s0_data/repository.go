package s0_data

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/database"
)

// Store implements contracts.Gateway on top of a per-call connection
// factory. Every Write or Read dials once and closes on return.
// ⭐ SSOT: 뉴스/시세 테이블 접근은 이 Store를 통해서만
type Store struct {
	factory *database.Factory
}

// NewStore creates a new Store
func NewStore(factory *database.Factory) *Store {
	return &Store{factory: factory}
}

// Write runs fn with write access on a fresh connection.
func (s *Store) Write(ctx context.Context, fn func(ctx context.Context, w contracts.Writer) error) error {
	return s.factory.WithConn(ctx, func(ctx context.Context, db database.DBTX) error {
		return fn(ctx, newSession(db))
	})
}

// Read runs fn with read access on a fresh connection.
func (s *Store) Read(ctx context.Context, fn func(ctx context.Context, r contracts.Reader) error) error {
	return s.factory.WithConn(ctx, func(ctx context.Context, db database.DBTX) error {
		return fn(ctx, newSession(db))
	})
}

// session binds both repositories to one connection.
type session struct {
	*NewsRepository
	*StockRepository
	db database.DBTX
}

func newSession(db database.DBTX) *session {
	return &session{
		NewsRepository:  NewNewsRepository(db),
		StockRepository: NewStockRepository(db),
		db:              db,
	}
}

// Coverage reports row count and date span of any of the six tables.
func (s *session) Coverage(ctx context.Context, table string) (contracts.TableCoverage, error) {
	return tableCoverage(ctx, s.db, table)
}

// tableExists checks the catalog so reads of a never-written table return
// nothing instead of failing.
func tableExists(ctx context.Context, db database.DBTX, table string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
	return exists, err
}

func quote(table string) string {
	return pgx.Identifier{table}.Sanitize()
}

func tableCoverage(ctx context.Context, db database.DBTX, table string) (contracts.TableCoverage, error) {
	cov := contracts.TableCoverage{Table: table}

	exists, err := tableExists(ctx, db, table)
	if err != nil {
		return cov, err
	}
	if !exists {
		return cov, nil
	}
	cov.Exists = true

	query := `SELECT COUNT(*), MIN(date::date), MAX(date::date), COUNT(DISTINCT date::date) FROM ` + quote(table)
	err = db.QueryRow(ctx, query).Scan(&cov.Rows, &cov.First, &cov.Last, &cov.Distinct)
	return cov, err
}
