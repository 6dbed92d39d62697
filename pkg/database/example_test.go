package database_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/database"
)

// Example demonstrates scoped, per-call connections
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("Failed to build factory: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.WithConn(ctx, func(ctx context.Context, conn database.DBTX) error {
		var n int
		return conn.QueryRow(ctx, "SELECT count(*) FROM nvda_stock_values").Scan(&n)
	})
	if err != nil {
		fmt.Printf("Query failed: %v\n", err)
	}
}
