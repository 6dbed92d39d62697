package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "DB 데이터 상태 확인",
	Long: `Shows row counts and date coverage of the three news tables and the
three stock tables, and whether the regression has enough to run.

Example:
  go run ./cmd/newsalpha data-check`,
	RunE: runDataCheck,
}

func init() {
	rootCmd.AddCommand(dataCheckCmd)
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== newsalpha Data Check ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	a, err := newApp(cfg, log, wireOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	snapshot, err := a.quality.Check(context.Background())
	if err != nil {
		return fmt.Errorf("❌ coverage check failed: %w", err)
	}

	fmt.Println("\n📰 News")
	fmt.Println(thin)
	for _, c := range snapshot.News {
		printCoverage(c)
	}

	fmt.Println("\n📈 Stocks")
	fmt.Println(thin)
	for _, c := range snapshot.Stocks {
		printCoverage(c)
	}

	fmt.Println()
	if snapshot.ReadyForRegression() {
		fmt.Println("✅ Ready for regression")
	} else {
		fmt.Println("⚠️  Not ready for regression: every stock table needs rows")
	}
	return nil
}

func printCoverage(c contracts.TableCoverage) {
	if !c.Exists {
		fmt.Printf("  %-28s (missing)\n", c.Table)
		return
	}
	span := "-"
	if c.First != nil && c.Last != nil {
		span = c.First.Format(contracts.DateLayout) + " ~ " + c.Last.Format(contracts.DateLayout)
	}
	fmt.Printf("  %-28s rows=%-6d days=%-5d %s\n", c.Table, c.Rows, c.Distinct, span)
}
