package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <regression|correlation|timeline|stocks>",
	Short: "감성 - 주가 분석 실행",
	Long: `Runs one analysis routine over the stored data and prints the result as JSON.

Routines:
  regression   - NVDA close on daily sentiment and AMD/AAPL closes (in-sample)
  correlation  - Pearson coefficients per source, rounded to 2 decimals
  timeline     - daily mean sentiment per source next to the NVDA close
  stocks       - NVDA, AAPL and AMD bars rounded to cents

Example:
  go run ./cmd/newsalpha analyze regression
  go run ./cmd/newsalpha analyze timeline --rescale`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"regression", "correlation", "timeline", "stocks"},
	RunE:      runAnalyze,
}

var analyzeRescale bool

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeRescale, "rescale", false, "timeline: map each sentiment series onto [-1, 1]")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()

	var out any
	switch args[0] {
	case "regression":
		var res *contracts.RegressionResult
		res, err = a.analysis.Regression(ctx)
		out = map[string]any{"evaluation": "in-sample", "result": res}
	case "correlation":
		out, err = a.analysis.Correlation(ctx)
	case "timeline":
		out, err = a.analysis.Timeline(ctx, analyzeRescale)
	case "stocks":
		out, err = a.analysis.StockComparison(ctx)
	default:
		return fmt.Errorf("unknown routine %q", args[0])
	}

	if errors.Is(err, contracts.ErrInsufficientData) {
		fmt.Println("Need more data to predict stock prices.")
		return err
	}
	if err != nil {
		return fmt.Errorf("❌ %s failed: %w", args[0], err)
	}
	return printJSON(out)
}
