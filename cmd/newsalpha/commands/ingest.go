package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <ft|nvidia|finnhub|stocks|all>",
	Short: "뉴스/주가 데이터 수집",
	Long: `Runs one ingestor, or all of them in order, over an inclusive date range.

Rows already stored are skipped, so re-running a range is safe.
With --dry-run nothing is written to PostgreSQL.

Example:
  go run ./cmd/newsalpha ingest ft --from 2024-01-01 --to 2024-01-31
  go run ./cmd/newsalpha ingest all --from 2024-03-01
  go run ./cmd/newsalpha ingest stocks --dry-run`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"ft", "nvidia", "finnhub", "stocks", "all"},
	RunE:      runIngest,
}

var (
	ingestFrom   string
	ingestTo     string
	ingestDryRun bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFrom, "from", "", "start date YYYY-MM-DD (default: --to)")
	ingestCmd.Flags().StringVar(&ingestTo, "to", "", "end date YYYY-MM-DD, inclusive (default: today)")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "keep rows in memory instead of PostgreSQL")
}

func runIngest(cmd *cobra.Command, args []string) error {
	target := strings.ToLower(args[0])

	r, err := ingestRange(ingestFrom, ingestTo, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	a, err := newApp(cfg, log, wireOptions{
		dryRun:   ingestDryRun,
		ingest:   true,
		progress: contracts.ProgressFunc(printProgress),
	})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printHeader("Ingestion", map[string]string{
		"Target": target,
		"Period": r.String(),
	})
	start := time.Now()

	var reports []contracts.IngestReport
	if target == "all" {
		reports, err = a.collector.RunAll(ctx, r)
	} else {
		var report contracts.IngestReport
		report, err = a.collector.Run(ctx, target, r)
		reports = append(reports, report)
	}

	for _, report := range reports {
		printReport(report)
	}
	if err != nil {
		return fmt.Errorf("❌ ingestion failed: %w", err)
	}

	printCompletion(time.Since(start))
	return nil
}

// ingestRange resolves the --from/--to flags. An empty --to means today
// and an empty --from means the same day as --to.
func ingestRange(from, to string, now time.Time) (contracts.DateRange, error) {
	if to == "" {
		to = now.UTC().Format(contracts.DateLayout)
	}
	if from == "" {
		from = to
	}
	return contracts.ParseDateRange(from, to)
}

func printProgress(ev contracts.ProgressEvent) {
	switch ev.Kind {
	case contracts.ProgressWarning:
		fmt.Printf("[%s] ⚠️  %s: %s\n", ev.Target, ev.Unit, ev.Message)
	case contracts.ProgressPage:
		fmt.Printf("[%s] %s done (%d new rows)\n", ev.Target, ev.Unit, ev.Inserted)
	case contracts.ProgressStarted:
		fmt.Printf("[%s] started %s\n", ev.Target, ev.Message)
	case contracts.ProgressFinished:
		fmt.Printf("[%s] %s\n", ev.Target, ev.Message)
	}
}
