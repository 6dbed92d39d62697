package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

const (
	rule = "═══════════════════════════════════════════════════════════"
	thin = "───────────────────────────────────────────────────────────"
)

// printHeader prints a job title and its parameters, sorted by key.
func printHeader(title string, params map[string]string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println()
	fmt.Println(rule)
	fmt.Printf("  %s\n", title)
	fmt.Println(thin)
	for _, k := range keys {
		fmt.Printf("  %-10s: %s\n", k, params[k])
	}
	fmt.Println(thin)
}

func printReport(r contracts.IngestReport) {
	fmt.Printf("  %-22s inserted=%d skipped=%d units=%d failed=%d (%s)\n",
		r.Target, r.Inserted, r.Skipped, r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond))
}

func printCompletion(d time.Duration) {
	fmt.Println()
	fmt.Printf("✅ Completed in %.2fs\n", d.Seconds())
	fmt.Println(rule)
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
