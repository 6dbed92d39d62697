package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/newsalpha/backend/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "PostgreSQL 연결 테스트",
	Long: `Tests the database connection.

This command:
- resolves the URL (DATABASE_URL, otherwise the secrets file)
- opens a connection and pings it
- runs the health check and prints the server version

Example:
  go run ./cmd/newsalpha test-db
  go run ./cmd/newsalpha test-db --config ./.secrets/keys.toml`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== newsalpha Database Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return fmt.Errorf("❌ Failed to resolve database URL: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(dsn))

	db, err := database.NewFromURL(dsn, cfg.Database.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("❌ Invalid database URL: %w", err)
	}

	fmt.Println("Testing connection (Ping)...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("❌ Failed to ping database: %w", err)
	}
	fmt.Println("✅ Ping successful")

	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Host: %s\n", status.Host)
	fmt.Printf("   Database: %s\n", status.Database)
	fmt.Printf("   Server: %s\n", status.ServerVersion)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n", status.Timestamp.Format(time.RFC3339))

	fmt.Println("\n✅ All tests passed!")
	return nil
}

// maskPassword hides the password of a connection URL for display.
func maskPassword(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "(unparseable url)"
	}
	return u.Redacted()
}
