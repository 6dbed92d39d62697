package main

import (
	"os"

	"github.com/wonny/newsalpha/backend/cmd/newsalpha/commands"
)

// main is the entry point for the newsalpha CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/newsalpha [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
