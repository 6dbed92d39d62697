package logger_test

import (
	"errors"

	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg).Component("collector")

	log.WithFields(map[string]any{
		"source": "ft",
		"page":   3,
	}).Info("Page scraped")

	log.WithError(errors.New("connection reset")).Warn("Page fetch failed, continuing")
}
