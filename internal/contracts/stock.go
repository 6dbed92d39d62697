package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Symbol is a tracked ticker.
type Symbol string

const (
	SymbolNVDA Symbol = "NVDA"
	SymbolAAPL Symbol = "AAPL"
	SymbolAMD  Symbol = "AMD"
)

// Symbols lists the tickers in ingestion order.
var Symbols = []Symbol{SymbolNVDA, SymbolAAPL, SymbolAMD}

// Table returns the per-symbol bar table.
func (s Symbol) Table() string {
	return strings.ToLower(string(s)) + "_stock_values"
}

// ParseSymbol validates a ticker against the tracked set.
func ParseSymbol(s string) (Symbol, error) {
	sym := Symbol(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Symbols {
		if sym == known {
			return sym, nil
		}
	}
	return "", fmt.Errorf("%w: unknown symbol %q", ErrInvalidInput, s)
}

// StockBar is one daily OHLCV bar. TradingDay is midnight UTC.
type StockBar struct {
	TradingDay time.Time `json:"trading_day"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     float64   `json:"volume"`
}

// Mean is the midpoint of the day's range.
func (b StockBar) Mean() float64 {
	return (b.High + b.Low) / 2
}
