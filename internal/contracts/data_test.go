package contracts

import (
	"errors"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
		empty   bool
		days    int
	}{
		{name: "single day", start: "2024-01-05", end: "2024-01-05", days: 1},
		{name: "week", start: "2024-01-01", end: "2024-01-07", days: 7},
		{name: "inverted is empty", start: "2024-01-10", end: "2024-01-01", empty: true},
		{name: "bad start", start: "01/01/2024", end: "2024-01-01", wantErr: true},
		{name: "bad end", start: "2024-01-01", end: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseDateRange(tt.start, tt.end)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("ParseDateRange() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDateRange() unexpected error: %v", err)
			}
			if r.Empty() != tt.empty {
				t.Errorf("Empty() = %v, want %v", r.Empty(), tt.empty)
			}
			if got := len(r.Days()); got != tt.days {
				t.Errorf("len(Days()) = %d, want %d", got, tt.days)
			}
		})
	}
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{Start: day("2024-03-01"), End: day("2024-03-03")}

	inside := time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC)
	if !r.Contains(inside) {
		t.Errorf("Contains(%v) = false, want true", inside)
	}
	if r.Contains(day("2024-03-04")) {
		t.Error("Contains(2024-03-04) = true, want false")
	}
	if r.Contains(day("2024-02-29")) {
		t.Error("Contains(2024-02-29) = true, want false")
	}
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{0.4, LabelPositive},
		{0.0001, LabelPositive},
		{0, LabelNeutral},
		{-0.2, LabelNegative},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestNewNewsRecord_LabelMatchesScore(t *testing.T) {
	rec := NewNewsRecord("t", "https://x", day("2024-01-02"), "NVIDIA", "body", -0.3)
	if rec.SentimentLabel != LabelNegative {
		t.Errorf("SentimentLabel = %v, want Negative", rec.SentimentLabel)
	}
}

func TestSource_Tables(t *testing.T) {
	want := map[Source]string{
		SourceFT:      "nvidia_fintimes_scrape",
		SourceNvidia:  "nvidia_originalsite_scrape",
		SourceFinnhub: "nvidia_news_api",
	}
	for src, table := range want {
		if got := src.Table(); got != table {
			t.Errorf("%s.Table() = %q, want %q", src, got, table)
		}
	}
	if SymbolNVDA.Table() != "nvda_stock_values" {
		t.Errorf("SymbolNVDA.Table() = %q", SymbolNVDA.Table())
	}
}

func TestParseSource(t *testing.T) {
	if s, err := ParseSource(" FT "); err != nil || s != SourceFT {
		t.Errorf("ParseSource(FT) = %v, %v", s, err)
	}
	if _, err := ParseSource("reuters"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseSource(reuters) error = %v, want ErrInvalidInput", err)
	}
	if _, err := ParseSymbol("tsla"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseSymbol(tsla) error = %v, want ErrInvalidInput", err)
	}
}

func TestDataQualitySnapshot_CoverageRate(t *testing.T) {
	snapshot := DataQualitySnapshot{
		News: []TableCoverage{
			{Table: "nvidia_news_api", Rows: 10},
			{Table: "nvidia_fintimes_scrape", Rows: 0},
		},
		Stocks: []TableCoverage{
			{Table: "nvda_stock_values", Rows: 5},
			{Table: "aapl_stock_values", Rows: 5},
		},
	}

	if got := snapshot.CoverageRate(); got != 0.75 {
		t.Errorf("CoverageRate() = %v, want 0.75", got)
	}
	if !snapshot.ReadyForRegression() {
		t.Error("ReadyForRegression() = false, want true")
	}

	snapshot.Stocks[1].Rows = 0
	if snapshot.ReadyForRegression() {
		t.Error("ReadyForRegression() = true with an empty stock table")
	}

	empty := DataQualitySnapshot{}
	if got := empty.CoverageRate(); got != 0 {
		t.Errorf("empty CoverageRate() = %v, want 0", got)
	}
}

func TestIngestReport_Message(t *testing.T) {
	r := IngestReport{Target: "Financial Times", Inserted: 4}
	if got := r.Message(); got != "Financial Times data has been updated (4 new rows)" {
		t.Errorf("Message() = %q", got)
	}

	r.Succeeded, r.Failed = 5, 2
	if got := r.Message(); got != "Financial Times data has been updated (4 new rows); 2 of 7 units failed" {
		t.Errorf("Message() = %q", got)
	}
}
