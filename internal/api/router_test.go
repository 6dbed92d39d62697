package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newsalpha/backend/internal/api/handlers"
	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s0_data"
	"github.com/wonny/newsalpha/backend/internal/s0_data/collector"
	"github.com/wonny/newsalpha/backend/internal/s0_data/memstore"
	"github.com/wonny/newsalpha/backend/internal/s0_data/quality"
	"github.com/wonny/newsalpha/backend/internal/s2_analysis"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type stubBars struct {
	bars  map[string][]contracts.StockBar
	calls int
}

func (s *stubBars) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]contracts.StockBar, error) {
	s.calls++
	return s.bars[symbol], nil
}

type testEnv struct {
	store  *memstore.Store
	bars   *stubBars
	hub    *handlers.ProgressHub
	router http.Handler
}

func newTestEnv(t *testing.T, ping error) *testEnv {
	t.Helper()
	log := logger.NewNop()

	store := memstore.New()
	bars := &stubBars{bars: map[string][]contracts.StockBar{}}
	hub := handlers.NewProgressHub(log)

	svc := s2_analysis.NewService(s0_data.NewDatasetLoader(store), nil, time.Minute, log)
	col := collector.NewCollector(log,
		collector.NewStockIngestor(bars, store, collector.Options{Progress: hub}, log),
	).WithInvalidator(svc)

	router := NewRouter(Handlers{
		Ingest:   handlers.NewIngestHandler(col, log),
		Analysis: handlers.NewAnalysisHandler(svc, log),
		Data:     handlers.NewDataHandler(quality.NewQualityGate(store), stubPinger{err: ping}, log),
		Progress: hub,
	}, log)

	return &testEnv{store: store, bars: bars, hub: hub, router: router}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func day(s string) time.Time {
	t, _ := time.Parse(contracts.DateLayout, s)
	return t
}

func TestHealth(t *testing.T) {
	rec := newTestEnv(t, nil).do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = newTestEnv(t, errors.New("connection refused")).do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode(t, rec)["status"])
}

func TestIngestStocks(t *testing.T) {
	env := newTestEnv(t, nil)
	env.bars.bars["NVDA"] = []contracts.StockBar{
		{TradingDay: day("2024-01-02"), Open: 1, High: 2, Low: 1, Close: 1.5},
		{TradingDay: day("2024-01-03"), Open: 1, High: 2, Low: 1, Close: 1.6},
	}

	rec := env.do(http.MethodPost, "/api/ingest/stocks", `{"start_date":"2024-01-01","end_date":"2024-01-05"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "Stock prices data has been updated (2 new rows)", body["message"])

	// second run only hits conflicts
	rec = env.do(http.MethodPost, "/api/ingest/stocks", `{"start_date":"2024-01-01","end_date":"2024-01-05"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Stock prices data has been updated (0 new rows)", decode(t, rec)["message"])
}

func TestIngestOutlivesCaller(t *testing.T) {
	env := newTestEnv(t, nil)
	env.bars.bars["NVDA"] = []contracts.StockBar{{TradingDay: day("2024-01-02"), Open: 1, High: 2, Low: 1, Close: 1.5}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/stocks", strings.NewReader(`{"start_date":"2024-01-01","end_date":"2024-01-05"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bars, err := env.store.ListBars(context.Background(), contracts.SymbolNVDA)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestIngestEmptyRangeSucceeds(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/ingest/stocks", `{"start_date":"2024-02-01","end_date":"2024-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Stock prices data has been updated (0 new rows)", decode(t, rec)["message"])
	assert.Equal(t, 0, env.bars.calls)
	assert.Equal(t, 0, env.store.Opened)
}

func TestIngestBadInput(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/api/ingest/stocks", `{`},
		{"bad date", "/api/ingest/stocks", `{"start_date":"01/02/2024","end_date":"2024-01-05"}`},
		{"missing end", "/api/ingest/stocks", `{"start_date":"2024-01-01"}`},
		{"unknown source", "/api/ingest/reuters", `{"start_date":"2024-01-01","end_date":"2024-01-05"}`},
	}

	env := newTestEnv(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "BAD_REQUEST", decode(t, rec)["code"])
		})
	}
}

func TestIngestAll(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/ingest", `{"start_date":"2024-01-01","end_date":"2024-01-05"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Len(t, body["reports"], 1)
}

func TestRegressionNeedsData(t *testing.T) {
	rec := newTestEnv(t, nil).do(http.MethodGet, "/api/analysis/regression", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Need more data to predict stock prices.", body["error"])
	assert.Equal(t, "INSUFFICIENT_DATA", body["code"])
}

func TestCorrelationReport(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedBars(contracts.SymbolNVDA,
		contracts.StockBar{TradingDay: day("2024-01-01"), Open: 99, High: 101, Low: 98, Close: 100},
		contracts.StockBar{TradingDay: day("2024-01-02"), Open: 100, High: 102, Low: 99, Close: 101},
		contracts.StockBar{TradingDay: day("2024-01-03"), Open: 101, High: 103, Low: 100, Close: 102},
	)
	env.store.SeedNews(contracts.SourceFT, contracts.NewNewsRecord("t", "l", day("2024-01-01"), "Financial Times", "b", 0.5))

	rec := env.do(http.MethodGet, "/api/analysis/correlation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report contracts.CorrelationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t,
		contracts.Correlation{Value: 0, Substituted: true},
		report["FT"]["[FT] concurrent close value - sentiment correlation"],
	)
	assert.Contains(t, report, "news api")
	assert.Contains(t, report, "original")
}

func TestTimelineRescaleParam(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/analysis/timeline?rescale=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/analysis/timeline?rescale=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["rescaled"])
}

func TestStocksAndQuality(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedBars(contracts.SymbolAMD, contracts.StockBar{TradingDay: day("2024-01-02"), Open: 1.234, High: 2, Low: 1, Close: 1.5})

	rec := env.do(http.MethodGet, "/api/analysis/stocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cmp contracts.StockComparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cmp))
	require.Len(t, cmp["AMD"], 1)
	assert.Equal(t, 1.23, cmp["AMD"][0].Open)

	rec = env.do(http.MethodGet, "/api/data/quality", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["ready_for_regression"])
	assert.Len(t, body["stocks"], 3)
}

func TestNotFound(t *testing.T) {
	rec := newTestEnv(t, nil).do(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgressStream(t *testing.T) {
	env := newTestEnv(t, nil)
	server := httptest.NewServer(env.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/ingest"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	env.hub.Publish(contracts.ProgressEvent{Kind: contracts.ProgressStarted, Target: "stocks"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev contracts.ProgressEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, contracts.ProgressStarted, ev.Kind)
	assert.Equal(t, "stocks", ev.Target)
}

func TestProgressHubClose(t *testing.T) {
	env := newTestEnv(t, nil)
	server := httptest.NewServer(env.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/ingest"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	env.hub.Close()
	assert.Equal(t, 0, env.hub.Subscribers())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
