package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"ZScout/internal/domain/models"
	"ZScout/internal/repository"
	"ZScout/internal/usecase"
	"ZScout/pkg/logger"
)

func newTestAPI(t *testing.T) (*echo.Echo, *repository.Store) {
	t.Helper()

	store, err := repository.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := NewResultsEchoHandler(
		logger.Nop(),
		usecase.NewScreener(store, -2),
		usecase.NewResultReader(store),
	)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, store
}

func seedResult(t *testing.T, store *repository.Store, symbol string, z float64) {
	t.Helper()
	err := store.UpsertNormal(context.Background(), &models.NormalResult{
		Symbol:      symbol,
		Mean:        100,
		StdDev:      2,
		LatestPrice: 100 + 2*z,
		ZScore:      z,
		AsOf:        time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("upsert %s: %v", symbol, err)
	}
}

func doRequest(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCandidatesEndpoint(t *testing.T) {
	e, store := newTestAPI(t)
	seedResult(t, store, "DEEP", -3)
	seedResult(t, store, "NEAR", -0.5)

	rec := doRequest(e, "/api/candidates")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status int `json:"status"`
		Data   struct {
			Rows  []models.Candidate `json:"rows"`
			Total int64              `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 1 || len(resp.Data.Rows) != 1 {
		t.Fatalf("default threshold -2 must return only DEEP, got %+v", resp.Data)
	}
	if resp.Data.Rows[0].Symbol != "DEEP" {
		t.Fatalf("expected DEEP, got %s", resp.Data.Rows[0].Symbol)
	}

	rec = doRequest(e, "/api/candidates?max_z=0")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 2 {
		t.Fatalf("threshold 0 must return both rows, got %+v", resp.Data)
	}
}

func TestCandidatesRejectsPositiveThreshold(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doRequest(e, "/api/candidates?max_z=1.5")
	if rec.Code != http.StatusOK {
		t.Fatalf("envelope responses always carry 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ERR_LTE") {
		t.Fatalf("expected validation error, got %s", rec.Body.String())
	}
}

func TestResultEndpoint(t *testing.T) {
	e, store := newTestAPI(t)
	seedResult(t, store, "AAPL", -2.5)

	rec := doRequest(e, "/api/results/aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data models.NormalResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Symbol != "AAPL" || resp.Data.ZScore != -2.5 {
		t.Fatalf("unexpected result: %+v", resp.Data)
	}

	rec = doRequest(e, "/api/results/NOPE")
	if !strings.Contains(rec.Body.String(), "404") && !strings.Contains(rec.Body.String(), "Not Found") {
		t.Fatalf("expected not-found envelope, got %s", rec.Body.String())
	}
}

func TestSummaryEndpoint(t *testing.T) {
	e, store := newTestAPI(t)
	seedResult(t, store, "AAPL", -1)
	if err := store.UpsertAbnormal(context.Background(), "ZZZZ", models.ReasonFetchFailed, time.Now()); err != nil {
		t.Fatalf("upsert abnormal: %v", err)
	}

	rec := doRequest(e, "/api/summary")
	var resp struct {
		Data usecase.ResultCounts `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Normal != 1 || resp.Data.Abnormal != 1 || resp.Data.Total != 2 {
		t.Fatalf("unexpected counts: %+v", resp.Data)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestAPI(t)
	rec := doRequest(e, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
