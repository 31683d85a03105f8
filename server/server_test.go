package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/catalog/entities"
	"github.com/carerx/drug-advisor-api/config"
	"github.com/carerx/drug-advisor-api/engine"
	"github.com/carerx/drug-advisor-api/handlers"
	"github.com/carerx/drug-advisor-api/interfaces"
	"github.com/carerx/drug-advisor-api/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "server-test-logs")
	if err != nil {
		panic(err)
	}
	logging.InitLogger(dir, 1, 10*1024*1024)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

type memLedger struct {
	rows []interfaces.CostImpact
}

func (m *memLedger) Append(originalCost, reducedCost float64) error {
	m.rows = append(m.rows, interfaces.CostImpact{OriginalCost: originalCost, ReducedCost: reducedCost})
	return nil
}
func (m *memLedger) Summary() (interfaces.CostSummary, error) {
	return interfaces.CostSummary{}, nil
}
func (m *memLedger) Records() ([]interfaces.CostImpact, error) { return m.rows, nil }
func (m *memLedger) Clear() error                              { m.rows = nil; return nil }
func (m *memLedger) Close() error                              { return nil }

func sp(s string) *string   { return &s }
func fp(v float64) *float64 { return &v }

func testConfig() *config.Config {
	return &config.Config{
		Port:           "8000",
		Address:        "127.0.0.1",
		Env:            "test",
		LogLevel:       "info",
		MaxRequestBody: 1024,
	}
}

func testServer() *Server {
	records := []entities.DrugRecord{
		{
			DrugName:                   "DRUG A",
			GenericName:                sp("GEN1"),
			TherapeuticClass:           "Class",
			PMPMCost:                   fp(10),
			AvgAge:                     fp(55),
			TherapeuticEquivalenceCode: "AB",
			DrugInteractions:           entities.NoInteractionData,
			ClinicalEfficacy:           entities.NoEfficacyData,
		},
	}
	ledger := &memLedger{}
	eng := engine.New(catalog.New(records), engine.Deps{Ledger: ledger})
	return NewServer(testConfig(), handlers.NewHTTPHandler(eng, ledger))
}

func TestNewServer(t *testing.T) {
	srv := testServer()

	if srv.router == nil {
		t.Fatal("router not initialized")
	}
	if srv.server == nil {
		t.Fatal("http server not initialized")
	}
	if srv.server.Addr != "127.0.0.1:8000" {
		t.Errorf("addr = %q, want 127.0.0.1:8000", srv.server.Addr)
	}
	if srv.server.ReadTimeout == 0 || srv.server.WriteTimeout == 0 {
		t.Error("server timeouts not configured")
	}
}

func TestRoutes(t *testing.T) {
	srv := testServer()

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/drugs", http.StatusOK},
		{"GET", "/api/drug-stats", http.StatusOK},
		{"GET", "/api/drugs/page/1", http.StatusOK},
		{"GET", "/api/cia/summary", http.StatusOK},
		{"GET", "/api/cia/records", http.StatusOK},
		{"DELETE", "/api/cia/clear", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/no/such/route", http.StatusNotFound},
		{"GET", "/api/recommend", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			srv.router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestRecommendThroughRouter(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest("POST", "/api/recommend", strings.NewReader(`{"drug_names": ["DRUG A"]}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "recommended_drugs") {
		t.Errorf("body missing recommended_drugs: %s", rr.Body.String())
	}
}

func TestRateLimitHeaders(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-RateLimit-Limit"); got != "1000" {
		t.Errorf("X-RateLimit-Limit = %q, want 1000", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got == "" {
		t.Error("X-RateLimit-Remaining header missing")
	}
}

func TestRateLimitExhaustion(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Fresh client IP with a 1000-token bucket; /api/drugs costs 200.
	var lastStatus int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("GET", "/api/drugs", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		lastStatus = rr.Code
	}

	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("status after exhaustion = %d, want 429", lastStatus)
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	handler := RequestSizeMiddleware(testConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRequest("POST", "/api/recommend", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, small)
	if rr.Code != http.StatusOK {
		t.Errorf("small request status = %d, want 200", rr.Code)
	}

	big := httptest.NewRequest("POST", "/api/recommend", strings.NewReader(strings.Repeat("x", 2048)))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized request status = %d, want 413", rr.Code)
	}
}

func TestRealIPMiddleware(t *testing.T) {
	var seen string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "203.0.113.9" {
		t.Errorf("RemoteAddr = %q, want first forwarded IP", seen)
	}
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		path string
		want int64
	}{
		{"/health", 5},
		{"/metrics", 5},
		{"/api/drugs", 200},
		{"/api/drugs/page/2", 20},
		{"/api/drug-stats", 20},
		{"/api/recommend", 100},
		{"/api/cia/summary", 20},
		{"/anything/else", 20},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.path, nil)
		if got := getTokenCost(req); got != tt.want {
			t.Errorf("getTokenCost(%s) = %d, want %d", tt.path, got, tt.want)
		}
	}
}
