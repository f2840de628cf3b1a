package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/namvh1209/posture-cli/internal/scanner"
)

// fakeScanService returns a canned scan without touching the network.
type fakeScanService struct {
	scan   *scanner.Scan
	err    error
	target string
	calls  int
}

func (f *fakeScanService) RunScan(ctx context.Context, target string) (*scanner.Scan, error) {
	f.calls++
	f.target = target
	if f.err != nil {
		return nil, f.err
	}
	return f.scan, nil
}

func sampleScan() *scanner.Scan {
	return &scanner.Scan{
		ID:    "scan_abc123",
		URL:   "https://example.com",
		Score: 90,
		Findings: []scanner.Finding{
			{Key: "hsts", Status: scanner.StatusPass, Title: "HTTP Strict Transport Security"},
		},
	}
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = zaptest.NewLogger(t)
	}
	return NewServer(cfg)
}

func doRequest(srv *Server, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScanService{}})
	for _, path := range []string{"/api/v1/health", "/health"} {
		rec := doRequest(srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON from %s: %v", path, err)
		}
		if body["status"] != "ok" {
			t.Errorf("health body = %v", body)
		}
	}
}

func TestScan_InvalidBodyRejected(t *testing.T) {
	fake := &fakeScanService{scan: sampleScan()}
	srv := newTestServer(t, Config{Scans: fake})

	rec := doRequest(srv, http.MethodPost, "/api/v1/scan", "{not json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
	if fake.calls != 0 {
		t.Error("scan service must not run for a malformed body")
	}
}

func TestScan_InvalidTargetRejected(t *testing.T) {
	fake := &fakeScanService{scan: sampleScan()}
	srv := newTestServer(t, Config{Scans: fake})

	rec := doRequest(srv, http.MethodPost, "/api/v1/scan", `{"url":"not-a-url"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid target, got %d", rec.Code)
	}
	if fake.calls != 0 {
		t.Error("scan service must not run for an invalid target")
	}
}

func TestScan_SuccessStoresResult(t *testing.T) {
	fake := &fakeScanService{scan: sampleScan()}
	store := NewScanStore()
	srv := newTestServer(t, Config{Scans: fake, Store: store})

	rec := doRequest(srv, http.MethodPost, "/api/v1/scan", `{"url":"https://example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fake.target != "https://example.com" {
		t.Errorf("service got target %q", fake.target)
	}
	var got scanner.Scan
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid scan JSON: %v", err)
	}
	if got.ID != "scan_abc123" || got.Score != 90 {
		t.Errorf("unexpected scan in response: %+v", got)
	}
	if stored, ok := store.Latest(); !ok || stored.ID != "scan_abc123" {
		t.Error("scan was not stored")
	}
}

func TestScan_ServiceErrorIsSanitized(t *testing.T) {
	fake := &fakeScanService{err: errors.New("dial tcp 10.0.0.1: connection refused")}
	srv := newTestServer(t, Config{Scans: fake})

	rec := doRequest(srv, http.MethodPost, "/api/v1/scan", `{"url":"https://example.com"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Errorf("internal error details leaked to client: %s", rec.Body.String())
	}
}

func TestScanByID(t *testing.T) {
	store := NewScanStore()
	store.Put(sampleScan())
	srv := newTestServer(t, Config{Scans: &fakeScanService{}, Store: store})

	t.Run("matching id", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/v1/scan/scan_abc123", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for matching id, got %d", rec.Code)
		}
	})
	t.Run("latest alias", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/v1/scan/latest", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for latest, got %d", rec.Code)
		}
	})
	t.Run("unversioned alias", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/scan/scan_abc123", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 on unversioned path, got %d", rec.Code)
		}
	})
	t.Run("wrong id", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/v1/scan/scan_other", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for non-matching id, got %d", rec.Code)
		}
	})
}

func TestScanByID_EmptyStore(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScanService{}})
	rec := doRequest(srv, http.MethodGet, "/api/v1/scan/latest", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before any scan, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScanService{}})
	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/scan"},
		{http.MethodPost, "/api/v1/scan/latest"},
		{http.MethodPost, "/api/v1/health"},
	}
	for _, tc := range cases {
		rec := doRequest(srv, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", tc.method, tc.path, rec.Code)
		}
	}
}

func TestAuth(t *testing.T) {
	fake := &fakeScanService{scan: sampleScan()}
	srv := newTestServer(t, Config{Scans: fake, AuthToken: "secret-token"})

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/v1/scan", `{"url":"https://example.com"}`, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 without token, got %d", rec.Code)
		}
	})
	t.Run("wrong token", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-Auth-Token", "wrong")
		rec := doRequest(srv, http.MethodPost, "/api/v1/scan", `{"url":"https://example.com"}`, h)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 with wrong token, got %d", rec.Code)
		}
	})
	t.Run("correct token", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-Auth-Token", "secret-token")
		rec := doRequest(srv, http.MethodPost, "/api/v1/scan", `{"url":"https://example.com"}`, h)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 with correct token, got %d", rec.Code)
		}
	})
	t.Run("health stays open", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/health", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected health to skip auth, got %d", rec.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScanService{}, RateLimit: 1, RateBurst: 1})

	first := doRequest(srv, http.MethodGet, "/health", "", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first request = %d", first.Code)
	}
	second := doRequest(srv, http.MethodGet, "/health", "", nil)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %d", second.Code)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScanService{}, CORSOrigins: []string{"https://dashboard.example.com"}})

	t.Run("allowed origin echoed", func(t *testing.T) {
		h := http.Header{}
		h.Set("Origin", "https://dashboard.example.com")
		rec := doRequest(srv, http.MethodGet, "/health", "", h)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})
	t.Run("unknown origin gets nothing", func(t *testing.T) {
		h := http.Header{}
		h.Set("Origin", "https://evil.example.com")
		rec := doRequest(srv, http.MethodGet, "/health", "", h)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("unexpected Allow-Origin %q for unknown origin", got)
		}
	})
	t.Run("preflight", func(t *testing.T) {
		h := http.Header{}
		h.Set("Origin", "https://dashboard.example.com")
		rec := doRequest(srv, http.MethodOptions, "/api/v1/scan", "", h)
		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight = %d, want 204", rec.Code)
		}
	})
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScanService{}})

	h := http.Header{}
	h.Set("X-Request-ID", "req-42")
	rec := doRequest(srv, http.MethodGet, "/health", "", h)
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected supplied request id to be echoed, got %q", got)
	}

	rec = doRequest(srv, http.MethodGet, "/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id header")
	}
}

func TestClientAddress(t *testing.T) {
	cases := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{"plain remote", "10.1.2.3:5555", "", "10.1.2.3"},
		{"forwarded single", "10.1.2.3:5555", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain", "10.1.2.3:5555", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := clientAddress(req); got != tc.want {
				t.Errorf("clientAddress = %q, want %q", got, tc.want)
			}
		})
	}
}
