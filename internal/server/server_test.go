package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

type fakeRuns struct {
	runs []*store.Run
}

func (f *fakeRuns) List(_ context.Context, flt store.Filter) ([]*store.Run, error) {
	var out []*store.Run
	for _, r := range f.runs {
		if flt.TenantID == "" || r.TenantID == flt.TenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuns) Get(_ context.Context, id string) (*store.Run, error) {
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.NewNotFoundError("run", id)
}

func newTestServer(t *testing.T, cfg Config, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	rec, err := reconcile.New()
	require.NoError(t, err)
	srv, err := New(rec, logging.NewNopLogger(), cfg, opts...)
	require.NoError(t, err)
	return srv, srv.Handler()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	return cfg
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, testConfig(), WithVersion("1.2.3"))

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := do(h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "fieldeval", body["service"])
		assert.Equal(t, "1.2.3", body["version"])
	}
	assert.NotEmpty(t, do(h, http.MethodGet, "/health", "").Header().Get("X-Request-ID"))
}

func TestReconcile(t *testing.T) {
	srv, h := newTestServer(t, testConfig())
	body := `{
		"reference": {"Delimiter": ",", "Encoding": "utf8", "tenantId": "t1"},
		"candidates": [{"Delimiter": ",", "Quote": "'"}],
		"catalogue": ["skiprows"]
	}`

	w := do(h, http.MethodPost, "/api/v1/reconcile", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res reconcile.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	fields := make(map[string]reconcile.Row)
	for _, row := range res.Rows {
		fields[string(row.Field)] = row
	}
	assert.Len(t, res.Rows, 4)
	assert.NotContains(t, fields, "tenantid")
	assert.Equal(t, classify.StatusMatch, fields["delimiter"].Cells[0].Outcome.Status)
	assert.Equal(t, classify.StatusCandidateAbsent, fields["encoding"].Cells[0].Outcome.Status)
	assert.Equal(t, classify.StatusReferenceAbsent, fields["quote"].Cells[0].Outcome.Status)
	assert.Equal(t, classify.StatusBothAbsent, fields["skiprows"].Cells[0].Outcome.Status)

	require.Len(t, res.Metrics, 1)
	assert.Equal(t, 1, res.Metrics[0].ExtraFields)

	// An identical request is served from the cache.
	w = do(h, http.MethodPost, "/api/v1/reconcile", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), srv.Cache().Stats().Hits)
}

func TestReconcileErrors(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `{"reference":`, http.StatusBadRequest},
		{"no candidates", `{"reference": {"a": 1}, "candidates": []}`, http.StatusBadRequest},
		{"missing reference", `{"candidates": [{"a": 1}]}`, http.StatusUnprocessableEntity},
		{"empty reference", `{"reference": {}, "candidates": [{"a": 1}]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/v1/reconcile", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRunsEndpoints(t *testing.T) {
	runs := &fakeRuns{runs: []*store.Run{
		{ID: "r1", TenantID: "t1", StartedAt: time.Unix(0, 0).UTC()},
		{ID: "r2", TenantID: "t2", StartedAt: time.Unix(0, 0).UTC()},
	}}
	_, h := newTestServer(t, testConfig(), WithRunHistory(runs))

	w := do(h, http.MethodGet, "/api/v1/runs?tenant=t1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Runs  []store.Run `json:"runs"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "r1", list.Runs[0].ID)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/runs/r2", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/v1/runs/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/v1/runs?limit=x", "").Code)
}

func TestRunsDisabled(t *testing.T) {
	_, h := newTestServer(t, testConfig())
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/v1/runs", "").Code)
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.AuthEnabled = true
	cfg.APIKey = "secret"
	_, h := newTestServer(t, cfg)

	body := `{"reference": {"a": 1}, "candidates": [{"a": 1}]}`
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/v1/reconcile", body).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/reconcile", body, "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/reconcile", body, "Authorization", "Bearer secret").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/health", "").Code)
}

func TestAuthRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.AuthEnabled = true
	rec, err := reconcile.New()
	require.NoError(t, err)
	_, err = New(rec, logging.NewNopLogger(), cfg)
	require.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 2
	_, h := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/health", "").Code)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.CORSEnabled = true
	cfg.CORSOrigins = []string{"https://app.example.com"}
	_, h := newTestServer(t, cfg)

	w := do(h, http.MethodOptions, "/api/v1/reconcile", "", "Origin", "https://app.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(h, http.MethodGet, "/health", "", "Origin", "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRequiresReconciler(t *testing.T) {
	_, err := New(nil, logging.NewNopLogger(), testConfig())
	require.Error(t, err)
}

func TestParseAddr(t *testing.T) {
	tests := []struct {
		addr    string
		host    string
		port    int
		wantErr bool
	}{
		{addr: ":8080", host: "", port: 8080},
		{addr: "0.0.0.0:9000", host: "0.0.0.0", port: 9000},
		{addr: "[::1]:80", host: "::1", port: 80},
		{addr: "8080", wantErr: true},
		{addr: "host:http", wantErr: true},
		{addr: "host:70000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port, err := ParseAddr(tt.addr)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
		})
	}
}
