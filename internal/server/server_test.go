package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fastjson"

	"github.com/jittakal/xesgen/internal/builder"
	"github.com/jittakal/xesgen/internal/mapping"
	"github.com/jittakal/xesgen/internal/observability"
	"github.com/jittakal/xesgen/internal/pipeline"
	"github.com/jittakal/xesgen/pkg/event"
)

const testCSV = "method,line,amount\nmain,42,12.5\nrun,43,7\n"

type requestCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *requestCounter) IncHTTPRequests(route string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[route+" "+http.StatusText(status)]++
}

type fakePublisher struct {
	err       error
	published int
}

func (p *fakePublisher) Publish(ctx context.Context, log *event.Log) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.published += log.EventCount()
	return log.EventCount(), nil
}

func newConverter() *pipeline.Converter {
	table := mapping.Resolve(mapping.MapLookup{
		"event.conceptName": "method",
		"event.lineNr":      "line",
	})
	meta := builder.Metadata{Author: "Jane Doe", Affiliation: "Example University", Contact: "jane@example.org"}
	return pipeline.NewConverter(nil, table, meta, testLogger(), nil)
}

func newTestServer(cfg Config, deps Dependencies) *Server {
	if deps.Converter == nil {
		deps.Converter = newConverter()
	}
	deps.Logger = testLogger()
	return NewServer(cfg, deps)
}

func do(s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, want, w.Body.String())
	}
}

func expectHeader(t *testing.T, w *httptest.ResponseRecorder, name, want string) {
	t.Helper()
	if got := w.Header().Get(name); got != want {
		t.Errorf("%s = %q, want %q", name, got, want)
	}
}

func TestServer_HealthEndpoints(t *testing.T) {
	health := NewHealth()
	s := newTestServer(Config{Port: 8080}, Dependencies{Health: health})

	expectStatus(t, do(s, http.MethodGet, "/health/live", "", ""), http.StatusOK)
	expectStatus(t, do(s, http.MethodGet, "/health/ready", "", ""), http.StatusServiceUnavailable)

	health.SetReady(true)
	expectStatus(t, do(s, http.MethodGet, "/health/ready", "", ""), http.StatusOK)

	if s.Addr() != ":8080" {
		t.Errorf("Addr() = %q, want :8080", s.Addr())
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	s := newTestServer(Config{}, Dependencies{Registry: registry, Metrics: metrics})

	do(s, http.MethodGet, "/health/live", "", "")
	w := do(s, http.MethodGet, "/metrics", "", "")

	expectStatus(t, w, http.StatusOK)
	want := `xesgen_http_requests_total{route="/health/live",status="200"} 1`
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("metrics body missing %q", want)
	}
}

func TestServer_ConvertDefaultsToXES(t *testing.T) {
	counter := &requestCounter{}
	s := newTestServer(Config{}, Dependencies{Metrics: counter})

	w := do(s, http.MethodPost, "/v1/logs", "text/csv", testCSV)

	expectStatus(t, w, http.StatusOK)
	expectHeader(t, w, "Content-Type", "application/xml")
	expectHeader(t, w, HeaderEventCount, "2")
	expectHeader(t, w, "Content-Disposition", "attachment; filename=eventlog.xes")
	if !strings.Contains(w.Body.String(), `<string key="concept:name" value="main">`) {
		t.Errorf("XES body missing concept:name of the first event:\n%s", w.Body.String())
	}
	if got := counter.counts["/v1/logs OK"]; got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestServer_ConvertEventCountPerFormat(t *testing.T) {
	s := newTestServer(Config{}, Dependencies{})

	for _, format := range []string{"xes", "json", "avro", "parquet"} {
		t.Run(format, func(t *testing.T) {
			w := do(s, http.MethodPost, "/v1/logs?format="+format, "", testCSV)
			expectStatus(t, w, http.StatusOK)
			expectHeader(t, w, HeaderEventCount, "2")
		})
	}
}

func TestServer_ConvertJSONOutput(t *testing.T) {
	s := newTestServer(Config{LogName: "calls"}, Dependencies{})

	w := do(s, http.MethodPost, "/v1/logs?format=json", "", testCSV)
	expectStatus(t, w, http.StatusOK)
	expectHeader(t, w, "Content-Type", "application/json")
	expectHeader(t, w, "Content-Disposition", "attachment; filename=calls.json")

	v, err := fastjson.ParseBytes(w.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if got := v.GetInt("traces", "0", "events", "0", "swevent:callee-lineNr"); got != 42 {
		t.Errorf("lineNr = %d, want 42", got)
	}
	if got := string(v.GetStringBytes("attributes", "Author")); got != "Jane Doe" {
		t.Errorf("Author = %q, want Jane Doe", got)
	}
}

func TestServer_ConvertJSONInput(t *testing.T) {
	s := newTestServer(Config{Format: event.FormatJSON}, Dependencies{})
	body := `[{"method": "main", "line": 42}]`

	for _, target := range []string{"/v1/logs?input=json", "/v1/logs"} {
		w := do(s, http.MethodPost, target, "application/json; charset=utf-8", body)
		expectStatus(t, w, http.StatusOK)
		expectHeader(t, w, HeaderEventCount, "1")
	}
}

func TestServer_ConvertCompression(t *testing.T) {
	s := newTestServer(Config{Compression: "gzip"}, Dependencies{})

	w := do(s, http.MethodPost, "/v1/logs", "", testCSV)
	expectStatus(t, w, http.StatusOK)
	expectHeader(t, w, "Content-Type", "application/gzip")

	w = do(s, http.MethodPost, "/v1/logs?format=parquet", "", testCSV)
	expectStatus(t, w, http.StatusOK)
	expectHeader(t, w, "Content-Type", "application/vnd.apache.parquet")
}

func TestServer_ConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		body     string
		wantCode int
	}{
		{"unknown format", "/v1/logs?format=csv", testCSV, http.StatusBadRequest},
		{"unknown compression", "/v1/logs?compression=brotli", testCSV, http.StatusBadRequest},
		{"unknown xes compression", "/v1/logs?format=xes&compression=bogus", testCSV, http.StatusBadRequest},
		{"unknown avro compression", "/v1/logs?format=avro&compression=bogus", testCSV, http.StatusBadRequest},
		{"unknown parquet compression", "/v1/logs?format=parquet&compression=bogus", testCSV, http.StatusBadRequest},
		{"empty body", "/v1/logs", "", http.StatusBadRequest},
		{"duplicate header", "/v1/logs", "a,a\n1,2\n", http.StatusBadRequest},
		{"arity mismatch", "/v1/logs", "a,b\n1,2\n3\n", http.StatusBadRequest},
		{"malformed json", "/v1/logs?input=json", `[{"a": }`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(Config{}, Dependencies{})
			w := do(s, http.MethodPost, tt.target, "", tt.body)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			expectHeader(t, w, "Content-Type", "application/json")

			v, err := fastjson.ParseBytes(w.Body.Bytes())
			if err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if len(v.GetStringBytes("error")) == 0 {
				t.Error("error body has no message")
			}
		})
	}
}

func TestServer_EmptyColumnName(t *testing.T) {
	s := newTestServer(Config{Format: event.FormatJSON}, Dependencies{})

	w := do(s, http.MethodPost, "/v1/logs", "", "a,,b\n1,2,3\n")
	expectStatus(t, w, http.StatusOK)

	v, err := fastjson.ParseBytes(w.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if got := v.GetInt("traces", "0", "events", "0", ""); got != 2 {
		t.Errorf("empty-named column = %d, want 2", got)
	}
}

func TestServer_BodyTooLarge(t *testing.T) {
	s := newTestServer(Config{MaxBodyBytes: 16}, Dependencies{})
	w := do(s, http.MethodPost, "/v1/logs", "", testCSV+strings.Repeat("main,1,2\n", 10))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}

type failingConverter struct{}

func (failingConverter) Convert(context.Context, io.Reader, pipeline.InputFormat) (*event.Log, error) {
	return nil, stderrors.New("disk on fire")
}

func TestServer_InternalError(t *testing.T) {
	s := newTestServer(Config{}, Dependencies{Converter: failingConverter{}})
	w := do(s, http.MethodPost, "/v1/logs", "", testCSV)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestServer_Publishes(t *testing.T) {
	publisher := &fakePublisher{}
	s := newTestServer(Config{}, Dependencies{Publisher: publisher})

	w := do(s, http.MethodPost, "/v1/logs", "", testCSV)
	expectStatus(t, w, http.StatusOK)
	expectHeader(t, w, HeaderPublishedCount, "2")
	if publisher.published != 2 {
		t.Errorf("published = %d, want 2", publisher.published)
	}

	publisher.err = stderrors.New("brokers unavailable")
	w = do(s, http.MethodPost, "/v1/logs", "", testCSV)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	counter := &requestCounter{}
	s := newTestServer(Config{}, Dependencies{Metrics: counter})

	w := do(s, http.MethodGet, "/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if got := counter.counts["unmatched Not Found"]; got != 1 {
		t.Errorf("unmatched count = %d, want 1", got)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	s := newTestServer(Config{Port: 0}, Dependencies{})
	errCh := s.Start()

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	for err := range errCh {
		t.Errorf("unexpected serve error: %v", err)
	}
}
