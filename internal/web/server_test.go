package web

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/indexer"
	"github.com/stormlightlabs/linedex/internal/metrics"
	"github.com/stormlightlabs/linedex/internal/search"
)

type fixture struct {
	server *Server
	worker *indexer.Worker
	root   string
}

func openStore(t *testing.T, path string) *db.Store {
	t.Helper()
	store, err := db.OpenPath(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newFixture mirrors serve: one handle for the worker, one for reads.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	writer := openStore(t, path)
	if err := writer.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	reader := openStore(t, path)

	engine, err := search.NewEngine(reader, search.Options{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	worker := indexer.NewWorker(writer, indexer.Options{})
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = worker.Run(runCtx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("Hello world\nHELLO again\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := NewServer(engine, reader, worker, Options{Metrics: metrics.New()})
	return fixture{server: srv, worker: worker, root: root}
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v", v, err)
	}
	return v
}

func (f fixture) waitJob(t *testing.T, id string) indexer.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := f.do(t, http.MethodGet, "/api/jobs/"+id, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("job status code = %d", rec.Code)
		}
		job := decode[indexer.Job](t, rec)
		if job.State == indexer.JobDone || job.State == indexer.JobFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return indexer.Job{}
}

func (f fixture) scan(t *testing.T) {
	t.Helper()
	body, _ := json.Marshal(indexer.Request{Root: f.root})
	rec := f.do(t, http.MethodPost, "/api/scan", string(body))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("scan status = %d: %s", rec.Code, rec.Body.String())
	}
	job := decode[indexer.Job](t, rec)
	if got := f.waitJob(t, job.ID); got.State != indexer.JobDone {
		t.Fatalf("scan job = %+v", got)
	}
}

func TestScanThenSearch(t *testing.T) {
	f := newFixture(t)
	f.scan(t)

	tests := []struct {
		name   string
		target string
		want   []int
	}{
		{"exact", "/api/search?q=hello", []int{1, 2}},
		{"exact case sensitive", "/api/search?q=HELLO&case=true", nil},
		{"pattern case sensitive", "/api/search?q=%5EHELLO&regex=true&case=true", []int{2}},
		{"exact trimmed", "/api/search?q=%20hello%20", []int{1, 2}},
		{"pattern keeps spaces", "/api/search?q=again%20&regex=true", nil},
		{"pattern leading space", "/api/search?q=%20world&regex=true", []int{1}},
		{"mask miss", "/api/search?q=hello&mask=*.log", nil},
		{"limit", "/api/search?q=hello&limit=1", []int{1}},
		{"future from", "/api/search?q=hello&from=2999-01-01", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			resp := decode[SearchResponse](t, rec)
			if resp.Total != len(tt.want) || len(resp.Results) != len(tt.want) {
				t.Fatalf("total = %d, want %d", resp.Total, len(tt.want))
			}
			for i, m := range resp.Results {
				if m.Line != tt.want[i] {
					t.Errorf("result %d line = %d, want %d", i, m.Line, tt.want[i])
				}
			}
		})
	}
}

func TestSearchBadRequests(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		target string
		code   string
	}{
		{"/api/search", "missing_param"},
		{"/api/search?q=%20", "missing_param"},
		{"/api/search?q=x&from=yesterday", "invalid_date"},
	}
	for _, tt := range tests {
		rec := f.do(t, http.MethodGet, tt.target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", tt.target, rec.Code)
			continue
		}
		if resp := decode[ErrorResponse](t, rec); resp.Code != tt.code {
			t.Errorf("GET %s code = %q, want %q", tt.target, resp.Code, tt.code)
		}
	}
}

func TestScanBadRequests(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{"", "{", `{"masks":["*.txt"]}`} {
		if rec := f.do(t, http.MethodPost, "/api/scan", body); rec.Code != http.StatusBadRequest {
			t.Errorf("POST /api/scan %q status = %d, want 400", body, rec.Code)
		}
	}
}

func TestScanMissingRootFailsJob(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/scan", `{"root":"/does/not/exist"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	job := f.waitJob(t, decode[indexer.Job](t, rec).ID)
	if job.State != indexer.JobFailed || job.Error == "" {
		t.Errorf("job = %+v, want failed with error", job)
	}
}

func TestClearAndStats(t *testing.T) {
	f := newFixture(t)
	f.scan(t)

	st := decode[db.Stats](t, f.do(t, http.MethodGet, "/api/stats", ""))
	if st.Files != 1 || st.Words != 3 || st.TotalLines != 2 {
		t.Errorf("stats after scan = %+v", st)
	}

	rec := f.do(t, http.MethodPost, "/api/clear", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if job := f.waitJob(t, decode[indexer.Job](t, rec).ID); job.State != indexer.JobDone {
		t.Fatalf("clear job = %+v", job)
	}

	st = decode[db.Stats](t, f.do(t, http.MethodGet, "/api/stats", ""))
	if st.Files != 0 || st.Words != 0 || st.Postings != 0 {
		t.Errorf("stats after clear = %+v", st)
	}
}

func TestUnknownJob(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/jobs/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	f.do(t, http.MethodGet, "/api/search?q=x", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `linedex_http_requests_total{method="GET",route="search",status="200"} 1`) {
		t.Error("metrics missing search request counter")
	}
}

type stubJobs struct{ err error }

func (s stubJobs) SubmitScan(indexer.Request) (indexer.Job, error) { return indexer.Job{}, s.err }
func (s stubJobs) SubmitClear() (indexer.Job, error)               { return indexer.Job{}, s.err }
func (s stubJobs) Job(string) (indexer.Job, bool)                  { return indexer.Job{}, false }

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{indexer.ErrQueueFull, http.StatusTooManyRequests},
		{indexer.ErrWorkerStopped, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		srv := NewServer(nil, nil, stubJobs{err: tt.err}, Options{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/clear", nil))
		if rec.Code != tt.status {
			t.Errorf("clear with %v status = %d, want %d", tt.err, rec.Code, tt.status)
		}
	}
}

func TestGzipResponses(t *testing.T) {
	f := newFixture(t)
	var b strings.Builder
	for i := range 200 {
		fmt.Fprintf(&b, "hello line %d\n", i)
	}
	if err := os.WriteFile(filepath.Join(f.root, "big.log"), []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	f.scan(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=hello&mask=*.log", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 200 {
		t.Errorf("total = %d, want 200", resp.Total)
	}
}
