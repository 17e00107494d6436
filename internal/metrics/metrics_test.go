package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stormlightlabs/linedex/internal/indexer"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestNewIsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveSearch("exact", 1, time.Millisecond, nil)
	if strings.Contains(scrape(t, b), `linedex_search_queries_total{mode="exact"`) {
		t.Error("search counted in the wrong registry")
	}
}

func TestObserveSearch(t *testing.T) {
	m := New()
	m.ObserveSearch("exact", 2, time.Millisecond, nil)
	m.ObserveSearch("exact", 0, time.Millisecond, nil)
	m.ObserveSearch("pattern", 0, time.Millisecond, errors.New("boom"))

	body := scrape(t, m)
	for _, want := range []string{
		`linedex_search_queries_total{mode="exact",result_type="hit"} 1`,
		`linedex_search_queries_total{mode="exact",result_type="zero_result"} 1`,
		`linedex_search_queries_total{mode="pattern",result_type="error"} 1`,
		`linedex_search_latency_seconds_count{mode="exact"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestScanObserver(t *testing.T) {
	m := New()
	obs := m.ScanObserver()
	obs.ScanStarted(3)
	obs.Progress(1, 3)
	obs.ScanFinished(indexer.Summary{Indexed: 2, Skipped: 1, Postings: 7, Duration: time.Second})

	body := scrape(t, m)
	for _, want := range []string{
		`linedex_files_total{result="indexed"} 2`,
		`linedex_files_total{result="skipped"} 1`,
		`linedex_postings_written_total 7`,
		`linedex_scans_total{status="ok"} 1`,
		`linedex_scan_in_progress 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	m := New()
	h := m.Middleware("search", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/search", nil))

	want := `linedex_http_requests_total{method="GET",route="search",status="418"} 1`
	if body := scrape(t, m); !strings.Contains(body, want) {
		t.Errorf("scrape missing %q", want)
	}
}
