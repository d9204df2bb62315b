package usajobs

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/fedjobs/internal/retry"
)

const pageTemplate = `{
  "SearchResult": {
    "SearchResultCount": 1,
    "SearchResultCountAll": 3,
    "SearchResultItems": [
      {
        "MatchedObjectId": "%s",
        "MatchedObjectDescriptor": {
          "PositionTitle": "IT Specialist (%s)",
          "PositionURI": "https://www.usajobs.gov/job/%s",
          "PositionLocationDisplay": "Las Vegas, Nevada",
          "PositionLocation": [{"LocationName": "Las Vegas, Nevada", "Latitude": 36.1699, "Longitude": -115.1398}],
          "OrganizationName": "Department of Energy",
          "PositionRemuneration": [{"MinimumRange": "85000.0", "MaximumRange": "140000.0", "RateIntervalCode": "PA"}],
          "QualificationSummary": "<p>Experience with <b>Python</b> and SQL.</p><ul><li>Data pipelines</li><li>ETL</li></ul>",
          "ApplicationCloseDate": "2026-11-30T23:59:59.9970",
          "UserArea": {"Details": {"Education": "Bachelor's degree in computer science"}, "HiringPath": ["public", "vet"]}
        }
      }
    ],
    "UserArea": {"NumberOfPages": "3", "IsRadialSearch": false}
  }
}`

func newTestClient(url string, core zapcore.Core) *Client {
	policy := retry.DefaultPolicy()
	policy.BaseDelay = 0

	logger := zap.NewNop()
	if core != nil {
		logger = zap.New(core)
	}

	return New(logger, Options{
		APIURL:   url,
		APIKey:   "secret-key",
		Email:    "me@example.com",
		MaxPages: 2,
		Retry:    policy,
	})
}

func TestSearchFollowsPagesAndNormalizes(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if got := r.Header.Get("Authorization-Key"); got != "secret-key" {
			t.Errorf("unexpected Authorization-Key %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "me@example.com" {
			t.Errorf("unexpected User-Agent %q", got)
		}
		if r.Host != "data.usajobs.gov" {
			t.Errorf("unexpected Host %q", r.Host)
		}

		q := r.URL.Query()
		if q.Get("JobCategoryCode") != "2210;0391" {
			t.Errorf("unexpected categories %q", q.Get("JobCategoryCode"))
		}
		if q.Get("PayGradeLow") != "13" {
			t.Errorf("unexpected pay grade %q", q.Get("PayGradeLow"))
		}
		if q.Get("ResultsPerPage") != "25" {
			t.Errorf("unexpected page size %q", q.Get("ResultsPerPage"))
		}
		if q.Get("Keyword") != `"python" OR "sql"` {
			t.Errorf("unexpected keyword %q", q.Get("Keyword"))
		}

		page := q.Get("Page")
		fmt.Fprintf(w, pageTemplate, page, page, page)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, nil)
	result, err := client.Search(context.Background(), &SearchParams{
		Keyword:          `"python" OR "sql"`,
		LocationName:     "Las Vegas, NV",
		JobCategoryCodes: []string{"2210", "0391"},
		PayGrade:         "GS-13",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 requests limited by max pages, got %d", got)
	}
	if result.TotalCount != 3 {
		t.Fatalf("unexpected total: %d", result.TotalCount)
	}

	listings := result.Listings()
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	l := listings[1]
	if l.ID != "2" || l.Title != "IT Specialist (2)" || l.Organization != "Department of Energy" {
		t.Fatalf("unexpected listing: %+v", l)
	}
	if l.SalaryMin != 85000 || l.SalaryMax != 140000 {
		t.Fatalf("unexpected salary: %v - %v", l.SalaryMin, l.SalaryMax)
	}
	if l.Coordinates == nil || l.Coordinates.Lat != 36.1699 {
		t.Fatalf("unexpected coordinates: %v", l.Coordinates)
	}
	wantText := "Experience with Python and SQL. Data pipelines ETL Bachelor's degree in computer science"
	if l.QualificationText != wantText {
		t.Fatalf("unexpected qualification text: %q", l.QualificationText)
	}
	if l.ClosingDate != "2026-11-30" || !l.VeteranPreferred || l.Source != "usajobs" {
		t.Fatalf("unexpected listing details: %+v", l)
	}
}

func TestSearchRetriesRateLimit(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"SearchResult": {"SearchResultCount": 0, "SearchResultItems": [], "UserArea": {"NumberOfPages": "0"}}}`)
	}))
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.WarnLevel)
	result, err := newTestClient(server.URL, core).Search(context.Background(), &SearchParams{Keyword: "nurse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 0 || requests.Load() != 2 {
		t.Fatalf("unexpected result %+v after %d requests", result, requests.Load())
	}
	if logs.FilterMessage("USAJOBS request failed, retrying").Len() != 1 {
		t.Fatalf("expected a retry warning")
	}
}

func TestSearchGivesUpOnPersistentServerErrors(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL, nil).Search(context.Background(), &SearchParams{Keyword: "nurse"})
	if !errors.Is(err, retry.ErrServerError) {
		t.Fatalf("expected server error, got %v", err)
	}
	if requests.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", requests.Load())
	}
}

func TestSearchDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL, nil).Search(context.Background(), &SearchParams{Keyword: "nurse"})
	var statusErr *retry.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if requests.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", requests.Load())
	}
}

func TestSearchTreatsMalformedResponsesAsEmpty(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing search result": `{"LanguageCode": "EN"}`,
		"not json":              `<html>maintenance</html>`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, body)
			}))
			t.Cleanup(server.Close)

			core, logs := observer.New(zapcore.WarnLevel)
			result, err := newTestClient(server.URL, core).Search(context.Background(), &SearchParams{Keyword: "nurse"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.TotalCount != 0 || len(result.Items) != 0 {
				t.Fatalf("expected empty result, got %+v", result)
			}
			if logs.Len() == 0 {
				t.Fatalf("expected a warning")
			}
		})
	}
}

func TestSearchDecodesGzip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip" {
			t.Errorf("expected gzip to be accepted")
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		fmt.Fprintf(gz, pageTemplate, "7", "7", "7")
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL, nil)
	client.MaxPages = 1

	result, err := client.Search(context.Background(), &SearchParams{Keyword: "it"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].MatchedObjectID != "7" {
		t.Fatalf("unexpected items: %+v", result.Items)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Keyword") != "police" || r.URL.Query().Get("ResultsPerPage") != "1" {
			t.Errorf("unexpected probe query %q", r.URL.RawQuery)
		}
		fmt.Fprintf(w, pageTemplate, "1", "1", "1")
	}))
	t.Cleanup(server.Close)

	count, err := newTestClient(server.URL, nil).Ping(context.Background())
	if err != nil || count != 3 {
		t.Fatalf("unexpected ping result %d, %v", count, err)
	}
}
