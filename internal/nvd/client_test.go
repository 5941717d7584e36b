package nvd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeNVD serves a deterministic paginated CVE corpus for client tests.
type fakeNVD struct {
	total    int
	requests atomic.Int64

	// emptyAfter, when > 0, makes every page at offset >= emptyAfter empty
	// even though totalResults still declares the full corpus.
	emptyAfter int
	// failAtOffset, when > 0, answers that offset with failStatus.
	failAtOffset int
	failStatus   int
	// wantAPIKey, when set, records whether the header arrived.
	sawAPIKey atomic.Bool
}

func fakeRecord(i int) Record {
	return Record{"cve": map[string]interface{}{"id": fmt.Sprintf("CVE-2024-%04d", i)}}
}

func (f *fakeNVD) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("apiKey") != "" {
			f.sawAPIKey.Store(true)
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("startIndex"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("resultsPerPage"))

		if f.failAtOffset > 0 && offset == f.failAtOffset {
			w.WriteHeader(f.failStatus)
			fmt.Fprint(w, "upstream sad")
			return
		}

		var records []Record
		if f.emptyAfter == 0 || offset < f.emptyAfter {
			for i := offset; i < f.total && i < offset+pageSize; i++ {
				if f.emptyAfter > 0 && i >= f.emptyAfter {
					break
				}
				records = append(records, fakeRecord(i))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			ResultsPerPage:  len(records),
			StartIndex:      offset,
			TotalResults:    f.total,
			Vulnerabilities: records,
		})
	})
}

func testClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = srv.URL
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 30000 // keep spacing negligible in tests
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = t.TempDir()
	}
	return NewClient(cfg, zap.NewNop())
}

func TestFetchAllPages(t *testing.T) {
	fake := &fakeNVD{total: 5}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{})
	result, err := client.FetchCVEs(context.Background(), Query{ResultsPerPage: 2})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 5, result.TotalAvailable)
	require.Len(t, result.Records, 5)
	assert.Equal(t, "CVE-2024-0000", result.Records[0].ID())
	assert.Equal(t, "CVE-2024-0004", result.Records[4].ID())
}

func TestFetchHonorsMaxResults(t *testing.T) {
	fake := &fakeNVD{total: 10}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{})
	result, err := client.FetchCVEs(context.Background(), Query{ResultsPerPage: 4, MaxResults: 6})

	require.NoError(t, err)
	assert.Equal(t, 6, result.Target)
	assert.Len(t, result.Records, 6)
}

func TestFetchMaxResultsSmallerThanFirstPage(t *testing.T) {
	fake := &fakeNVD{total: 10}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{})
	result, err := client.FetchCVEs(context.Background(), Query{ResultsPerPage: 5, MaxResults: 2})

	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.EqualValues(t, 1, fake.requests.Load())
}

func TestFetchEarlyExhaustion(t *testing.T) {
	// Server declares 10 results but dries up after 4.
	fake := &fakeNVD{total: 10, emptyAfter: 4}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{})
	result, err := client.FetchCVEs(context.Background(), Query{ResultsPerPage: 2})

	require.NoError(t, err)
	assert.Equal(t, StateExhausted, result.State)
	assert.Len(t, result.Records, 4)
}

func TestFetchPartialFailureKeepsAccumulated(t *testing.T) {
	// Pages of 2 against 10 records; the third page (offset 4) blows up.
	fake := &fakeNVD{total: 10, failAtOffset: 4, failStatus: http.StatusInternalServerError}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{})
	result, err := client.FetchCVEs(context.Background(), Query{ResultsPerPage: 2})

	require.Error(t, err)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, StateAborted, result.State)
	assert.Len(t, result.Records, 4)
}

func TestExecuteClassifies429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := testClient(t, srv, Config{})
	_, err := client.Execute(context.Background(), map[string]string{"startIndex": "0"})

	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestExecuteClassifiesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := testClient(t, srv, Config{})
	_, err := client.Execute(context.Background(), map[string]string{"startIndex": "0"})

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestExecuteUsesCache(t *testing.T) {
	fake := &fakeNVD{total: 3}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{CacheEnabled: true})
	params := map[string]string{"resultsPerPage": "2000", "startIndex": "0"}

	first, err := client.Execute(context.Background(), params)
	require.NoError(t, err)
	second, err := client.Execute(context.Background(), params)
	require.NoError(t, err)

	assert.EqualValues(t, 1, fake.requests.Load())
	assert.Equal(t, first.TotalResults, second.TotalResults)
}

func TestExecuteSendsAPIKeyHeader(t *testing.T) {
	fake := &fakeNVD{total: 1}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{APIKey: "secret"})
	_, err := client.Execute(context.Background(), map[string]string{"startIndex": "0", "resultsPerPage": "10"})

	require.NoError(t, err)
	assert.True(t, fake.sawAPIKey.Load())
}

func TestFetchReportsProgress(t *testing.T) {
	fake := &fakeNVD{total: 6}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := testClient(t, srv, Config{})

	var seen []int
	var lastTarget int
	_, err := client.FetchCVEs(context.Background(), Query{
		ResultsPerPage: 2,
		Progress: func(fetched, target int) {
			seen = append(seen, fetched)
			lastTarget = target
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, seen)
	assert.Equal(t, 6, lastTarget)
}

func TestFetchFirstPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := testClient(t, srv, Config{})
	result, err := client.FetchCVEs(context.Background(), Query{})

	require.Error(t, err)
	assert.Equal(t, StateAborted, result.State)
	assert.Empty(t, result.Records)
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestClientQuotaDerivation(t *testing.T) {
	assert.Equal(t, DefaultKeylessQuota, NewClient(Config{CacheDir: t.TempDir()}, zap.NewNop()).Limiter().Quota())
	assert.Equal(t, DefaultKeyedQuota, NewClient(Config{APIKey: "k", CacheDir: t.TempDir()}, zap.NewNop()).Limiter().Quota())
	assert.Equal(t, 7, NewClient(Config{RateLimit: 7, CacheDir: t.TempDir()}, zap.NewNop()).Limiter().Quota())
}

func TestQueryParamsDateWidening(t *testing.T) {
	p := Query{StartDate: "2024-01-01", EndDate: "2024-01-31", Keyword: "kernel"}.params()

	assert.Equal(t, "2024-01-01T00:00:00.000", p["pubStartDate"])
	assert.Equal(t, "2024-01-31T23:59:59.999", p["pubEndDate"])
	assert.Equal(t, "kernel", p["keywordSearch"])
	assert.Equal(t, "2000", p["resultsPerPage"])
}

func TestQueryParamsCapsPageSize(t *testing.T) {
	p := Query{ResultsPerPage: 5000}.params()
	assert.Equal(t, "2000", p["resultsPerPage"])
}
