package nvd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the NVD CVE 2.0 REST endpoint.
	DefaultBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

	// MaxResultsPerPage is the largest page size the API accepts.
	MaxResultsPerPage = 2000

	// RequestTimeout bounds every single HTTP call.
	RequestTimeout = 30 * time.Second
)

// Config carries the client settings. Zero values fall back to the documented
// NVD defaults.
type Config struct {
	APIKey         string
	BaseURL        string
	CacheDir       string
	CacheEnabled   bool
	CacheRetention time.Duration
	RateLimit      int // requests per 30s window, 0 = derive from APIKey presence
	Timeout        time.Duration
}

// Client talks to the NVD API. One client (and therefore one rate limiter)
// must be shared by all concurrent fetch sessions using the same credential;
// separate clients would let the combined request rate exceed the quota.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	cache   *Cache
	limiter *Limiter
	logger  *zap.Logger
}

// NewClient builds a client. Without an API key the quota is 5 requests per
// 30s; with one it is 50; Config.RateLimit overrides both.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	quota := cfg.RateLimit
	if quota <= 0 {
		if cfg.APIKey != "" {
			quota = DefaultKeyedQuota
		} else {
			quota = DefaultKeylessQuota
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = RequestTimeout
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = "data/cache"
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cache:   NewCache(cacheDir, cfg.CacheRetention, cfg.CacheEnabled, logger),
		limiter: NewLimiter(quota),
		logger:  logger,
	}

	logger.Info("NVD client initialized", zap.Int("rate_limit_per_30s", quota))
	if cfg.APIKey == "" {
		logger.Warn("no API key configured, using keyless quota of 5 requests/30s")
	}
	return c
}

// Limiter exposes the shared rate limiter so independent sessions can be
// verified to pace through the same instance.
func (c *Client) Limiter() *Limiter {
	return c.limiter
}

// Execute resolves a single page request: cache first, then one live call
// gated by the rate limiter. A cache hit touches neither the limiter nor the
// network. Exactly one cache write happens per live successful call and the
// request is never retried here; retry policy belongs to the caller.
func (c *Client) Execute(ctx context.Context, params map[string]string) (*Response, error) {
	signature := Signature(params)

	if resp, ok := c.cache.Get(signature); ok {
		return resp, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Err: err}
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Error("NVD rate limit exceeded, back off or configure an API key")
		return nil, ErrRateLimited
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(body)
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Detail: detail}
	}

	var page Response
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("undecodable body: %v", err)}
	}

	c.cache.Put(signature, &page)
	return &page, nil
}

// FetchCVEs walks the offset-based paginated result set for a query. Pages
// are requested strictly sequentially: each offset depends on the actual
// yield of the page before it, which tolerates a short final page and an
// upstream that under-reports its total. On a page failure the records
// accumulated so far are returned together with the triggering error so the
// caller can resume by narrowing the date range.
func (c *Client) FetchCVEs(ctx context.Context, query Query) (*FetchResult, error) {
	params := query.params()
	c.logger.Info("fetching CVEs", zap.Any("params", params))

	result := &FetchResult{State: StateCompleted}

	// First page establishes the server-declared total.
	params["startIndex"] = "0"
	first, err := c.Execute(ctx, params)
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("first page: %w", err)
	}

	result.TotalAvailable = first.TotalResults
	result.Target = first.TotalResults
	if query.MaxResults > 0 && query.MaxResults < result.Target {
		result.Target = query.MaxResults
	}
	c.logger.Info("total CVEs available", zap.Int("total", result.TotalAvailable), zap.Int("target", result.Target))

	result.Records = append(result.Records, first.Vulnerabilities...)
	offset := len(first.Vulnerabilities)
	query.report(len(result.Records), result.Target)

	for offset < result.Target {
		params["startIndex"] = fmt.Sprintf("%d", offset)

		page, err := c.Execute(ctx, params)
		if err != nil {
			c.logger.Error("page fetch failed, keeping partial results",
				zap.Int("offset", offset), zap.Int("accumulated", len(result.Records)), zap.Error(err))
			result.State = StateAborted
			result.Records = trimToTarget(result.Records, result.Target)
			result.applySeverity(query.Severity)
			return result, fmt.Errorf("page at offset %d: %w", offset, err)
		}

		if len(page.Vulnerabilities) == 0 {
			// Upstream stopped early; treat as exhaustion, not an error.
			c.logger.Warn("empty page before declared total, stopping",
				zap.Int("offset", offset), zap.Int("declared_total", result.TotalAvailable))
			result.State = StateExhausted
			break
		}

		result.Records = append(result.Records, page.Vulnerabilities...)
		offset += len(page.Vulnerabilities)
		query.report(len(result.Records), result.Target)
	}

	result.Records = trimToTarget(result.Records, result.Target)
	result.applySeverity(query.Severity)

	c.logger.Info("fetch finished",
		zap.Int("records", len(result.Records)), zap.String("state", string(result.State)))
	return result, nil
}

// GetRecent fetches CVEs published in the last given number of days.
func (c *Client) GetRecent(ctx context.Context, days, limit int) (*FetchResult, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return c.FetchCVEs(ctx, Query{
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		MaxResults: limit,
	})
}

func (q Query) report(fetched, target int) {
	if q.Progress != nil {
		q.Progress(fetched, target)
	}
}

func (r *FetchResult) applySeverity(severity string) {
	if severity != "" {
		r.Records = FilterBySeverity(r.Records, severity)
	}
}

// trimToTarget caps the accumulated set at the fetch target, so a caller
// asking for max N never receives a first page larger than N.
func trimToTarget(records []Record, target int) []Record {
	if target >= 0 && len(records) > target {
		return records[:target]
	}
	return records
}
