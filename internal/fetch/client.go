package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shipscraper/internal/config"
	"shipscraper/internal/monitoring"
)

// PageCache stores fetched page bodies keyed by URL. Implementations may
// miss freely; a miss only costs a network fetch.
type PageCache interface {
	GetPage(ctx context.Context, url string) ([]byte, bool, error)
	SetPage(ctx context.Context, url string, body []byte) error
}

// StatusError reports a non-2xx response that survived all retries.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.Code, e.URL)
}

// Client is the shared HTTP page loader. All workers go through one
// Client so the rate limit applies to the whole run.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	cache   PageCache
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewClient(cfg *config.Config, cache PageCache, m *monitoring.Metrics, l *zap.Logger) *Client {
	hc := resty.New().
		SetTimeout(time.Duration(cfg.CrawlTimeout) * time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("User-Agent", randomAgent()).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	limit := rate.Limit(cfg.RateLimitRPS)
	if cfg.RateLimitRPS <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		cache:   cache,
		metrics: m,
		logger:  l,
	}
}

// Load fetches a URL and parses the response as HTML. Page bodies are
// served from the cache when one is configured.
func (c *Client) Load(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.page(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) page(ctx context.Context, url string) ([]byte, error) {
	if c.cache != nil {
		body, ok, err := c.cache.GetPage(ctx, url)
		if err != nil {
			c.logger.Warn("page cache lookup failed", zap.String("url", url), zap.Error(err))
		} else if ok {
			c.metrics.PageCacheHits.Inc()
			return body, nil
		}
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetPage(ctx, url, body); err != nil {
			c.logger.Warn("page cache store failed", zap.String("url", url), zap.Error(err))
		}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, &StatusError{URL: url, Code: resp.StatusCode()}
	}
	c.metrics.PagesFetched.Inc()
	return resp.Body(), nil
}

// Download streams the response body for a URL into w. Downloads bypass
// the page cache.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	raw := resp.RawBody()
	defer raw.Close()
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &StatusError{URL: url, Code: resp.StatusCode()}
	}
	c.metrics.PagesFetched.Inc()
	if _, err := io.Copy(w, raw); err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	return nil
}
