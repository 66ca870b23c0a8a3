package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shipscraper/internal/config"
	"shipscraper/internal/monitoring"
)

func newTestClient(cfg *config.Config, cache PageCache) *Client {
	return NewClient(cfg, cache, monitoring.NewMetrics(), zap.NewNop())
}

func TestLoadParsesHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><title>hello</title></head><body></body></html>")
	}))
	defer ts.Close()

	c := newTestClient(&config.Config{CrawlTimeout: 5}, nil)
	doc, err := c.Load(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find("title").Text())
}

func TestLoadReportsStatusErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := newTestClient(&config.Config{CrawlTimeout: 5}, nil)
	_, err := c.Load(context.Background(), ts.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, ts.URL, statusErr.URL)
}

func TestLoadRetriesTransientServerErrors(t *testing.T) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "<html><head><title>recovered</title></head></html>")
	}))
	defer ts.Close()

	c := newTestClient(&config.Config{CrawlTimeout: 5, MaxRetries: 2}, nil)
	doc, err := c.Load(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", doc.Find("title").Text())
	assert.Equal(t, int64(2), hits.Load())
}

type memoryCache struct {
	pages map[string][]byte
}

func (m *memoryCache) GetPage(_ context.Context, url string) ([]byte, bool, error) {
	body, ok := m.pages[url]
	return body, ok, nil
}

func (m *memoryCache) SetPage(_ context.Context, url string, body []byte) error {
	m.pages[url] = body
	return nil
}

func TestLoadUsesPageCache(t *testing.T) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html><head><title>cached</title></head></html>")
	}))
	defer ts.Close()

	cache := &memoryCache{pages: make(map[string][]byte)}
	c := newTestClient(&config.Config{CrawlTimeout: 5}, cache)

	for i := 0; i < 3; i++ {
		doc, err := c.Load(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "cached", doc.Find("title").Text())
	}
	assert.Equal(t, int64(1), hits.Load())
}

func TestDownloadStreamsBody(t *testing.T) {
	payload := []byte("image-bytes")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	c := newTestClient(&config.Config{CrawlTimeout: 5}, nil)
	var buf bytes.Buffer
	require.NoError(t, c.Download(context.Background(), ts.URL, &buf))
	assert.Equal(t, payload, buf.Bytes())
}
