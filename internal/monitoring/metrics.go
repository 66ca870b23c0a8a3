package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Each instance
// carries its own registry so the status server can expose exactly the
// metrics of this run.
type Metrics struct {
	Registry *prometheus.Registry

	PagesFetched     prometheus.Counter
	PageCacheHits    prometheus.Counter
	ShipsTotal       prometheus.Gauge
	ShipsProcessed   prometheus.Counter
	ImagesDownloaded prometheus.Counter
	ImagesSkipped    *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "The total number of pages fetched over the network",
		}),
		PageCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_page_cache_hits_total",
			Help: "The total number of page loads served from the cache",
		}),
		ShipsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scraper_ships_total",
			Help: "The number of ships in the listing table",
		}),
		ShipsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_ships_processed_total",
			Help: "The total number of ships whose image pipeline finished",
		}),
		ImagesDownloaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_images_downloaded_total",
			Help: "The total number of image files written",
		}),
		ImagesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_images_skipped_total",
			Help: "The total number of images skipped",
		}, []string{"reason"}), // e.g. 'exists', 'unrecognized_view'
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'ship_failed', 'download_failed'
	}
}

func (m *Metrics) IncImagesSkipped(reason string) {
	m.ImagesSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
