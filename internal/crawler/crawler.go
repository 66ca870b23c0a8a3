package crawler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"shipscraper/internal/config"
	"shipscraper/internal/domain"
	"shipscraper/internal/fetch"
	"shipscraper/internal/monitoring"
	"shipscraper/internal/scrape"
)

// Crawler runs the per-ship image pipeline over a bounded worker pool.
// Each worker owns exactly one ship's output at a time, so results never
// interleave.
type Crawler struct {
	config    *config.Config
	client    *fetch.Client
	site      *url.URL
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	progress  *Progress
	imagesDir string
	overwrite bool

	mu       sync.Mutex
	firstErr error
}

func New(cfg *config.Config, client *fetch.Client, m *monitoring.Metrics, l *zap.Logger, imagesDir string, overwrite bool) (*Crawler, error) {
	site, err := url.Parse(cfg.SiteRoot)
	if err != nil {
		return nil, fmt.Errorf("bad site root %q: %w", cfg.SiteRoot, err)
	}
	return &Crawler{
		config:    cfg,
		client:    client,
		site:      site,
		metrics:   m,
		logger:    l,
		progress:  &Progress{},
		imagesDir: imagesDir,
		overwrite: overwrite,
	}, nil
}

// Progress exposes the batch counters for the status server.
func (c *Crawler) Progress() *Progress { return c.progress }

// Run crawls every ship's detail page, classifies and downloads its
// in-space images, and returns the image dataset ordered like the input.
// Per-ship failures are isolated: they are logged with the offending URL
// and the batch continues. Run only fails as a whole on cancellation or,
// in strict-views mode, on the first unrecognized view token.
func (c *Crawler) Run(ctx context.Context, ships *domain.ShipDataset) (*domain.ImageDataset, error) {
	if err := os.MkdirAll(c.imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	c.progress.total.Store(int64(ships.Len()))
	c.metrics.ShipsTotal.Set(float64(ships.Len()))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan domain.ShipRecord)
	out := make(chan domain.ImageRecord)

	var wg sync.WaitGroup
	for i := 0; i < c.config.CrawlWorkers; i++ {
		wg.Add(1)
		go c.worker(runCtx, cancel, &wg, tasks, out)
	}

	go func() {
		defer close(tasks)
		for _, ship := range ships.Records() {
			select {
			case tasks <- ship:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	collected := make(map[string]domain.ImageRecord, ships.Len())
	for rec := range out {
		collected[rec.Name] = rec
	}

	c.mu.Lock()
	err := c.firstErr
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	images := domain.NewImageDataset()
	for _, ship := range ships.Records() {
		rec, ok := collected[ship.Name]
		if !ok {
			rec = domain.ImageRecord{Name: ship.Name}
		}
		images.Add(rec)
	}
	return images, nil
}

func (c *Crawler) worker(ctx context.Context, cancel context.CancelFunc, wg *sync.WaitGroup, tasks <-chan domain.ShipRecord, out chan<- domain.ImageRecord) {
	defer wg.Done()
	for ship := range tasks {
		rec, err := c.processShip(ctx, ship)
		if err != nil {
			c.mu.Lock()
			if c.firstErr == nil && ctx.Err() == nil {
				c.firstErr = err
			}
			c.mu.Unlock()
			cancel()
			return
		}
		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
}

// processShip runs the full pipeline for one ship: locate images on the
// detail page, classify each by filename, download missing files. The
// returned error is non-nil only for strict-views violations; everything
// else degrades to a partial record.
func (c *Crawler) processShip(ctx context.Context, ship domain.ShipRecord) (domain.ImageRecord, error) {
	rec := domain.ImageRecord{Name: ship.Name}
	defer func() {
		c.progress.done.Add(1)
		c.metrics.ShipsProcessed.Inc()
	}()

	shipCtx, cancelShip := context.WithTimeout(ctx, time.Duration(c.config.CrawlTimeout+10)*time.Second)
	defer cancelShip()

	result, err := scrape.LocateImages(shipCtx, c.client, c.site, ship.Wiki)
	if err != nil {
		c.logger.Warn("failed to locate images", zap.String("ship", ship.Name), zap.String("url", ship.Wiki), zap.Error(err))
		c.metrics.IncErrorsTotal("ship_failed")
		c.progress.failed.Add(1)
		return rec, nil
	}

	switch result.Kind {
	case scrape.ProfileMissing:
		c.logger.Debug("no ship profile section", zap.String("ship", ship.Name))
		return rec, nil
	case scrape.ProfileBroken:
		c.logger.Warn("unexpected ship profile structure", zap.String("ship", ship.Name), zap.String("url", ship.Wiki))
		c.metrics.IncErrorsTotal("profile_structure")
		c.progress.failed.Add(1)
		return rec, nil
	}

	for _, src := range result.Images {
		filename, err := scrape.FileName(src)
		if err != nil {
			c.logger.Warn("unusable image url", zap.String("ship", ship.Name), zap.Error(err))
			c.metrics.IncErrorsTotal("bad_image_url")
			continue
		}

		token, ok := scrape.ViewToken(filename)
		if !ok {
			// filename carries no view token at all, discard
			continue
		}
		view, ok := scrape.ViewFor(token)
		if !ok {
			if c.config.StrictViews {
				return rec, fmt.Errorf("ship %q: unrecognized view token %q in %q", ship.Name, token, filename)
			}
			c.logger.Warn("unrecognized view token", zap.String("ship", ship.Name), zap.String("token", token), zap.String("file", filename))
			c.metrics.IncImagesSkipped("unrecognized_view")
			c.progress.skipped.Add(1)
			continue
		}

		rec.SetView(view, filename)

		if err := c.download(shipCtx, src, filepath.Join(c.imagesDir, filename)); err != nil {
			c.logger.Warn("download failed", zap.String("ship", ship.Name), zap.String("url", src), zap.Error(err))
			c.metrics.IncErrorsTotal("download_failed")
		}
	}
	return rec, nil
}
