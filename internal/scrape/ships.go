package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"shipscraper/internal/config"
	"shipscraper/internal/domain"
	"shipscraper/internal/fetch"
)

// ErrTableNotFound means the listing page no longer carries the
// pledge-vehicle table marker.
var ErrTableNotFound = errors.New("ships table not found")

const listingTableSelector = "table.template-pledgevehiclelist"

// BuildShips scrapes the listing page into the primary ship dataset,
// indexed by name in document order.
func BuildShips(ctx context.Context, client *fetch.Client, cfg *config.Config) (*domain.ShipDataset, error) {
	site, err := url.Parse(cfg.SiteRoot)
	if err != nil {
		return nil, fmt.Errorf("bad site root %q: %w", cfg.SiteRoot, err)
	}

	doc, err := client.Load(ctx, cfg.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("load listing page: %w", err)
	}

	table := doc.Find(listingTableSelector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w on %s", ErrTableNotFound, cfg.ListingURL)
	}

	records, err := extractTable(table, site)
	if err != nil {
		return nil, fmt.Errorf("extract ships table: %w", err)
	}

	ds := domain.NewShipDataset()
	for _, rec := range records {
		ds.Add(rec)
	}
	return ds, nil
}
