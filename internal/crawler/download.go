package crawler

import (
	"context"
	"fmt"
	"os"
)

// download fetches one image to dest unless it is already there. The
// body streams into a temp file that is renamed into place on success,
// so an interrupted run can never leave a truncated file that would
// satisfy the exists check later.
func (c *Crawler) download(ctx context.Context, src, dest string) error {
	if !c.overwrite {
		if _, err := os.Stat(dest); err == nil {
			c.metrics.IncImagesSkipped("exists")
			return nil
		}
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	fetchErr := c.client.Download(ctx, src, f)
	closeErr := f.Close()
	if fetchErr != nil || closeErr != nil {
		os.Remove(tmp)
		if fetchErr != nil {
			return fetchErr
		}
		return closeErr
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	c.metrics.ImagesDownloaded.Inc()
	c.progress.downloaded.Add(1)
	return nil
}
