package crawler

import "sync/atomic"

// Progress tracks how far the batch has come. It replaces the original
// terminal progress bar with counters the status server and the summary
// log can both read.
type Progress struct {
	total      atomic.Int64
	done       atomic.Int64
	failed     atomic.Int64
	downloaded atomic.Int64
	skipped    atomic.Int64
}

// ProgressSnapshot is a point-in-time copy of the batch counters.
type ProgressSnapshot struct {
	ShipsTotal       int64 `json:"ships_total"`
	ShipsDone        int64 `json:"ships_done"`
	ShipsFailed      int64 `json:"ships_failed"`
	ImagesDownloaded int64 `json:"images_downloaded"`
	ImagesSkipped    int64 `json:"images_skipped"`
}

func (p *Progress) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		ShipsTotal:       p.total.Load(),
		ShipsDone:        p.done.Load(),
		ShipsFailed:      p.failed.Load(),
		ImagesDownloaded: p.downloaded.Load(),
		ImagesSkipped:    p.skipped.Load(),
	}
}
