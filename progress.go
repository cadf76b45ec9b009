package wikimcp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// progress logs an articles-per-second line every reportfreq accepted
// pages.
type progress struct {
	log        *slog.Logger
	reportfreq int64
	total      int64
	accepted   int64
	start      time.Time
	prev       time.Time
}

func newProgress(log *slog.Logger, reportfreq, total int64) *progress {
	if reportfreq <= 0 {
		reportfreq = DefaultReportEvery
	}
	now := time.Now()
	return &progress{
		log:        log,
		reportfreq: reportfreq,
		total:      total,
		start:      now,
		prev:       now,
	}
}

// page counts one accepted page.
func (p *progress) page() {
	p.accepted++
	if p.accepted%p.reportfreq != 0 {
		return
	}
	now := time.Now()
	d := now.Sub(p.prev)
	args := []any{
		"articles", humanize.Comma(p.accepted),
		"rate", fmt.Sprintf("%.2f/s", float64(p.reportfreq)/d.Seconds()),
	}
	if p.total > 0 {
		args = append(args, "dump_pages", humanize.Comma(p.total))
	}
	p.log.Info("Processed articles", args...)
	p.prev = now
}

func (p *progress) done(redirects int) {
	d := time.Since(p.start)
	p.log.Info("Parsed dump",
		"articles", humanize.Comma(p.accepted-int64(redirects)),
		"redirects", humanize.Comma(int64(redirects)),
		"elapsed", d.Round(time.Millisecond),
		"rate", fmt.Sprintf("%.2f/s", float64(p.accepted)/d.Seconds()))
}
