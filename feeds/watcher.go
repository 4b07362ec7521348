package feeds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"reelscript/config"
	"reelscript/pipeline"
)

const defaultPollInterval = 15 * time.Minute

// Submitter accepts a video URL for processing. pipeline.Runner satisfies
// this.
type Submitter interface {
	Submit(ctx context.Context, url string) (*pipeline.SubmitResult, error)
}

// Watcher polls channel RSS/Atom feeds and submits newly published video
// links into the pipeline. URL-level deduplication in the store makes
// repeated polls harmless.
type Watcher struct {
	urls     []string
	interval time.Duration
	maxItems int
	parser   *gofeed.Parser
	pipeline Submitter
}

// NewWatcherFromEnv returns nil when FEED_URLS is unset, which disables
// feed watching.
func NewWatcherFromEnv(p Submitter) *Watcher {
	urls := config.GetEnvList("FEED_URLS")
	if len(urls) == 0 {
		return nil
	}

	interval := defaultPollInterval
	if secs := config.GetEnvInt("FEED_POLL_INTERVAL", 0); secs > 0 {
		interval = time.Duration(secs) * time.Second
	}

	log.Printf("[Feeds] watching %d feeds every %s", len(urls), interval)
	return &Watcher{
		urls:     urls,
		interval: interval,
		maxItems: config.GetEnvInt("FEED_MAX_ITEMS", 5),
		parser:   gofeed.NewParser(),
		pipeline: p,
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.pollAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollAll(ctx)
		}
	}
}

func (w *Watcher) pollAll(ctx context.Context) {
	for _, url := range w.urls {
		if err := w.poll(ctx, url); err != nil {
			log.Printf("[Feeds] %s: %v", url, err)
		}
	}
}

// poll fetches one feed and submits its newest entries. Entries whose link
// is not a supported video URL are skipped silently; already-known URLs
// come back flagged duplicate and are not logged.
func (w *Watcher) poll(ctx context.Context, feedURL string) error {
	feed, err := w.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return fmt.Errorf("fetching feed: %w", err)
	}

	count := min(len(feed.Items), w.maxItems)
	for i := 0; i < count; i++ {
		item := feed.Items[i]
		if item.Link == "" {
			continue
		}

		res, err := w.pipeline.Submit(ctx, item.Link)
		if err != nil {
			if errors.Is(err, pipeline.ErrUnsupportedURL) {
				continue
			}
			log.Printf("[Feeds] submitting %s: %v", item.Link, err)
			continue
		}
		if !res.Duplicate {
			log.Printf("[Feeds] queued %q from %s", item.Title, feed.Title)
		}
	}
	return nil
}
