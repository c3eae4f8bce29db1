package collector

import (
	"context"
	"net/url"
	"time"

	"sjsage522/taglikeworker/internal"
	"sjsage522/taglikeworker/internal/browser"
	"sjsage522/taglikeworker/logger"
	apperrors "sjsage522/taglikeworker/pkg/errors"
)

// DefaultSettleDelay is the wait after each scroll for lazy content to render
const DefaultSettleDelay = 1500 * time.Millisecond

// CollectRequest asks for the ids listed under one tag
type CollectRequest struct {
	Tag         string
	ScrollCount int
}

// Collector scrapes content ids from tag listing pages
type Collector struct {
	driver  browser.Driver
	siteURL string
	settle  time.Duration
	log     *logger.Logger
}

// New creates a collector for the site rooted at siteURL (with trailing slash)
func New(driver browser.Driver, siteURL string, settle time.Duration, log *logger.Logger) *Collector {
	return &Collector{
		driver:  driver,
		siteURL: siteURL,
		settle:  settle,
		log:     log,
	}
}

// ListingURL returns the listing page for tag
func (c *Collector) ListingURL(tag string) string {
	return c.siteURL + "explore/tags/" + url.PathEscape(tag) + "/"
}

// Collect opens the tag listing, scrapes it, then scrolls ScrollCount times
// and scrapes again after each scroll. The result holds each id once.
// Navigation and evaluation failures are returned as is.
func (c *Collector) Collect(ctx context.Context, req CollectRequest) ([]internal.ContentID, error) {
	log := c.log.ForCollector(req.Tag)
	listingURL := c.ListingURL(req.Tag)

	if err := c.driver.Navigate(ctx, listingURL); err != nil {
		return nil, err
	}

	acc := newIDSet()
	if err := c.scrape(ctx, listingURL, acc); err != nil {
		return nil, err
	}
	log.Debug().Int("round", 0).Int("total", acc.Len()).Msg("Scraped listing")

	for i := 1; i <= req.ScrollCount; i++ {
		if err := c.driver.ScrollToBottom(ctx); err != nil {
			return nil, err
		}
		if err := c.driver.Sleep(ctx, c.settle); err != nil {
			return nil, err
		}

		before := acc.Len()
		if err := c.scrape(ctx, listingURL, acc); err != nil {
			return nil, err
		}
		log.Debug().
			Int("round", i).
			Int("new", acc.Len()-before).
			Int("total", acc.Len()).
			Msg("Scraped listing")
	}

	return acc.Slice(), nil
}

// scrape reads the rendered listing and unions its ids into acc
func (c *Collector) scrape(ctx context.Context, pageURL string, acc *idSet) error {
	var document string
	if err := c.driver.Evaluate(ctx, ListingScript, &document); err != nil {
		return err
	}

	ids, err := ExtractContentIDs(document, pageURL)
	if err != nil {
		return apperrors.NewParsing(pageURL, "failed to read listing", err)
	}
	acc.Add(ids...)
	return nil
}

// idSet is an insertion-ordered set of content ids
type idSet struct {
	seen  map[internal.ContentID]struct{}
	order []internal.ContentID
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[internal.ContentID]struct{})}
}

// Add inserts ids that are not yet present
func (s *idSet) Add(ids ...internal.ContentID) {
	for _, id := range ids {
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Len returns the number of distinct ids
func (s *idSet) Len() int {
	return len(s.order)
}

// Slice returns a copy of the ids
func (s *idSet) Slice() []internal.ContentID {
	out := make([]internal.ContentID, len(s.order))
	copy(out, s.order)
	return out
}
