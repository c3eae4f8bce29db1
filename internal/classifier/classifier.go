package classifier

import (
	"context"
	"net/url"

	"sjsage522/taglikeworker/internal"
	"sjsage522/taglikeworker/internal/browser"
	"sjsage522/taglikeworker/logger"
	apperrors "sjsage522/taglikeworker/pkg/errors"
)

// ClassifyRequest asks for a decision on one item
type ClassifyRequest struct {
	ID     internal.ContentID
	Policy Policy
}

// Result holds the signals and decision for one item. Err keeps the cause
// of an extraction failure.
type Result struct {
	ID         internal.ContentID `json:"id"`
	LikeSignal LikeSignal         `json:"like_signal"`
	PromoScore PromoScore         `json:"promo_score"`
	Decision   Decision           `json:"decision"`
	Err        error              `json:"-"`
}

// Classifier opens items, reads their signals and triggers the action
type Classifier struct {
	driver   browser.Driver
	siteURL  string
	strategy Strategy
	log      *logger.Logger
}

// New creates a classifier using CurrentStrategy
func New(driver browser.Driver, siteURL string, log *logger.Logger) *Classifier {
	return &Classifier{
		driver:   driver,
		siteURL:  siteURL,
		strategy: CurrentStrategy,
		log:      log.ForClassifier(),
	}
}

// Strategy returns the signal extraction strategy in use
func (c *Classifier) Strategy() Strategy {
	return c.strategy
}

// ItemURL returns the detail page of id
func (c *Classifier) ItemURL(id internal.ContentID) string {
	return c.siteURL + "p/" + url.PathEscape(string(id)) + "/"
}

// OpenItem navigates to the detail page of id
func (c *Classifier) OpenItem(ctx context.Context, id internal.ContentID) error {
	return c.driver.Navigate(ctx, c.ItemURL(id))
}

// ReadSnapshot locates the action control on the open page
func (c *Classifier) ReadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := c.driver.Evaluate(ctx, c.strategy.SnapshotScript(), &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Classify opens the item and decides on it. Extraction failures become a
// skip with the cause kept in Result.Err; navigation failures are returned.
func (c *Classifier) Classify(ctx context.Context, req ClassifyRequest) (Result, error) {
	log := c.log.WithField("id", req.ID)
	result := Result{ID: req.ID, LikeSignal: LikeUnavailable}

	if err := c.OpenItem(ctx, req.ID); err != nil {
		return result, err
	}

	snap, err := c.ReadSnapshot(ctx)
	if err != nil {
		return c.extractionFailed(log, result, err)
	}

	like, err := c.strategy.ExtractLikeSignal(snap)
	if err != nil {
		return c.extractionFailed(log, result, err)
	}
	promo := c.strategy.ExtractPromoScore(snap)

	result.LikeSignal = like
	result.PromoScore = promo
	result.Decision = Decide(like, promo, req.Policy)

	log.Debug().
		Int("likes", int(like)).
		Int("promo_score", int(promo)).
		Stringer("decision", result.Decision).
		Msg("Classified item")

	return result, nil
}

func (c *Classifier) extractionFailed(log *logger.Logger, result Result, err error) (Result, error) {
	if !apperrors.IsRecoverable(err) {
		return result, err
	}
	log.Warn().Err(err).Msg("Signal extraction failed")
	result.Decision = Skip(ReasonExtractionFailed)
	result.Err = err
	return result, nil
}

// PerformApproval re-locates the action control on the open page and
// clicks it. It returns false when the control is gone, so an item is never
// actioned twice.
func (c *Classifier) PerformApproval(ctx context.Context) (bool, error) {
	var clicked bool
	if err := c.driver.Evaluate(ctx, c.strategy.ApproveScript(), &clicked); err != nil {
		return false, apperrors.NewAction("page", "failed to trigger action control", err)
	}
	return clicked, nil
}
