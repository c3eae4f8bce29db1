package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sjsage522/taglikeworker/internal"
	"sjsage522/taglikeworker/internal/classifier"
	"sjsage522/taglikeworker/internal/collector"
	"sjsage522/taglikeworker/logger"
	apperrors "sjsage522/taglikeworker/pkg/errors"
	"sjsage522/taglikeworker/services/cache"

	"github.com/google/uuid"
)

// Event kinds written to the publisher
const (
	EventItem = "item"
	EventTag  = "tag"
)

// ContentCollector gathers the ids listed under a tag
type ContentCollector interface {
	Collect(ctx context.Context, req collector.CollectRequest) ([]internal.ContentID, error)
}

// ItemClassifier decides on items and performs the approval action
type ItemClassifier interface {
	Classify(ctx context.Context, req classifier.ClassifyRequest) (classifier.Result, error)
	PerformApproval(ctx context.Context) (bool, error)
}

// Options shapes a run
type Options struct {
	Policy         classifier.Policy
	MaxItemsPerTag int
	DryRun         bool
	VisitTTL       time.Duration
}

// Worker runs the collect/classify/approve pipeline over a list of tags. It
// drives a single browser session and processes one item at a time.
type Worker struct {
	collector  ContentCollector
	classifier ItemClassifier
	deps       internal.Dependencies
	opts       Options
	log        *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	col ContentCollector,
	cls ItemClassifier,
	deps internal.Dependencies,
	opts Options,
	log *logger.Logger,
) *Worker {
	return &Worker{
		collector:  col,
		classifier: cls,
		deps:       deps,
		opts:       opts,
		log:        log.ForWorker(),
	}
}

// TagReport summarises one tag of a run
type TagReport struct {
	RunID     string                        `json:"run_id"`
	Tag       string                        `json:"tag"`
	Collected int                           `json:"collected"`
	Processed int                           `json:"processed"`
	Eligible  int                           `json:"eligible"`
	Approved  int                           `json:"approved"`
	Failed    int                           `json:"failed"`
	Skipped   map[classifier.SkipReason]int `json:"skipped"`
	Error     string                        `json:"error,omitempty"`
	Elapsed   time.Duration                 `json:"elapsed"`
}

// ItemEvent is published for every processed item
type ItemEvent struct {
	RunID      string              `json:"run_id"`
	Tag        string              `json:"tag"`
	ID         internal.ContentID  `json:"id"`
	LikeSignal int                 `json:"like_signal"`
	PromoScore int                 `json:"promo_score"`
	Decision   classifier.Decision `json:"decision"`
	Approved   bool                `json:"approved"`
	DryRun     bool                `json:"dry_run,omitempty"`
	Error      string              `json:"error,omitempty"`
	At         time.Time           `json:"at"`
}

// Start runs the tags, then repeats every interval until ctx is done. A zero
// interval runs a single pass. Cancellation is a normal stop, also mid-pass.
func (w *Worker) Start(ctx context.Context, tags []string, interval time.Duration) error {
	for {
		start := time.Now()
		reports, err := w.RunForTags(ctx, tags)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info().Err(err).Int("tags_done", len(reports)).Msg("Run interrupted")
				return nil
			}
			return err
		}

		approved := 0
		for _, r := range reports {
			approved += r.Approved
		}
		w.log.Info().
			Int("tags", len(reports)).
			Int("approved", approved).
			Dur("elapsed", time.Since(start)).
			Msg("Run finished")

		if interval <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunForTags processes tags in order. An item that fails extraction or
// approval is reported and skipped; a collection failure aborts only its
// tag; a navigation failure aborts the run and is returned.
func (w *Worker) RunForTags(ctx context.Context, tags []string) ([]TagReport, error) {
	runID := uuid.NewString()
	log := w.log.WithField("run_id", runID)

	var reports []TagReport
	for _, tag := range tags {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := w.runTag(ctx, runID, tag, log.WithField("tag", tag))
		reports = append(reports, report)
		w.publish(ctx, log, EventTag, report)

		if err == nil {
			continue
		}
		if apperrors.IsNavigation(err) || ctx.Err() != nil {
			return reports, fmt.Errorf("tag %s: %w", tag, err)
		}
		log.Error().Err(err).Str("tag", tag).Msg("Tag aborted")
	}

	if w.deps.Publisher != nil {
		if err := w.deps.Publisher.TrimStreams(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to trim decision stream")
		}
	}

	return reports, nil
}

// runTag collects the ids of one tag and processes each of them
func (w *Worker) runTag(ctx context.Context, runID, tag string, log *logger.Logger) (TagReport, error) {
	start := time.Now()
	report := TagReport{
		RunID:   runID,
		Tag:     tag,
		Skipped: make(map[classifier.SkipReason]int),
	}

	ids, err := w.collector.Collect(ctx, collector.CollectRequest{
		Tag:         tag,
		ScrollCount: w.opts.Policy.ScrollCount,
	})
	if err != nil {
		report.Error = err.Error()
		report.Elapsed = time.Since(start)
		return report, err
	}
	report.Collected = len(ids)

	log.Info().
		Int("count", len(ids)).
		Interface("ids", ids).
		Msg("Collected content ids")

	if w.opts.MaxItemsPerTag > 0 && len(ids) > w.opts.MaxItemsPerTag {
		ids = ids[:w.opts.MaxItemsPerTag]
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			report.Error = err.Error()
			report.Elapsed = time.Since(start)
			return report, err
		}

		event, err := w.processItem(ctx, runID, tag, id, log.WithField("id", id))
		if err != nil {
			report.Error = err.Error()
			report.Elapsed = time.Since(start)
			return report, err
		}

		report.Processed++
		if event.Decision.Approved() {
			report.Eligible++
		} else {
			report.Skipped[event.Decision.Reason]++
		}
		if event.Approved {
			report.Approved++
		}
		if event.Error != "" {
			report.Failed++
		}
		w.publish(ctx, log, EventItem, event)
	}

	report.Elapsed = time.Since(start)
	log.Info().
		Int("processed", report.Processed).
		Int("approved", report.Approved).
		Int("failed", report.Failed).
		Interface("skipped", report.Skipped).
		Msg("Tag finished")

	return report, nil
}

// processItem classifies one item and approves it when the policy says so.
// Only non-recoverable errors are returned.
func (w *Worker) processItem(ctx context.Context, runID, tag string, id internal.ContentID, log *logger.Logger) (ItemEvent, error) {
	event := ItemEvent{
		RunID:      runID,
		Tag:        tag,
		ID:         id,
		LikeSignal: int(classifier.LikeUnavailable),
		DryRun:     w.opts.DryRun,
		At:         time.Now(),
	}

	if w.visited(runID, id, log) {
		event.Decision = classifier.Skip(classifier.ReasonVisited)
		log.Info().Str("reason", string(event.Decision.Reason)).Msg("Skipped item")
		return event, nil
	}

	result, err := w.classifier.Classify(ctx, classifier.ClassifyRequest{ID: id, Policy: w.opts.Policy})
	if err != nil {
		return event, err
	}
	w.markVisited(runID, id, log)

	event.LikeSignal = int(result.LikeSignal)
	event.PromoScore = int(result.PromoScore)
	event.Decision = result.Decision
	if result.Err != nil {
		event.Error = result.Err.Error()
	}

	if !result.Decision.Approved() {
		log.Info().
			Int("likes", event.LikeSignal).
			Int("promo_score", event.PromoScore).
			Str("reason", string(result.Decision.Reason)).
			AnErr("cause", result.Err).
			Msg("Skipped item")
		return event, nil
	}

	if w.opts.DryRun {
		log.Info().
			Int("likes", event.LikeSignal).
			Int("promo_score", event.PromoScore).
			Msg("Eligible item (dry run)")
		return event, nil
	}

	clicked, err := w.classifier.PerformApproval(ctx)
	if err != nil {
		if !apperrors.IsRecoverable(err) {
			return event, err
		}
		event.Error = err.Error()
		log.Warn().Err(err).Msg("Approval failed")
		return event, nil
	}

	event.Approved = clicked
	if clicked {
		log.Info().
			Int("likes", event.LikeSignal).
			Int("promo_score", event.PromoScore).
			Msg("Approved item")
	} else {
		log.Info().Msg("Action control disappeared before approval")
	}
	return event, nil
}

// visitKey scopes the visited marker to one run
func visitKey(runID string, id internal.ContentID) string {
	return "visited:" + runID + ":" + string(id)
}

func (w *Worker) visited(runID string, id internal.ContentID, log *logger.Logger) bool {
	if w.deps.Cache == nil {
		return false
	}
	_, err := w.deps.Cache.Get(visitKey(runID, id))
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(apperrors.NewCache(string(id), "visited lookup failed", err)).Msg("Cache error")
	}
	return false
}

func (w *Worker) markVisited(runID string, id internal.ContentID, log *logger.Logger) {
	if w.deps.Cache == nil {
		return
	}
	if err := w.deps.Cache.Set(visitKey(runID, id), []byte("1"), w.opts.VisitTTL); err != nil {
		log.Warn().Err(apperrors.NewCache(string(id), "visited mark failed", err)).Msg("Cache error")
	}
}

// publish writes an event; failures are logged and never stop the run
func (w *Worker) publish(ctx context.Context, log *logger.Logger, kind string, v any) {
	if w.deps.Publisher == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("Failed to encode event")
		return
	}
	if err := w.deps.Publisher.Publish(ctx, kind, data); err != nil {
		log.Warn().Err(apperrors.NewPublisher(kind, "publish failed", err)).Msg("Publisher error")
	}
}
