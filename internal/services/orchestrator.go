package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"soclisten/internal/history"
	"soclisten/internal/models"
)

// Pipeline defaults. The chunk size stays well under any single provider
// call's practical cap so progress events are frequent, and the inter-chunk
// pause throttles call rate against provider rate limits while giving the
// transport a chance to flush.
const (
	DefaultChunkSize       = 30
	DefaultInterChunkPause = 2 * time.Second
)

// PostSearcher produces the ordered, deduplicated post list for a run.
type PostSearcher interface {
	Search(ctx context.Context, keywords []string, limit int) ([]models.Post, error)
}

// Classifier turns a chunk of posts into classification results.
type Classifier interface {
	Classify(ctx context.Context, posts []models.Post) ([]models.AnalysisResult, error)
}

// Orchestrator drives a full analysis run: search, chunked classification
// with progress events, cooperative cancellation at chunk boundaries, and
// the final aggregate. It owns the append into the process-lifetime history.
type Orchestrator struct {
	searcher   PostSearcher
	classifier Classifier
	history    *history.Store

	chunkSize int
	pause     time.Duration
}

func NewOrchestrator(searcher PostSearcher, classifier Classifier, hist *history.Store) *Orchestrator {
	return &Orchestrator{
		searcher:   searcher,
		classifier: classifier,
		history:    hist,
		chunkSize:  DefaultChunkSize,
		pause:      DefaultInterChunkPause,
	}
}

// SetPacing overrides chunk size and inter-chunk pause; used by the CLI and
// by tests that cannot afford real sleeps.
func (o *Orchestrator) SetPacing(chunkSize int, pause time.Duration) {
	if chunkSize > 0 {
		o.chunkSize = chunkSize
	}
	o.pause = pause
}

// Run executes the pipeline for one request, delivering events to emit in
// order and always finishing with a terminal complete or error event.
// Cancellation of ctx is polled at chunk boundaries only; an in-flight
// provider call is never aborted. Chunks run strictly sequentially so
// progress counts stay monotonically accurate.
func (o *Orchestrator) Run(ctx context.Context, req models.AnalysisRequest, emit func(models.StreamEvent)) {
	runID := uuid.NewString()
	logger := log.WithField("run_id", runID)

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("analysis pipeline panicked: %v", r)
			emit(models.ErrorEvent(fmt.Sprintf("internal error: %v", r)))
		}
	}()

	emit(models.ProgressEvent("Searching Reddit for posts...", 0, 0, 0))

	posts, err := o.searcher.Search(ctx, req.Keywords, req.Limit)
	if err != nil {
		logger.Warnf("search aborted: %v", err)
		emit(models.ErrorEvent(fmt.Sprintf("search failed: %v", err)))
		return
	}

	total := len(posts)
	emit(models.ProgressEvent(fmt.Sprintf("Found %d posts. Starting analysis...", total), total, 0, total))

	if total == 0 {
		emit(models.CompleteEvent(Aggregate(nil)))
		return
	}

	var results []models.AnalysisResult
	for start := 0; start < total; start += o.chunkSize {
		if ctx.Err() != nil {
			logger.Info("caller gone, stopping analysis early")
			break
		}

		end := start + o.chunkSize
		if end > total {
			end = total
		}
		chunk := posts[start:end]

		emit(models.ProgressEvent(
			fmt.Sprintf("Analyzing posts %d-%d of %d...", start+1, end, total),
			total, len(results), total,
		))

		batch, err := o.classifier.Classify(ctx, chunk)
		if err != nil {
			// The batch contributes nothing; later batches still run.
			logger.Warnf("batch %d-%d yielded no results: %v", start+1, end, err)
		}
		results = append(results, batch...)
		o.history.Append(batch)

		if end < total && !o.sleep(ctx) {
			logger.Info("caller gone during pause, stopping analysis early")
			break
		}
	}

	agg := Aggregate(results)
	logger.Infof("analysis complete: %d posts analyzed, hesitancy %.2f, exemption %.2f",
		agg.TotalAnalyzed, agg.HesitancyRate, agg.ExemptionRate)
	emit(models.CompleteEvent(agg))
}

// sleep waits out the inter-chunk pause, returning false if the context was
// cancelled first.
func (o *Orchestrator) sleep(ctx context.Context) bool {
	if o.pause <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(o.pause):
		return true
	}
}
