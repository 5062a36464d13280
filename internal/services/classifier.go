package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"soclisten/internal/models"
	"soclisten/internal/textprep"
)

// ErrMalformedBatch marks a provider response whose overall structure could
// not be parsed. The batch contributes zero results; the pipeline continues.
var ErrMalformedBatch = errors.New("malformed classification batch")

// TextGenerator is the external classification capability: one prompt in,
// one text completion out. Implemented by the Gemini and OpenAI providers
// and by deterministic stubs in tests.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// BatchClassifier sends a batch of posts to the provider in a single call
// and maps the structured judgments back onto the posts. Individual bad
// records are dropped, never fatal; a batch-level failure yields zero
// results and a wrapped error for the caller to log.
type BatchClassifier struct {
	generator TextGenerator
	truncator *textprep.Truncator
}

func NewBatchClassifier(generator TextGenerator, truncator *textprep.Truncator) *BatchClassifier {
	return &BatchClassifier{generator: generator, truncator: truncator}
}

// judgment is the provider's verdict for one post, before validation.
// Booleans are pointers so explicit nulls coerce to false rather than
// failing the record.
type judgment struct {
	PostID                 string  `json:"post_id"`
	Hesitancy              *bool   `json:"hesitancy"`
	PhilosophicalExemption *bool   `json:"philosophical_exemption"`
	ExemptionReason        *string `json:"exemption_reason"`
	Sentiment              *string `json:"sentiment"`
}

// Classify runs one provider call over the batch. Every returned result
// references a post from the input; output length never exceeds input
// length. Empty input returns immediately with no external call.
func (c *BatchClassifier) Classify(ctx context.Context, posts []models.Post) ([]models.AnalysisResult, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	entries := make([]promptEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, promptEntry{
			ID:   p.ID,
			Text: c.truncator.Truncate(textprep.AnalyzableText(p.Title, p.Content)),
		})
	}

	prompt, err := buildBatchPrompt(entries)
	if err != nil {
		return nil, err
	}

	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", c.generator.Name(), err)
	}

	records, err := decodeJudgments(raw)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	// A provider that repeats a post_id produces one result per judgment;
	// duplicates are kept, not collapsed, so the aggregate reflects exactly
	// what the provider returned.
	results := make([]models.AnalysisResult, 0, len(records))
	for _, rec := range records {
		j, err := parseJudgment(rec)
		if err != nil {
			log.Warnf("dropping unparseable judgment: %v", err)
			continue
		}
		post, ok := byID[j.PostID]
		if !ok {
			// Provider hallucinated or mangled an identifier.
			continue
		}
		results = append(results, buildResult(post, j))
	}
	return results, nil
}

// ClassifyOne classifies a single post, falling back to an all-clear neutral
// result when the provider cannot produce a verdict for it.
func (c *BatchClassifier) ClassifyOne(ctx context.Context, post models.Post) models.AnalysisResult {
	results, err := c.Classify(ctx, []models.Post{post})
	if err != nil {
		log.Warnf("single-post classification failed: %v", err)
	}
	if len(results) > 0 {
		return results[0]
	}
	return models.AnalysisResult{
		PostID:    post.ID,
		Post:      post,
		Sentiment: models.SentimentNeutral,
	}
}

// decodeJudgments is the single "decode provider response" step: strip
// formatting decoration, then parse the batch structure. A failure here is
// typed as ErrMalformedBatch so callers can tell whole-batch loss apart from
// transport errors.
func decodeJudgments(raw string) ([]json.RawMessage, error) {
	cleaned := stripCodeFences(raw)

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	return records, nil
}

func parseJudgment(rec json.RawMessage) (judgment, error) {
	var j judgment
	if err := json.Unmarshal(rec, &j); err != nil {
		return judgment{}, fmt.Errorf("judgment record: %w", err)
	}
	if j.PostID == "" {
		return judgment{}, fmt.Errorf("judgment record missing post_id")
	}
	return j, nil
}

// buildResult applies the safe-default coercions: nil booleans become false,
// a missing sentiment becomes neutral, and an empty reason string becomes
// absent. The exemption flag and reason are intentionally not reconciled
// with each other.
func buildResult(post models.Post, j judgment) models.AnalysisResult {
	sentiment := models.SentimentNeutral
	if j.Sentiment != nil && *j.Sentiment != "" {
		sentiment = *j.Sentiment
	}

	var reason *string
	if j.ExemptionReason != nil && *j.ExemptionReason != "" {
		reason = j.ExemptionReason
	}

	return models.AnalysisResult{
		PostID:                 j.PostID,
		Post:                   post,
		Hesitancy:              j.Hesitancy != nil && *j.Hesitancy,
		PhilosophicalExemption: j.PhilosophicalExemption != nil && *j.PhilosophicalExemption,
		ExemptionReason:        reason,
		Sentiment:              sentiment,
	}
}
