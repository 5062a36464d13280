package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"soclisten/internal/models"
	"soclisten/internal/reddit"
)

// Search tuning levers. The source caps any single relevance-ranked query at
// sourceMaxPerCall results, so requests above that threshold escalate through
// recency windows; the over-fetch margin absorbs duplicate collisions across
// windows and keywords without under-fetching.
const (
	sourceMaxPerCall = 1000
	overfetchMargin  = 100
	tierThreshold    = 1000

	// authorUnknown stands in for deleted or suspended accounts.
	authorUnknown = "Unknown"
)

// SubmissionSearcher is the raw content-search collaborator: one
// relevance-ranked query against one recency window.
type SubmissionSearcher interface {
	Search(ctx context.Context, term string, limit int, window string) ([]reddit.Submission, error)
}

// SearchEngine fans a multi-keyword search out across the source, paginating
// past its per-call cap via recency-window tiers and deduplicating by
// submission ID.
type SearchEngine struct {
	source SubmissionSearcher
}

func NewSearchEngine(source SubmissionSearcher) *SearchEngine {
	return &SearchEngine{source: source}
}

// Search returns up to limit unique posts for the given keywords, in
// insertion order: keyword order first, within-keyword relevance order
// second. A failed (keyword, window) fetch contributes zero results and is
// logged; the call itself only fails on cancellation.
func (e *SearchEngine) Search(ctx context.Context, keywords []string, limit int) ([]models.Post, error) {
	seen := make(map[string]struct{})
	posts := make([]models.Post, 0, limit)

	log.Infof("searching for keywords %v with limit %d", keywords, limit)

	for _, keyword := range keywords {
		if len(posts) >= limit {
			break
		}
		for _, window := range recencyTiers(limit) {
			if len(posts) >= limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return posts, err
			}

			remaining := limit - len(posts)
			fetchLimit := remaining + overfetchMargin
			if fetchLimit > sourceMaxPerCall {
				fetchLimit = sourceMaxPerCall
			}

			submissions, err := e.source.Search(ctx, keyword, fetchLimit, window)
			if err != nil {
				log.Warnf("search %q window=%s failed: %v", keyword, window, err)
				continue
			}

			found := 0
			for _, sub := range submissions {
				if _, ok := seen[sub.ID]; ok {
					continue
				}
				seen[sub.ID] = struct{}{}
				posts = append(posts, normalizeSubmission(sub))
				found++
				if len(posts) >= limit {
					break
				}
			}
			log.Debugf("keyword %q window=%s: %d new posts", keyword, window, found)
		}
	}

	log.Infof("search finished with %d unique posts", len(posts))
	return posts, nil
}

// recencyTiers returns the ordered windows to try per keyword. A single
// all-time query suffices until the requested volume exceeds the source's
// per-call cap, at which point relevance ranking saturates and we slice the
// index by recency instead, most recent first.
func recencyTiers(limit int) []string {
	if limit > tierThreshold {
		return []string{
			reddit.WindowHour,
			reddit.WindowDay,
			reddit.WindowWeek,
			reddit.WindowMonth,
			reddit.WindowYear,
			reddit.WindowAll,
		}
	}
	return []string{reddit.WindowAll}
}

// normalizeSubmission turns a raw submission into an immutable Post. Link
// posts carry no selftext, so a placeholder referencing the external URL is
// synthesized to give the classifier something to inspect.
func normalizeSubmission(sub reddit.Submission) models.Post {
	content := sub.Selftext
	if !sub.IsSelf && content == "" {
		content = fmt.Sprintf("[Link Post] %s", sub.URL)
	}

	author := sub.Author
	if author == "" {
		author = authorUnknown
	}

	return models.Post{
		ID:         sub.ID,
		Title:      sub.Title,
		Content:    content,
		URL:        "https://www.reddit.com" + sub.Permalink,
		CreatedUTC: sub.CreatedUTC,
		Author:     author,
	}
}
