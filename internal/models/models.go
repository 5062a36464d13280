package models

import "encoding/json"

// Post is a single piece of externally sourced content. Immutable once
// constructed by the search engine.
type Post struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
	Author     string  `json:"author"`
}

// Sentiment labels returned by the classification provider.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// AnalysisResult is the classification verdict for a single post. Created
// only by the batch classifier; immutable thereafter.
//
// ExemptionReason is nil when no reason was given. Note the provider is not
// forced to reconcile the exemption flag with the reason field: a result may
// carry PhilosophicalExemption=true with a nil reason, or a reason with the
// flag unset. We preserve that divergence rather than patching it up.
type AnalysisResult struct {
	PostID                 string  `json:"post_id"`
	Post                   Post    `json:"post"`
	Hesitancy              bool    `json:"hesitancy"`
	PhilosophicalExemption bool    `json:"philosophical_exemption"`
	ExemptionReason        *string `json:"exemption_reason"`
	Sentiment              string  `json:"sentiment"`
}

// AggregatedResult summarizes a completed analysis run. Recomputed fresh on
// every request; never mutated after construction.
type AggregatedResult struct {
	TotalAnalyzed       int              `json:"total_analyzed"`
	HesitancyRate       float64          `json:"hesitancy_rate"`
	ExemptionRate       float64          `json:"exemption_rate"`
	ReasonsDistribution map[string]int   `json:"reasons_distribution"`
	RecentResults       []AnalysisResult `json:"recent_results"`
}

// AnalysisRequest is the inbound request shape for an analysis run.
type AnalysisRequest struct {
	Keywords []string `json:"keywords"`
	Limit    int      `json:"limit"`
}

// Stream event statuses for the newline-delimited analysis protocol.
const (
	StatusProgress = "progress"
	StatusComplete = "complete"
	StatusError    = "error"
)

// StreamEvent is one newline-delimited record of the analysis stream.
// Progress events carry a message and counters, the terminal complete event
// carries the aggregate, and error events carry only a message.
type StreamEvent struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Extracted int               `json:"extracted"`
	Analyzed  int               `json:"analyzed"`
	Total     int               `json:"total"`
	Data      *AggregatedResult `json:"data"`
}

// MarshalJSON serializes each status as its own wire shape: progress records
// always carry all three counters, even at zero, while complete and error
// records carry only their own fields.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Status {
	case StatusComplete:
		return json.Marshal(struct {
			Status string            `json:"status"`
			Data   *AggregatedResult `json:"data"`
		}{e.Status, e.Data})
	case StatusError:
		return json.Marshal(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{e.Status, e.Message})
	default:
		return json.Marshal(struct {
			Status    string `json:"status"`
			Message   string `json:"message"`
			Extracted int    `json:"extracted"`
			Analyzed  int    `json:"analyzed"`
			Total     int    `json:"total"`
		}{e.Status, e.Message, e.Extracted, e.Analyzed, e.Total})
	}
}

// ProgressEvent builds a progress record with the current pipeline counters.
func ProgressEvent(message string, extracted, analyzed, total int) StreamEvent {
	return StreamEvent{
		Status:    StatusProgress,
		Message:   message,
		Extracted: extracted,
		Analyzed:  analyzed,
		Total:     total,
	}
}

// CompleteEvent builds the terminal record carrying the aggregate summary.
func CompleteEvent(data AggregatedResult) StreamEvent {
	return StreamEvent{Status: StatusComplete, Data: &data}
}

// ErrorEvent builds a terminal error record.
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Status: StatusError, Message: message}
}
