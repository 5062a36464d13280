package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// promptEntry is one (identifier, truncated text) pair submitted to the
// provider for classification.
type promptEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// batchPromptTemplate defines the classification contract: per-post
// hesitancy, philosophical exemption, exemption reason, sentiment, returned
// as a JSON list addressable by post_id. Off-topic posts must come back
// all-false/null/neutral.
const batchPromptTemplate = `You are an expert social listening analyst. Analyze the following Reddit posts for measles vaccine hesitancy.

For each post, determine:
1. Hesitancy (boolean): Is the user expressing doubt, fear, or refusal regarding the vaccine?
2. Philosophical Exemption (boolean): Are they discussing or seeking an exemption/waiver?
3. Exemption Reason (string or null): If exempt, why? (religious beliefs, philosophical objection, safety concerns, distrust in government/pharma, natural immunity).
4. Sentiment (string): positive, negative, or neutral.

CRITICAL:
- If the post is NOT about vaccines or measles (e.g. about love, songs, games), mark everything as False/null/neutral.
- Return ONLY a valid JSON list of objects.

Input Posts:
%s

Output Format:
[
    { "post_id": "id", "hesitancy": true, "philosophical_exemption": false, "exemption_reason": "safety concerns", "sentiment": "negative" },
    ...
]`

// buildBatchPrompt renders the classification prompt for a batch of entries.
func buildBatchPrompt(entries []promptEntry) (string, error) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling prompt entries: %w", err)
	}
	return fmt.Sprintf(batchPromptTemplate, payload), nil
}

// stripCodeFences removes markdown code-fence decoration that providers wrap
// around JSON output, leaving the payload ready for structural parsing.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
