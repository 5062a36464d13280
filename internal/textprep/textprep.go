// Package textprep builds the analyzable text sent to the classification
// provider and bounds its size so batch payload cost stays predictable.
package textprep

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// AnalyzableText joins a post's title and body into the text the classifier
// inspects. Link posts get a synthesized body upstream, so this is never
// title-only for content that had something to say.
func AnalyzableText(title, body string) string {
	return title + "\n" + body
}

// Truncator shortens text to a maximum rune count, preferring to cut at
// sentence boundaries so the provider sees whole statements.
type Truncator struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	maxRunes  int
}

func NewTruncator(maxRunes int) (*Truncator, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading sentence tokenizer: %w", err)
	}
	return &Truncator{tokenizer: tok, maxRunes: maxRunes}, nil
}

// Truncate returns text unchanged when it fits, otherwise the longest prefix
// of whole sentences within the limit. When even the first sentence exceeds
// the limit the cut is a hard one at maxRunes.
func (t *Truncator) Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= t.maxRunes {
		return text
	}

	var b strings.Builder
	count := 0
	for _, s := range t.tokenizer.Tokenize(text) {
		n := len([]rune(s.Text))
		if count+n > t.maxRunes {
			break
		}
		b.WriteString(s.Text)
		count += n
	}
	if count == 0 {
		return string(runes[:t.maxRunes])
	}
	return b.String()
}
