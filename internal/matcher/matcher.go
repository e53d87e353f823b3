// Package matcher implements rule-based trigger phrase detection over
// conversation transcripts.
package matcher

import (
	"errors"
	"fmt"
	"strings"

	"cc-insights-go/internal/types"
)

var (
	// ErrConfig indicates a malformed phrase dictionary.
	ErrConfig = errors.New("matcher: invalid configuration")
	// ErrData indicates a transcript that is missing required fields.
	ErrData = errors.New("matcher: invalid transcript")
)

const snippetLen = 200

// Matcher scans transcripts against a validated phrase dictionary.
// Matching is case-insensitive and scoped to a single turn's text; a phrase
// spanning a turn boundary is not a match. Scanning is deterministic:
// identical input always yields identical output.
type Matcher struct {
	dict Dictionary

	// lowered[i][j] is the pre-lowered form of dict[i].Phrases[j].
	lowered [][]string
}

// New builds a Matcher, validating the dictionary up front.
func New(dict Dictionary) (*Matcher, error) {
	if err := dict.Validate(); err != nil {
		return nil, err
	}
	lowered := make([][]string, len(dict))
	for i, c := range dict {
		lowered[i] = make([]string, len(c.Phrases))
		for j, p := range c.Phrases {
			lowered[i][j] = strings.ToLower(p)
		}
	}
	return &Matcher{dict: dict, lowered: lowered}, nil
}

// Dictionary returns the dictionary the matcher was built with.
func (m *Matcher) Dictionary() Dictionary { return m.dict }

// Scan matches every configured category against the transcript turns.
// Every category appears in the result, including those with zero matches.
func (m *Matcher) Scan(turns []types.Turn) ([]types.CategoryResult, error) {
	if err := validateTurns(turns); err != nil {
		return nil, err
	}

	results := make([]types.CategoryResult, 0, len(m.dict))
	for i, cat := range m.dict {
		res := types.CategoryResult{
			Category:        cat.ID,
			DisplayName:     cat.DisplayName,
			Matches:         []types.PhraseMatch{},
			DistinctPhrases: []string{},
		}
		seen := make(map[string]struct{}, len(cat.Phrases))
		for _, turn := range turns {
			text := strings.ToLower(turn.Text)
			for j, phrase := range m.lowered[i] {
				for _, off := range occurrences(text, phrase) {
					res.Matches = append(res.Matches, types.PhraseMatch{
						Phrase:      cat.Phrases[j],
						TurnIndex:   turn.TurnIndex,
						Speaker:     turn.Speaker,
						CharOffset:  off,
						TextSnippet: snippet(turn.Text),
					})
					if _, ok := seen[phrase]; !ok {
						seen[phrase] = struct{}{}
						res.DistinctPhrases = append(res.DistinctPhrases, cat.Phrases[j])
					}
				}
			}
		}
		res.MatchCount = len(res.Matches)
		results = append(results, res)
	}
	return results, nil
}

func validateTurns(turns []types.Turn) error {
	for i, t := range turns {
		if strings.TrimSpace(t.Text) == "" {
			return fmt.Errorf("%w: turn %d has empty text", ErrData, i)
		}
		if t.Speaker == "" {
			return fmt.Errorf("%w: turn %d has no speaker", ErrData, i)
		}
		if t.TurnIndex < 0 {
			return fmt.Errorf("%w: turn %d has negative index", ErrData, i)
		}
	}
	return nil
}

// occurrences returns the byte offsets of every non-overlapping occurrence
// of phrase in text. Both arguments must already be lower-cased.
func occurrences(text, phrase string) []int {
	var offs []int
	start := 0
	for {
		idx := strings.Index(text[start:], phrase)
		if idx < 0 {
			return offs
		}
		offs = append(offs, start+idx)
		start += idx + len(phrase)
	}
}

func snippet(text string) string {
	if len(text) > snippetLen {
		return text[:snippetLen]
	}
	return text
}
