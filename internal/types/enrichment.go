package types

import "time"

// NotComputed marks an enrichment feature whose value has not been produced
// yet. Consumers treat it as an explicit "no result", distinct from empty.
const NotComputed = "NONE"

// PhraseMatch is a single phrase occurrence inside one turn.
type PhraseMatch struct {
	Phrase      string  `json:"phrase"`
	TurnIndex   int     `json:"turn_index"`
	Speaker     Speaker `json:"speaker"`
	CharOffset  int     `json:"char_offset"`
	TextSnippet string  `json:"text_snippet"`
}

// CategoryResult holds every match for one phrase category. A category with
// zero matches is still emitted so downstream consumers see an explicit
// empty result rather than an absent key.
type CategoryResult struct {
	Category        string        `json:"category"`
	DisplayName     string        `json:"display_name"`
	MatchCount      int           `json:"match_count"`
	Matches         []PhraseMatch `json:"matches"`
	DistinctPhrases []string      `json:"distinct_phrases"`
}

func (r CategoryResult) HasMatches() bool { return r.MatchCount > 0 }

// AgentMatches returns the matches found in agent turns.
func (r CategoryResult) AgentMatches() []PhraseMatch {
	return r.bySpeaker(SpeakerAgent)
}

// CustomerMatches returns the matches found in customer turns.
func (r CategoryResult) CustomerMatches() []PhraseMatch {
	return r.bySpeaker(SpeakerCustomer)
}

func (r CategoryResult) bySpeaker(s Speaker) []PhraseMatch {
	var out []PhraseMatch
	for _, m := range r.Matches {
		if m.Speaker == s {
			out = append(out, m)
		}
	}
	return out
}

// ScorecardAnswer is one answered question on a QA scorecard.
type ScorecardAnswer struct {
	QuestionID string  `json:"question_id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Tag        string  `json:"tag"`
}

// QAScorecard is populated by the external scorecard model. Until that
// collaborator runs, ScorecardName is NotComputed.
type QAScorecard struct {
	ScorecardName string             `json:"scorecard_name"`
	OverallScore  float64            `json:"overall_score"`
	Answers       []ScorecardAnswer  `json:"answers"`
	TagScores     map[string]float64 `json:"tag_scores"`
}

type TopicLabel struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// TopicModel is populated by the external topic model. Until that
// collaborator runs, ModelName is NotComputed.
type TopicModel struct {
	ModelName       string       `json:"model_name"`
	PrimaryTopic    TopicLabel   `json:"primary_topic"`
	SecondaryTopics []TopicLabel `json:"secondary_topics"`
}

// EnrichmentRecord is the per-conversation output aggregating phrase match
// results with placeholders for features computed elsewhere.
type EnrichmentRecord struct {
	ConversationID string           `json:"conversation_id"`
	AgentID        string           `json:"agent_id"`
	Queue          Queue            `json:"queue,omitempty"`
	Direction      Direction        `json:"direction,omitempty"`
	CallOutcome    CallOutcome      `json:"call_outcome,omitempty"`
	Transcript     string           `json:"transcript"`
	TurnCount      int              `json:"turn_count"`
	DurationSec    int              `json:"duration_sec"`
	PhraseMatches  []CategoryResult `json:"phrase_matches"`
	Flags          []string         `json:"flags"`
	FlagCount      int              `json:"flag_count"`
	Sentiment      string           `json:"sentiment"`
	Summary        string           `json:"summary"`
	Entities       []string         `json:"entities"`
	QAScorecard    QAScorecard      `json:"qa_scorecard"`
	TopicModel     TopicModel       `json:"topic_model"`
	EnrichedAt     time.Time        `json:"enriched_at"`
}

// Category returns the result for one category, or nil if absent.
func (e *EnrichmentRecord) Category(id string) *CategoryResult {
	for i := range e.PhraseMatches {
		if e.PhraseMatches[i].Category == id {
			return &e.PhraseMatches[i]
		}
	}
	return nil
}

// TotalMatchCount sums matches across all categories.
func (e *EnrichmentRecord) TotalMatchCount() int {
	n := 0
	for _, r := range e.PhraseMatches {
		n += r.MatchCount
	}
	return n
}
