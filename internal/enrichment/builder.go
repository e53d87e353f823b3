// Package enrichment assembles per-conversation enrichment records from
// phrase match results and conversation metadata.
package enrichment

import (
	"fmt"
	"time"

	"cc-insights-go/internal/matcher"
	"cc-insights-go/internal/types"
)

// Builder produces EnrichmentRecords. Sentiment, summary, entities, QA
// scorecard and topic model are populated by external collaborators; the
// builder emits explicit NONE placeholders for them.
type Builder struct {
	matcher *matcher.Matcher
	now     func() time.Time
}

func NewBuilder(m *matcher.Matcher) *Builder {
	return &Builder{matcher: m, now: time.Now}
}

// Build scans the conversation and assembles its enrichment record.
func (b *Builder) Build(conv types.Conversation) (types.EnrichmentRecord, error) {
	results, err := b.matcher.Scan(conv.Transcription.Turns)
	if err != nil {
		return types.EnrichmentRecord{}, fmt.Errorf("scan %s: %w", conv.ConversationID(), err)
	}
	flags := matcher.Flags(results)

	rec := types.EnrichmentRecord{
		ConversationID: conv.ConversationID(),
		AgentID:        conv.Metadata.AgentID,
		Queue:          conv.Metadata.Queue,
		Direction:      conv.Metadata.Direction,
		CallOutcome:    conv.Metadata.CallOutcome,
		Transcript:     conv.TranscriptText(),
		TurnCount:      len(conv.Transcription.Turns),
		DurationSec:    conv.Duration(),
		PhraseMatches:  results,
		Flags:          flags,
		FlagCount:      len(flags),
		Sentiment:      types.NotComputed,
		Summary:        types.NotComputed,
		Entities:       []string{},
		QAScorecard:    types.QAScorecard{ScorecardName: types.NotComputed, Answers: []types.ScorecardAnswer{}, TagScores: map[string]float64{}},
		TopicModel:     types.TopicModel{ModelName: types.NotComputed, PrimaryTopic: types.TopicLabel{Name: types.NotComputed}, SecondaryTopics: []types.TopicLabel{}},
		EnrichedAt:     b.now().UTC(),
	}
	return rec, nil
}
