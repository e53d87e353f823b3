package dataset

import (
	"cc-insights-go/internal/logger"
	"cc-insights-go/internal/types"
)

// Summary is a compact overview of a loaded date batch, served by the API
// without running enrichment.
type Summary struct {
	TotalConversations int            `json:"total_conversations"`
	ByQueue            map[string]int `json:"by_queue"`
	ByOutcome          map[string]int `json:"by_outcome"`
	ByAgent            map[string]int `json:"by_agent"`
	TotalTurns         int            `json:"total_turns"`
	AvgDurationSec     float64        `json:"avg_duration_sec"`
}

// Summarize computes a Summary over loaded conversations.
func Summarize(convs []types.Conversation) Summary {
	log := logger.New().WithField("component", "dataset.summary")

	s := Summary{
		ByQueue:   map[string]int{},
		ByOutcome: map[string]int{},
		ByAgent:   map[string]int{},
	}
	totalDur := 0
	for _, c := range convs {
		s.TotalConversations++
		s.TotalTurns += len(c.Transcription.Turns)
		totalDur += c.Duration()
		if q := string(c.Metadata.Queue); q != "" {
			s.ByQueue[q]++
		}
		if o := string(c.Metadata.CallOutcome); o != "" {
			s.ByOutcome[o]++
		}
		if a := c.Metadata.AgentID; a != "" {
			s.ByAgent[a]++
		}
	}
	if s.TotalConversations > 0 {
		s.AvgDurationSec = float64(totalDur) / float64(s.TotalConversations)
	}

	log.WithField("total_conversations", s.TotalConversations).
		WithField("total_turns", s.TotalTurns).
		Info("dataset summarized")
	return s
}
