// Package aggregator rolls enrichment records up into per-agent insights.
package aggregator

import (
	"sort"

	"cc-insights-go/internal/types"
)

// AgentInsight summarizes one agent's enrichment results.
type AgentInsight struct {
	AgentID              string         `json:"agent_id"`
	CallCount            int            `json:"call_count"`
	MatchesByCategory    map[string]int `json:"matches_by_category"`
	FlagCounts           map[string]int `json:"flag_counts"`
	FlaggedConversations []string       `json:"flagged_conversations"`
	AvgDurationSec       float64        `json:"avg_duration_sec"`
}

// Insight is the batch-level rollup.
type Insight struct {
	TotalConversations int            `json:"total_conversations"`
	TotalMatches       int            `json:"total_matches"`
	FlagCounts         map[string]int `json:"flag_counts"`
	Agents             []AgentInsight `json:"agents"`
}

// Aggregate computes per-agent and overall rollups. Agents are sorted by id
// so the output is stable.
func Aggregate(records []types.EnrichmentRecord) Insight {
	ins := Insight{FlagCounts: map[string]int{}}
	byAgent := map[string]*AgentInsight{}
	durations := map[string]int{}

	for i := range records {
		r := &records[i]
		ins.TotalConversations++
		ins.TotalMatches += r.TotalMatchCount()

		a, ok := byAgent[r.AgentID]
		if !ok {
			a = &AgentInsight{
				AgentID:           r.AgentID,
				MatchesByCategory: map[string]int{},
				FlagCounts:        map[string]int{},
			}
			byAgent[r.AgentID] = a
		}
		a.CallCount++
		durations[r.AgentID] += r.DurationSec

		for _, cr := range r.PhraseMatches {
			a.MatchesByCategory[cr.Category] += cr.MatchCount
		}
		for _, f := range r.Flags {
			a.FlagCounts[f]++
			ins.FlagCounts[f]++
		}
		if len(r.Flags) > 0 {
			a.FlaggedConversations = append(a.FlaggedConversations, r.ConversationID)
		}
	}

	for id, a := range byAgent {
		if a.CallCount > 0 {
			a.AvgDurationSec = float64(durations[id]) / float64(a.CallCount)
		}
		sort.Strings(a.FlaggedConversations)
		ins.Agents = append(ins.Agents, *a)
	}
	sort.Slice(ins.Agents, func(i, j int) bool {
		return ins.Agents[i].AgentID < ins.Agents[j].AgentID
	})
	return ins
}
