// Package actionable turns aggregate insights into coaching action cards.
package actionable

import (
	"fmt"
	"sort"

	"cc-insights-go/internal/aggregator"
	"cc-insights-go/internal/matcher"
)

type ActionCard struct {
	AgentID string `json:"agent_id,omitempty"`
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Thresholds are fractions of an agent's calls carrying the flag.
const (
	complianceThreshold = 0.10
	escalationThreshold = 0.30
)

// Generate produces one card per concerning pattern, plus a monitoring card
// when nothing crosses a threshold. Cards are ordered by agent id.
func Generate(ins aggregator.Insight) []ActionCard {
	var cards []ActionCard

	agents := append([]aggregator.AgentInsight(nil), ins.Agents...)
	sort.Slice(agents, func(i, j int) bool { return agents[i].AgentID < agents[j].AgentID })

	for _, a := range agents {
		if a.CallCount == 0 {
			continue
		}
		if rate := flagRate(a, matcher.FlagAgentComplianceViolation); rate >= complianceThreshold {
			cards = append(cards, ActionCard{
				AgentID: a.AgentID,
				Insight: fmt.Sprintf("Compliance violations on %.0f%% of %s's calls", rate*100, a.AgentID),
				Action:  "Schedule compliance refresher and review flagged calls with the agent",
				Impact:  "Reduce regulatory exposure",
			})
		}
		if rate := flagRate(a, matcher.FlagCustomerEscalation); rate >= escalationThreshold {
			cards = append(cards, ActionCard{
				AgentID: a.AgentID,
				Insight: fmt.Sprintf("Customers escalate on %.0f%% of %s's calls", rate*100, a.AgentID),
				Action:  "Coach on de-escalation; pair with a senior agent for the next shift",
				Impact:  "Fewer supervisor transfers and complaints",
			})
		}
	}

	if vuln := ins.FlagCounts[matcher.FlagVulnerabilityDetected]; vuln > 0 {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("%d conversations with vulnerability indicators", vuln),
			Action:  "Route flagged conversations to the vulnerable-customer review queue",
			Impact:  "Meet duty-of-care obligations",
		})
	}

	if len(cards) == 0 {
		cards = append(cards, ActionCard{
			Insight: "No concerning pattern detected",
			Action:  "Monitor and collect more data",
			Impact:  "Low immediate intervention",
		})
	}
	return cards
}

func flagRate(a aggregator.AgentInsight, flag string) float64 {
	return float64(a.FlagCounts[flag]) / float64(a.CallCount)
}
