package matcher

import "cc-insights-go/internal/types"

// Risk flags derived from phrase match results, used for quick filtering.
const (
	FlagAgentComplianceViolation = "AGENT_COMPLIANCE_VIOLATION"
	FlagCustomerEscalation       = "CUSTOMER_ESCALATION"
	FlagVulnerabilityDetected    = "VULNERABILITY_DETECTED"
)

// Flags derives risk flags from category results. Order follows the result
// order, flags are emitted at most once.
func Flags(results []types.CategoryResult) []string {
	flags := []string{}
	seen := map[string]struct{}{}
	add := func(f string) {
		if _, ok := seen[f]; !ok {
			seen[f] = struct{}{}
			flags = append(flags, f)
		}
	}
	for _, r := range results {
		if !r.HasMatches() {
			continue
		}
		switch r.Category {
		case CategoryComplianceViolations:
			if len(r.AgentMatches()) > 0 {
				add(FlagAgentComplianceViolation)
			}
		case CategoryEscalationTriggers:
			if len(r.CustomerMatches()) > 0 {
				add(FlagCustomerEscalation)
			}
		case CategoryVulnerabilityIndicators:
			add(FlagVulnerabilityDetected)
		}
	}
	return flags
}
