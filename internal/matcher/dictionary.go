package matcher

import (
	"fmt"
	"strings"
)

// Category identifiers. The set is fixed; phrase lists are configurable.
const (
	CategoryComplianceViolations    = "compliance_violations"
	CategoryRequiredDisclosures     = "required_disclosures"
	CategoryEmpathyIndicators       = "empathy_indicators"
	CategoryEscalationTriggers      = "escalation_triggers"
	CategoryVulnerabilityIndicators = "vulnerability_indicators"
)

// CategoryConfig is one phrase category: a stable id, a human-readable
// display name, and an ordered phrase list.
type CategoryConfig struct {
	ID          string   `json:"id" mapstructure:"id"`
	DisplayName string   `json:"display_name" mapstructure:"display_name"`
	Phrases     []string `json:"phrases" mapstructure:"phrases"`
}

// Dictionary is an ordered set of categories. Order is part of the contract:
// scan output follows dictionary order so identical input yields identical
// output.
type Dictionary []CategoryConfig

// DefaultDictionary returns the built-in trigger phrase configuration.
func DefaultDictionary() Dictionary {
	return Dictionary{
		{
			ID:          CategoryComplianceViolations,
			DisplayName: "Compliance Violations",
			Phrases: []string{
				"legal action",
				"take you to court",
				"sue you",
				"garnish your wages",
				"garnish wages",
				"seize your property",
				"lien on your property",
				"lien on property",
				"send lawyers",
				"our lawyers",
				"heard every excuse",
				"not our problem",
				"doesn't pay bills",
				"don't be dramatic",
				"irresponsible",
				"couldn't be bothered",
			},
		},
		{
			ID:          CategoryRequiredDisclosures,
			DisplayName: "Required Disclosures",
			Phrases: []string{
				"right to dispute",
				"dispute this",
				"raise a dispute",
				"hardship",
				"hardship program",
				"hardship hold",
				"financial hardship",
				"hardship provisions",
				"payment arrangement",
				"payment plan",
				"flexible",
				"confirm your",
				"verify your",
				"date of birth",
			},
		},
		{
			ID:          CategoryEmpathyIndicators,
			DisplayName: "Empathy Indicators",
			Phrases: []string{
				"I understand",
				"I'm sorry",
				"I apologise",
				"that must be",
				"I can hear how",
				"I appreciate",
				"thank you for sharing",
				"difficult situation",
				"here to help",
				"let me help",
			},
		},
		{
			ID:          CategoryEscalationTriggers,
			DisplayName: "Escalation Triggers",
			Phrases: []string{
				"speak to supervisor",
				"speak to manager",
				"speak to a manager",
				"make a complaint",
				"file a complaint",
				"formal complaint",
				"recording this",
				"this is harassment",
				"stop calling",
				"stop harassing",
				"ombudsman",
				"AFCA",
			},
		},
		{
			ID:          CategoryVulnerabilityIndicators,
			DisplayName: "Vulnerability Indicators",
			Phrases: []string{
				"cancer",
				"hospital",
				"medical",
				"diagnosis",
				"surgery",
				"mental health",
				"anxiety",
				"depression",
				"panic attack",
				"dialysis",
				"lost my job",
				"job loss",
				"unemployed",
				"no income",
				"rent behind",
				"can't afford",
				"family violence",
				"domestic violence",
				"divorce",
				"separation",
			},
		},
	}
}

// Validate checks the dictionary is usable: at least one category, no empty
// category ids, no empty phrase lists, no blank phrases.
func (d Dictionary) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: dictionary has no categories", ErrConfig)
	}
	seen := make(map[string]struct{}, len(d))
	for i, c := range d {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("%w: category %d has empty id", ErrConfig, i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrConfig, c.ID)
		}
		seen[c.ID] = struct{}{}
		if len(c.Phrases) == 0 {
			return fmt.Errorf("%w: category %q has no phrases", ErrConfig, c.ID)
		}
		for j, p := range c.Phrases {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%w: category %q phrase %d is blank", ErrConfig, c.ID, j)
			}
		}
	}
	return nil
}

// Category returns the config for an id, or false if not configured.
func (d Dictionary) Category(id string) (CategoryConfig, bool) {
	for _, c := range d {
		if c.ID == id {
			return c, true
		}
	}
	return CategoryConfig{}, false
}
