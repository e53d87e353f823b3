package matcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"cc-insights-go/internal/types"
)

func mustMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := New(DefaultDictionary())
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	return m
}

func category(t *testing.T, results []types.CategoryResult, id string) types.CategoryResult {
	t.Helper()
	for _, r := range results {
		if r.Category == id {
			return r
		}
	}
	t.Fatalf("category %q missing from results", id)
	return types.CategoryResult{}
}

func hasPhrase(r types.CategoryResult, phrase string) bool {
	for _, p := range r.DistinctPhrases {
		if p == phrase {
			return true
		}
	}
	return false
}

func toxicAgentTurns() []types.Turn {
	return []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerAgent, Text: "You need to pay today or we will take legal action against you.", TsOffsetSec: 0},
		{TurnIndex: 1, Speaker: types.SpeakerCustomer, Text: "I just lost my job, I can't pay right now.", TsOffsetSec: 6.5},
		{TurnIndex: 2, Speaker: types.SpeakerAgent, Text: "We will garnish wages and put a lien on property if this isn't settled.", TsOffsetSec: 12},
		{TurnIndex: 3, Speaker: types.SpeakerCustomer, Text: "That seems really harsh.", TsOffsetSec: 20},
	}
}

func exemplaryAgentTurns() []types.Turn {
	return []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerAgent, Text: "Thanks for taking my call today.", TsOffsetSec: 0},
		{TurnIndex: 1, Speaker: types.SpeakerCustomer, Text: "I've been in hospital and I'm behind on everything.", TsOffsetSec: 4},
		{TurnIndex: 2, Speaker: types.SpeakerAgent, Text: "I'm sorry to hear that. I understand this is stressful, let's look at a payment plan.", TsOffsetSec: 10},
		{TurnIndex: 3, Speaker: types.SpeakerCustomer, Text: "That would help a lot, thank you.", TsOffsetSec: 18},
	}
}

func happyPathTurns() []types.Turn {
	return []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerAgent, Text: "Good morning, calling about your account balance.", TsOffsetSec: 0},
		{TurnIndex: 1, Speaker: types.SpeakerCustomer, Text: "Oh yes, I meant to pay that last week.", TsOffsetSec: 5},
		{TurnIndex: 2, Speaker: types.SpeakerAgent, Text: "No trouble at all, I can take a payment now.", TsOffsetSec: 9},
		{TurnIndex: 3, Speaker: types.SpeakerCustomer, Text: "Great, let's do it.", TsOffsetSec: 14},
	}
}

func wrongPartyTurns() []types.Turn {
	return []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerAgent, Text: "Hello, may I speak with Daniel Moore?", TsOffsetSec: 0},
		{TurnIndex: 1, Speaker: types.SpeakerCustomer, Text: "There's no Daniel here. You have the wrong number, stop calling me.", TsOffsetSec: 4},
		{TurnIndex: 2, Speaker: types.SpeakerAgent, Text: "Apologies, I'll remove this number from our list.", TsOffsetSec: 11},
	}
}

func TestScan_ToxicAgent(t *testing.T) {
	m := mustMatcher(t)
	results, err := m.Scan(toxicAgentTurns())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	comp := category(t, results, CategoryComplianceViolations)
	for _, want := range []string{"legal action", "garnish wages", "lien on property"} {
		if !hasPhrase(comp, want) {
			t.Fatalf("expected compliance phrase %q, got %v", want, comp.DistinctPhrases)
		}
	}
	if emp := category(t, results, CategoryEmpathyIndicators); emp.MatchCount != 0 {
		t.Fatalf("expected no empathy matches, got %v", emp.DistinctPhrases)
	}
	if vuln := category(t, results, CategoryVulnerabilityIndicators); !hasPhrase(vuln, "lost my job") {
		t.Fatalf("expected vulnerability phrase from customer turn, got %v", vuln.DistinctPhrases)
	}
}

func TestScan_ExemplaryAgent(t *testing.T) {
	m := mustMatcher(t)
	results, err := m.Scan(exemplaryAgentTurns())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if comp := category(t, results, CategoryComplianceViolations); comp.MatchCount != 0 {
		t.Fatalf("expected no compliance matches, got %v", comp.DistinctPhrases)
	}
	emp := category(t, results, CategoryEmpathyIndicators)
	for _, want := range []string{"I'm sorry", "I understand"} {
		if !hasPhrase(emp, want) {
			t.Fatalf("expected empathy phrase %q, got %v", want, emp.DistinctPhrases)
		}
	}
	for _, m := range emp.Matches {
		if m.TurnIndex != 2 {
			t.Fatalf("empathy match attributed to wrong turn: %+v", m)
		}
		if m.Speaker != types.SpeakerAgent {
			t.Fatalf("empathy match attributed to wrong speaker: %+v", m)
		}
	}
}

func TestScan_HappyPath(t *testing.T) {
	m := mustMatcher(t)
	results, err := m.Scan(happyPathTurns())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, id := range []string{CategoryComplianceViolations, CategoryEscalationTriggers, CategoryVulnerabilityIndicators} {
		if r := category(t, results, id); r.MatchCount != 0 {
			t.Fatalf("expected %s empty, got %v", id, r.DistinctPhrases)
		}
	}
}

func TestScan_WrongParty(t *testing.T) {
	m := mustMatcher(t)
	results, err := m.Scan(wrongPartyTurns())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	esc := category(t, results, CategoryEscalationTriggers)
	if !hasPhrase(esc, "stop calling") {
		t.Fatalf("expected escalation phrase \"stop calling\", got %v", esc.DistinctPhrases)
	}
	if comp := category(t, results, CategoryComplianceViolations); comp.MatchCount != 0 {
		t.Fatalf("expected no compliance matches, got %v", comp.DistinctPhrases)
	}
}

func TestScan_EmptyTranscript(t *testing.T) {
	m := mustMatcher(t)
	results, err := m.Scan(nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(results) != len(DefaultDictionary()) {
		t.Fatalf("expected all categories present, got %d", len(results))
	}
	for _, r := range results {
		if r.MatchCount != 0 || len(r.Matches) != 0 || len(r.DistinctPhrases) != 0 {
			t.Fatalf("expected explicit empty result for %s: %+v", r.Category, r)
		}
	}
}

func TestScan_Deterministic(t *testing.T) {
	m := mustMatcher(t)
	turns := toxicAgentTurns()

	first, err := m.Scan(turns)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	second, err := m.Scan(turns)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("scan output not byte-identical across runs:\n%s\n%s", a, b)
	}
}

func TestScan_NoCrossTurnMatch(t *testing.T) {
	m := mustMatcher(t)
	// "legal" ends one turn and "action" starts the next; the phrase
	// "legal action" must not match across the boundary.
	turns := []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerAgent, Text: "This could become legal"},
		{TurnIndex: 1, Speaker: types.SpeakerAgent, Text: "action is something we avoid"},
	}
	results, err := m.Scan(turns)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if comp := category(t, results, CategoryComplianceViolations); comp.MatchCount != 0 {
		t.Fatalf("phrase matched across turn boundary: %v", comp.Matches)
	}
}

func TestScan_RepeatedPhraseCountedOnceListed(t *testing.T) {
	m := mustMatcher(t)
	turns := []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerAgent, Text: "I'm sorry about the wait. I'm sorry we couldn't call sooner."},
	}
	results, err := m.Scan(turns)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	emp := category(t, results, CategoryEmpathyIndicators)
	occ := 0
	for _, pm := range emp.Matches {
		if pm.Phrase == "I'm sorry" {
			occ++
		}
	}
	if occ != 2 {
		t.Fatalf("expected 2 occurrences of repeated phrase, got %d", occ)
	}
	listed := 0
	for _, p := range emp.DistinctPhrases {
		if p == "I'm sorry" {
			listed++
		}
	}
	if listed != 1 {
		t.Fatalf("expected repeated phrase listed once, listed %d times", listed)
	}
}

func TestScan_CategoryIndependence(t *testing.T) {
	dict := Dictionary{
		{ID: "alpha", DisplayName: "Alpha", Phrases: []string{"shared phrase"}},
		{ID: "beta", DisplayName: "Beta", Phrases: []string{"shared phrase", "beta only"}},
	}
	m, err := New(dict)
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	turns := []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerCustomer, Text: "this contains the shared phrase and beta only text"},
	}
	results, err := m.Scan(turns)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	alpha := category(t, results, "alpha")
	beta := category(t, results, "beta")
	if !hasPhrase(alpha, "shared phrase") || !hasPhrase(beta, "shared phrase") {
		t.Fatalf("shared phrase should match in both categories independently")
	}
	if hasPhrase(alpha, "beta only") {
		t.Fatalf("beta phrase leaked into alpha results")
	}
}

func TestScan_CaseInsensitive(t *testing.T) {
	m := mustMatcher(t)
	turns := []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerCustomer, Text: "STOP CALLING me right now"},
	}
	results, err := m.Scan(turns)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if esc := category(t, results, CategoryEscalationTriggers); !hasPhrase(esc, "stop calling") {
		t.Fatalf("expected case-insensitive match, got %v", esc.DistinctPhrases)
	}
}

func TestScan_OffsetsRecorded(t *testing.T) {
	m := mustMatcher(t)
	turns := []types.Turn{
		{TurnIndex: 0, Speaker: types.SpeakerCustomer, Text: "please stop calling"},
	}
	results, err := m.Scan(turns)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	esc := category(t, results, CategoryEscalationTriggers)
	if len(esc.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(esc.Matches))
	}
	if got, want := esc.Matches[0].CharOffset, 7; got != want {
		t.Fatalf("offset = %d, want %d", got, want)
	}
}

func TestScan_DataError(t *testing.T) {
	m := mustMatcher(t)
	_, err := m.Scan([]types.Turn{{TurnIndex: 0, Speaker: types.SpeakerAgent, Text: "   "}})
	if !errors.Is(err, ErrData) {
		t.Fatalf("expected ErrData, got %v", err)
	}
	_, err = m.Scan([]types.Turn{{TurnIndex: 0, Text: "hello"}})
	if !errors.Is(err, ErrData) {
		t.Fatalf("expected ErrData for missing speaker, got %v", err)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		dict Dictionary
	}{
		{"empty dictionary", Dictionary{}},
		{"empty category id", Dictionary{{ID: "  ", DisplayName: "X", Phrases: []string{"a"}}}},
		{"no phrases", Dictionary{{ID: "x", DisplayName: "X", Phrases: nil}}},
		{"blank phrase", Dictionary{{ID: "x", DisplayName: "X", Phrases: []string{"ok", " "}}}},
		{"duplicate category", Dictionary{
			{ID: "x", DisplayName: "X", Phrases: []string{"a"}},
			{ID: "x", DisplayName: "X2", Phrases: []string{"b"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.dict); !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestFlags(t *testing.T) {
	m := mustMatcher(t)

	toxic, err := m.Scan(toxicAgentTurns())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	flags := Flags(toxic)
	want := map[string]bool{FlagAgentComplianceViolation: true, FlagVulnerabilityDetected: true}
	for _, f := range flags {
		if !want[f] {
			t.Fatalf("unexpected flag %q in %v", f, flags)
		}
		delete(want, f)
	}
	if len(want) != 0 {
		t.Fatalf("missing flags: %v (got %v)", want, flags)
	}

	wrong, err := m.Scan(wrongPartyTurns())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	wf := Flags(wrong)
	if len(wf) != 1 || wf[0] != FlagCustomerEscalation {
		t.Fatalf("expected only CUSTOMER_ESCALATION, got %v", wf)
	}

	happy, err := m.Scan(happyPathTurns())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if hf := Flags(happy); len(hf) != 0 {
		t.Fatalf("expected no flags for happy path, got %v", hf)
	}
}
