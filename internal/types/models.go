package types

import (
	"fmt"
	"time"
)

type Channel string

const (
	ChannelVoice Channel = "VOICE"
	ChannelChat  Channel = "CHAT"
	ChannelEmail Channel = "EMAIL"
)

type Speaker string

const (
	SpeakerAgent    Speaker = "AGENT"
	SpeakerCustomer Speaker = "CUSTOMER"
	SpeakerSystem   Speaker = "SYSTEM"
	SpeakerIVR      Speaker = "IVR"
)

type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

type BusinessLine string

const (
	BusinessLineCollections BusinessLine = "COLLECTIONS"
	BusinessLineLoans       BusinessLine = "LOANS"
)

type Queue string

const (
	QueueStandard   Queue = "STANDARD"
	QueueHardship   Queue = "HARDSHIP"
	QueueDispute    Queue = "DISPUTE"
	QueueSupport    Queue = "SUPPORT"
	QueueEscalation Queue = "ESCALATION"
)

type CallOutcome string

const (
	OutcomePaymentPlanAgreed  CallOutcome = "PAYMENT_PLAN_AGREED"
	OutcomePaymentMade        CallOutcome = "PAYMENT_MADE"
	OutcomeCallbackScheduled  CallOutcome = "CALLBACK_SCHEDULED"
	OutcomeTransferred        CallOutcome = "TRANSFERRED"
	OutcomeWrongParty         CallOutcome = "WRONG_PARTY"
	OutcomeNoAnswer           CallOutcome = "NO_ANSWER"
	OutcomeVoicemail          CallOutcome = "VOICEMAIL"
	OutcomeResolvedWithAction CallOutcome = "RESOLVED_WITH_ACTION"
	OutcomeUnresolved         CallOutcome = "UNRESOLVED"
	OutcomeComplaintLodged    CallOutcome = "COMPLAINT_LODGED"
	OutcomeDisputeRaised      CallOutcome = "DISPUTE_RAISED"
)

// Turn is a single utterance in a conversation transcript.
type Turn struct {
	TurnIndex   int     `json:"turn_index"`
	Speaker     Speaker `json:"speaker"`
	Text        string  `json:"text"`
	TsOffsetSec float64 `json:"ts_offset_sec"`
}

// Transcription mirrors the transcription.json fixture format.
type Transcription struct {
	ConversationID string    `json:"conversation_id"`
	Channel        Channel   `json:"channel"`
	Language       string    `json:"language,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	DurationSec    int       `json:"duration_sec,omitempty"`
	Turns          []Turn    `json:"turns"`
}

// Labels carry test expectations and free-form tags from metadata.json.
type Labels struct {
	Priority            string   `json:"priority,omitempty"`
	TestCase            string   `json:"test_case,omitempty"`
	ExpectedRiskFlags   []string `json:"expected_risk_flags,omitempty"`
	ExpectedNextActions []string `json:"expected_next_actions,omitempty"`
}

// Metadata mirrors the metadata.json fixture format.
type Metadata struct {
	ConversationID string       `json:"conversation_id"`
	Direction      Direction    `json:"direction"`
	BusinessLine   BusinessLine `json:"business_line"`
	Queue          Queue        `json:"queue"`
	AgentID        string       `json:"agent_id"`
	AgentName      string       `json:"agent_name,omitempty"`
	Team           string       `json:"team,omitempty"`
	Site           string       `json:"site,omitempty"`
	PortfolioID    string       `json:"portfolio_id,omitempty"`
	CampaignID     string       `json:"campaign_id,omitempty"`
	CallOutcome    CallOutcome  `json:"call_outcome,omitempty"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	EndedAt        *time.Time   `json:"ended_at,omitempty"`
	DurationSec    int          `json:"duration_sec,omitempty"`
	Labels         *Labels      `json:"labels,omitempty"`
}

// Conversation pairs a transcription with its metadata. Immutable once loaded.
type Conversation struct {
	Transcription Transcription `json:"transcription"`
	Metadata      Metadata      `json:"metadata"`
}

func (c Conversation) ConversationID() string {
	return c.Transcription.ConversationID
}

// Duration returns duration_sec, falling back to the timestamp delta.
func (c Conversation) Duration() int {
	if c.Transcription.DurationSec > 0 {
		return c.Transcription.DurationSec
	}
	if c.Transcription.EndedAt.After(c.Transcription.StartedAt) {
		return int(c.Transcription.EndedAt.Sub(c.Transcription.StartedAt).Seconds())
	}
	return 0
}

// TranscriptText renders the turns as "SPEAKER: text" lines.
func (c Conversation) TranscriptText() string {
	out := ""
	for i, t := range c.Transcription.Turns {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%s: %s", t.Speaker, t.Text)
	}
	return out
}
