// Package registry tracks per-conversation pipeline state.
package registry

import "time"

type Status string

const (
	StatusNew      Status = "NEW"
	StatusIngested Status = "INGESTED"
	StatusEnriched Status = "ENRICHED"
	StatusFailed   Status = "FAILED"
)

// Entry records where a conversation is in the pipeline. It enables
// idempotent reprocessing and an audit trail of failures.
type Entry struct {
	ConversationID string     `json:"conversation_id"`
	Status         Status     `json:"status"`
	HasTranscript  bool       `json:"has_transcript"`
	HasMetadata    bool       `json:"has_metadata"`
	LastError      string     `json:"last_error,omitempty"`
	RetryCount     int        `json:"retry_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	EnrichedAt     *time.Time `json:"enriched_at,omitempty"`
}

// New creates a registry entry in status NEW.
func New(conversationID string) *Entry {
	now := time.Now().UTC()
	return &Entry{
		ConversationID: conversationID,
		Status:         StatusNew,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Ready reports whether both input files have been registered.
func (e *Entry) Ready() bool {
	return e.HasTranscript && e.HasMetadata
}

// MarkEnriched transitions the entry to ENRICHED.
func (e *Entry) MarkEnriched() {
	now := time.Now().UTC()
	e.Status = StatusEnriched
	e.EnrichedAt = &now
	e.UpdatedAt = now
	e.LastError = ""
}

// MarkFailed records a failure and bumps the retry counter.
func (e *Entry) MarkFailed(err error) {
	e.Status = StatusFailed
	if err != nil {
		e.LastError = err.Error()
	}
	e.RetryCount++
	e.UpdatedAt = time.Now().UTC()
}
