// Package dataset loads conversation fixtures from the date-stamped
// directory layout: <root>/<YYYY-MM-DD>/<uuid>/{transcription.json,metadata.json}.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cc-insights-go/internal/logger"
	"cc-insights-go/internal/types"
)

// ErrValidation indicates a conversation directory that fails validation.
var ErrValidation = errors.New("dataset: invalid conversation")

const (
	transcriptionFile = "transcription.json"
	metadataFile      = "metadata.json"
)

// LoadConversation reads and validates a single conversation directory.
func LoadConversation(dir string) (types.Conversation, error) {
	var conv types.Conversation

	if err := readJSON(filepath.Join(dir, transcriptionFile), &conv.Transcription); err != nil {
		return conv, fmt.Errorf("%w: %s: %v", ErrValidation, transcriptionFile, err)
	}
	if err := readJSON(filepath.Join(dir, metadataFile), &conv.Metadata); err != nil {
		return conv, fmt.Errorf("%w: %s: %v", ErrValidation, metadataFile, err)
	}
	if err := validate(conv); err != nil {
		return conv, err
	}
	return conv, nil
}

// LoadDate loads every conversation under <root>/<date>, sorted by
// conversation ID. A directory that fails validation aborts the load;
// partial results are never returned silently.
func LoadDate(root, date string) ([]types.Conversation, error) {
	log := logger.New().WithField("component", "dataset").WithField("date", date)

	dateDir := filepath.Join(root, date)
	entries, err := os.ReadDir(dateDir)
	if err != nil {
		return nil, fmt.Errorf("read date folder: %w", err)
	}

	var out []types.Conversation
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		conv, err := LoadConversation(filepath.Join(dateDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("conversation %s: %w", e.Name(), err)
		}
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ConversationID() < out[j].ConversationID()
	})
	log.WithField("conversations", len(out)).Info("dataset loaded")
	return out, nil
}

// ValidationResult records the outcome of validating one conversation dir.
type ValidationResult struct {
	ConversationID string   `json:"conversation_id"`
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors,omitempty"`
}

// ValidateDate validates every conversation directory under <root>/<date>
// without aborting on the first failure.
func ValidateDate(root, date string) ([]ValidationResult, error) {
	dateDir := filepath.Join(root, date)
	entries, err := os.ReadDir(dateDir)
	if err != nil {
		return nil, fmt.Errorf("read date folder: %w", err)
	}

	var results []ValidationResult
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		res := ValidationResult{ConversationID: e.Name(), Valid: true}
		if _, err := LoadConversation(filepath.Join(dateDir, e.Name())); err != nil {
			res.Valid = false
			res.Errors = append(res.Errors, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
		}
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ConversationID < results[j].ConversationID
	})
	return results, nil
}

func readJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode: %v", err)
	}
	return nil
}

func validate(conv types.Conversation) error {
	tr := conv.Transcription
	md := conv.Metadata

	if tr.ConversationID == "" {
		return fmt.Errorf("%w: transcription missing conversation_id", ErrValidation)
	}
	if md.ConversationID == "" {
		return fmt.Errorf("%w: metadata missing conversation_id", ErrValidation)
	}
	if tr.ConversationID != md.ConversationID {
		return fmt.Errorf("%w: conversation_id mismatch: transcription=%s metadata=%s",
			ErrValidation, tr.ConversationID, md.ConversationID)
	}
	if len(tr.Turns) == 0 {
		return fmt.Errorf("%w: transcription has no turns", ErrValidation)
	}
	for i, t := range tr.Turns {
		if t.Text == "" {
			return fmt.Errorf("%w: turn %d has empty text", ErrValidation, i)
		}
		if t.TurnIndex != i {
			return fmt.Errorf("%w: turn %d has index %d, turns must be ordered", ErrValidation, i, t.TurnIndex)
		}
	}
	if md.AgentID == "" {
		return fmt.Errorf("%w: metadata missing agent_id", ErrValidation)
	}
	return nil
}
