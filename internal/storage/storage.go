// Package storage persists registry entries and enrichment records.
package storage

import (
	"errors"

	"cc-insights-go/internal/registry"
	"cc-insights-go/internal/types"
)

// ErrNotFound is returned when a conversation has no stored record.
var ErrNotFound = errors.New("storage: not found")

type Storage interface {
	UpsertRegistry(entry *registry.Entry) error
	GetRegistry(conversationID string) (*registry.Entry, error)
	ListRegistry(status registry.Status, limit int) ([]*registry.Entry, error)

	InsertEnrichment(rec types.EnrichmentRecord) error
	GetEnrichment(conversationID string) (types.EnrichmentRecord, error)
	ListEnrichments(limit int) ([]types.EnrichmentRecord, error)

	Close() error
}
