// Package pipeline orchestrates register, enrich and persist for one
// conversation or a full date batch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"cc-insights-go/internal/dataset"
	"cc-insights-go/internal/enrichment"
	"cc-insights-go/internal/registry"
	"cc-insights-go/internal/storage"
	"cc-insights-go/internal/types"
)

type Pipeline struct {
	store   storage.Storage
	builder *enrichment.Builder
	log     *logrus.Entry
}

// BatchResult summarizes a RunBatch invocation.
type BatchResult struct {
	Date     string   `json:"date"`
	Enriched int      `json:"enriched"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

func New(store storage.Storage, builder *enrichment.Builder, log *logrus.Entry) *Pipeline {
	return &Pipeline{store: store, builder: builder, log: log}
}

// Register records that a conversation's input files are present. Existing
// entries keep their status so reruns do not reset progress.
func (p *Pipeline) Register(ctx context.Context, conv types.Conversation) (*registry.Entry, error) {
	id := conv.ConversationID()
	entry, err := p.store.GetRegistry(id)
	if err == storage.ErrNotFound {
		entry = registry.New(id)
	} else if err != nil {
		return nil, fmt.Errorf("lookup registry %s: %w", id, err)
	}

	entry.HasTranscript = len(conv.Transcription.Turns) > 0
	entry.HasMetadata = conv.Metadata.AgentID != ""
	if entry.Status == registry.StatusNew && entry.Ready() {
		entry.Status = registry.StatusIngested
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := p.upsertWithRetry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Enrich runs the matcher over one conversation and persists the record.
// Conversations already in status ENRICHED are skipped.
func (p *Pipeline) Enrich(ctx context.Context, conv types.Conversation) (types.EnrichmentRecord, bool, error) {
	id := conv.ConversationID()
	log := p.log.WithField("conversation_id", id)

	entry, err := p.Register(ctx, conv)
	if err != nil {
		return types.EnrichmentRecord{}, false, err
	}
	if entry.Status == registry.StatusEnriched {
		log.Debug("already enriched, skipping")
		rec, err := p.store.GetEnrichment(id)
		if err != nil {
			return types.EnrichmentRecord{}, false, fmt.Errorf("load enrichment %s: %w", id, err)
		}
		return rec, true, nil
	}

	rec, err := p.builder.Build(conv)
	if err != nil {
		entry.MarkFailed(err)
		if upErr := p.upsertWithRetry(ctx, entry); upErr != nil {
			log.WithError(upErr).Error("failed to record failure")
		}
		return types.EnrichmentRecord{}, false, err
	}

	if err := p.insertWithRetry(ctx, rec); err != nil {
		entry.MarkFailed(err)
		if upErr := p.upsertWithRetry(ctx, entry); upErr != nil {
			log.WithError(upErr).Error("failed to record failure")
		}
		return types.EnrichmentRecord{}, false, err
	}

	entry.MarkEnriched()
	if err := p.upsertWithRetry(ctx, entry); err != nil {
		return types.EnrichmentRecord{}, false, err
	}

	log.WithField("flag_count", rec.FlagCount).Info("conversation enriched")
	return rec, false, nil
}

// RunBatch enriches every conversation under <root>/<date>. A conversation
// that fails is recorded and the batch continues.
func (p *Pipeline) RunBatch(ctx context.Context, root, date string) (BatchResult, []types.EnrichmentRecord, error) {
	convs, err := dataset.LoadDate(root, date)
	if err != nil {
		return BatchResult{}, nil, fmt.Errorf("load date %s: %w", date, err)
	}

	res := BatchResult{Date: date}
	var records []types.EnrichmentRecord
	for _, conv := range convs {
		rec, skipped, err := p.Enrich(ctx, conv)
		if err != nil {
			p.log.WithError(err).WithField("conversation_id", conv.ConversationID()).Error("enrich failed")
			res.Failed = append(res.Failed, conv.ConversationID())
			continue
		}
		if skipped {
			res.Skipped++
		} else {
			res.Enriched++
		}
		records = append(records, rec)
	}

	p.log.WithFields(logrus.Fields{
		"date":     date,
		"enriched": res.Enriched,
		"skipped":  res.Skipped,
		"failed":   len(res.Failed),
	}).Info("batch complete")
	return res, records, nil
}

func (p *Pipeline) upsertWithRetry(ctx context.Context, entry *registry.Entry) error {
	op := func() error { return p.store.UpsertRegistry(entry) }
	if err := backoff.Retry(op, storeBackoff(ctx)); err != nil {
		return fmt.Errorf("upsert registry %s: %w", entry.ConversationID, err)
	}
	return nil
}

func (p *Pipeline) insertWithRetry(ctx context.Context, rec types.EnrichmentRecord) error {
	op := func() error { return p.store.InsertEnrichment(rec) }
	if err := backoff.Retry(op, storeBackoff(ctx)); err != nil {
		return fmt.Errorf("insert enrichment %s: %w", rec.ConversationID, err)
	}
	return nil
}

func storeBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return backoff.WithContext(b, ctx)
}
