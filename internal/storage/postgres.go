package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"cc-insights-go/internal/registry"
	"cc-insights-go/internal/types"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &PostgresStorage{db: db}
	if err := s.initializeSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("execute migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) UpsertRegistry(entry *registry.Entry) error {
	query := `
		INSERT INTO conversation_registry
			(conversation_id, status, has_transcript, has_metadata, last_error, retry_count, created_at, updated_at, enriched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (conversation_id) DO UPDATE SET
			status = EXCLUDED.status,
			has_transcript = EXCLUDED.has_transcript,
			has_metadata = EXCLUDED.has_metadata,
			last_error = EXCLUDED.last_error,
			retry_count = EXCLUDED.retry_count,
			updated_at = EXCLUDED.updated_at,
			enriched_at = EXCLUDED.enriched_at`

	_, err := s.db.Exec(query,
		entry.ConversationID,
		entry.Status,
		entry.HasTranscript,
		entry.HasMetadata,
		entry.LastError,
		entry.RetryCount,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.EnrichedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert registry: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetRegistry(conversationID string) (*registry.Entry, error) {
	query := `
		SELECT conversation_id, status, has_transcript, has_metadata, last_error, retry_count, created_at, updated_at, enriched_at
		FROM conversation_registry
		WHERE conversation_id = $1`

	entry := &registry.Entry{}
	err := s.db.QueryRow(query, conversationID).Scan(
		&entry.ConversationID,
		&entry.Status,
		&entry.HasTranscript,
		&entry.HasMetadata,
		&entry.LastError,
		&entry.RetryCount,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.EnrichedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStorage) ListRegistry(status registry.Status, limit int) ([]*registry.Entry, error) {
	query := `
		SELECT conversation_id, status, has_transcript, has_metadata, last_error, retry_count, created_at, updated_at, enriched_at
		FROM conversation_registry`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY conversation_id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registry: %w", err)
	}
	defer rows.Close()

	var out []*registry.Entry
	for rows.Next() {
		entry := &registry.Entry{}
		if err := rows.Scan(
			&entry.ConversationID,
			&entry.Status,
			&entry.HasTranscript,
			&entry.HasMetadata,
			&entry.LastError,
			&entry.RetryCount,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.EnrichedAt,
		); err != nil {
			return nil, fmt.Errorf("scan registry row: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) InsertEnrichment(rec types.EnrichmentRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal enrichment: %w", err)
	}

	query := `
		INSERT INTO enrichment_records (conversation_id, agent_id, flag_count, record, enriched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (conversation_id) DO UPDATE SET
			agent_id = EXCLUDED.agent_id,
			flag_count = EXCLUDED.flag_count,
			record = EXCLUDED.record,
			enriched_at = EXCLUDED.enriched_at`

	if _, err := s.db.Exec(query, rec.ConversationID, rec.AgentID, rec.FlagCount, payload, rec.EnrichedAt); err != nil {
		return fmt.Errorf("insert enrichment: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetEnrichment(conversationID string) (types.EnrichmentRecord, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT record FROM enrichment_records WHERE conversation_id = $1`,
		conversationID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return types.EnrichmentRecord{}, ErrNotFound
	}
	if err != nil {
		return types.EnrichmentRecord{}, fmt.Errorf("get enrichment: %w", err)
	}

	var rec types.EnrichmentRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return types.EnrichmentRecord{}, fmt.Errorf("decode enrichment: %w", err)
	}
	return rec, nil
}

func (s *PostgresStorage) ListEnrichments(limit int) ([]types.EnrichmentRecord, error) {
	query := `SELECT record FROM enrichment_records ORDER BY conversation_id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list enrichments: %w", err)
	}
	defer rows.Close()

	var out []types.EnrichmentRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan enrichment row: %w", err)
		}
		var rec types.EnrichmentRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode enrichment: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) Close() error { return s.db.Close() }
