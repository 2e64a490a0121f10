package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// LogStore implements domain.WebhookLogStore and domain.EmailLogStore.
type LogStore struct {
	pool *pgxpool.Pool
}

// Compile-time checks.
var (
	_ domain.WebhookLogStore = (*LogStore)(nil)
	_ domain.EmailLogStore   = (*LogStore)(nil)
)

// NewLogStore creates a new LogStore.
func NewLogStore(p *pgxpool.Pool) *LogStore {
	return &LogStore{pool: p}
}

// InsertWebhookLog records a received webhook and returns its id.
func (s *LogStore) InsertWebhookLog(ctx context.Context, log domain.WebhookLog) (string, error) {
	const q = `
INSERT INTO webhook_logs (event_type, payload, signature_valid, processed, error_message)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`
	payload := log.Payload
	if len(payload) == 0 || !json.Valid(payload) {
		payload = json.RawMessage(`{}`)
	}
	eventType := log.EventType
	if eventType == "" {
		eventType = "unknown"
	}

	var id string
	if err := s.pool.QueryRow(ctx, q, eventType, []byte(payload), log.SignatureValid, log.Processed, log.ErrorMessage).Scan(&id); err != nil {
		return "", mapWriteError(err, "webhook_log.insert", "webhook log")
	}
	return id, nil
}

// MarkWebhookProcessed records the processing outcome.
func (s *LogStore) MarkWebhookProcessed(ctx context.Context, id string, processed bool, errMsg *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE webhook_logs SET processed = $2, error_message = $3 WHERE id = $1::uuid`,
		id, processed, errMsg,
	)
	return requireRow(tag, err, "webhook_log.mark", "webhook log", id)
}

// ListWebhookLogs returns the newest logs first.
func (s *LogStore) ListWebhookLogs(ctx context.Context, limit int) ([]domain.WebhookLog, error) {
	const q = `
SELECT id::text, event_type, payload, signature_valid, processed, error_message, created_at
FROM webhook_logs
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := s.pool.Query(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, domain.Internal(err, "webhook_log.list", "failed to list webhook logs")
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WebhookLog, error) {
		var (
			l       domain.WebhookLog
			payload []byte
		)
		err := row.Scan(&l.ID, &l.EventType, &payload, &l.SignatureValid, &l.Processed, &l.ErrorMessage, &l.CreatedAt)
		l.Payload = payload
		return l, err
	})
	if err != nil {
		return nil, domain.Internal(err, "webhook_log.list", "failed to list webhook logs")
	}
	return logs, nil
}

// InsertEmailLog records the final outcome of a send.
func (s *LogStore) InsertEmailLog(ctx context.Context, log domain.EmailLog) error {
	const q = `
INSERT INTO email_logs (to_email, template_type, order_metadata_id, status, provider_message_id, error_message)
VALUES ($1, $2, $3::uuid, $4, $5, $6)
`
	if _, err := s.pool.Exec(ctx, q, log.ToEmail, log.TemplateType, log.OrderMetadataID, log.Status, log.ProviderMessageID, log.ErrorMessage); err != nil {
		return mapWriteError(err, "email_log.insert", "email log")
	}
	return nil
}

// ListEmailLogs returns the newest logs first.
func (s *LogStore) ListEmailLogs(ctx context.Context, limit int) ([]domain.EmailLog, error) {
	const q = `
SELECT id::text, to_email, template_type, order_metadata_id::text, status, provider_message_id, error_message, created_at
FROM email_logs
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := s.pool.Query(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, domain.Internal(err, "email_log.list", "failed to list email logs")
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EmailLog, error) {
		var l domain.EmailLog
		err := row.Scan(&l.ID, &l.ToEmail, &l.TemplateType, &l.OrderMetadataID, &l.Status, &l.ProviderMessageID, &l.ErrorMessage, &l.CreatedAt)
		return l, err
	})
	if err != nil {
		return nil, domain.Internal(err, "email_log.list", "failed to list email logs")
	}
	return logs, nil
}
