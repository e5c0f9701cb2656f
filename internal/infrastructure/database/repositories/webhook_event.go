package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
	apperrors "github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
)

type WebhookEventRepositoryImpl struct {
	db     *pgxpool.Pool
	logger *zerolog.Logger
}

func NewWebhookEventRepositoryImpl(db *pgxpool.Pool) repositories.WebhookEventRepository {
	l := log.GetLogger()
	return &WebhookEventRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const insertEventIfAbsent = `
INSERT INTO webhook_events (id, event_type, paystack_event_id, reference, status, raw_data, processed)
VALUES ($1, $2, $3, $4, $5, $6, FALSE)
ON CONFLICT (paystack_event_id) DO NOTHING
RETURNING id, created_at;`

const selectEvent = `
SELECT id, event_type, paystack_event_id, reference, status, raw_data, processed, processed_at, created_at
FROM webhook_events WHERE paystack_event_id = $1`

// CreateIfAbsent inserts the event in one statement riding on the unique
// constraint over paystack_event_id. The conditional insert and the unique
// index together make the duplicate check atomic across replicas; no lock
// is taken. When the insert hits the conflict arm the existing row is
// returned with created=false.
func (r *WebhookEventRepositoryImpl) CreateIfAbsent(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, bool, error) {
	err := r.db.QueryRow(ctx, insertEventIfAbsent,
		event.ID,
		event.EventType,
		event.GatewayEventID,
		event.Reference,
		event.Status,
		event.RawData,
	).Scan(&event.ID, &event.CreatedAt)

	if err == nil {
		return event, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert webhook event: %w", err)
	}

	// Conflict: the row already exists, fetch it for the caller.
	existing, err := r.GetByGatewayEventID(ctx, event.GatewayEventID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// MarkProcessed flips the processed flag exactly once.
func (r *WebhookEventRepositoryImpl) MarkProcessed(ctx context.Context, gatewayEventID string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE webhook_events SET processed = TRUE, processed_at = now() WHERE paystack_event_id = $1 AND processed = FALSE",
		gatewayEventID,
	)
	if err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("event_id", gatewayEventID).Msg("Webhook event already processed or unknown")
	}
	return nil
}

func (r *WebhookEventRepositoryImpl) GetByGatewayEventID(ctx context.Context, gatewayEventID string) (*models.WebhookEvent, error) {
	event := &models.WebhookEvent{}
	err := r.db.QueryRow(ctx, selectEvent, gatewayEventID).Scan(
		&event.ID,
		&event.EventType,
		&event.GatewayEventID,
		&event.Reference,
		&event.Status,
		&event.RawData,
		&event.Processed,
		&event.ProcessedAt,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("webhook event")
		}
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	return event, nil
}
