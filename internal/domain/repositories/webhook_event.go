package repositories

import (
	"context"

	"github.com/kolapay/paygate/internal/domain/models"
)

type WebhookEventRepository interface {
	// CreateIfAbsent inserts the event keyed by its gateway event id in a
	// single atomic statement. created is false when a row for that id
	// already exists, in which case the stored row is returned untouched.
	// A check-then-insert would reopen the duplicate-delivery race this
	// store exists to close.
	CreateIfAbsent(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, bool, error)
	MarkProcessed(ctx context.Context, gatewayEventID string) error
	GetByGatewayEventID(ctx context.Context, gatewayEventID string) (*models.WebhookEvent, error)
}
