package models

import "time"

type EventType string

const (
	EventChargeSuccess   EventType = "charge.success"
	EventChargeFailed    EventType = "charge.failed"
	EventTransferSuccess EventType = "transfer.success"
	EventTransferFailed  EventType = "transfer.failed"
)

// WebhookEvent is one inbound gateway notification. The gateway-assigned
// event id is unique and is the anchor the whole dedup strategy hangs on.
type WebhookEvent struct {
	ID             string     `db:"id"`
	EventType      EventType  `db:"event_type"`
	GatewayEventID string     `db:"paystack_event_id"`
	Reference      string     `db:"reference"`
	Status         string     `db:"status"`
	RawData        []byte     `db:"raw_data"`
	Processed      bool       `db:"processed"`
	ProcessedAt    *time.Time `db:"processed_at"`
	CreatedAt      time.Time  `db:"created_at"`
}
