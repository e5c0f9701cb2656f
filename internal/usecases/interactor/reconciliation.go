package interactor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kolapay/paygate/internal/domain/gateway"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
	apperrors "github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/internal/events"
	"github.com/kolapay/paygate/internal/usecases/dtos"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReconciliationInteractor owns all transaction mutations after creation.
// The verify path and the webhook path both funnel into applyOutcome, which
// is idempotent and safe under either arrival order.
type ReconciliationInteractor struct {
	transactionRepository repositories.TransactionRepository
	eventRepository       repositories.WebhookEventRepository
	gatewayClient         gateway.Client
	publisher             events.Publisher
	logger                *zerolog.Logger
}

func NewReconciliationInteractor(
	transactionRepository repositories.TransactionRepository,
	eventRepository repositories.WebhookEventRepository,
	gatewayClient gateway.Client,
	publisher events.Publisher,
) *ReconciliationInteractor {
	l := log.GetLogger()
	return &ReconciliationInteractor{
		transactionRepository: transactionRepository,
		eventRepository:       eventRepository,
		gatewayClient:         gatewayClient,
		publisher:             publisher,
		logger:                &l,
	}
}

// outcome is one gateway-reported result, regardless of which path
// delivered it.
type outcome struct {
	status            string
	gatewayReference  string
	channel           string
	gatewayResponse   string
	authorizationCode string
}

// VerifyPayment is the synchronous reconciliation path: ask the gateway for
// the charge's current state, fold it into the local record and return the
// reconciled view augmented with gateway-reported detail.
func (i *ReconciliationInteractor) VerifyPayment(ctx context.Context, reference string) (*dtos.VerifiedTransactionDTO, error) {
	if _, err := i.transactionRepository.GetByReference(ctx, reference); err != nil {
		return nil, err
	}

	result, err := i.gatewayClient.VerifyCharge(ctx, reference)
	if err != nil {
		// No local mutation on gateway failure; a retry is safe.
		return nil, err
	}

	transaction, err := i.applyOutcome(ctx, reference, outcome{
		status:            result.Status,
		gatewayReference:  result.Reference,
		channel:           result.Channel,
		gatewayResponse:   result.GatewayResponse,
		authorizationCode: result.AuthorizationCode,
	})
	if err != nil {
		return nil, err
	}

	view := &dtos.VerifiedTransactionDTO{
		TransactionViewDTO: dtos.NewTransactionView(transaction),
		GatewayStatus:      result.Status,
		GatewayReference:   result.Reference,
		AmountPaid:         minorUnitsToDecimal(result.AmountMinorUnits).StringFixed(2),
		Fees:               minorUnitsToDecimal(result.FeesMinorUnits).StringFixed(2),
		Customer:           result.Customer,
		Authorization:      result.Authorization,
	}
	return view, nil
}

// ProcessWebhook is the asynchronous reconciliation path. Duplicate
// deliveries and unknown references are acknowledged without error so the
// gateway stops retrying; only signature and transport problems surface.
func (i *ReconciliationInteractor) ProcessWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if signature == "" || !i.gatewayClient.VerifySignature(rawBody, signature) {
		i.logger.Warn().Msg("Webhook rejected: invalid signature")
		return apperrors.NewInvalidSignatureError()
	}

	var payload dtos.WebhookPayloadDTO
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		i.logger.Error().Err(err).Msg("Webhook rejected: malformed JSON payload")
		return apperrors.NewValidationError("", "malformed JSON payload")
	}

	eventID := payload.Data.ID.String()
	if eventID == "" {
		return apperrors.NewValidationError("data.id", "missing gateway event id")
	}

	event := &models.WebhookEvent{
		ID:             uuid.NewString(),
		EventType:      models.EventType(payload.Event),
		GatewayEventID: eventID,
		Reference:      payload.Data.Reference,
		Status:         payload.Data.Status,
		RawData:        rawBody,
	}

	_, created, err := i.eventRepository.CreateIfAbsent(ctx, event)
	if err != nil {
		return err
	}
	if !created {
		i.logger.Info().
			Str("event_id", eventID).
			Str("event_type", payload.Event).
			Msg("Duplicate webhook delivery acknowledged")
		return nil
	}

	// Past the dedup gate, failures are absorbed and the event is marked
	// processed either way. A poison payload must not be retried forever.
	i.processEvent(ctx, event, payload.Data)
	return nil
}

func (i *ReconciliationInteractor) processEvent(ctx context.Context, event *models.WebhookEvent, data dtos.WebhookDataDTO) {
	defer func() {
		if err := i.eventRepository.MarkProcessed(ctx, event.GatewayEventID); err != nil {
			i.logger.Error().Err(err).Str("event_id", event.GatewayEventID).Msg("Failed to mark webhook event processed")
		}
	}()

	if _, err := i.transactionRepository.GetByReference(ctx, event.Reference); err != nil {
		// Nothing local to reconcile; logged as an anomaly, not an error.
		i.logger.Warn().
			Str("reference", event.Reference).
			Str("event_id", event.GatewayEventID).
			Msg("Webhook references unknown transaction")
		return
	}

	var status models.Status
	switch event.EventType {
	case models.EventChargeSuccess:
		status = models.StatusSuccess
	case models.EventChargeFailed:
		status = models.StatusFailed
	default:
		i.logger.Info().
			Str("event_type", string(event.EventType)).
			Str("event_id", event.GatewayEventID).
			Msg("Webhook event stored but not applied to transaction state")
		return
	}

	_, err := i.applyOutcome(ctx, event.Reference, outcome{
		status:            string(status),
		channel:           data.Channel,
		gatewayResponse:   data.GatewayResponse,
		authorizationCode: data.AuthorizationCode(),
	})
	if err != nil {
		i.logger.Error().Err(err).
			Str("reference", event.Reference).
			Str("event_id", event.GatewayEventID).
			Msg("Failed to apply webhook outcome")
	}
}

// applyOutcome folds one gateway-reported result into the transaction under
// the store's per-record lock. Replaying an identical terminal outcome is a
// no-op; a conflicting terminal outcome is logged and the most recent
// observation wins, since the gateway may correct its own earlier reports.
func (i *ReconciliationInteractor) applyOutcome(ctx context.Context, reference string, o outcome) (*models.Transaction, error) {
	var becameTerminal bool

	transaction, err := i.transactionRepository.Update(ctx, reference, func(tx *models.Transaction) error {
		previous := tx.Status
		next := models.Status(o.status)

		if _, ok := models.ValidStatuses[next]; !ok {
			// Unknown gateway status: keep the current state, still absorb
			// the reported detail below.
			i.logger.Warn().
				Str("reference", reference).
				Str("reported_status", o.status).
				Msg("Gateway reported unrecognized status")
			next = previous
		}

		if previous.Terminal() && next.Terminal() && previous != next {
			i.logger.Warn().
				Str("reference", reference).
				Str("recorded_status", string(previous)).
				Str("reported_status", string(next)).
				Msg("Conflicting terminal statuses observed, keeping latest report")
		}

		tx.Status = next
		if next == models.StatusSuccess {
			if tx.PaidAt == nil {
				now := time.Now().UTC()
				tx.PaidAt = &now
			}
		} else if tx.PaidAt != nil {
			// A success downgraded by a later report is no longer paid.
			tx.PaidAt = nil
		}

		// Gateway-reported detail is never lost, even when the status did
		// not change.
		if o.gatewayReference != "" {
			tx.GatewayReference = o.gatewayReference
		}
		if o.channel != "" {
			tx.Channel = o.channel
		}
		if o.gatewayResponse != "" {
			tx.GatewayResponse = o.gatewayResponse
		}
		if o.authorizationCode != "" {
			tx.AuthorizationCode = o.authorizationCode
		}

		// Publish on the first arrival into a terminal status only; a later
		// terminal-to-terminal correction updates the record silently.
		becameTerminal = next.Terminal() && !previous.Terminal()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becameTerminal {
		i.logger.Info().
			Str("reference", reference).
			Str("status", string(transaction.Status)).
			Msg("Transaction reconciled")
		i.publisher.PublishReconciled(ctx, events.ReconciledEvent{
			Reference:        transaction.Reference,
			Status:           string(transaction.Status),
			GatewayReference: transaction.GatewayReference,
			Channel:          transaction.Channel,
			Amount:           transaction.Amount.StringFixed(2),
			Currency:         transaction.Currency,
			OccurredAt:       time.Now().UTC(),
		})
	}

	return transaction, nil
}

func minorUnitsToDecimal(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
