package interactor

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/kolapay/paygate/internal/domain/gateway"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
	apperrors "github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/internal/events"
)

// In-memory store fakes. They honor the same contracts the pg
// implementations do: per-reference serialized updates and an atomic
// check-and-insert for webhook events.

type fakeTransactionRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{rows: make(map[string]*models.Transaction)}
}

func cloneTransaction(tx *models.Transaction) *models.Transaction {
	clone := *tx
	return &clone
}

func (r *fakeTransactionRepo) Create(_ context.Context, transaction *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[transaction.Reference]; ok {
		return apperrors.NewDuplicateReferenceError()
	}
	now := time.Now().UTC()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	r.rows[transaction.Reference] = cloneTransaction(transaction)
	return nil
}

func (r *fakeTransactionRepo) GetByReference(_ context.Context, reference string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.rows[reference]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction")
	}
	return cloneTransaction(tx), nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, reference string, mutator repositories.Mutator) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.rows[reference]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction")
	}
	clone := cloneTransaction(tx)
	if err := mutator(clone); err != nil {
		return nil, err
	}
	clone.UpdatedAt = time.Now().UTC()
	r.rows[reference] = cloneTransaction(clone)
	return clone, nil
}

func (r *fakeTransactionRepo) Delete(_ context.Context, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[reference]; !ok {
		return apperrors.NewNotFoundError("transaction")
	}
	delete(r.rows, reference)
	return nil
}

func (r *fakeTransactionRepo) List(_ context.Context, filter repositories.TransactionFilter) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Transaction, 0, len(r.rows))
	for _, tx := range r.rows {
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter.Currency != "" && tx.Currency != filter.Currency {
			continue
		}
		if filter.Method != "" && tx.Method != filter.Method {
			continue
		}
		result = append(result, *cloneTransaction(tx))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *fakeTransactionRepo) Stats(_ context.Context) (*repositories.TransactionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repositories.TransactionStats{
		ByCurrency: make(map[string]repositories.StatusBreakdown),
		ByMethod:   make(map[string]repositories.StatusBreakdown),
	}
	for _, tx := range r.rows {
		stats.Total++
		switch tx.Status {
		case models.StatusSuccess:
			stats.Successful++
		case models.StatusPending:
			stats.Pending++
		case models.StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func (r *fakeTransactionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeWebhookEventRepo struct {
	mu   sync.Mutex
	rows map[string]*models.WebhookEvent
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{rows: make(map[string]*models.WebhookEvent)}
}

func (r *fakeWebhookEventRepo) CreateIfAbsent(_ context.Context, event *models.WebhookEvent) (*models.WebhookEvent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rows[event.GatewayEventID]; ok {
		clone := *existing
		return &clone, false, nil
	}
	event.CreatedAt = time.Now().UTC()
	clone := *event
	r.rows[event.GatewayEventID] = &clone
	return event, true, nil
}

func (r *fakeWebhookEventRepo) MarkProcessed(_ context.Context, gatewayEventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.rows[gatewayEventID]
	if !ok {
		return nil
	}
	if !event.Processed {
		now := time.Now().UTC()
		event.Processed = true
		event.ProcessedAt = &now
	}
	return nil
}

func (r *fakeWebhookEventRepo) GetByGatewayEventID(_ context.Context, gatewayEventID string) (*models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.rows[gatewayEventID]
	if !ok {
		return nil, apperrors.NewNotFoundError("webhook event")
	}
	clone := *event
	return &clone, nil
}

func (r *fakeWebhookEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// fakeGateway scripts gateway responses and checks signatures with the same
// HMAC-SHA512 scheme the real client uses.
type fakeGateway struct {
	mu            sync.Mutex
	webhookSecret string
	initResult    *gateway.InitializeResult
	initErr       error
	verifyResults map[string]*gateway.VerifyResult
	verifyErr     error
	initCalls     int
	verifyCalls   int
}

func newFakeGateway(secret string) *fakeGateway {
	return &fakeGateway{
		webhookSecret: secret,
		verifyResults: make(map[string]*gateway.VerifyResult),
	}
}

func (g *fakeGateway) InitializeCharge(_ context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResult != nil {
		return g.initResult, nil
	}
	return &gateway.InitializeResult{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		AccessCode:       "AC_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) VerifyCharge(_ context.Context, reference string) (*gateway.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	result, ok := g.verifyResults[reference]
	if !ok {
		return nil, apperrors.NewNotFoundError("gateway transaction")
	}
	clone := *result
	return &clone, nil
}

func (g *fakeGateway) ListBanks(context.Context, string) ([]gateway.Bank, error) {
	return nil, nil
}

func (g *fakeGateway) ResolveAccount(context.Context, string, string) (*gateway.AccountDetail, error) {
	return nil, nil
}

func (g *fakeGateway) VerifySignature(rawBody []byte, signature string) bool {
	if g.webhookSecret == "" {
		return false
	}
	return hmac.Equal([]byte(signWebhookBody(g.webhookSecret, rawBody)), []byte(signature))
}

func signWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ReconciledEvent
}

func (p *recordingPublisher) PublishReconciled(_ context.Context, event events.ReconciledEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.ReconciledEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.ReconciledEvent, len(p.events))
	copy(out, p.events)
	return out
}
