package repositories

import (
	"context"
	"time"

	"github.com/kolapay/paygate/internal/domain/models"
)

const (
	SerializationError   = "40001"
	UniqueViolationError = "23505"
)

// Mutator is applied to a transaction under per-record exclusivity. The
// store holds the row locked while the mutator runs; returning an error
// aborts the update without persisting anything.
type Mutator func(tx *models.Transaction) error

type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	// Update applies mutator to the row identified by reference inside a
	// database transaction that locks the row first, so two concurrent
	// reconciliation calls for the same reference cannot interleave.
	Update(ctx context.Context, reference string, mutator Mutator) (*models.Transaction, error)
	Delete(ctx context.Context, reference string) error
	List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
	Stats(ctx context.Context) (*TransactionStats, error)
}

// TransactionFilter narrows List results. Nil/zero fields are ignored.
type TransactionFilter struct {
	Status   models.Status
	Currency string
	Method   models.PaymentMethod
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

type TransactionStats struct {
	Total      int64
	Successful int64
	Pending    int64
	Failed     int64
	ByCurrency map[string]StatusBreakdown
	ByMethod   map[string]StatusBreakdown
}

type StatusBreakdown struct {
	Count      int64
	Successful int64
}
