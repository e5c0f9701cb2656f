package interactor

import (
	"context"

	"github.com/kolapay/paygate/internal/domain/repositories"
	"github.com/kolapay/paygate/internal/usecases/dtos"
)

// TransactionQueryInteractor serves the read-only transaction surface:
// listing, detail and dashboard stats.
type TransactionQueryInteractor struct {
	transactionRepository repositories.TransactionRepository
}

func NewTransactionQueryInteractor(transactionRepository repositories.TransactionRepository) *TransactionQueryInteractor {
	return &TransactionQueryInteractor{transactionRepository: transactionRepository}
}

func (i *TransactionQueryInteractor) List(ctx context.Context, filter repositories.TransactionFilter) ([]dtos.TransactionViewDTO, error) {
	transactions, err := i.transactionRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]dtos.TransactionViewDTO, 0, len(transactions))
	for idx := range transactions {
		views = append(views, dtos.NewTransactionView(&transactions[idx]))
	}
	return views, nil
}

func (i *TransactionQueryInteractor) GetByReference(ctx context.Context, reference string) (*dtos.TransactionViewDTO, error) {
	transaction, err := i.transactionRepository.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	view := dtos.NewTransactionView(transaction)
	return &view, nil
}

func (i *TransactionQueryInteractor) Stats(ctx context.Context) (*dtos.StatsDTO, error) {
	stats, err := i.transactionRepository.Stats(ctx)
	if err != nil {
		return nil, err
	}

	dto := &dtos.StatsDTO{
		TotalTransactions:      stats.Total,
		SuccessfulTransactions: stats.Successful,
		PendingTransactions:    stats.Pending,
		FailedTransactions:     stats.Failed,
		CurrencyBreakdown:      make(map[string]dtos.StatsBreakdownDTO, len(stats.ByCurrency)),
		PaymentMethodBreakdown: make(map[string]dtos.StatsBreakdownDTO, len(stats.ByMethod)),
	}
	if stats.Total > 0 {
		dto.SuccessRate = float64(stats.Successful) / float64(stats.Total) * 100
	}
	for currency, b := range stats.ByCurrency {
		dto.CurrencyBreakdown[currency] = dtos.StatsBreakdownDTO{Count: b.Count, Successful: b.Successful}
	}
	for method, b := range stats.ByMethod {
		dto.PaymentMethodBreakdown[method] = dtos.StatsBreakdownDTO{Count: b.Count, Successful: b.Successful}
	}

	return dto, nil
}
