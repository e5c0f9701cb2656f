package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
	apperrors "github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
)

type TransactionRepositoryImpl struct {
	db     *pgxpool.Pool
	logger *zerolog.Logger
}

// NewTransactionRepositoryImpl creates new instance of TransactionRepositoryImpl.
func NewTransactionRepositoryImpl(db *pgxpool.Pool) repositories.TransactionRepository {
	l := log.GetLogger()
	return &TransactionRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const transactionColumns = `id, reference, email, amount, currency, status, payment_method,
customer_name, customer_phone, customer_country,
mobile_money_provider, mobile_money_number, bank_code, bank_name,
paystack_reference, authorization_code, gateway_response, channel,
metadata, created_at, updated_at, paid_at`

const insertTransaction = `
INSERT INTO transactions (
  id, reference, email, amount, currency, status, payment_method,
  customer_name, customer_phone, customer_country,
  mobile_money_provider, mobile_money_number, bank_code,
  metadata
) VALUES ($1, $2, $3, $4::NUMERIC(12,2), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING created_at, updated_at;`

// Create inserts a new pending transaction. A reference collision surfaces
// as DuplicateReferenceError via the unique constraint (SQLSTATE 23505).
func (r *TransactionRepositoryImpl) Create(ctx context.Context, transaction *models.Transaction) error {
	err := r.db.QueryRow(ctx, insertTransaction,
		transaction.ID,
		transaction.Reference,
		transaction.Email,
		transaction.Amount,
		transaction.Currency,
		transaction.Status,
		transaction.Method,
		transaction.CustomerName,
		transaction.CustomerPhone,
		transaction.CustomerCountry,
		transaction.MobileMoneyProvider,
		transaction.MobileMoneyNumber,
		transaction.BankCode,
		transaction.Metadata,
	).Scan(&transaction.CreatedAt, &transaction.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == repositories.UniqueViolationError {
			return apperrors.NewDuplicateReferenceError()
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

// GetByReference returns the transaction identified by reference.
func (r *TransactionRepositoryImpl) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM transactions WHERE reference = $1", transactionColumns),
		reference,
	)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction")
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return tx, nil
}

const updateTransaction = `
UPDATE transactions SET
  status = $2,
  paystack_reference = $3,
  authorization_code = $4,
  gateway_response = $5,
  channel = $6,
  bank_name = $7,
  metadata = $8,
  paid_at = $9,
  updated_at = now()
WHERE reference = $1
RETURNING updated_at;`

// Update applies mutator to the row under a FOR UPDATE lock, so concurrent
// reconciliation calls for the same reference are serialized by the
// database. Serialization failures are retried the same way the insert
// paths retry.
func (r *TransactionRepositoryImpl) Update(ctx context.Context, reference string, mutator repositories.Mutator) (*models.Transaction, error) {
	for {
		tx, err := r.updateOnce(ctx, reference, mutator)
		if err == nil {
			return tx, nil
		}

		if isSerializationError(err) {
			// retry transaction if serialization error occurs (SQLSTATE 40001)
			continue
		}
		return nil, err
	}
}

func (r *TransactionRepositoryImpl) updateOnce(ctx context.Context, reference string, mutator repositories.Mutator) (*models.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	row := dbTx.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM transactions WHERE reference = $1 FOR UPDATE", transactionColumns),
		reference,
	)

	record, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction")
		}
		return nil, fmt.Errorf("lock transaction: %w", err)
	}

	if err := mutator(record); err != nil {
		return nil, err
	}

	err = dbTx.QueryRow(ctx, updateTransaction,
		record.Reference,
		record.Status,
		record.GatewayReference,
		record.AuthorizationCode,
		record.GatewayResponse,
		record.Channel,
		record.BankName,
		record.Metadata,
		record.PaidAt,
	).Scan(&record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return record, nil
}

// Delete removes a transaction. Used only by the initiation rollback path,
// before any money could have moved.
func (r *TransactionRepositoryImpl) Delete(ctx context.Context, reference string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM transactions WHERE reference = $1", reference)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction")
	}
	return nil
}

// List returns transactions matching filter, newest first.
func (r *TransactionRepositoryImpl) List(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, error) {
	var conditions []string
	var args []interface{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.Currency != "" {
		addCondition("currency = $%d", filter.Currency)
	}
	if filter.Method != "" {
		addCondition("payment_method = $%d", filter.Method)
	}
	if filter.DateFrom != nil {
		addCondition("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCondition("created_at <= $%d", *filter.DateTo)
	}

	query := fmt.Sprintf("SELECT %s FROM transactions", transactionColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, nil
}

const statsQuery = `
SELECT currency, payment_method, status, COUNT(*)
FROM transactions
GROUP BY currency, payment_method, status;`

// Stats aggregates transaction counts by status, currency and method in a
// single grouped query.
func (r *TransactionRepositoryImpl) Stats(ctx context.Context) (*repositories.TransactionStats, error) {
	rows, err := r.db.Query(ctx, statsQuery)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	defer rows.Close()

	stats := &repositories.TransactionStats{
		ByCurrency: make(map[string]repositories.StatusBreakdown),
		ByMethod:   make(map[string]repositories.StatusBreakdown),
	}

	for rows.Next() {
		var currency, method string
		var status models.Status
		var count int64
		if err := rows.Scan(&currency, &method, &status, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}

		stats.Total += count
		switch status {
		case models.StatusSuccess:
			stats.Successful += count
		case models.StatusPending:
			stats.Pending += count
		case models.StatusFailed:
			stats.Failed += count
		}

		byCurrency := stats.ByCurrency[currency]
		byCurrency.Count += count
		if status == models.StatusSuccess {
			byCurrency.Successful += count
		}
		stats.ByCurrency[currency] = byCurrency

		byMethod := stats.ByMethod[method]
		byMethod.Count += count
		if status == models.StatusSuccess {
			byMethod.Successful += count
		}
		stats.ByMethod[method] = byMethod
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}

	return stats, nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	tx := &models.Transaction{}
	err := row.Scan(
		&tx.ID,
		&tx.Reference,
		&tx.Email,
		&tx.Amount,
		&tx.Currency,
		&tx.Status,
		&tx.Method,
		&tx.CustomerName,
		&tx.CustomerPhone,
		&tx.CustomerCountry,
		&tx.MobileMoneyProvider,
		&tx.MobileMoneyNumber,
		&tx.BankCode,
		&tx.BankName,
		&tx.GatewayReference,
		&tx.AuthorizationCode,
		&tx.GatewayResponse,
		&tx.Channel,
		&tx.Metadata,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&tx.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.SerializationError
}
