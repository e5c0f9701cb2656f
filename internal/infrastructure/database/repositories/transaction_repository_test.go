package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kolapay/paygate/internal/config"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
	apperr "github.com/kolapay/paygate/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database from the environment config and skips
// the test when it is unreachable, so the suite still runs without infra.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cnf := config.Load()

	poolConfig, err := pgxpool.ParseConfig(cnf.PostgreSQL.DSN())
	require.NoError(t, err)

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	db, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		t.Skipf("database not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		db.Close()
		t.Skipf("database not available: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}

func truncateTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	_, err := db.Exec(context.Background(), "TRUNCATE TABLE transactions, webhook_events")
	require.NoError(t, err)
}

func pendingTransaction(amount string) *models.Transaction {
	id := uuid.New()
	return &models.Transaction{
		ID:        id.String(),
		Reference: fmt.Sprintf("PAY_%X", id[:6]),
		Email:     "payer@example.com",
		Amount:    decimal.RequireFromString(amount),
		Currency:  "NGN",
		Status:    models.StatusPending,
		Method:    models.MethodCard,
		Metadata:  map[string]interface{}{},
	}
}

func TestTransactionCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	truncateTables(t, db)
	repo := NewTransactionRepositoryImpl(db)

	t.Run("round trip", func(t *testing.T) {
		tx := pendingTransaction("1000.00")
		require.NoError(t, repo.Create(context.Background(), tx))
		assert.False(t, tx.CreatedAt.IsZero())

		got, err := repo.GetByReference(context.Background(), tx.Reference)
		require.NoError(t, err)
		assert.Equal(t, tx.Reference, got.Reference)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("1000.00")))
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Nil(t, got.PaidAt)
	})

	t.Run("duplicate reference", func(t *testing.T) {
		tx := pendingTransaction("50.00")
		require.NoError(t, repo.Create(context.Background(), tx))

		dup := pendingTransaction("50.00")
		dup.Reference = tx.Reference
		err := repo.Create(context.Background(), dup)

		var dupErr *apperr.DuplicateReferenceError
		assert.True(t, errors.As(err, &dupErr))
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := repo.GetByReference(context.Background(), "PAY_NEVERSEEN000")

		var notFound *apperr.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})
}

func TestTransactionUpdate(t *testing.T) {
	db := setupTestDB(t)
	truncateTables(t, db)
	repo := NewTransactionRepositoryImpl(db)

	t.Run("mutator result is persisted", func(t *testing.T) {
		tx := pendingTransaction("250.00")
		require.NoError(t, repo.Create(context.Background(), tx))

		paidAt := time.Now().UTC().Truncate(time.Microsecond)
		updated, err := repo.Update(context.Background(), tx.Reference, func(record *models.Transaction) error {
			record.Status = models.StatusSuccess
			record.GatewayReference = "PSK_REF_1"
			record.Channel = "card"
			record.GatewayResponse = "Successful"
			record.PaidAt = &paidAt
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, updated.Status)

		got, err := repo.GetByReference(context.Background(), tx.Reference)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, got.Status)
		assert.Equal(t, "PSK_REF_1", got.GatewayReference)
		assert.Equal(t, "card", got.Channel)
		require.NotNil(t, got.PaidAt)
		assert.True(t, got.PaidAt.Equal(paidAt))
	})

	t.Run("mutator error aborts without writing", func(t *testing.T) {
		tx := pendingTransaction("10.00")
		require.NoError(t, repo.Create(context.Background(), tx))

		boom := fmt.Errorf("mutator refused")
		_, err := repo.Update(context.Background(), tx.Reference, func(record *models.Transaction) error {
			record.Status = models.StatusFailed
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.GetByReference(context.Background(), tx.Reference)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := repo.Update(context.Background(), "PAY_NEVERSEEN000", func(record *models.Transaction) error {
			return nil
		})

		var notFound *apperr.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("concurrent updates are serialized per record", func(t *testing.T) {
		tx := pendingTransaction("75.00")
		tx.Metadata = map[string]interface{}{"applied": 0}
		require.NoError(t, repo.Create(context.Background(), tx))

		n := 50
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				_, err := repo.Update(context.Background(), tx.Reference, func(record *models.Transaction) error {
					count, _ := record.Metadata["applied"].(float64)
					record.Metadata["applied"] = count + 1
					return nil
				})
				if err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		got, err := repo.GetByReference(context.Background(), tx.Reference)
		require.NoError(t, err)
		count, _ := got.Metadata["applied"].(float64)
		assert.Equal(t, float64(n), count, "every update must observe the previous one")
	})
}

func TestTransactionDelete(t *testing.T) {
	db := setupTestDB(t)
	truncateTables(t, db)
	repo := NewTransactionRepositoryImpl(db)

	tx := pendingTransaction("99.00")
	require.NoError(t, repo.Create(context.Background(), tx))
	require.NoError(t, repo.Delete(context.Background(), tx.Reference))

	_, err := repo.GetByReference(context.Background(), tx.Reference)
	var notFound *apperr.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	err = repo.Delete(context.Background(), tx.Reference)
	assert.True(t, errors.As(err, &notFound))
}

func TestTransactionListAndStats(t *testing.T) {
	db := setupTestDB(t)
	truncateTables(t, db)
	repo := NewTransactionRepositoryImpl(db)

	seed := []struct {
		amount   string
		currency string
		status   models.Status
		method   models.PaymentMethod
	}{
		{"100.00", "NGN", models.StatusSuccess, models.MethodCard},
		{"200.00", "NGN", models.StatusPending, models.MethodCard},
		{"300.00", "GHS", models.StatusFailed, models.MethodMobileMoney},
		{"400.00", "NGN", models.StatusSuccess, models.MethodBankTransfer},
	}
	for _, s := range seed {
		tx := pendingTransaction(s.amount)
		tx.Currency = s.currency
		tx.Method = s.method
		require.NoError(t, repo.Create(context.Background(), tx))
		if s.status != models.StatusPending {
			_, err := repo.Update(context.Background(), tx.Reference, func(record *models.Transaction) error {
				record.Status = s.status
				return nil
			})
			require.NoError(t, err)
		}
	}

	t.Run("filter by status", func(t *testing.T) {
		list, err := repo.List(context.Background(), repositories.TransactionFilter{Status: models.StatusSuccess})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("filter by currency and method", func(t *testing.T) {
		list, err := repo.List(context.Background(), repositories.TransactionFilter{
			Currency: "NGN",
			Method:   models.MethodCard,
		})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("limit and order", func(t *testing.T) {
		list, err := repo.List(context.Background(), repositories.TransactionFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, !list[0].CreatedAt.Before(list[1].CreatedAt), "newest first")
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(4), stats.Total)
		assert.Equal(t, int64(2), stats.Successful)
		assert.Equal(t, int64(1), stats.Pending)
		assert.Equal(t, int64(1), stats.Failed)
		assert.Equal(t, int64(3), stats.ByCurrency["NGN"].Count)
		assert.Equal(t, int64(2), stats.ByCurrency["NGN"].Successful)
		assert.Equal(t, int64(1), stats.ByMethod["mobile_money"].Count)
	})
}
