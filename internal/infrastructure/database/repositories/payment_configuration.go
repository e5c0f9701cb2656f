package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
)

type PaymentConfigurationRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewPaymentConfigurationRepositoryImpl(db *pgxpool.Pool) repositories.PaymentConfigurationRepository {
	return &PaymentConfigurationRepositoryImpl{db: db}
}

const selectActiveConfigurations = `
SELECT id, country_code, country_name, currency, flag,
       supported_methods, banks, mobile_money_providers, ussd_codes,
       min_amount, max_amount, is_active, created_at, updated_at
FROM payment_configurations
WHERE is_active = TRUE
ORDER BY country_name;`

func (r *PaymentConfigurationRepositoryImpl) ListActive(ctx context.Context) ([]models.PaymentConfiguration, error) {
	rows, err := r.db.Query(ctx, selectActiveConfigurations)
	if err != nil {
		return nil, fmt.Errorf("list payment configurations: %w", err)
	}
	defer rows.Close()

	configs := make([]models.PaymentConfiguration, 0)
	for rows.Next() {
		var c models.PaymentConfiguration
		err := rows.Scan(
			&c.ID,
			&c.CountryCode,
			&c.CountryName,
			&c.Currency,
			&c.Flag,
			&c.SupportedMethods,
			&c.Banks,
			&c.MobileMoneyProviders,
			&c.USSDCodes,
			&c.MinAmount,
			&c.MaxAmount,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment configuration: %w", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payment configurations: %w", err)
	}

	return configs, nil
}
