package repositories

import (
	"context"

	"github.com/kolapay/paygate/internal/domain/models"
)

type PaymentConfigurationRepository interface {
	ListActive(ctx context.Context) ([]models.PaymentConfiguration, error)
}
