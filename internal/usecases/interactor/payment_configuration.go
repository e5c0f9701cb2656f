package interactor

import (
	"context"

	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
)

type PaymentConfigurationInteractor struct {
	configurationRepository repositories.PaymentConfigurationRepository
}

func NewPaymentConfigurationInteractor(configurationRepository repositories.PaymentConfigurationRepository) *PaymentConfigurationInteractor {
	return &PaymentConfigurationInteractor{configurationRepository: configurationRepository}
}

func (i *PaymentConfigurationInteractor) ListActive(ctx context.Context) ([]models.PaymentConfiguration, error) {
	return i.configurationRepository.ListActive(ctx)
}
