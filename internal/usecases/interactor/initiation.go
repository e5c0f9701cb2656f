package interactor

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kolapay/paygate/internal/domain/gateway"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
	apperrors "github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/internal/usecases/dtos"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InitiationInteractor creates pending transactions and hands them to the
// gateway. A gateway rejection unwinds the local record; an unavailable
// gateway leaves it pending for later reconciliation.
type InitiationInteractor struct {
	transactionRepository repositories.TransactionRepository
	gatewayClient         gateway.Client
	callbackURL           string
	logger                *zerolog.Logger
}

func NewInitiationInteractor(transactionRepository repositories.TransactionRepository, gatewayClient gateway.Client, callbackURL string) *InitiationInteractor {
	l := log.GetLogger()
	return &InitiationInteractor{
		transactionRepository: transactionRepository,
		gatewayClient:         gatewayClient,
		callbackURL:           callbackURL,
		logger:                &l,
	}
}

func (i *InitiationInteractor) InitializePayment(ctx context.Context, dto *dtos.InitializePaymentDTO) (*dtos.InitializeResultDTO, error) {
	transaction, err := i.buildTransaction(dto)
	if err != nil {
		return nil, err
	}

	minorUnits, ok := transaction.AmountMinorUnits()
	if !ok {
		return nil, apperrors.NewValidationError("amount", "amount has more than two decimal places")
	}

	if err := i.transactionRepository.Create(ctx, transaction); err != nil {
		return nil, err
	}

	callbackURL := dto.CallbackURL
	if callbackURL == "" {
		callbackURL = i.callbackURL
	}

	metadata := map[string]interface{}{
		"transaction_id": transaction.ID,
		"payment_method": string(transaction.Method),
	}
	for k, v := range transaction.Metadata {
		metadata[k] = v
	}

	result, err := i.gatewayClient.InitializeCharge(ctx, gateway.InitializeRequest{
		Reference:           transaction.Reference,
		Email:               transaction.Email,
		AmountMinorUnits:    minorUnits,
		Currency:            transaction.Currency,
		PaymentMethod:       string(transaction.Method),
		CallbackURL:         callbackURL,
		CustomerName:        transaction.CustomerName,
		CustomerPhone:       transaction.CustomerPhone,
		MobileMoneyProvider: transaction.MobileMoneyProvider,
		MobileMoneyNumber:   transaction.MobileMoneyNumber,
		BankCode:            transaction.BankCode,
		Metadata:            metadata,
	})
	if err != nil {
		var rejected *apperrors.GatewayRejectedError
		if apperrors.As(err, &rejected) {
			// The attempt never reached the gateway in a billable way;
			// compensate by removing the pending record.
			if delErr := i.transactionRepository.Delete(ctx, transaction.Reference); delErr != nil {
				i.logger.Error().Err(delErr).Str("reference", transaction.Reference).Msg("Failed to roll back rejected initiation")
			}
			return nil, err
		}
		// Unavailable or timed out: the charge may exist gateway-side, so
		// the pending record stays for reconciliation to settle later.
		i.logger.Warn().Err(err).Str("reference", transaction.Reference).Msg("Gateway unreachable during initiation, keeping pending transaction")
		return nil, err
	}

	i.logger.Info().Str("reference", transaction.Reference).Msg("Payment initialized")
	return &dtos.InitializeResultDTO{
		Reference:        transaction.Reference,
		TransactionID:    transaction.ID,
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
	}, nil
}

func (i *InitiationInteractor) buildTransaction(dto *dtos.InitializePaymentDTO) (*models.Transaction, error) {
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return nil, apperrors.NewValidationError("email", "a valid email is required")
	}

	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return nil, apperrors.NewValidationError("amount", "amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "amount must be greater than zero")
	}

	currency := dto.Currency
	if currency == "" {
		currency = "NGN"
	}
	if _, ok := models.ValidCurrencies[currency]; !ok {
		return nil, apperrors.NewValidationError("currency", "unsupported currency")
	}

	method := models.PaymentMethod(dto.PaymentMethod)
	if method == "" {
		method = models.MethodCard
	}
	if _, ok := models.ValidPaymentMethods[method]; !ok {
		return nil, apperrors.NewValidationError("payment_method", "unsupported payment method")
	}

	switch method {
	case models.MethodMobileMoney:
		if dto.MobileMoneyProvider == "" {
			return nil, apperrors.NewValidationError("mobile_money_provider", "mobile money provider is required")
		}
		if dto.MobileMoneyNumber == "" {
			return nil, apperrors.NewValidationError("mobile_money_number", "mobile money number is required")
		}
	case models.MethodBankTransfer:
		if dto.BankCode == "" {
			return nil, apperrors.NewValidationError("bank_code", "bank code is required for bank transfers")
		}
	}

	country := dto.CustomerCountry
	if country == "" {
		country = "NG"
	}

	return &models.Transaction{
		ID:                  uuid.NewString(),
		Reference:           NewPaymentReference(),
		Email:               dto.Email,
		Amount:              amount,
		Currency:            currency,
		Status:              models.StatusPending,
		Method:              method,
		CustomerName:        dto.CustomerName,
		CustomerPhone:       dto.CustomerPhone,
		CustomerCountry:     country,
		MobileMoneyProvider: dto.MobileMoneyProvider,
		MobileMoneyNumber:   dto.MobileMoneyNumber,
		BankCode:            dto.BankCode,
		Metadata:            dto.Metadata,
	}, nil
}

// NewPaymentReference generates an unguessable reference in the form
// PAY_XXXXXXXXXXXX (12 uppercase hex characters).
func NewPaymentReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PAY_" + strings.ToUpper(id[:12])
}
