package di

import (
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kolapay/paygate/internal/config"
	"github.com/kolapay/paygate/internal/events"
	"github.com/kolapay/paygate/internal/infrastructure/api/handlers"
	"github.com/kolapay/paygate/internal/infrastructure/database/repositories"
	"github.com/kolapay/paygate/internal/infrastructure/gateway/paystack"
	"github.com/kolapay/paygate/internal/usecases/interactor"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	PaymentHandler              *handlers.PaymentHandler
	TransactionHandler          *handlers.TransactionHandler
	BankHandler                 *handlers.BankHandler
	PaymentConfigurationHandler *handlers.PaymentConfigurationHandler
	Publisher                   events.Publisher
}

// NewContainer wires repositories, the gateway client and the interactors
// into handlers.
func NewContainer(cfg *config.Config, db *pgxpool.Pool) *Container {
	transactionRepository := repositories.NewTransactionRepositoryImpl(db)
	eventRepository := repositories.NewWebhookEventRepositoryImpl(db)
	configurationRepository := repositories.NewPaymentConfigurationRepositoryImpl(db)

	gatewayClient := paystack.NewClient(cfg.Paystack)
	publisher := events.NewPublisher(cfg.Kafka)

	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}
	cacheTTL := 60 * time.Minute
	if minutes, err := strconv.Atoi(cfg.Redis.BankCacheTTLMin); err == nil && minutes > 0 {
		cacheTTL = time.Duration(minutes) * time.Minute
	}

	initiation := interactor.NewInitiationInteractor(transactionRepository, gatewayClient, cfg.Paystack.CallbackURL)
	reconciliation := interactor.NewReconciliationInteractor(transactionRepository, eventRepository, gatewayClient, publisher)
	queries := interactor.NewTransactionQueryInteractor(transactionRepository)
	banks := interactor.NewBankInteractor(gatewayClient, cache, cacheTTL)
	configurations := interactor.NewPaymentConfigurationInteractor(configurationRepository)

	return &Container{
		PaymentHandler:              handlers.NewPaymentHandler(initiation, reconciliation),
		TransactionHandler:          handlers.NewTransactionHandler(queries),
		BankHandler:                 handlers.NewBankHandler(banks),
		PaymentConfigurationHandler: handlers.NewPaymentConfigurationHandler(configurations),
		Publisher:                   publisher,
	}
}
