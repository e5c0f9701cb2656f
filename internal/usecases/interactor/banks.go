package interactor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kolapay/paygate/internal/domain/gateway"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BankInteractor fronts the gateway's bank endpoints. Bank lists barely
// change, so successful lookups are cached in Redis with a TTL; a cache
// outage degrades to calling the gateway directly.
type BankInteractor struct {
	gatewayClient gateway.Client
	cache         *redis.Client
	cacheTTL      time.Duration
	logger        *zerolog.Logger
}

func NewBankInteractor(gatewayClient gateway.Client, cache *redis.Client, cacheTTL time.Duration) *BankInteractor {
	l := log.GetLogger()
	return &BankInteractor{
		gatewayClient: gatewayClient,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        &l,
	}
}

func (i *BankInteractor) ListBanks(ctx context.Context, country string) ([]gateway.Bank, error) {
	key := "banks:" + country

	if i.cache != nil {
		cached, err := i.cache.Get(ctx, key).Bytes()
		if err == nil {
			var banks []gateway.Bank
			if err := json.Unmarshal(cached, &banks); err == nil {
				return banks, nil
			}
		} else if err != redis.Nil {
			i.logger.Warn().Err(err).Str("country", country).Msg("Bank cache read failed")
		}
	}

	banks, err := i.gatewayClient.ListBanks(ctx, country)
	if err != nil {
		return nil, err
	}

	if i.cache != nil {
		if encoded, err := json.Marshal(banks); err == nil {
			if err := i.cache.Set(ctx, key, encoded, i.cacheTTL).Err(); err != nil {
				i.logger.Warn().Err(err).Str("country", country).Msg("Bank cache write failed")
			}
		}
	}

	return banks, nil
}

func (i *BankInteractor) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*gateway.AccountDetail, error) {
	return i.gatewayClient.ResolveAccount(ctx, accountNumber, bankCode)
}
