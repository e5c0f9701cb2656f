package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentConfiguration is static per-country reference data. Read-only to
// the reconciliation core; seeded by migration.
type PaymentConfiguration struct {
	ID                   string                 `db:"id"`
	CountryCode          string                 `db:"country_code"`
	CountryName          string                 `db:"country_name"`
	Currency             string                 `db:"currency"`
	Flag                 string                 `db:"flag"`
	SupportedMethods     []string               `db:"supported_methods"`
	Banks                []string               `db:"banks"`
	MobileMoneyProviders []string               `db:"mobile_money_providers"`
	USSDCodes            map[string]interface{} `db:"ussd_codes"`
	MinAmount            decimal.Decimal        `db:"min_amount"`
	MaxAmount            decimal.Decimal        `db:"max_amount"`
	IsActive             bool                   `db:"is_active"`
	CreatedAt            time.Time              `db:"created_at"`
	UpdatedAt            time.Time              `db:"updated_at"`
}
