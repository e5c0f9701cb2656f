package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
)

var ValidStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusSuccess:   {},
	StatusFailed:    {},
	StatusAbandoned: {},
}

// Terminal reports whether s is a final gateway outcome.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusAbandoned
}

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodUSSD         PaymentMethod = "ussd"
	MethodQR           PaymentMethod = "qr"
	MethodEFT          PaymentMethod = "eft"
)

var ValidPaymentMethods = map[PaymentMethod]struct{}{
	MethodCard:         {},
	MethodBankTransfer: {},
	MethodMobileMoney:  {},
	MethodUSSD:         {},
	MethodQR:           {},
	MethodEFT:          {},
}

var ValidCurrencies = map[string]struct{}{
	"NGN": {},
	"USD": {},
	"GHS": {},
	"ZAR": {},
	"KES": {},
	"EUR": {},
	"GBP": {},
	"XOF": {},
	"EGP": {},
}

// Transaction is one payment attempt. The reference is assigned locally at
// creation and never changes; the gateway joins back to us through it.
type Transaction struct {
	ID        string          `db:"id"`
	Reference string          `db:"reference"`
	Email     string          `db:"email"`
	Amount    decimal.Decimal `db:"amount"`
	Currency  string          `db:"currency"`
	Status    Status          `db:"status"`
	Method    PaymentMethod   `db:"payment_method"`

	CustomerName    string `db:"customer_name"`
	CustomerPhone   string `db:"customer_phone"`
	CustomerCountry string `db:"customer_country"`

	MobileMoneyProvider string `db:"mobile_money_provider"`
	MobileMoneyNumber   string `db:"mobile_money_number"`
	BankCode            string `db:"bank_code"`
	BankName            string `db:"bank_name"`

	GatewayReference  string `db:"paystack_reference"`
	AuthorizationCode string `db:"authorization_code"`
	GatewayResponse   string `db:"gateway_response"`
	Channel           string `db:"channel"`

	Metadata map[string]interface{} `db:"metadata"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	PaidAt    *time.Time `db:"paid_at"`
}

// AmountMinorUnits converts the decimal amount to the gateway's integer
// representation (kobo/cents). ok is false when amount*100 is not integral,
// in which case the value must not be sent to the gateway.
func (t *Transaction) AmountMinorUnits() (int64, bool) {
	minor := t.Amount.Mul(decimal.NewFromInt(100))
	if !minor.IsInteger() {
		return 0, false
	}
	return minor.IntPart(), true
}
