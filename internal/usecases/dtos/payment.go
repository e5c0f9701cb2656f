package dtos

import (
	"encoding/json"
	"time"

	"github.com/kolapay/paygate/internal/domain/models"
)

// InitializePaymentDTO is the inbound initialize request. Amount arrives as
// either a JSON number or a string; the handler normalizes RawAmount into
// Amount before the interactor sees it.
type InitializePaymentDTO struct {
	Email               string                 `json:"email"`
	Amount              string                 `json:"-"`
	RawAmount           json.RawMessage        `json:"amount"`
	Currency            string                 `json:"currency"`
	PaymentMethod       string                 `json:"payment_method"`
	CustomerName        string                 `json:"customer_name"`
	CustomerPhone       string                 `json:"customer_phone"`
	CustomerCountry     string                 `json:"customer_country"`
	MobileMoneyProvider string                 `json:"mobile_money_provider"`
	MobileMoneyNumber   string                 `json:"mobile_money_number"`
	BankCode            string                 `json:"bank_code"`
	CallbackURL         string                 `json:"callback_url"`
	Metadata            map[string]interface{} `json:"metadata"`
}

type InitializeResultDTO struct {
	Reference        string `json:"reference"`
	TransactionID    string `json:"transaction_id"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// WebhookPayloadDTO mirrors the gateway's notification envelope. Only the
// named fields are lifted into typed state; everything else survives in the
// raw payload archived on the WebhookEvent.
type WebhookPayloadDTO struct {
	Event string         `json:"event"`
	Data  WebhookDataDTO `json:"data"`
}

// GatewayEventID tolerates both encodings the gateway uses for event ids,
// a JSON number or a string.
type GatewayEventID string

func (id *GatewayEventID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = GatewayEventID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = GatewayEventID(n.String())
	return nil
}

func (id GatewayEventID) String() string { return string(id) }

type WebhookDataDTO struct {
	ID              GatewayEventID         `json:"id"`
	Reference       string                 `json:"reference"`
	Status          string                 `json:"status"`
	Channel         string                 `json:"channel"`
	GatewayResponse string                 `json:"gateway_response"`
	Authorization   map[string]interface{} `json:"authorization"`
}

// AuthorizationCode extracts the reusable charge token when present.
func (d WebhookDataDTO) AuthorizationCode() string {
	if code, ok := d.Authorization["authorization_code"].(string); ok {
		return code
	}
	return ""
}

// TransactionViewDTO is the outward representation of a transaction.
type TransactionViewDTO struct {
	ID                  string                 `json:"id"`
	Reference           string                 `json:"reference"`
	Email               string                 `json:"email"`
	Amount              string                 `json:"amount"`
	AmountDisplay       string                 `json:"amount_display"`
	Currency            string                 `json:"currency"`
	Status              string                 `json:"status"`
	PaymentMethod       string                 `json:"payment_method"`
	CustomerName        string                 `json:"customer_name,omitempty"`
	CustomerPhone       string                 `json:"customer_phone,omitempty"`
	CustomerCountry     string                 `json:"customer_country,omitempty"`
	MobileMoneyProvider string                 `json:"mobile_money_provider,omitempty"`
	MobileMoneyNumber   string                 `json:"mobile_money_number,omitempty"`
	BankCode            string                 `json:"bank_code,omitempty"`
	BankName            string                 `json:"bank_name,omitempty"`
	Channel             string                 `json:"channel,omitempty"`
	GatewayResponse     string                 `json:"gateway_response,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
	PaidAt              *time.Time             `json:"paid_at,omitempty"`
}

var currencySymbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"GHS": "₵",
	"ZAR": "R",
	"KES": "KSh",
	"EUR": "€",
	"GBP": "£",
	"XOF": "CFA",
	"EGP": "E£",
}

func NewTransactionView(tx *models.Transaction) TransactionViewDTO {
	symbol, ok := currencySymbols[tx.Currency]
	if !ok {
		symbol = tx.Currency
	}

	return TransactionViewDTO{
		ID:                  tx.ID,
		Reference:           tx.Reference,
		Email:               tx.Email,
		Amount:              tx.Amount.StringFixed(2),
		AmountDisplay:       symbol + tx.Amount.StringFixed(2),
		Currency:            tx.Currency,
		Status:              string(tx.Status),
		PaymentMethod:       string(tx.Method),
		CustomerName:        tx.CustomerName,
		CustomerPhone:       tx.CustomerPhone,
		CustomerCountry:     tx.CustomerCountry,
		MobileMoneyProvider: tx.MobileMoneyProvider,
		MobileMoneyNumber:   tx.MobileMoneyNumber,
		BankCode:            tx.BankCode,
		BankName:            tx.BankName,
		Channel:             tx.Channel,
		GatewayResponse:     tx.GatewayResponse,
		Metadata:            tx.Metadata,
		CreatedAt:           tx.CreatedAt,
		UpdatedAt:           tx.UpdatedAt,
		PaidAt:              tx.PaidAt,
	}
}

// VerifiedTransactionDTO augments the persisted view with gateway-reported
// detail for display. The augmentation is returned, never stored.
type VerifiedTransactionDTO struct {
	TransactionViewDTO
	GatewayStatus    string                 `json:"paystack_status"`
	GatewayReference string                 `json:"paystack_reference"`
	AmountPaid       string                 `json:"amount_paid"`
	Fees             string                 `json:"fees"`
	Customer         map[string]interface{} `json:"customer,omitempty"`
	Authorization    map[string]interface{} `json:"authorization,omitempty"`
}

type StatsDTO struct {
	TotalTransactions      int64                        `json:"total_transactions"`
	SuccessfulTransactions int64                        `json:"successful_transactions"`
	PendingTransactions    int64                        `json:"pending_transactions"`
	FailedTransactions     int64                        `json:"failed_transactions"`
	SuccessRate            float64                      `json:"success_rate"`
	CurrencyBreakdown      map[string]StatsBreakdownDTO `json:"currency_breakdown"`
	PaymentMethodBreakdown map[string]StatsBreakdownDTO `json:"payment_method_breakdown"`
}

type StatsBreakdownDTO struct {
	Count      int64 `json:"count"`
	Successful int64 `json:"successful"`
}
