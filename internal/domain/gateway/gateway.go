package gateway

import "context"

// Client is the outbound capability to the payment gateway. Implementations
// are stateless; all amounts cross this boundary in integer minor units.
type Client interface {
	InitializeCharge(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	VerifyCharge(ctx context.Context, reference string) (*VerifyResult, error)
	ListBanks(ctx context.Context, country string) ([]Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*AccountDetail, error)
	// VerifySignature checks the keyed hash of a raw webhook body against
	// the signature header. It returns false when no secret is configured.
	VerifySignature(rawBody []byte, signature string) bool
}

type InitializeRequest struct {
	Reference           string
	Email               string
	AmountMinorUnits    int64
	Currency            string
	PaymentMethod       string
	CallbackURL         string
	CustomerName        string
	CustomerPhone       string
	MobileMoneyProvider string
	MobileMoneyNumber   string
	BankCode            string
	Metadata            map[string]interface{}
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the gateway's current view of a charge. Customer and
// Authorization carry the raw gateway objects for display augmentation;
// they are never persisted into typed state.
type VerifyResult struct {
	Status            string
	Reference         string
	Channel           string
	GatewayResponse   string
	AuthorizationCode string
	AmountMinorUnits  int64
	FeesMinorUnits    int64
	Currency          string
	Customer          map[string]interface{}
	Authorization     map[string]interface{}
}

type Bank struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Slug     string `json:"slug"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
}

type AccountDetail struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankID        int    `json:"bank_id"`
}
