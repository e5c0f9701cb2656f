package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kolapay/paygate/internal/config"
	"github.com/kolapay/paygate/internal/domain/gateway"
	apperrors "github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
)

// Client talks to the Paystack REST API. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
	logger        *zerolog.Logger
}

func NewClient(cfg config.Paystack) gateway.Client {
	l := log.GetLogger()
	timeout, err := strconv.Atoi(cfg.TimeoutSeconds)
	if err != nil || timeout <= 0 {
		timeout = 15
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:        &l,
	}
}

// envelope is Paystack's response wrapper. Status=false with HTTP 200 still
// means the request was refused.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) request(ctx context.Context, method, endpoint string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewGatewayUnavailableError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewGatewayUnavailableError(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, apperrors.NewGatewayUnavailableError(fmt.Errorf("gateway returned %d", resp.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.NewGatewayUnavailableError(fmt.Errorf("decode gateway response: %w", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return &env, apperrors.NewNotFoundError("gateway transaction")
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		return &env, apperrors.NewGatewayRejectedError(env.Message)
	}

	return &env, nil
}

type initializePayload struct {
	Reference   string                 `json:"reference"`
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	MobileMoney *mobileMoneyPayload    `json:"mobile_money,omitempty"`
	Bank        *bankPayload           `json:"bank,omitempty"`
	Customer    map[string]string      `json:"customer,omitempty"`
}

type mobileMoneyPayload struct {
	Phone    string `json:"phone"`
	Provider string `json:"provider"`
}

type bankPayload struct {
	Code string `json:"code"`
}

func (c *Client) InitializeCharge(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	payload := initializePayload{
		Reference:   req.Reference,
		Email:       req.Email,
		Amount:      req.AmountMinorUnits,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}
	if req.PaymentMethod == "mobile_money" {
		payload.MobileMoney = &mobileMoneyPayload{
			Phone:    req.MobileMoneyNumber,
			Provider: req.MobileMoneyProvider,
		}
	}
	if req.PaymentMethod == "bank_transfer" {
		payload.Bank = &bankPayload{Code: req.BankCode}
	}
	if req.CustomerName != "" || req.CustomerPhone != "" {
		payload.Customer = map[string]string{}
		if req.CustomerName != "" {
			payload.Customer["name"] = req.CustomerName
		}
		if req.CustomerPhone != "" {
			payload.Customer["phone"] = req.CustomerPhone
		}
	}

	c.logger.Info().Str("reference", req.Reference).Msg("Initializing charge")
	env, err := c.request(ctx, http.MethodPost, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, apperrors.NewGatewayUnavailableError(fmt.Errorf("decode initialize data: %w", err))
	}

	return &gateway.InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (c *Client) VerifyCharge(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	c.logger.Info().Str("reference", reference).Msg("Verifying charge")
	env, err := c.request(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Status          string                 `json:"status"`
		Reference       string                 `json:"reference"`
		Amount          int64                  `json:"amount"`
		Fees            int64                  `json:"fees"`
		Currency        string                 `json:"currency"`
		Channel         string                 `json:"channel"`
		GatewayResponse string                 `json:"gateway_response"`
		Customer        map[string]interface{} `json:"customer"`
		Authorization   map[string]interface{} `json:"authorization"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, apperrors.NewGatewayUnavailableError(fmt.Errorf("decode verify data: %w", err))
	}

	result := &gateway.VerifyResult{
		Status:           data.Status,
		Reference:        data.Reference,
		Channel:          data.Channel,
		GatewayResponse:  data.GatewayResponse,
		AmountMinorUnits: data.Amount,
		FeesMinorUnits:   data.Fees,
		Currency:         data.Currency,
		Customer:         data.Customer,
		Authorization:    data.Authorization,
	}
	if code, ok := data.Authorization["authorization_code"].(string); ok {
		result.AuthorizationCode = code
	}

	return result, nil
}

func (c *Client) ListBanks(ctx context.Context, country string) ([]gateway.Bank, error) {
	env, err := c.request(ctx, http.MethodGet, "/bank?country="+url.QueryEscape(country), nil)
	if err != nil {
		return nil, err
	}

	var banks []gateway.Bank
	if err := json.Unmarshal(env.Data, &banks); err != nil {
		return nil, apperrors.NewGatewayUnavailableError(fmt.Errorf("decode bank list: %w", err))
	}

	return banks, nil
}

func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*gateway.AccountDetail, error) {
	query := url.Values{}
	query.Set("account_number", accountNumber)
	query.Set("bank_code", bankCode)

	env, err := c.request(ctx, http.MethodGet, "/bank/resolve?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var detail gateway.AccountDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		return nil, apperrors.NewGatewayUnavailableError(fmt.Errorf("decode account detail: %w", err))
	}

	return &detail, nil
}

// VerifySignature computes HMAC-SHA512 over the raw body and compares it to
// the header value in constant time.
func (c *Client) VerifySignature(rawBody []byte, signature string) bool {
	if c.webhookSecret == "" {
		c.logger.Warn().Msg("Webhook secret not configured")
		return false
	}

	mac := hmac.New(sha512.New, []byte(c.webhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
