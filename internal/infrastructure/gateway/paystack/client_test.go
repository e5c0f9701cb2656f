package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kolapay/paygate/internal/config"
	"github.com/kolapay/paygate/internal/domain/gateway"
	apperrors "github.com/kolapay/paygate/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) gateway.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.Paystack{
		BaseURL:        server.URL,
		SecretKey:      "sk_test_x",
		WebhookSecret:  "whsec_test",
		TimeoutSeconds: "5",
	})
}

func TestInitializeChargeSuccess(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         "PAY_AAA111BBB222",
			},
		})
	}))

	result, err := client.InitializeCharge(context.Background(), gateway.InitializeRequest{
		Reference:        "PAY_AAA111BBB222",
		Email:            "payer@example.com",
		AmountMinorUnits: 100000,
		Currency:         "NGN",
		PaymentMethod:    "card",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.Equal(t, "abc123", result.AccessCode)
	assert.Equal(t, "PAY_AAA111BBB222", result.Reference)
	assert.Equal(t, float64(100000), captured["amount"], "amount crosses the wire in minor units")
}

func TestInitializeChargeMobileMoneyPayload(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"reference": "PAY_X"},
		})
	}))

	_, err := client.InitializeCharge(context.Background(), gateway.InitializeRequest{
		Reference:           "PAY_X",
		Email:               "payer@example.com",
		AmountMinorUnits:    5000,
		Currency:            "KES",
		PaymentMethod:       "mobile_money",
		MobileMoneyProvider: "mpesa",
		MobileMoneyNumber:   "+254700000001",
	})
	require.NoError(t, err)

	mm, ok := captured["mobile_money"].(map[string]interface{})
	require.True(t, ok, "mobile money block must be forwarded")
	assert.Equal(t, "mpesa", mm["provider"])
	assert.Equal(t, "+254700000001", mm["phone"])
}

func TestInitializeChargeRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid amount",
		})
	}))

	_, err := client.InitializeCharge(context.Background(), gateway.InitializeRequest{
		Reference:        "PAY_X",
		Email:            "payer@example.com",
		AmountMinorUnits: 0,
		Currency:         "NGN",
	})

	var rejected *apperrors.GatewayRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Error(), "Invalid amount")
}

func TestInitializeChargeServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.InitializeCharge(context.Background(), gateway.InitializeRequest{
		Reference: "PAY_X",
		Email:     "payer@example.com",
	})

	var unavailable *apperrors.GatewayUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestVerifyChargeSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/PAY_AAA111BBB222", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":           "success",
				"reference":        "PAY_AAA111BBB222",
				"amount":           100000,
				"fees":             1500,
				"currency":         "NGN",
				"channel":          "card",
				"gateway_response": "Successful",
				"customer":         map[string]interface{}{"email": "payer@example.com"},
				"authorization": map[string]interface{}{
					"authorization_code": "AUTH_8dfhjjdt",
					"last4":              "4081",
				},
			},
		})
	}))

	result, err := client.VerifyCharge(context.Background(), "PAY_AAA111BBB222")
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, int64(100000), result.AmountMinorUnits)
	assert.Equal(t, int64(1500), result.FeesMinorUnits)
	assert.Equal(t, "card", result.Channel)
	assert.Equal(t, "AUTH_8dfhjjdt", result.AuthorizationCode)
	assert.Equal(t, "4081", result.Authorization["last4"])
}

func TestVerifyChargeNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Transaction reference not found",
		})
	}))

	_, err := client.VerifyCharge(context.Background(), "PAY_NEVERSEEN000")

	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListBanks(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bank", r.URL.Path)
		require.Equal(t, "nigeria", r.URL.Query().Get("country"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": []map[string]interface{}{
				{"name": "Access Bank", "code": "044", "currency": "NGN"},
				{"name": "Zenith Bank", "code": "057", "currency": "NGN"},
			},
		})
	}))

	banks, err := client.ListBanks(context.Background(), "nigeria")
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, "044", banks[0].Code)
}

func TestResolveAccount(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bank/resolve", r.URL.Path)
		require.Equal(t, "0001234567", r.URL.Query().Get("account_number"))
		require.Equal(t, "044", r.URL.Query().Get("bank_code"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"account_number": "0001234567",
				"account_name":   "ADA OBI",
				"bank_id":        1,
			},
		})
	}))

	detail, err := client.ResolveAccount(context.Background(), "0001234567", "044")
	require.NoError(t, err)
	assert.Equal(t, "ADA OBI", detail.AccountName)
}

func TestVerifySignature(t *testing.T) {
	client := NewClient(config.Paystack{WebhookSecret: "whsec_test", TimeoutSeconds: "5"})
	body := []byte(`{"event":"charge.success","data":{"id":1,"reference":"PAY_X","status":"success"}}`)

	mac := hmac.New(sha512.New, []byte("whsec_test"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	t.Run("valid", func(t *testing.T) {
		assert.True(t, client.VerifySignature(body, signature))
	})

	t.Run("tampered body", func(t *testing.T) {
		tampered := append([]byte{}, body...)
		tampered[10] = 'X'
		assert.False(t, client.VerifySignature(tampered, signature))
	})

	t.Run("wrong signature", func(t *testing.T) {
		assert.False(t, client.VerifySignature(body, "deadbeef"))
	})

	t.Run("no secret configured", func(t *testing.T) {
		unconfigured := NewClient(config.Paystack{TimeoutSeconds: "5"})
		assert.False(t, unconfigured.VerifySignature(body, signature))
	})
}
