package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kolapay/paygate/internal/errors"
	http2 "github.com/kolapay/paygate/internal/infrastructure/api/http"
	"github.com/kolapay/paygate/internal/usecases/dtos"
	"github.com/kolapay/paygate/internal/usecases/interactor"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
)

const handlerTimeout = 30 * time.Second

type PaymentHandler struct {
	initiation     *interactor.InitiationInteractor
	reconciliation *interactor.ReconciliationInteractor
	logger         *zerolog.Logger
}

func NewPaymentHandler(initiation *interactor.InitiationInteractor, reconciliation *interactor.ReconciliationInteractor) *PaymentHandler {
	logger := log.GetLogger()
	return &PaymentHandler{initiation: initiation, reconciliation: reconciliation, logger: &logger}
}

func (h *PaymentHandler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	var dto dtos.InitializePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError("", errors.ErrInvalidRequestBody))
		return
	}

	// Amount may arrive as a JSON number or a string; normalize either
	// form into the string the interactor parses exactly.
	var amount interface{}
	if err := json.Unmarshal(dto.RawAmount, &amount); err != nil {
		errors.HandleHTTPError(w, errors.NewValidationError("amount", "amount is required"))
		return
	}
	switch v := amount.(type) {
	case string:
		dto.Amount = v
	case float64:
		// Keep the literal digits from the request to avoid float round-trips.
		dto.Amount = string(dto.RawAmount)
	default:
		errors.HandleHTTPError(w, errors.NewValidationError("amount", "amount must be a number or string"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	result, err := h.initiation.InitializePayment(ctx, &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedInitializePayment)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, http2.ReferenceParam)

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	view, err := h.reconciliation.VerifyPayment(ctx, reference)
	if err != nil {
		h.logger.Error().Err(err).Str("reference", reference).Msg(errors.ErrFailedVerifyPayment)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Callback handles the gateway's browser redirect. It runs the same
// reconciliation as the verify path but returns a compact response.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get(http2.ReferenceParam)
	if reference == "" {
		errors.HandleHTTPError(w, errors.NewValidationError("reference", "missing reference parameter"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	view, err := h.reconciliation.VerifyPayment(ctx, reference)
	if err != nil {
		h.logger.Error().Err(err).Str("reference", reference).Msg(errors.ErrFailedVerifyPayment)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    string `json:"amount"`
		Currency  string `json:"currency"`
	}{
		Reference: view.Reference,
		Status:    view.Status,
		Amount:    view.Amount,
		Currency:  view.Currency,
	})
}

func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get(http2.SignatureHeader)
	if signature == "" {
		h.logger.Warn().Msg("Webhook received without signature")
		errors.HandleHTTPError(w, errors.NewInvalidSignatureError())
		return
	}

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError("", errors.ErrInvalidRequestBody))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := h.reconciliation.ProcessWebhook(ctx, rawBody, signature); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedProcessWebhook)
		errors.HandleHTTPError(w, err)
		return
	}

	// Duplicates land here too: acknowledging receipt is what stops the
	// gateway's retry schedule.
	writeJSON(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: "success", Message: "Webhook processed"})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
