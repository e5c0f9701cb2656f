package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kolapay/paygate/internal/domain/models"
	"github.com/kolapay/paygate/internal/domain/repositories"
	"github.com/kolapay/paygate/internal/errors"
	http2 "github.com/kolapay/paygate/internal/infrastructure/api/http"
	"github.com/kolapay/paygate/internal/usecases/interactor"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
)

type TransactionHandler struct {
	queries *interactor.TransactionQueryInteractor
	logger  *zerolog.Logger
}

func NewTransactionHandler(queries *interactor.TransactionQueryInteractor) *TransactionHandler {
	logger := log.GetLogger()
	return &TransactionHandler{queries: queries, logger: &logger}
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	views, err := h.queries.List(ctx, filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list transactions")
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, http2.ReferenceParam)

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	view, err := h.queries.GetByReference(ctx, reference)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *TransactionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	stats, err := h.queries.Stats(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute transaction stats")
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func filterFromQuery(r *http.Request) (repositories.TransactionFilter, error) {
	query := r.URL.Query()
	filter := repositories.TransactionFilter{
		Status:   models.Status(query.Get("status")),
		Currency: query.Get("currency"),
		Method:   models.PaymentMethod(query.Get("payment_method")),
	}

	if filter.Status != "" {
		if _, ok := models.ValidStatuses[filter.Status]; !ok {
			return filter, errors.NewValidationError("status", "unknown status")
		}
	}
	if filter.Method != "" {
		if _, ok := models.ValidPaymentMethods[filter.Method]; !ok {
			return filter, errors.NewValidationError("payment_method", "unknown payment method")
		}
	}

	if raw := query.Get("date_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.NewValidationError("date_from", "expected YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if raw := query.Get("date_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.NewValidationError("date_to", "expected YYYY-MM-DD")
		}
		// Inclusive upper bound for the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &to
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.NewValidationError("limit", "expected a non-negative integer")
		}
		filter.Limit = limit
	}

	return filter, nil
}
