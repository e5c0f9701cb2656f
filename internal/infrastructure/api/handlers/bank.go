package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kolapay/paygate/internal/errors"
	http2 "github.com/kolapay/paygate/internal/infrastructure/api/http"
	"github.com/kolapay/paygate/internal/usecases/interactor"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
)

type BankHandler struct {
	banks  *interactor.BankInteractor
	logger *zerolog.Logger
}

func NewBankHandler(banks *interactor.BankInteractor) *BankHandler {
	logger := log.GetLogger()
	return &BankHandler{banks: banks, logger: &logger}
}

func (h *BankHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, http2.CountryParam)
	if country == "" {
		country = "nigeria"
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	banks, err := h.banks.ListBanks(ctx, country)
	if err != nil {
		h.logger.Error().Err(err).Str("country", country).Msg("Failed to fetch banks")
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, banks)
}

func (h *BankHandler) ResolveAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber := r.URL.Query().Get("account_number")
	bankCode := r.URL.Query().Get("bank_code")
	if accountNumber == "" {
		errors.HandleHTTPError(w, errors.NewValidationError("account_number", "account number is required"))
		return
	}
	if bankCode == "" {
		errors.HandleHTTPError(w, errors.NewValidationError("bank_code", "bank code is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	detail, err := h.banks.ResolveAccount(ctx, accountNumber, bankCode)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to resolve account")
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
