package handlers

import (
	"context"
	"net/http"

	"github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/internal/usecases/interactor"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
)

type PaymentConfigurationHandler struct {
	configurations *interactor.PaymentConfigurationInteractor
	logger         *zerolog.Logger
}

func NewPaymentConfigurationHandler(configurations *interactor.PaymentConfigurationInteractor) *PaymentConfigurationHandler {
	logger := log.GetLogger()
	return &PaymentConfigurationHandler{configurations: configurations, logger: &logger}
}

func (h *PaymentConfigurationHandler) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	configs, err := h.configurations.ListActive(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list payment configurations")
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configs)
}
