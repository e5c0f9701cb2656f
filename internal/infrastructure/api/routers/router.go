package routers

import (
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kolapay/paygate/internal/di"
	http2 "github.com/kolapay/paygate/internal/infrastructure/api/http"
)

func NewRouter(container *di.Container) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/payments", func(r chi.Router) {
		ph := container.PaymentHandler
		r.Post("/initialize", ph.InitializePayment)
		r.Get(fmt.Sprintf("/verify/{%s}", http2.ReferenceParam), ph.VerifyPayment)
		r.Post("/webhook", ph.Webhook)
		r.Get("/callback", ph.Callback)

		th := container.TransactionHandler
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", th.ListTransactions)
			r.Get(fmt.Sprintf("/{%s}", http2.ReferenceParam), th.GetTransaction)
		})
		r.Get("/stats", th.GetStats)

		bh := container.BankHandler
		r.Get(fmt.Sprintf("/banks/{%s}", http2.CountryParam), bh.ListBanks)
		r.Get("/resolve-account", bh.ResolveAccount)

		r.Get("/config", container.PaymentConfigurationHandler.ListConfigurations)
	})

	return router
}
