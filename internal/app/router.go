package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockbook/stockbook/internal/billing"
	"github.com/stockbook/stockbook/internal/catalog"
	"github.com/stockbook/stockbook/internal/expenses"
	"github.com/stockbook/stockbook/internal/inventory"
	"github.com/stockbook/stockbook/internal/purchasing"
	"github.com/stockbook/stockbook/internal/sales"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	CatalogHandler    *catalog.Handler
	InventoryHandler  *inventory.Handler
	PurchasingHandler *purchasing.Handler
	SalesHandler      *sales.Handler
	BillingHandler    *billing.Handler
	ExpensesHandler   *expenses.Handler
}

// NewRouter constructs the chi.Router with stockbook defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.CatalogHandler.MountRoutes(r)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/purchases", params.PurchasingHandler.MountRoutes)
		r.Route("/sales", func(r chi.Router) {
			params.SalesHandler.MountRoutes(r)
			params.BillingHandler.MountTransactionRoutes(r)
		})
		r.Route("/debts", params.BillingHandler.MountDebtRoutes)
		r.Route("/expenses", params.ExpensesHandler.MountRoutes)
	})

	return r
}
