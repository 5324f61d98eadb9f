package billing

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/platform/httpx"
	"github.com/stockbook/stockbook/internal/shared"
)

// Handler exposes payment and debt endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountTransactionRoutes registers the per-transaction payment routes. They
// live under the sales transaction subtree so the URL carries the id.
func (h *Handler) MountTransactionRoutes(r chi.Router) {
	r.Post("/{id}/payments", h.recordPayment)
	r.Get("/{id}/payments", h.listPayments)
	r.Get("/{id}/debt", h.getDebt)
}

// MountDebtRoutes registers the debt listing routes.
func (h *Handler) MountDebtRoutes(r chi.Router) {
	r.Get("/", h.listDebts)
}

type paymentForm struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.ValidationError("id", "must be a positive integer"))
		return
	}
	var form paymentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.ValidationError("body", "is not valid JSON"))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, shared.ValidationError("amount", "and method are required"))
		return
	}

	result, err := h.service.RecordPayment(r.Context(), RecordPaymentInput{
		TransactionID:  id,
		Amount:         form.Amount,
		Method:         Method(form.Method),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Error("record payment", slog.Int64("transaction_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.ValidationError("id", "must be a positive integer"))
		return
	}
	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		h.logger.Error("list payments", slog.Int64("transaction_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) getDebt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.ValidationError("id", "must be a positive integer"))
		return
	}
	debt, err := h.service.GetDebt(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, debt)
}

func (h *Handler) listDebts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	unpaidOnly := q.Get("unpaid") == "true"

	debts, pagination, err := h.service.ListDebts(r.Context(), unpaidOnly, page, perPage)
	if err != nil {
		h.logger.Error("list debts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"debts": debts, "pagination": pagination})
}
