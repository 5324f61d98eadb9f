package sales

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/platform/httpx"
	"github.com/stockbook/stockbook/internal/shared"
)

// Handler exposes sales endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listTransactions)
	r.Post("/", h.createTransaction)
	r.Get("/{id}", h.getTransaction)
	r.Post("/{id}/lines", h.addLine)
}

type createTransactionForm struct {
	ClientID int64  `json:"client_id" validate:"required,gt=0"`
	Slug     string `json:"slug" validate:"omitempty,max=120"`
}

type addLineForm struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Quantity  int64            `json:"quantity" validate:"required"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var form createTransactionForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.ValidationError("body", "is not valid JSON"))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, shared.ValidationError("client_id", "is required"))
		return
	}

	txn, err := h.service.CreateTransaction(r.Context(), CreateTransactionInput{ClientID: form.ClientID, Slug: form.Slug})
	if err != nil {
		h.logger.Error("create sales transaction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.ValidationError("id", "must be a positive integer"))
		return
	}
	var form addLineForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.ValidationError("body", "is not valid JSON"))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, shared.ValidationError("product_id", "and quantity are required"))
		return
	}

	line, err := h.service.AddLine(r.Context(), AddLineInput{
		TransactionID:  id,
		ProductID:      form.ProductID,
		Quantity:       form.Quantity,
		Price:          form.Price,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Error("post sales line", slog.Int64("transaction_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, line)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.ValidationError("id", "must be a positive integer"))
		return
	}
	txn, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID, _ := strconv.ParseInt(q.Get("client_id"), 10, 64)
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	filter := ListFilter{
		ClientID: clientID,
		Slug:     q.Get("slug"),
		Page:     page,
		PerPage:  perPage,
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = t
		}
	}

	txns, pagination, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("list sales transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": txns, "pagination": pagination})
}
