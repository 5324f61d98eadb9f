package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetDebt(ctx context.Context, transactionID int64) (Debt, error)
	ListDebts(ctx context.Context, unpaidOnly bool, page shared.Pagination) ([]Debt, int, error)
	ListPayments(ctx context.Context, transactionID int64) ([]Payment, error)
}

// TxRepository exposes the operations of a single payment posting.
type TxRepository interface {
	GetTransactionClient(ctx context.Context, transactionID int64) (int64, error)
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	ReconcileStore
}

// Service records payments and keeps debts reconciled.
type Service struct {
	repo        RepositoryPort
	clock       shared.Clock
	idempotency *shared.IdempotencyStore
}

// NewService constructs billing service. idempotency may be nil.
func NewService(repo RepositoryPort, clock shared.Clock, idem *shared.IdempotencyStore) *Service {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Service{repo: repo, clock: clock, idempotency: idem}
}

// RecordPaymentInput describes a payment posting.
type RecordPaymentInput struct {
	TransactionID  int64
	Amount         decimal.Decimal
	Method         Method
	IdempotencyKey string
}

// PaymentResult is a posted payment together with the refreshed debt.
type PaymentResult struct {
	Payment Payment `json:"payment"`
	Debt    Debt    `json:"debt"`
}

// RecordPayment posts a payment against a sales transaction and recomputes
// the debt row in the same atomic unit of work.
func (s *Service) RecordPayment(ctx context.Context, input RecordPaymentInput) (PaymentResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return PaymentResult{}, ErrInvalidAmount
	}
	if !input.Method.Valid() {
		return PaymentResult{}, ErrInvalidMethod
	}

	claimed := false
	if input.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "billing"); err != nil {
			return PaymentResult{}, err
		}
		claimed = true
	}

	var result PaymentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		clientID, err := tx.GetTransactionClient(ctx, input.TransactionID)
		if err != nil {
			return err
		}

		payment, err := tx.InsertPayment(ctx, Payment{
			TransactionID: input.TransactionID,
			Amount:        input.Amount,
			Method:        input.Method,
			PaidAt:        s.clock.Now(),
		})
		if err != nil {
			return err
		}

		debt, err := Reconcile(ctx, tx, input.TransactionID, clientID)
		if err != nil {
			return err
		}
		result = PaymentResult{Payment: payment, Debt: debt}
		return nil
	})
	if err != nil {
		if claimed {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey, "billing")
		}
		return PaymentResult{}, err
	}
	return result, nil
}

// GetDebt returns the debt row for a transaction.
func (s *Service) GetDebt(ctx context.Context, transactionID int64) (Debt, error) {
	return s.repo.GetDebt(ctx, transactionID)
}

// ListDebts returns debts, optionally only unpaid ones.
func (s *Service) ListDebts(ctx context.Context, unpaidOnly bool, page, perPage int) ([]Debt, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	debts, total, err := s.repo.ListDebts(ctx, unpaidOnly, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return debts, shared.NewPagination(page, perPage, total), nil
}

// ListPayments returns the payments of one transaction.
func (s *Service) ListPayments(ctx context.Context, transactionID int64) ([]Payment, error) {
	return s.repo.ListPayments(ctx, transactionID)
}
