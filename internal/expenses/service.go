package expenses

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/shared"
)

// RepositoryPort defines data access for the expense ledger.
type RepositoryPort interface {
	CreateExpense(ctx context.Context, e Expense) (Expense, error)
	GetExpense(ctx context.Context, id int64) (Expense, error)
	ListExpenses(ctx context.Context, filter ListFilter) ([]Expense, int, error)
	UpdateExpense(ctx context.Context, id int64, e Expense) error
	DeleteExpense(ctx context.Context, id int64) error

	InsertTransaction(ctx context.Context, t ExpenseTransaction) (ExpenseTransaction, error)
	ListTransactions(ctx context.Context, expenseID int64) ([]ExpenseTransaction, error)
}

// Service handles expense ledger rules.
type Service struct {
	repo  RepositoryPort
	clock shared.Clock
}

// NewService builds Service.
func NewService(repo RepositoryPort, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Service{repo: repo, clock: clock}
}

func validateExpense(e Expense) error {
	if strings.TrimSpace(e.Title) == "" {
		return shared.ValidationError("title", "is required")
	}
	if e.Amount.LessThan(decimal.Zero) {
		return shared.ValidationError("amount", "must not be negative")
	}
	return nil
}

// CreateExpense persists a new expense category.
func (s *Service) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	if err := validateExpense(e); err != nil {
		return Expense{}, err
	}
	return s.repo.CreateExpense(ctx, e)
}

// GetExpense fetches an expense by ID.
func (s *Service) GetExpense(ctx context.Context, id int64) (Expense, error) {
	if id <= 0 {
		return Expense{}, shared.ValidationError("id", "must be positive")
	}
	return s.repo.GetExpense(ctx, id)
}

// ListExpenses returns expenses matching filter.
func (s *Service) ListExpenses(ctx context.Context, filter ListFilter) ([]Expense, shared.Pagination, error) {
	items, total, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// UpdateExpense replaces expense fields.
func (s *Service) UpdateExpense(ctx context.Context, id int64, e Expense) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	if err := validateExpense(e); err != nil {
		return err
	}
	return s.repo.UpdateExpense(ctx, id, e)
}

// DeleteExpense removes an expense together with its transactions.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	return s.repo.DeleteExpense(ctx, id)
}

// AddTransaction appends a posting to an expense. A zero occurredAt
// defaults to the current time.
func (s *Service) AddTransaction(ctx context.Context, expenseID int64, comment string, occurredAt time.Time) (ExpenseTransaction, error) {
	if expenseID <= 0 {
		return ExpenseTransaction{}, shared.ValidationError("expense_id", "must be positive")
	}
	if strings.TrimSpace(comment) == "" {
		return ExpenseTransaction{}, shared.ValidationError("comment", "is required")
	}
	if _, err := s.repo.GetExpense(ctx, expenseID); err != nil {
		return ExpenseTransaction{}, err
	}

	if occurredAt.IsZero() {
		occurredAt = s.clock.Now()
	}
	return s.repo.InsertTransaction(ctx, ExpenseTransaction{
		ExpenseID:  expenseID,
		Comment:    comment,
		OccurredAt: occurredAt,
	})
}

// ListTransactions returns the postings of one expense.
func (s *Service) ListTransactions(ctx context.Context, expenseID int64) ([]ExpenseTransaction, error) {
	if expenseID <= 0 {
		return nil, shared.ValidationError("expense_id", "must be positive")
	}
	return s.repo.ListTransactions(ctx, expenseID)
}
