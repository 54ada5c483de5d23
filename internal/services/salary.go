package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// SalaryService posts salary payments: one Salary-category expense plus one
// history entry on the employee, created together or not at all.
type SalaryService struct {
	store  *ledger.Store
	syncer *Syncer
}

func NewSalaryService(store *ledger.Store, syncer *Syncer) *SalaryService {
	return &SalaryService{store: store, syncer: syncer}
}

// PostSalaryParams carries a salary posting request. Description and
// ProjectID are optional.
type PostSalaryParams struct {
	EmployeeID  string
	Month       core.Month
	Amount      core.Money
	Date        core.Date
	Description string
	ProjectID   string
}

// PostSalary creates the paired expense and salary payment. Validation
// failures reject the call with no partial state change.
func (s *SalaryService) PostSalary(ctx context.Context, params PostSalaryParams) (core.Expense, core.SalaryPayment, error) {
	emp, ok := s.store.Employee(params.EmployeeID)
	if !ok {
		return core.Expense{}, core.SalaryPayment{}, fmt.Errorf("employee %s: %w", params.EmployeeID, core.ErrNotFound)
	}
	if err := params.Month.Validate(); err != nil {
		return core.Expense{}, core.SalaryPayment{}, err
	}
	if err := params.Amount.Validate(); err != nil {
		return core.Expense{}, core.SalaryPayment{}, err
	}
	if err := params.Date.Validate(); err != nil {
		return core.Expense{}, core.SalaryPayment{}, err
	}
	if params.ProjectID != "" {
		if _, ok := s.store.Project(params.ProjectID); !ok {
			return core.Expense{}, core.SalaryPayment{}, fmt.Errorf("project %s: %w", params.ProjectID, core.ErrNotFound)
		}
	}

	description := params.Description
	if description == "" {
		description = fmt.Sprintf("Salary %s for %s", params.Month, emp.Name)
	}

	expense := core.Expense{
		ID:          uuid.NewString(),
		Date:        params.Date,
		Category:    core.CategorySalary,
		Amount:      params.Amount,
		Description: description,
		ProjectID:   params.ProjectID,
		EmployeeID:  emp.ID,
		SalaryMonth: params.Month,
	}
	payment := core.SalaryPayment{
		Month:     params.Month,
		Amount:    params.Amount,
		DatePaid:  params.Date,
		ExpenseID: expense.ID,
	}

	if err := s.store.PostSalary(emp.ID, expense, payment); err != nil {
		return core.Expense{}, core.SalaryPayment{}, err
	}

	slog.InfoContext(ctx, "Salary posted",
		"employee_id", emp.ID,
		"month", payment.Month.String(),
		"amount_cents", payment.Amount.Cents,
		"expense_id", expense.ID)

	s.syncer.AfterChange(ctx, s.store.State(), "expenses", "create", expense.ID)
	return expense, payment, nil
}

// HistoryEntry is one row of an employee's salary history, joined with the
// backing expense description.
type HistoryEntry struct {
	Month       core.Month       `json:"month"`
	Amount      core.Money       `json:"amount"`
	DatePaid    core.Date        `json:"datePaid"`
	ExpenseID   string           `json:"expenseId"`
	PaymentType core.PaymentType `json:"paymentType"`
	Description string           `json:"description"`
}

// History returns the employee's salary payments with expense descriptions.
func (s *SalaryService) History(ctx context.Context, employeeID string) ([]HistoryEntry, error) {
	emp, ok := s.store.Employee(employeeID)
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", employeeID, core.ErrNotFound)
	}

	byID := make(map[string]core.Expense)
	for _, e := range s.store.State().Expenses {
		byID[e.ID] = e
	}

	entries := make([]HistoryEntry, 0, len(emp.SalaryHistory))
	for _, pay := range emp.SalaryHistory {
		entry := HistoryEntry{
			Month:       pay.Month,
			Amount:      pay.Amount,
			DatePaid:    pay.DatePaid,
			ExpenseID:   pay.ExpenseID,
			PaymentType: emp.PaymentType,
			Description: "No description",
		}
		if exp, ok := byID[pay.ExpenseID]; ok {
			entry.Description = exp.Description
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
