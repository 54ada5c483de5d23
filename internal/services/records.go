package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// RecordService covers the plain record entry paths: expenses, incomes,
// employees, projects and the company profile, plus the read-side summary.
type RecordService struct {
	store  *ledger.Store
	salary *SalaryService
	syncer *Syncer
}

func NewRecordService(store *ledger.Store, salary *SalaryService, syncer *Syncer) *RecordService {
	return &RecordService{store: store, salary: salary, syncer: syncer}
}

// AddExpenseParams carries an expense entry. For category Salary the request
// is routed through the salary posting service so the history entry is never
// skipped.
type AddExpenseParams struct {
	Date        core.Date
	Category    core.ExpenseCategory
	Amount      core.Money
	Description string
	ProjectID   string
	EmployeeID  string
	SalaryMonth core.Month
}

func (r *RecordService) AddExpense(ctx context.Context, params AddExpenseParams) (core.Expense, error) {
	if params.Category == core.CategorySalary {
		expense, _, err := r.salary.PostSalary(ctx, PostSalaryParams{
			EmployeeID:  params.EmployeeID,
			Month:       params.SalaryMonth,
			Amount:      params.Amount,
			Date:        params.Date,
			Description: params.Description,
			ProjectID:   params.ProjectID,
		})
		return expense, err
	}

	expense := core.Expense{
		ID:          uuid.NewString(),
		Date:        params.Date,
		Category:    params.Category,
		Amount:      params.Amount,
		Description: params.Description,
		ProjectID:   params.ProjectID,
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}
	if params.ProjectID != "" {
		if _, ok := r.store.Project(params.ProjectID); !ok {
			return core.Expense{}, fmt.Errorf("project %s: %w", params.ProjectID, core.ErrNotFound)
		}
	}
	r.store.AddExpense(expense)

	slog.InfoContext(ctx, "Expense recorded",
		"expense_id", expense.ID,
		"category", string(expense.Category),
		"amount_cents", expense.Amount.Cents)

	r.syncer.AfterChange(ctx, r.store.State(), "expenses", "create", expense.ID)
	return expense, nil
}

func (r *RecordService) AddIncome(ctx context.Context, date core.Date, source string, amount core.Money, description, projectID string) (core.Income, error) {
	income := core.Income{
		ID:          uuid.NewString(),
		Date:        date,
		Source:      source,
		Amount:      amount,
		Description: description,
		ProjectID:   projectID,
	}
	if err := income.Validate(); err != nil {
		return core.Income{}, err
	}
	if projectID != "" {
		if _, ok := r.store.Project(projectID); !ok {
			return core.Income{}, fmt.Errorf("project %s: %w", projectID, core.ErrNotFound)
		}
	}
	r.store.AddIncome(income)

	slog.InfoContext(ctx, "Income recorded",
		"income_id", income.ID,
		"amount_cents", income.Amount.Cents)

	r.syncer.AfterChange(ctx, r.store.State(), "incomes", "create", income.ID)
	return income, nil
}

func (r *RecordService) AddEmployee(ctx context.Context, name string, salary core.Money, paymentType core.PaymentType) (core.Employee, error) {
	employee := core.Employee{
		ID:          uuid.NewString(),
		Name:        name,
		Salary:      salary,
		PaymentType: paymentType,
		Active:      true,
	}
	if err := employee.Validate(); err != nil {
		return core.Employee{}, err
	}
	if err := r.store.AddEmployee(employee); err != nil {
		return core.Employee{}, err
	}

	slog.InfoContext(ctx, "Employee added",
		"employee_id", employee.ID,
		"payment_type", string(employee.PaymentType))

	r.syncer.AfterChange(ctx, r.store.State(), "employees", "create", employee.ID)
	return employee, nil
}

// UpdateEmployee edits name, base salary, payment type and extra payment.
func (r *RecordService) UpdateEmployee(ctx context.Context, id, name string, salary core.Money, paymentType core.PaymentType, extraPayment core.Money) error {
	err := r.store.UpdateEmployee(id, func(e *core.Employee) error {
		e.Name = name
		e.Salary = salary
		e.PaymentType = paymentType
		e.ExtraPayment = extraPayment
		return e.Validate()
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Employee updated", "employee_id", id)
	r.syncer.AfterChange(ctx, r.store.State(), "employees", "update", id)
	return nil
}

// SetEmployeeActive abandons or reactivates an employee. Employees are never
// hard-deleted.
func (r *RecordService) SetEmployeeActive(ctx context.Context, id string, active bool) error {
	err := r.store.UpdateEmployee(id, func(e *core.Employee) error {
		e.Active = active
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Employee active flag changed", "employee_id", id, "active", active)
	r.syncer.AfterChange(ctx, r.store.State(), "employees", "update", id)
	return nil
}

func (r *RecordService) AddProject(ctx context.Context, name string, start, end core.Date, status core.ProjectStatus) (core.Project, error) {
	project := core.Project{
		ID:        uuid.NewString(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	if err := project.Validate(); err != nil {
		return core.Project{}, err
	}
	if err := r.store.AddProject(project); err != nil {
		return core.Project{}, err
	}

	slog.InfoContext(ctx, "Project added",
		"project_id", project.ID,
		"status", string(project.Status))

	r.syncer.AfterChange(ctx, r.store.State(), "projects", "create", project.ID)
	return project, nil
}

func (r *RecordService) UpdateProject(ctx context.Context, id, name string, start, end core.Date, status core.ProjectStatus) error {
	candidate := core.Project{ID: id, Name: name, StartDate: start, EndDate: end, Status: status}
	if err := candidate.Validate(); err != nil {
		return err
	}
	if err := r.store.UpdateProjectDetails(id, name, start, end, status); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Project updated", "project_id", id)
	r.syncer.AfterChange(ctx, r.store.State(), "projects", "update", id)
	return nil
}

// SetCompany stores the company profile. Switching to solo clears employees,
// matching the setup flow.
func (r *RecordService) SetCompany(ctx context.Context, companyType core.CompanyType) error {
	if err := companyType.Validate(); err != nil {
		return err
	}
	r.store.SetCompany(core.CompanyData{Type: companyType})
	slog.InfoContext(ctx, "Company profile set", "company_type", string(companyType))
	r.syncer.AfterChange(ctx, r.store.State(), "companyData", "update", "")
	return nil
}

// Summarize computes the month rollup from a consistent snapshot of the
// collections.
func (r *RecordService) Summarize(month core.Month) (core.Summary, error) {
	if err := month.Validate(); err != nil {
		return core.Summary{}, err
	}
	st := r.store.State()
	return core.Summarize(month, st.Expenses, st.Incomes, st.Employees, st.Projects), nil
}
