package http

import (
	"net/http"

	"finledger/internal/core"
	"finledger/internal/services"
)

type companyRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := s.store.Company()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"company": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": company})
}

func (s *Server) handleSetCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := s.records.SetCompany(r.Context(), core.CompanyType(req.Type)); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, map[string]string{"type": req.Type})
}

type expenseRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId,omitempty"`
	EmployeeID  string `json:"employeeId,omitempty"`
	SalaryMonth string `json:"salaryMonth,omitempty"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	writeJSON(w, http.StatusOK, map[string]any{"expenses": st.Expenses})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.records.AddExpense(r.Context(), services.AddExpenseParams{
		Date:        date,
		Category:    core.ExpenseCategory(req.Category),
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		ProjectID:   req.ProjectID,
		EmployeeID:  req.EmployeeID,
		SalaryMonth: core.Month(req.SalaryMonth),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, expense)
}

type incomeRequest struct {
	Date        string `json:"date"`
	Source      string `json:"source,omitempty"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId,omitempty"`
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	writeJSON(w, http.StatusOK, map[string]any{"incomes": st.Incomes})
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	income, err := s.records.AddIncome(r.Context(), date, sanitizeInput(req.Source), amount, sanitizeInput(req.Description), req.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, income)
}

type employeeRequest struct {
	Name         string `json:"name"`
	Salary       string `json:"salary"`
	PaymentType  string `json:"paymentType"`
	ExtraPayment string `json:"extraPayment,omitempty"`
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	writeJSON(w, http.StatusOK, map[string]any{"employees": st.Employees})
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	salary, err := parseAmount(req.Salary)
	if err != nil {
		writeError(w, r, err)
		return
	}

	employee, err := s.records.AddEmployee(r.Context(), sanitizeInput(req.Name), salary, core.PaymentType(req.PaymentType))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, employee)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	salary, err := parseAmount(req.Salary)
	if err != nil {
		writeError(w, r, err)
		return
	}
	extra, err := parseOptionalAmount(req.ExtraPayment)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	if err := s.records.UpdateEmployee(r.Context(), id, sanitizeInput(req.Name), salary, core.PaymentType(req.PaymentType), extra); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	employee, _ := s.store.Employee(id)
	writeJSON(w, http.StatusOK, employee)
}

type activeRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetEmployeeActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	id := r.PathValue("id")
	if err := s.records.SetEmployeeActive(r.Context(), id, req.Active); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": req.Active})
}

func (s *Server) handleSalaryHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.salary.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (s *Server) handleEmployeeProjects(w http.ResponseWriter, r *http.Request) {
	memberships, err := s.members.EmployeeProjects(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": memberships})
}

type salaryRequest struct {
	EmployeeID  string `json:"employeeId"`
	Month       string `json:"month"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
}

func (s *Server) handlePostSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, payment, err := s.salary.PostSalary(r.Context(), services.PostSalaryParams{
		EmployeeID:  req.EmployeeID,
		Month:       core.Month(req.Month),
		Amount:      amount,
		Date:        date,
		Description: sanitizeInput(req.Description),
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, map[string]any{
		"expense": expense,
		"payment": payment,
	})
}
