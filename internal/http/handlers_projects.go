package http

import (
	"net/http"

	"finledger/internal/core"
)

type projectRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	writeJSON(w, http.StatusOK, map[string]any{"projects": st.Projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.records.AddProject(r.Context(), sanitizeInput(req.Name), start, end, core.ProjectStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	if err := s.records.UpdateProject(r.Context(), id, sanitizeInput(req.Name), start, end, core.ProjectStatus(req.Status)); err != nil {
		writeError(w, r, err)
		return
	}
	project, _ := s.store.Project(id)
	writeJSON(w, http.StatusOK, project)
}

type memberRequest struct {
	EmployeeID  string `json:"employeeId"`
	MonthlyRate string `json:"monthlyRate,omitempty"`
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	memberships, err := s.members.ProjectMembers(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": memberships})
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	rate, err := parseOptionalAmount(req.MonthlyRate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	projectID := r.PathValue("id")
	if err := s.members.AddMember(r.Context(), projectID, req.EmployeeID, rate); err != nil {
		writeError(w, r, err)
		return
	}
	memberships, err := s.members.ProjectMembers(projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"members": memberships})
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	employeeID := r.PathValue("employeeId")
	if err := s.members.RemoveMember(r.Context(), projectID, employeeID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
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

	projectID := r.PathValue("id")
	paymentID, err := s.payments.AddPayment(r.Context(), projectID, amount, date, core.PaymentStatus(req.Status), sanitizeInput(req.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	project, _ := s.store.Project(projectID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"paymentId":   paymentID,
		"totalIncome": project.TotalIncome,
	})
}

func (s *Server) handleEditPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
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

	paymentID := r.PathValue("id")
	if err := s.payments.EditPayment(r.Context(), paymentID, amount, date, core.PaymentStatus(req.Status)); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	projectID, payment, _ := s.store.FindPayment(paymentID)
	project, _ := s.store.Project(projectID)
	writeJSON(w, http.StatusOK, map[string]any{
		"payment":     payment,
		"totalIncome": project.TotalIncome,
	})
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.payments.DeletePayment(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}
