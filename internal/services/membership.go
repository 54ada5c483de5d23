package services

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// MembershipService manages the employee-to-project assignment relation.
type MembershipService struct {
	store  *ledger.Store
	syncer *Syncer
}

func NewMembershipService(store *ledger.Store, syncer *Syncer) *MembershipService {
	return &MembershipService{store: store, syncer: syncer}
}

// AddMember assigns an employee to a project. Monthly-paid employees always
// join at their base salary; the caller-supplied rate only applies to
// project-paid employees and must then be positive. A duplicate assignment is
// rejected.
func (m *MembershipService) AddMember(ctx context.Context, projectID, employeeID string, monthlyRate core.Money) error {
	emp, ok := m.store.Employee(employeeID)
	if !ok {
		return fmt.Errorf("employee %s: %w", employeeID, core.ErrNotFound)
	}
	if _, ok := m.store.Project(projectID); !ok {
		return fmt.Errorf("project %s: %w", projectID, core.ErrNotFound)
	}

	rate := monthlyRate
	if emp.PaymentType == core.PaymentMonthly {
		rate = emp.Salary
	} else if err := rate.Validate(); err != nil {
		return fmt.Errorf("project rate: %w", err)
	}

	err := m.store.AddMembership(core.Membership{
		ProjectID:   projectID,
		EmployeeID:  employeeID,
		MonthlyRate: rate,
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Employee assigned to project",
		"project_id", projectID,
		"employee_id", employeeID,
		"monthly_rate_cents", rate.Cents)

	m.syncer.AfterChange(ctx, m.store.State(), "projects", "update", projectID)
	return nil
}

// RemoveMember deletes the assignment from both views. Salary history already
// posted against the project is untouched.
func (m *MembershipService) RemoveMember(ctx context.Context, projectID, employeeID string) error {
	if err := m.store.RemoveMembership(projectID, employeeID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Employee removed from project",
		"project_id", projectID,
		"employee_id", employeeID)

	m.syncer.AfterChange(ctx, m.store.State(), "projects", "update", projectID)
	return nil
}

// ProjectMembers lists the project-side view of the relation.
func (m *MembershipService) ProjectMembers(projectID string) ([]core.Membership, error) {
	if _, ok := m.store.Project(projectID); !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, core.ErrNotFound)
	}
	return m.store.ProjectMembers(projectID), nil
}

// EmployeeProjects lists the employee-side view of the relation.
func (m *MembershipService) EmployeeProjects(employeeID string) ([]core.Membership, error) {
	if _, ok := m.store.Employee(employeeID); !ok {
		return nil, fmt.Errorf("employee %s: %w", employeeID, core.ErrNotFound)
	}
	return m.store.EmployeeProjects(employeeID), nil
}
