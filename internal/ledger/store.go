// Package ledger holds the in-memory source of truth: the four record
// collections, the company profile, and the membership relation index.
package ledger

import (
	"fmt"
	"sync"

	"finledger/internal/core"
)

type membershipKey struct {
	projectID  string
	employeeID string
}

// Store keeps every collection behind one mutex with explicit operations.
// Derived caches (Project.TotalIncome, Project.TotalExpense) are written only
// here, so the single mutation path of the payment ledger is enforced
// structurally. Membership is stored once, in the relation index; the
// per-project and per-employee lists are views over it.
type Store struct {
	mu          sync.Mutex
	company     *core.CompanyData
	expenses    []core.Expense
	incomes     []core.Income
	employees   []*core.Employee
	employeeIdx map[string]*core.Employee
	projects    []*core.Project
	projectIdx  map[string]*core.Project
	members     map[membershipKey]core.Membership
	memberOrder []membershipKey
}

// State is a deep copy of everything the store holds, safe to read and
// serialize without holding the lock.
type State struct {
	Company     *core.CompanyData
	Expenses    []core.Expense
	Incomes     []core.Income
	Employees   []core.Employee
	Projects    []core.Project
	Memberships []core.Membership
}

func New() *Store {
	return &Store{
		employeeIdx: make(map[string]*core.Employee),
		projectIdx:  make(map[string]*core.Project),
		members:     make(map[membershipKey]core.Membership),
	}
}

// Company returns the company profile, if configured.
func (s *Store) Company() (core.CompanyData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.company == nil {
		return core.CompanyData{}, false
	}
	return *s.company, true
}

// SetCompany stores the company profile. Switching to solo clears the
// employee collection and its memberships.
func (s *Store) SetCompany(c core.CompanyData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company = &c
	if c.Type == core.CompanySolo {
		s.employees = nil
		s.employeeIdx = make(map[string]*core.Employee)
		s.members = make(map[membershipKey]core.Membership)
		s.memberOrder = nil
	}
}

func (s *Store) AddExpense(e core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	if e.ProjectID != "" {
		if p, ok := s.projectIdx[e.ProjectID]; ok {
			p.TotalExpense = p.TotalExpense.Add(e.Amount)
		}
	}
}

func (s *Store) AddIncome(i core.Income) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes = append(s.incomes, i)
}

func (s *Store) AddEmployee(e core.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employeeIdx[e.ID]; ok {
		return fmt.Errorf("employee %s already exists", e.ID)
	}
	stored := e
	stored.SalaryHistory = append([]core.SalaryPayment(nil), e.SalaryHistory...)
	s.employees = append(s.employees, &stored)
	s.employeeIdx[stored.ID] = &stored
	return nil
}

// Employee returns a copy of the employee record.
func (s *Store) Employee(id string) (core.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employeeIdx[id]
	if !ok {
		return core.Employee{}, false
	}
	return copyEmployee(e), true
}

// UpdateEmployee applies fn to the stored employee under the lock. If fn
// returns an error, no change is kept.
func (s *Store) UpdateEmployee(id string, fn func(*core.Employee) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employeeIdx[id]
	if !ok {
		return fmt.Errorf("employee %s: %w", id, core.ErrNotFound)
	}
	scratch := copyEmployee(e)
	if err := fn(&scratch); err != nil {
		return err
	}
	*e = scratch
	return nil
}

func (s *Store) AddProject(p core.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projectIdx[p.ID]; ok {
		return fmt.Errorf("project %s already exists", p.ID)
	}
	stored := p
	stored.Payments = append([]core.ProjectPayment(nil), p.Payments...)
	s.projects = append(s.projects, &stored)
	s.projectIdx[stored.ID] = &stored
	return nil
}

// Project returns a copy of the project record.
func (s *Store) Project(id string) (core.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projectIdx[id]
	if !ok {
		return core.Project{}, false
	}
	return copyProject(p), true
}

// UpdateProjectDetails edits name, dates and status, leaving payments and the
// cached totals untouched.
func (s *Store) UpdateProjectDetails(id, name string, start, end core.Date, status core.ProjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projectIdx[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id, core.ErrNotFound)
	}
	p.Name = name
	p.StartDate = start
	p.EndDate = end
	p.Status = status
	return nil
}

// PostSalary appends the paired expense and salary history entry in one step,
// so a reader can never observe one without the other.
func (s *Store) PostSalary(employeeID string, exp core.Expense, pay core.SalaryPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employeeIdx[employeeID]
	if !ok {
		return fmt.Errorf("employee %s: %w", employeeID, core.ErrNotFound)
	}
	s.expenses = append(s.expenses, exp)
	e.SalaryHistory = append(e.SalaryHistory, pay)
	if exp.ProjectID != "" {
		if p, ok := s.projectIdx[exp.ProjectID]; ok {
			p.TotalExpense = p.TotalExpense.Add(exp.Amount)
		}
	}
	return nil
}

// AddMembership inserts into the relation index. Duplicate membership is an
// error, not a no-op: double entries would double-count in aggregation.
func (s *Store) AddMembership(m core.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projectIdx[m.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", m.ProjectID, core.ErrNotFound)
	}
	if _, ok := s.employeeIdx[m.EmployeeID]; !ok {
		return fmt.Errorf("employee %s: %w", m.EmployeeID, core.ErrNotFound)
	}
	key := membershipKey{projectID: m.ProjectID, employeeID: m.EmployeeID}
	if _, ok := s.members[key]; ok {
		return core.ErrDuplicateMember
	}
	s.members[key] = m
	s.memberOrder = append(s.memberOrder, key)
	return nil
}

func (s *Store) RemoveMembership(projectID, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{projectID: projectID, employeeID: employeeID}
	if _, ok := s.members[key]; !ok {
		return fmt.Errorf("membership %s/%s: %w", projectID, employeeID, core.ErrNotFound)
	}
	delete(s.members, key)
	for i, k := range s.memberOrder {
		if k == key {
			s.memberOrder = append(s.memberOrder[:i], s.memberOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ProjectMembers is the project-side view of the relation index.
func (s *Store) ProjectMembers(projectID string) []core.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Membership
	for _, key := range s.memberOrder {
		if key.projectID == projectID {
			out = append(out, s.members[key])
		}
	}
	return out
}

// EmployeeProjects is the employee-side view of the relation index.
func (s *Store) EmployeeProjects(employeeID string) []core.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Membership
	for _, key := range s.memberOrder {
		if key.employeeID == employeeID {
			out = append(out, s.members[key])
		}
	}
	return out
}

// AddPayment appends a payment to the project and, if it arrives already
// paid, credits TotalIncome at insert time.
func (s *Store) AddPayment(projectID string, pay core.ProjectPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projectIdx[projectID]
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, core.ErrNotFound)
	}
	p.Payments = append(p.Payments, pay)
	if pay.Status == core.PaymentPaid {
		p.TotalIncome = p.TotalIncome.Add(pay.Amount)
	}
	return nil
}

// FindPayment locates a payment by id across all projects.
func (s *Store) FindPayment(paymentID string) (projectID string, pay core.ProjectPayment, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		for _, candidate := range p.Payments {
			if candidate.ID == paymentID {
				return p.ID, candidate, true
			}
		}
	}
	return "", core.ProjectPayment{}, false
}

// EditPayment replaces amount, date and status of an existing payment and
// applies the income delta of the status transition exactly once.
func (s *Store) EditPayment(paymentID string, amount core.Money, date core.Date, status core.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		for i := range p.Payments {
			if p.Payments[i].ID != paymentID {
				continue
			}
			old := p.Payments[i]
			delta := core.PaymentDelta(old.Status, old.Amount, status, amount)
			p.Payments[i].Amount = amount
			p.Payments[i].Date = date
			p.Payments[i].Status = status
			p.TotalIncome = p.TotalIncome.Add(delta)
			return nil
		}
	}
	return fmt.Errorf("payment %s: %w", paymentID, core.ErrNotFound)
}

// DeletePayment removes a payment, debiting TotalIncome first when the
// payment was paid.
func (s *Store) DeletePayment(paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		for i := range p.Payments {
			if p.Payments[i].ID != paymentID {
				continue
			}
			if p.Payments[i].Status == core.PaymentPaid {
				p.TotalIncome = p.TotalIncome.Sub(p.Payments[i].Amount)
			}
			p.Payments = append(p.Payments[:i], p.Payments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("payment %s: %w", paymentID, core.ErrNotFound)
}

// State returns a deep copy of all collections.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Expenses: append([]core.Expense(nil), s.expenses...),
		Incomes:  append([]core.Income(nil), s.incomes...),
	}
	if s.company != nil {
		c := *s.company
		st.Company = &c
	}
	for _, e := range s.employees {
		st.Employees = append(st.Employees, copyEmployee(e))
	}
	for _, p := range s.projects {
		st.Projects = append(st.Projects, copyProject(p))
	}
	for _, key := range s.memberOrder {
		st.Memberships = append(st.Memberships, s.members[key])
	}
	return st
}

// Restore replaces the store's contents with a loaded state.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.company = nil
	if st.Company != nil {
		c := *st.Company
		s.company = &c
	}
	s.expenses = append([]core.Expense(nil), st.Expenses...)
	s.incomes = append([]core.Income(nil), st.Incomes...)

	s.employees = nil
	s.employeeIdx = make(map[string]*core.Employee)
	for i := range st.Employees {
		e := copyEmployee(&st.Employees[i])
		s.employees = append(s.employees, &e)
		s.employeeIdx[e.ID] = &e
	}

	s.projects = nil
	s.projectIdx = make(map[string]*core.Project)
	for i := range st.Projects {
		p := copyProject(&st.Projects[i])
		s.projects = append(s.projects, &p)
		s.projectIdx[p.ID] = &p
	}

	s.members = make(map[membershipKey]core.Membership)
	s.memberOrder = nil
	for _, m := range st.Memberships {
		key := membershipKey{projectID: m.ProjectID, employeeID: m.EmployeeID}
		if _, ok := s.members[key]; ok {
			continue
		}
		s.members[key] = m
		s.memberOrder = append(s.memberOrder, key)
	}
}

func copyEmployee(e *core.Employee) core.Employee {
	out := *e
	out.SalaryHistory = append([]core.SalaryPayment(nil), e.SalaryHistory...)
	return out
}

func copyProject(p *core.Project) core.Project {
	out := *p
	out.Payments = append([]core.ProjectPayment(nil), p.Payments...)
	return out
}
