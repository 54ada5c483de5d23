package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

type fakeSaver struct {
	calls    int
	last     ledger.State
	failWith error
}

func (f *fakeSaver) SaveState(ctx context.Context, st ledger.State) error {
	f.calls++
	f.last = st
	return f.failWith
}

type fakePublisher struct {
	calls    int
	lastColl string
	lastOp   string
	lastID   string
	failWith error
}

func (f *fakePublisher) PublishLedgerChange(ctx context.Context, collection, op, id string) error {
	f.calls++
	f.lastColl = collection
	f.lastOp = op
	f.lastID = id
	return f.failWith
}

func newFixture(t *testing.T) (*ledger.Store, core.Employee, core.Project) {
	t.Helper()
	store := ledger.New()
	records := NewRecordService(store, NewSalaryService(store, nil), nil)
	ctx := context.Background()

	emp, err := records.AddEmployee(ctx, "Dana", core.Money{Cents: 300000}, core.PaymentMonthly)
	if err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	proj, err := records.AddProject(ctx, "Website", core.NewDate(2024, 1, 1), core.Date{}, core.ProjectOngoing)
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	return store, emp, proj
}

func TestSyncerAfterChange(t *testing.T) {
	saver := &fakeSaver{}
	pub := &fakePublisher{}
	syncer := NewSyncer(saver, pub)

	st := ledger.State{Expenses: []core.Expense{{ID: "e1"}}}
	syncer.AfterChange(context.Background(), st, "expenses", "create", "e1")

	if saver.calls != 1 || len(saver.last.Expenses) != 1 {
		t.Errorf("saver calls = %d, state = %+v", saver.calls, saver.last)
	}
	if pub.calls != 1 || pub.lastColl != "expenses" || pub.lastOp != "create" || pub.lastID != "e1" {
		t.Errorf("publisher saw %q/%q/%q", pub.lastColl, pub.lastOp, pub.lastID)
	}

	// Sync target failures are logged, never surfaced.
	saver.failWith = errors.New("disk full")
	pub.failWith = errors.New("broker down")
	syncer.AfterChange(context.Background(), st, "expenses", "create", "e2")
	if saver.calls != 2 || pub.calls != 2 {
		t.Error("failing targets should still be called on later changes")
	}

	// Nil receiver and nil targets are safe.
	var nilSyncer *Syncer
	nilSyncer.AfterChange(context.Background(), st, "expenses", "create", "e3")
	NewSyncer(nil, nil).AfterChange(context.Background(), st, "expenses", "create", "e4")
}

func TestPostSalaryDefaultDescription(t *testing.T) {
	store, emp, _ := newFixture(t)
	svc := NewSalaryService(store, nil)

	expense, payment, err := svc.PostSalary(context.Background(), PostSalaryParams{
		EmployeeID: emp.ID,
		Month:      core.Month("2024-03"),
		Amount:     core.Money{Cents: 300000},
		Date:       core.NewDate(2024, 3, 28),
	})
	if err != nil {
		t.Fatalf("PostSalary: %v", err)
	}
	if expense.Category != core.CategorySalary {
		t.Errorf("Category = %q, want Salary", expense.Category)
	}
	if !strings.Contains(expense.Description, "Dana") || !strings.Contains(expense.Description, "2024-03") {
		t.Errorf("default description = %q, want month and name", expense.Description)
	}
	if payment.ExpenseID != expense.ID {
		t.Errorf("payment.ExpenseID = %q, want %q", payment.ExpenseID, expense.ID)
	}

	history, err := svc.History(context.Background(), emp.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Description != expense.Description {
		t.Errorf("History = %+v, want the joined description", history)
	}
	if history[0].PaymentType != core.PaymentMonthly {
		t.Errorf("PaymentType = %q, want monthly", history[0].PaymentType)
	}
}

func TestPostSalaryValidatesBeforeMutating(t *testing.T) {
	store, emp, _ := newFixture(t)
	svc := NewSalaryService(store, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		params PostSalaryParams
		want   error
	}{
		{"unknown employee", PostSalaryParams{EmployeeID: "ghost", Month: "2024-03", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 3, 28)}, core.ErrNotFound},
		{"bad month", PostSalaryParams{EmployeeID: emp.ID, Month: "March", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 3, 28)}, core.ErrInvalidMonth},
		{"zero amount", PostSalaryParams{EmployeeID: emp.ID, Month: "2024-03", Date: core.NewDate(2024, 3, 28)}, core.ErrInvalidAmount},
		{"unknown project", PostSalaryParams{EmployeeID: emp.ID, Month: "2024-03", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 3, 28), ProjectID: "ghost"}, core.ErrNotFound},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.PostSalary(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	// A rejected call leaves no partial state.
	got, _ := store.Employee(emp.ID)
	if len(got.SalaryHistory) != 0 {
		t.Errorf("rejected posts left history: %+v", got.SalaryHistory)
	}
	if len(store.State().Expenses) != 0 {
		t.Errorf("rejected posts left expenses: %+v", store.State().Expenses)
	}
}

func TestSalaryExpenseRoutedThroughPosting(t *testing.T) {
	store, emp, _ := newFixture(t)
	pub := &fakePublisher{}
	syncer := NewSyncer(nil, pub)
	records := NewRecordService(store, NewSalaryService(store, syncer), syncer)

	expense, err := records.AddExpense(context.Background(), AddExpenseParams{
		Date:        core.NewDate(2024, 3, 28),
		Category:    core.CategorySalary,
		Amount:      core.Money{Cents: 300000},
		EmployeeID:  emp.ID,
		SalaryMonth: core.Month("2024-03"),
	})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	got, _ := store.Employee(emp.ID)
	if len(got.SalaryHistory) != 1 || got.SalaryHistory[0].ExpenseID != expense.ID {
		t.Errorf("salary expense skipped the history entry: %+v", got.SalaryHistory)
	}
	if pub.lastColl != "expenses" || pub.lastOp != "create" || pub.lastID != expense.ID {
		t.Errorf("published %q/%q/%q, want expenses/create/%s", pub.lastColl, pub.lastOp, pub.lastID, expense.ID)
	}
}

func TestAddMemberRates(t *testing.T) {
	store, emp, proj := newFixture(t)
	records := NewRecordService(store, NewSalaryService(store, nil), nil)
	svc := NewMembershipService(store, nil)
	ctx := context.Background()

	// Monthly-paid employees join at their base salary, whatever the caller sent.
	if err := svc.AddMember(ctx, proj.ID, emp.ID, core.Money{Cents: 1}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	members, err := svc.ProjectMembers(proj.ID)
	if err != nil {
		t.Fatalf("ProjectMembers: %v", err)
	}
	if len(members) != 1 || members[0].MonthlyRate.Cents != 300000 {
		t.Errorf("members = %+v, want rate 300000", members)
	}

	if err := svc.AddMember(ctx, proj.ID, emp.ID, core.Money{}); !errors.Is(err, core.ErrDuplicateMember) {
		t.Errorf("duplicate error = %v, want ErrDuplicateMember", err)
	}

	// Project-paid employees need an explicit positive rate.
	contractor, err := records.AddEmployee(ctx, "Robin", core.Money{Cents: 250000}, core.PaymentProject)
	if err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	if err := svc.AddMember(ctx, proj.ID, contractor.ID, core.Money{}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("missing rate error = %v, want ErrInvalidAmount", err)
	}
	if err := svc.AddMember(ctx, proj.ID, contractor.ID, core.Money{Cents: 150000}); err != nil {
		t.Fatalf("AddMember contractor: %v", err)
	}

	projects, err := svc.EmployeeProjects(contractor.ID)
	if err != nil {
		t.Fatalf("EmployeeProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].MonthlyRate.Cents != 150000 {
		t.Errorf("EmployeeProjects = %+v, want rate 150000", projects)
	}

	if err := svc.RemoveMember(ctx, proj.ID, emp.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if err := svc.RemoveMember(ctx, proj.ID, emp.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second removal error = %v, want ErrNotFound", err)
	}

	if _, err := svc.ProjectMembers("ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown project error = %v, want ErrNotFound", err)
	}
	if _, err := svc.EmployeeProjects("ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown employee error = %v, want ErrNotFound", err)
	}
}

func TestPaymentLifecycleKeepsTotalsConsistent(t *testing.T) {
	store, _, proj := newFixture(t)
	svc := NewPaymentService(store, nil)
	ctx := context.Background()

	payID, err := svc.AddPayment(ctx, proj.ID, core.Money{Cents: 50000}, core.NewDate(2024, 3, 15), core.PaymentUpcoming, "milestone 1")
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if p, _ := store.Project(proj.ID); p.TotalIncome.Cents != 0 {
		t.Errorf("upcoming payment credited income: %d", p.TotalIncome.Cents)
	}

	if err := svc.EditPayment(ctx, payID, core.Money{Cents: 80000}, core.NewDate(2024, 3, 16), core.PaymentPaid); err != nil {
		t.Fatalf("EditPayment: %v", err)
	}
	p, _ := store.Project(proj.ID)
	if p.TotalIncome.Cents != 80000 {
		t.Errorf("TotalIncome = %d, want 80000", p.TotalIncome.Cents)
	}
	if p.TotalIncome != p.PaidTotal() {
		t.Errorf("cached total %d diverged from PaidTotal %d", p.TotalIncome.Cents, p.PaidTotal().Cents)
	}

	if err := svc.EditPayment(ctx, payID, core.Money{}, core.NewDate(2024, 3, 16), core.PaymentPaid); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
	if err := svc.EditPayment(ctx, payID, core.Money{Cents: 80000}, core.Date{}, core.PaymentPaid); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("zero date error = %v, want ErrInvalidDate", err)
	}
	if err := svc.EditPayment(ctx, payID, core.Money{Cents: 80000}, core.NewDate(2024, 3, 16), core.PaymentStatus("pending")); !errors.Is(err, core.ErrInvalidStatus) {
		t.Errorf("bad status error = %v, want ErrInvalidStatus", err)
	}
	// The rejected edits must not have moved the total.
	if p, _ := store.Project(proj.ID); p.TotalIncome.Cents != 80000 {
		t.Errorf("rejected edit moved TotalIncome to %d", p.TotalIncome.Cents)
	}

	if err := svc.DeletePayment(ctx, payID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	if p, _ := store.Project(proj.ID); p.TotalIncome.Cents != 0 {
		t.Errorf("TotalIncome after delete = %d, want 0", p.TotalIncome.Cents)
	}

	if err := svc.DeletePayment(ctx, payID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete twice error = %v, want ErrNotFound", err)
	}
	if err := svc.EditPayment(ctx, payID, core.Money{Cents: 1}, core.Date{}, core.PaymentPaid); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("edit deleted error = %v, want ErrNotFound", err)
	}
	if _, err := svc.AddPayment(ctx, "ghost", core.Money{Cents: 1}, core.NewDate(2024, 3, 15), core.PaymentPaid, ""); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown project error = %v, want ErrNotFound", err)
	}
}

func TestRecordServiceSummarize(t *testing.T) {
	store, emp, proj := newFixture(t)
	records := NewRecordService(store, NewSalaryService(store, nil), nil)
	payments := NewPaymentService(store, nil)
	ctx := context.Background()

	if _, err := records.AddExpense(ctx, AddExpenseParams{
		Date:     core.NewDate(2024, 3, 10),
		Category: core.CategoryRent,
		Amount:   core.Money{Cents: 120000},
	}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := records.AddIncome(ctx, core.NewDate(2024, 3, 12), "Client", core.Money{Cents: 200000}, "Consulting retainer", proj.ID); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if _, err := payments.AddPayment(ctx, proj.ID, core.Money{Cents: 80000}, core.NewDate(2024, 3, 15), core.PaymentPaid, ""); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	sum, err := records.Summarize(core.Month("2024-03"))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalIncome.Cents != 280000 {
		t.Errorf("TotalIncome = %d, want 280000", sum.TotalIncome.Cents)
	}
	if sum.TotalExpense.Cents != 120000 {
		t.Errorf("TotalExpense = %d, want 120000", sum.TotalExpense.Cents)
	}
	if sum.TotalSalaryBurden.Cents != emp.Salary.Cents {
		t.Errorf("TotalSalaryBurden = %d, want %d", sum.TotalSalaryBurden.Cents, emp.Salary.Cents)
	}

	if _, err := records.Summarize(core.Month("bad")); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("bad month error = %v, want ErrInvalidMonth", err)
	}
}
