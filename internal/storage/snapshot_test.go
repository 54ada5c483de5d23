package storage

import (
	"context"
	"encoding/json"
	"testing"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

func sampleState() ledger.State {
	return ledger.State{
		Company: &core.CompanyData{Type: core.CompanyWithEmployees},
		Expenses: []core.Expense{
			{ID: "e1", Date: core.NewDate(2024, 3, 10), Category: core.CategoryRent, Amount: core.Money{Cents: 120000}, Description: "Office rent"},
		},
		Incomes: []core.Income{
			{ID: "i1", Date: core.NewDate(2024, 3, 12), Source: "Client", Amount: core.Money{Cents: 200000}, Description: "Consulting"},
		},
		Employees: []core.Employee{
			{ID: "emp1", Name: "Dana", Salary: core.Money{Cents: 300000}, PaymentType: core.PaymentMonthly, Active: true,
				SalaryHistory: []core.SalaryPayment{{Month: "2024-02", Amount: core.Money{Cents: 300000}, DatePaid: core.NewDate(2024, 2, 28), ExpenseID: "e0"}}},
		},
		Projects: []core.Project{
			{ID: "p1", Name: "Website", StartDate: core.NewDate(2024, 1, 1), Status: core.ProjectOngoing,
				TotalIncome: core.Money{Cents: 80000},
				Payments:    []core.ProjectPayment{{ID: "pay1", Date: core.NewDate(2024, 3, 15), Amount: core.Money{Cents: 80000}, Status: core.PaymentPaid}}},
		},
		Memberships: []core.Membership{
			{ProjectID: "p1", EmployeeID: "emp1", MonthlyRate: core.Money{Cents: 300000}},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	store := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := store.SaveState(ctx, sampleState()); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	// All five keys are written.
	for _, key := range SnapshotKeys {
		data, err := kv.Load(ctx, key)
		if err != nil {
			t.Fatalf("Load(%s): %v", key, err)
		}
		if data == nil {
			t.Errorf("key %s missing after save", key)
		}
	}

	loaded, err := store.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if loaded.Company == nil || loaded.Company.Type != core.CompanyWithEmployees {
		t.Errorf("Company = %+v", loaded.Company)
	}
	if len(loaded.Expenses) != 1 || loaded.Expenses[0].Amount.Cents != 120000 {
		t.Errorf("Expenses = %+v", loaded.Expenses)
	}
	if len(loaded.Incomes) != 1 || loaded.Incomes[0].Source != "Client" {
		t.Errorf("Incomes = %+v", loaded.Incomes)
	}
	if len(loaded.Employees) != 1 || len(loaded.Employees[0].SalaryHistory) != 1 {
		t.Errorf("Employees = %+v", loaded.Employees)
	}
	if len(loaded.Projects) != 1 || loaded.Projects[0].TotalIncome.Cents != 80000 || len(loaded.Projects[0].Payments) != 1 {
		t.Errorf("Projects = %+v", loaded.Projects)
	}
	if len(loaded.Memberships) != 1 || loaded.Memberships[0].EmployeeID != "emp1" || loaded.Memberships[0].MonthlyRate.Cents != 300000 {
		t.Errorf("Memberships = %+v", loaded.Memberships)
	}
}

func TestSnapshotMirrorsMembershipOnBothSides(t *testing.T) {
	kv := NewMemoryKV()
	store := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := store.SaveState(ctx, sampleState()); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	var employees []struct {
		ID       string            `json:"id"`
		Projects []core.Membership `json:"projects"`
	}
	data, _ := kv.Load(ctx, KeyEmployees)
	if err := json.Unmarshal(data, &employees); err != nil {
		t.Fatalf("unmarshal employees blob: %v", err)
	}
	if len(employees) != 1 || len(employees[0].Projects) != 1 || employees[0].Projects[0].ProjectID != "p1" {
		t.Errorf("employee-side mirror = %+v", employees)
	}

	var projects []struct {
		ID        string            `json:"id"`
		Employees []core.Membership `json:"employees"`
	}
	data, _ = kv.Load(ctx, KeyProjects)
	if err := json.Unmarshal(data, &projects); err != nil {
		t.Fatalf("unmarshal projects blob: %v", err)
	}
	if len(projects) != 1 || len(projects[0].Employees) != 1 || projects[0].Employees[0].EmployeeID != "emp1" {
		t.Errorf("project-side mirror = %+v", projects)
	}
}

func TestLoadStateProjectSideAuthoritative(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	// The employee-side mirror disagrees with the project side; only the
	// project side may win.
	if err := kv.Save(ctx, KeyEmployees, []byte(`[
		{"id":"emp1","name":"Dana","salary":300000,"paymentType":"monthly","active":true,
		 "projects":[{"projectId":"ghost","employeeId":"emp1","monthlyRate":1}]}
	]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := kv.Save(ctx, KeyProjects, []byte(`[
		{"id":"p1","name":"Website","status":"ongoing",
		 "employees":[{"employeeId":"emp1","monthlyRate":300000}]}
	]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	st, err := NewSnapshotStore(kv).LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(st.Memberships) != 1 {
		t.Fatalf("Memberships = %+v, want exactly the project-side entry", st.Memberships)
	}
	m := st.Memberships[0]
	// Older blobs omit the project id on the project-side mirror; it is
	// backfilled from the enclosing record.
	if m.ProjectID != "p1" || m.EmployeeID != "emp1" || m.MonthlyRate.Cents != 300000 {
		t.Errorf("Membership = %+v, want p1/emp1 at 300000", m)
	}
}

func TestLoadStateToleratesAbsentAndNullKeys(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	// Fresh store, nothing saved yet.
	st, err := NewSnapshotStore(kv).LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState on empty store: %v", err)
	}
	if st.Company != nil || st.Expenses != nil || st.Employees != nil || st.Projects != nil {
		t.Errorf("empty store should load an empty state, got %+v", st)
	}

	// Explicit nulls behave the same as absent keys.
	for _, key := range SnapshotKeys {
		if err := kv.Save(ctx, key, []byte("null")); err != nil {
			t.Fatalf("Save null: %v", err)
		}
	}
	st, err = NewSnapshotStore(kv).LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState on null keys: %v", err)
	}
	if st.Company != nil || len(st.Expenses) != 0 || len(st.Incomes) != 0 {
		t.Errorf("null keys should load an empty state, got %+v", st)
	}
}

func TestSaveStateNilCompanyWritesNull(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if err := NewSnapshotStore(kv).SaveState(ctx, ledger.State{}); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	data, err := kv.Load(ctx, KeyCompanyData)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("companyData = %s, want null", data)
	}

	st, err := NewSnapshotStore(kv).LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if st.Company != nil {
		t.Errorf("Company = %+v, want nil", st.Company)
	}
}

func TestSnapshotFeedsLedgerRestore(t *testing.T) {
	kv := NewMemoryKV()
	store := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := store.SaveState(ctx, sampleState()); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	st, err := store.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	led := ledger.New()
	led.Restore(st)

	if p, ok := led.Project("p1"); !ok || p.TotalIncome.Cents != 80000 {
		t.Errorf("restored project = %+v %v", p, ok)
	}
	members := led.ProjectMembers("p1")
	if len(members) != 1 || members[0].EmployeeID != "emp1" {
		t.Errorf("restored members = %+v", members)
	}
	if got := led.EmployeeProjects("emp1"); len(got) != 1 {
		t.Errorf("employee view = %+v", got)
	}
}
