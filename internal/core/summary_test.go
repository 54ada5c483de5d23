package core

import (
	"reflect"
	"testing"
)

func sampleLedger() ([]Expense, []Income, []Employee, []Project) {
	expenses := []Expense{
		{ID: "e1", Date: NewDate(2024, 3, 5), Category: CategoryRent, Amount: Money{Cents: 100000}, Description: "Rent"},
		{ID: "e2", Date: NewDate(2024, 3, 20), Category: CategoryFood, Amount: Money{Cents: 5000}, Description: "Snacks"},
		{ID: "e3", Date: NewDate(2024, 4, 2), Category: CategoryRent, Amount: Money{Cents: 100000}, Description: "Rent"},
	}
	incomes := []Income{
		{ID: "i1", Date: NewDate(2024, 3, 12), Amount: Money{Cents: 200000}, Description: "Consulting"},
		{ID: "i2", Date: NewDate(2024, 2, 28), Amount: Money{Cents: 999999}, Description: "Old invoice"},
	}
	employees := []Employee{
		{ID: "emp1", Name: "Dana", Salary: Money{Cents: 300000}, PaymentType: PaymentMonthly, ExtraPayment: Money{Cents: 10000}, Active: true},
		{ID: "emp2", Name: "Robin", Salary: Money{Cents: 250000}, PaymentType: PaymentProject, Active: false},
	}
	projects := []Project{
		{ID: "p1", Name: "Website", Payments: []ProjectPayment{
			{ID: "pay1", Date: NewDate(2024, 3, 15), Amount: Money{Cents: 80000}, Status: PaymentPaid},
			{ID: "pay2", Date: NewDate(2024, 3, 25), Amount: Money{Cents: 70000}, Status: PaymentUpcoming},
			{ID: "pay3", Date: NewDate(2024, 4, 1), Amount: Money{Cents: 60000}, Status: PaymentPaid},
		}},
	}
	return expenses, incomes, employees, projects
}

func TestSummarize(t *testing.T) {
	expenses, incomes, employees, projects := sampleLedger()
	s := Summarize(Month("2024-03"), expenses, incomes, employees, projects)

	// Income pools standalone incomes and paid project payments of the month.
	if s.TotalIncome.Cents != 280000 {
		t.Errorf("TotalIncome = %d, want 280000", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 105000 {
		t.Errorf("TotalExpense = %d, want 105000", s.TotalExpense.Cents)
	}
	if s.NetProfit.Cents != 175000 {
		t.Errorf("NetProfit = %d, want 175000", s.NetProfit.Cents)
	}
	// Burden counts every employee, active or not, salary plus extra.
	if s.TotalSalaryBurden.Cents != 560000 {
		t.Errorf("TotalSalaryBurden = %d, want 560000", s.TotalSalaryBurden.Cents)
	}
}

func TestSummarizeEmptyMonth(t *testing.T) {
	expenses, incomes, employees, projects := sampleLedger()
	s := Summarize(Month("2023-01"), expenses, incomes, employees, projects)

	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.NetProfit.Cents != 0 {
		t.Errorf("out-of-range month should have zero flows, got %+v", s)
	}
	// Burden is a current snapshot, independent of the month.
	if s.TotalSalaryBurden.Cents != 560000 {
		t.Errorf("TotalSalaryBurden = %d, want 560000", s.TotalSalaryBurden.Cents)
	}
}

func TestSummarizeIsPure(t *testing.T) {
	expenses, incomes, employees, projects := sampleLedger()
	before := struct {
		e []Expense
		i []Income
		m []Employee
		p []Project
	}{
		append([]Expense(nil), expenses...),
		append([]Income(nil), incomes...),
		append([]Employee(nil), employees...),
		append([]Project(nil), projects...),
	}

	first := Summarize(Month("2024-03"), expenses, incomes, employees, projects)
	second := Summarize(Month("2024-03"), expenses, incomes, employees, projects)

	if first != second {
		t.Errorf("repeated Summarize differs: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(before.e, expenses) || !reflect.DeepEqual(before.i, incomes) ||
		!reflect.DeepEqual(before.m, employees) || !reflect.DeepEqual(before.p, projects) {
		t.Error("Summarize mutated its inputs")
	}
}

func TestSummarizeCancelledPaymentExcluded(t *testing.T) {
	projects := []Project{{ID: "p1", Name: "X", Payments: []ProjectPayment{
		{ID: "pay1", Date: NewDate(2024, 3, 15), Amount: Money{Cents: 80000}, Status: PaymentCancelled},
	}}}
	s := Summarize(Month("2024-03"), nil, nil, nil, projects)
	if s.TotalIncome.Cents != 0 {
		t.Errorf("cancelled payment counted as income: %d", s.TotalIncome.Cents)
	}
}
