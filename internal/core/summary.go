package core

// Summary is the month-scoped financial rollup.
type Summary struct {
	Month        Month `json:"month"`
	TotalIncome  Money `json:"totalIncome"`
	TotalExpense Money `json:"totalExpense"`
	NetProfit    Money `json:"netProfit"`
	// TotalSalaryBurden is a current snapshot of salary + extra payment across
	// all employees, regardless of period or active flag.
	TotalSalaryBurden Money `json:"totalSalaryBurden"`
}

// Summarize computes the rollup for one calendar month. Standalone incomes and
// paid project payments dated within the month are pooled into one income set;
// expenses within the month form the expense set; project payments never count
// as expense. The function is pure: inputs are never mutated.
func Summarize(month Month, expenses []Expense, incomes []Income, employees []Employee, projects []Project) Summary {
	s := Summary{Month: month}

	for _, e := range expenses {
		if month.Contains(e.Date) {
			s.TotalExpense = s.TotalExpense.Add(e.Amount)
		}
	}

	for _, i := range incomes {
		if month.Contains(i.Date) {
			s.TotalIncome = s.TotalIncome.Add(i.Amount)
		}
	}
	for _, p := range projects {
		for _, pay := range p.Payments {
			if pay.Status == PaymentPaid && month.Contains(pay.Date) {
				s.TotalIncome = s.TotalIncome.Add(pay.Amount)
			}
		}
	}

	// Burden intentionally ignores the period and the active flag: it is the
	// company's ongoing salary cost as currently configured.
	for _, emp := range employees {
		s.TotalSalaryBurden = s.TotalSalaryBurden.Add(emp.Salary).Add(emp.ExtraPayment)
	}

	s.NetProfit = s.TotalIncome.Sub(s.TotalExpense)
	return s
}
