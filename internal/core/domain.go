package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PaymentMonthly PaymentType = "monthly"
	PaymentProject PaymentType = "project"
)

const (
	ProjectUpcoming  ProjectStatus = "upcoming"
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

const (
	PaymentUpcoming  PaymentStatus = "upcoming"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

const (
	CompanySolo          CompanyType = "solo"
	CompanyWithEmployees CompanyType = "withEmployees"
)

const (
	CategorySalary         ExpenseCategory = "Salary"
	CategoryFood           ExpenseCategory = "Food"
	CategoryElectricity    ExpenseCategory = "Electricity"
	CategoryRent           ExpenseCategory = "Rent"
	CategoryOfficeSupplies ExpenseCategory = "Office Supplies"
	CategoryMarketing      ExpenseCategory = "Marketing"
	CategoryTravel         ExpenseCategory = "Travel"
	CategoryMaintenance    ExpenseCategory = "Maintenance"
	CategoryOther          ExpenseCategory = "Other"
)

type (
	PaymentType     string
	ProjectStatus   string
	PaymentStatus   string
	CompanyType     string
	ExpenseCategory string

	// Month is a calendar month in "YYYY-MM" form, the aggregation window.
	Month string

	Date struct {
		time.Time
	}

	CompanyData struct {
		Type CompanyType `json:"type"`
	}

	Expense struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Category    ExpenseCategory `json:"category"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		ProjectID   string          `json:"projectId,omitempty"`
		EmployeeID  string          `json:"employeeId,omitempty"`
		SalaryMonth Month           `json:"salaryMonth,omitempty"`
	}

	Income struct {
		ID          string `json:"id"`
		Date        Date   `json:"date"`
		Source      string `json:"source,omitempty"`
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
		ProjectID   string `json:"projectId,omitempty"`
	}

	// SalaryPayment is always created together with exactly one Salary-category
	// Expense; ExpenseID is a non-owning back-reference to it.
	SalaryPayment struct {
		Month     Month  `json:"month"`
		Amount    Money  `json:"amount"`
		DatePaid  Date   `json:"datePaid"`
		ExpenseID string `json:"expenseId"`
	}

	Employee struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Salary        Money           `json:"salary"`
		PaymentType   PaymentType     `json:"paymentType"`
		ExtraPayment  Money           `json:"extraPayment"`
		Active        bool            `json:"active"`
		SalaryHistory []SalaryPayment `json:"salaryHistory"`
	}

	ProjectPayment struct {
		ID          string        `json:"id"`
		Date        Date          `json:"date"`
		Amount      Money         `json:"amount"`
		Status      PaymentStatus `json:"status"`
		Description string        `json:"description,omitempty"`
	}

	// Project caches TotalIncome: it must equal the sum of its paid payments at
	// all times and is adjusted incrementally by the payment ledger, never set
	// anywhere else.
	Project struct {
		ID           string           `json:"id"`
		Name         string           `json:"name"`
		StartDate    Date             `json:"startDate"`
		EndDate      Date             `json:"endDate"`
		Status       ProjectStatus    `json:"status"`
		TotalIncome  Money            `json:"totalIncome"`
		TotalExpense Money            `json:"totalExpense"`
		Payments     []ProjectPayment `json:"payments"`
	}

	// Membership is the employee-to-project assignment relation. It is stored
	// once in the ledger's relation index and exposed as two views, one per
	// side, so the mirrored lists cannot diverge.
	Membership struct {
		ProjectID   string `json:"projectId"`
		EmployeeID  string `json:"employeeId"`
		MonthlyRate Money  `json:"monthlyRate"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidType      = errors.New("invalid type")

	ErrNotFound        = errors.New("not found")
	ErrDuplicateMember = errors.New("employee already assigned to project")
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// YearMonth returns the calendar month the date falls in.
func (d Date) YearMonth() Month {
	return Month(d.Format("2006-01"))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseMonth validates "YYYY-MM" input.
func ParseMonth(s string) (Month, error) {
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month(s), nil
}

func (m Month) Validate() error {
	_, err := ParseMonth(string(m))
	return err
}

// Contains reports whether the date falls within the calendar month.
func (m Month) Contains(d Date) bool {
	return d.YearMonth() == m
}

func (m Month) String() string { return string(m) }

func (t PaymentType) Validate() error {
	switch t {
	case PaymentMonthly, PaymentProject:
		return nil
	}
	return fmt.Errorf("%w: payment type %q", ErrInvalidType, t)
}

func (s ProjectStatus) Validate() error {
	switch s {
	case ProjectUpcoming, ProjectOngoing, ProjectCompleted, ProjectCancelled:
		return nil
	}
	return fmt.Errorf("%w: project status %q", ErrInvalidStatus, s)
}

func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentUpcoming, PaymentPaid, PaymentCancelled:
		return nil
	}
	return fmt.Errorf("%w: payment status %q", ErrInvalidStatus, s)
}

func (t CompanyType) Validate() error {
	switch t {
	case CompanySolo, CompanyWithEmployees:
		return nil
	}
	return fmt.Errorf("%w: company type %q", ErrInvalidType, t)
}

func (c ExpenseCategory) Validate() error {
	switch c {
	case CategorySalary, CategoryFood, CategoryElectricity, CategoryRent,
		CategoryOfficeSupplies, CategoryMarketing, CategoryTravel,
		CategoryMaintenance, CategoryOther:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidCategory, c)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Category == CategorySalary {
		if e.EmployeeID == "" {
			return fmt.Errorf("salary expense without employee: %w", ErrEmptyName)
		}
		if err := e.SalaryMonth.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(i.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}

func (e Employee) Validate() error {
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if err := e.Salary.Validate(); err != nil {
		return err
	}
	return e.PaymentType.Validate()
}

// Paid reports whether the employee has at least one salary payment on record.
// Derived on demand rather than toggled.
func (e Employee) Paid() bool {
	return len(e.SalaryHistory) > 0
}

func (p Project) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if err := p.StartDate.Validate(); err != nil {
		return err
	}
	// EndDate is optional; an ongoing project has none yet.
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate.Time) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidDate)
	}
	return p.Status.Validate()
}

func (p ProjectPayment) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	return p.Status.Validate()
}

// PaidTotal recomputes the sum of paid payments from scratch. The cached
// TotalIncome must always agree with it.
func (p Project) PaidTotal() Money {
	var total Money
	for _, pay := range p.Payments {
		if pay.Status == PaymentPaid {
			total = total.Add(pay.Amount)
		}
	}
	return total
}

// PaymentDelta returns the adjustment to a project's TotalIncome caused by a
// payment moving from (oldStatus, oldAmount) to (newStatus, newAmount).
func PaymentDelta(oldStatus PaymentStatus, oldAmount Money, newStatus PaymentStatus, newAmount Money) Money {
	switch {
	case oldStatus != PaymentPaid && newStatus == PaymentPaid:
		return newAmount
	case oldStatus == PaymentPaid && newStatus != PaymentPaid:
		return oldAmount.Neg()
	case oldStatus == PaymentPaid && newStatus == PaymentPaid:
		return newAmount.Sub(oldAmount)
	}
	return Money{}
}
